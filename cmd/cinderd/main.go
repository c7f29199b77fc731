// Command cinderd is the daemon entry point: it loads the named script
// module and drives its init/start/stop/destroy hooks under a process
// supervisor, using the same option surface as cinder.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/atlanticdynamic/cinder/internal/daemon"
	"github.com/atlanticdynamic/cinder/internal/logging"
	"github.com/atlanticdynamic/cinder/internal/opts"
	"github.com/atlanticdynamic/cinder/internal/report"
	"github.com/atlanticdynamic/cinder/internal/runner"
	"github.com/robbyt/go-supervisor/supervisor"
)

// Version is set during build using ldflags
var Version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	logging.Setup("info")
	ctx := context.Background()

	r, err := runner.New(
		runner.WithVersion(Version),
		runner.WithLogSetup(func(silent, verbose bool) {
			logging.Setup(logging.FlagLevel(silent, verbose))
		}),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	d, err := daemon.NewRunner(r, args, daemon.WithContext(ctx))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	super, err := supervisor.New(
		supervisor.WithRunnables(d),
		supervisor.WithLogHandler(slog.Default().Handler()),
		supervisor.WithContext(ctx),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create supervisor: %v\n", err)
		return 1
	}

	if err := super.Run(); err != nil {
		switch {
		case errors.Is(err, runner.ErrHelpRequested):
			opts.Usage(os.Stdout)
			return 0
		case errors.Is(err, runner.ErrVersionRequested):
			fmt.Printf("cinderd version %s\n", Version)
			return 0
		default:
			report.Report(os.Stderr, err, r.Verbose())
			return 1
		}
	}

	slog.Info("Daemon shutdown complete")
	return 0
}
