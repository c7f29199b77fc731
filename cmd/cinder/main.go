// Command cinder runs Risor scripts and expressions from the command line:
//
//	cinder [option] ... [script] [arg] ...
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/atlanticdynamic/cinder/internal/logging"
	"github.com/atlanticdynamic/cinder/internal/opts"
	"github.com/atlanticdynamic/cinder/internal/report"
	"github.com/atlanticdynamic/cinder/internal/runner"
)

// Version is set during build using ldflags
var Version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run wires the runner and maps its typed errors to exit codes: zero for
// help, version, and normal completion, nonzero for everything else.
func run(args []string, stdout, stderr io.Writer) int {
	logging.Setup("info")

	r, err := runner.New(
		runner.WithVersion(Version),
		runner.WithStdout(stdout),
		runner.WithStderr(stderr),
		runner.WithLogSetup(func(silent, verbose bool) {
			logging.Setup(logging.FlagLevel(silent, verbose))
		}),
	)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	err = r.Run(context.Background(), args)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, runner.ErrHelpRequested):
		opts.Usage(stdout)
		return 0
	case errors.Is(err, runner.ErrVersionRequested):
		fmt.Fprintf(stdout, "cinder version %s\n", Version)
		return 0
	case isOptionError(err):
		fmt.Fprintln(stderr, err)
		fmt.Fprintln(stderr, "Use -h or --help for a list of supported options.")
		return 1
	default:
		report.Report(stderr, err, r.Verbose())
		return 1
	}
}

// isOptionError matches the failures raised before engine construction,
// which get the help hint instead of a full diagnostic.
func isOptionError(err error) bool {
	var rangeErr *runner.RangeError
	return errors.Is(err, opts.ErrUnknownOption) ||
		errors.Is(err, opts.ErrMissingValue) ||
		errors.As(err, &rangeErr)
}
