// Package runner implements the run configuration, the option applier, and
// the lifecycle controller that sequences engine construction, module
// loading, and the daemon hooks.
package runner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/atlanticdynamic/cinder/internal/sandbox"
	"github.com/atlanticdynamic/cinder/internal/settings"
)

// Environment variables consumed by the bootstrap.
const (
	EnvHome       = "CINDER_HOME"
	EnvModulePath = "CINDER_MODULE_PATH"
)

// DefaultOptLevel is used when neither the settings file nor the command
// line sets an optimization level.
const DefaultOptLevel = 0

// Config is the run configuration resolved from the environment, the
// optional settings file, and the command line. It is mutated while options
// are applied and treated as read-only afterwards.
type Config struct {
	RunShell    bool
	Debug       bool
	Silent      bool
	Verbose     bool
	OptLevel    int
	Expr        string
	ExprSet     bool
	HistoryPath string
	BootScripts []string
	ScriptName  string
	ScriptArgs  []string
	Policy      *sandbox.Policy
	PolicyPath  string

	Home       string
	ModulePath []string
}

// NewConfig resolves the home directory and module search path from the
// environment (current directory and empty list by default) and merges the
// defaults from the home's settings file.
func NewConfig(getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	cfg := &Config{OptLevel: DefaultOptLevel}

	cfg.Home = getenv(EnvHome)
	if cfg.Home == "" {
		cfg.Home = "."
	}
	if mp := getenv(EnvModulePath); mp != "" {
		cfg.ModulePath = filepath.SplitList(mp)
	}

	st, err := settings.Load(cfg.Home, getenv)
	if err != nil {
		return nil, err
	}
	if st.OptLevel != nil {
		if *st.OptLevel < -1 || *st.OptLevel > 9 {
			return nil, fmt.Errorf("%s: %w", settings.FileName, &RangeError{Option: "optlevel"})
		}
		cfg.OptLevel = *st.OptLevel
	}
	if st.History != "" {
		cfg.HistoryPath = st.History
	}
	cfg.ModulePath = append(cfg.ModulePath, st.ModulePath...)
	cfg.BootScripts = append(cfg.BootScripts, st.BootScripts...)

	return cfg, nil
}
