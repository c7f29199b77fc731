// Package settings reads the optional cinder.toml file from the home
// directory. Settings provide defaults only; command-line options always
// win.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/atlanticdynamic/cinder/internal/interpolation"
)

// FileName is the settings file looked up inside the home directory.
const FileName = "cinder.toml"

// Settings holds the defaults a home directory may supply. Path values may
// reference environment variables with ${VAR} or ${VAR:default} syntax.
type Settings struct {
	OptLevel    *int     `toml:"optlevel"`
	History     string   `toml:"history"`
	ModulePath  []string `toml:"modulepath"`
	BootScripts []string `toml:"bootscripts"`
}

// Load reads the settings file from home and expands environment references
// in its path values through lookup. A missing file yields empty settings,
// not an error.
func Load(home string, lookup func(string) string) (*Settings, error) {
	raw, err := os.ReadFile(filepath.Join(home, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return &Settings{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var s Settings
	if err := toml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	if lookup == nil {
		lookup = interpolation.OSLookup
	}
	s.History, err = interpolation.ExpandEnvVars(s.History, lookup)
	expandErrs := []error{err}
	expandErrs = append(expandErrs, interpolation.ExpandAll(s.ModulePath, lookup))
	expandErrs = append(expandErrs, interpolation.ExpandAll(s.BootScripts, lookup))
	if err := errors.Join(expandErrs...); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", FileName, err)
	}
	return &s, nil
}
