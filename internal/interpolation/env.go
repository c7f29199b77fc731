// Package interpolation expands ${VAR} and ${VAR:default} references in
// configuration values. Settings and policy files use it so paths can be
// written portably, e.g. history = "${HOME}/.cinder-history".
package interpolation

import (
	"errors"
	"fmt"
	"os"
	"regexp"
)

// Captures the variable name, an optional colon, and the default value.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:)?([^}]*)\}`)

// ExpandEnvVars replaces ${VAR} references in input with values from the
// process environment. ${VAR:default} falls back to default when VAR is
// unset; ${VAR} with no default and no value is an error. Lookups go
// through a getenv-style function so callers control what the expansion
// can see.
func ExpandEnvVars(input string, lookup func(string) string) (string, error) {
	if input == "" {
		return "", nil
	}

	var missing []error
	result := envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		sub := envVarPattern.FindStringSubmatch(match)
		name, hasDefault, fallback := sub[1], sub[2] == ":", sub[3]

		if value := lookup(name); value != "" {
			return value
		}
		if hasDefault {
			return fallback
		}
		missing = append(missing, fmt.Errorf("environment variable not defined: %s", name))
		return match
	})

	return result, errors.Join(missing...)
}

// ExpandAll expands every string in values in place, collecting errors.
func ExpandAll(values []string, lookup func(string) string) error {
	var errs []error
	for i, v := range values {
		expanded, err := ExpandEnvVars(v, lookup)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		values[i] = expanded
	}
	return errors.Join(errs...)
}

// OSLookup adapts os.Getenv for ExpandEnvVars.
func OSLookup(name string) string {
	return os.Getenv(name)
}
