// Package sandbox implements the restrictive execution policy enabled by
// the -p/--policy option. A policy constrains where the engine may load
// scripts from for the remainder of the process.
package sandbox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/atlanticdynamic/cinder/internal/interpolation"
)

// ErrPolicyViolation is returned when a load is denied by the active policy.
var ErrPolicyViolation = errors.New("sandbox policy violation")

// Policy is the parsed form of a TOML policy file.
type Policy struct {
	// AllowEnv permits scripts to read process environment variables.
	AllowEnv bool `toml:"allow_env"`
	// AllowHTTPLoaders permits loading script sources over http(s).
	AllowHTTPLoaders bool `toml:"allow_http_loaders"`
	// ImportRoots restricts script loading to the listed directories. An
	// empty list permits any local path.
	ImportRoots []string `toml:"import_roots"`
}

// Load reads a TOML policy from a local path or file:// URL. Import roots
// may reference environment variables and are normalized to absolute paths
// at load time.
func Load(source string) (*Policy, error) {
	path := strings.TrimPrefix(source, "file://")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy %s: %w", source, err)
	}

	var p Policy
	if err := toml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to parse policy %s: %w", source, err)
	}

	if err := interpolation.ExpandAll(p.ImportRoots, interpolation.OSLookup); err != nil {
		return nil, fmt.Errorf("invalid policy %s: %w", source, err)
	}
	for i, root := range p.ImportRoots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("invalid import root %s: %w", root, err)
		}
		p.ImportRoots[i] = abs
	}
	return &p, nil
}

// AllowPath reports whether the policy permits loading the script at path.
// A nil policy permits everything.
func (p *Policy) AllowPath(path string) bool {
	if p == nil || len(p.ImportRoots) == 0 {
		return true
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, root := range p.ImportRoots {
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// AllowHTTP reports whether the policy permits http(s) script loaders.
// A nil policy permits them.
func (p *Policy) AllowHTTP() bool {
	return p == nil || p.AllowHTTPLoaders
}
