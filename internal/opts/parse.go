package opts

import "strings"

// Resolved is one option occurrence produced by the scanner, identified by
// its long name regardless of how it was spelled on the command line. Value
// is empty for flags.
type Resolved struct {
	Long  string
	Value string
}

// matchKind tags the outcome of a table lookup.
type matchKind int

const (
	matchNotFound matchKind = iota
	matchFlag
	matchValue
)

// matchShort finds the first table entry whose short letter equals c.
func matchShort(c byte) (Spec, matchKind) {
	for _, spec := range Table {
		if spec.Short == c {
			if spec.TakesValue() {
				return spec, matchValue
			}
			return spec, matchFlag
		}
	}
	return Spec{}, matchNotFound
}

// matchLong finds the first table entry matching name, either exactly or as
// a prefix immediately followed by '='. Flags match by exact equality only.
func matchLong(name string) (Spec, matchKind) {
	for _, spec := range Table {
		if spec.TakesValue() {
			if name == spec.Long || strings.HasPrefix(name, spec.Long+"=") {
				return spec, matchValue
			}
			continue
		}
		if name == spec.Long {
			return spec, matchFlag
		}
	}
	return Spec{}, matchNotFound
}

// Parse scans args against the option table and calls apply for each
// resolved option, in command-line order. It returns the index of the first
// positional argument; everything at and after that index belongs to the
// script and is never inspected. Scanning stops at the first token that
// does not begin with "-". An error from apply aborts the scan immediately.
func Parse(args []string, apply func(Resolved) error) (int, error) {
	i := 0
	for i < len(args) {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			break
		}
		var next string
		hasNext := i+1 < len(args)
		if hasNext {
			next = args[i+1]
		}
		var consumed int
		var err error
		if strings.HasPrefix(arg, "--") {
			consumed, err = parseLong(arg[2:], next, hasNext, apply)
		} else {
			consumed, err = parseShort(arg[1:], next, hasNext, apply)
		}
		if err != nil {
			return i, err
		}
		i += 1 + consumed
	}
	return i, nil
}

// parseShort scans a bundled cluster of short options. A value-taking
// letter consumes the remainder of the cluster when letters follow it, or
// the next whole argument when it is the last letter; the return value is
// the number of extra argument tokens consumed (0 or 1).
func parseShort(cluster, next string, hasNext bool, apply func(Resolved) error) (int, error) {
	for i := 0; i < len(cluster); i++ {
		spec, kind := matchShort(cluster[i])
		if kind == matchNotFound {
			return 0, &UnknownOptionError{Token: "-" + string(cluster[i])}
		}
		res := Resolved{Long: spec.Long}
		if kind == matchValue {
			consumed := 0
			if i == len(cluster)-1 {
				if !hasNext {
					return 0, &MissingValueError{Option: "-" + string(spec.Short), ArgName: spec.ArgName}
				}
				res.Value = next
				consumed = 1
			} else {
				res.Value = cluster[i+1:]
			}
			return consumed, apply(res)
		}
		if err := apply(res); err != nil {
			return 0, err
		}
	}
	return 0, nil
}

// parseLong scans a single --name or --name=value token.
func parseLong(name, next string, hasNext bool, apply func(Resolved) error) (int, error) {
	spec, kind := matchLong(name)
	if kind == matchNotFound {
		return 0, &UnknownOptionError{Token: "--" + name}
	}
	res := Resolved{Long: spec.Long}
	consumed := 0
	if kind == matchValue {
		if name == spec.Long {
			if !hasNext {
				return 0, &MissingValueError{Option: "--" + spec.Long, ArgName: spec.ArgName}
			}
			res.Value = next
			consumed = 1
		} else {
			res.Value = name[len(spec.Long)+1:]
		}
	}
	if err := apply(res); err != nil {
		return 0, err
	}
	return consumed, nil
}
