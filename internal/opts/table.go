// Package opts implements the fixed option table and the GNU-style option
// scanner for the cinder command line. The table is closed: the scanner
// recognizes exactly the options listed here and nothing else.
package opts

import (
	"fmt"
	"io"
	"strings"
)

// Spec describes a single recognized command-line option. ArgName is the
// value placeholder shown in the usage listing; an empty ArgName means the
// option is a boolean flag and never consumes a value.
type Spec struct {
	Short       byte
	Long        string
	Description string
	ArgName     string
}

// TakesValue reports whether the option consumes an argument.
func (s Spec) TakesValue() bool {
	return s.ArgName != ""
}

// Table is the ordered set of options recognized by cinder. Order fixes the
// usage listing and decides ties when matching short letters; it has no
// effect on long-name matching.
var Table = []Spec{
	{'b', "bootscript", "Run additional bootstrap script", "FILE"},
	{'d', "debug", "Run with debugger support enabled", ""},
	{'e', "expression", "Run the given expression as script", "EXPR"},
	{'h', "help", "Display this help message", ""},
	{'H', "history", "Use custom history file (default: ~/.cinder-history)", "FILE"},
	{'i', "interactive", "Start shell after script file has run", ""},
	{'o', "optlevel", "Set engine optimization level (-1 to 9)", "OPT"},
	{'p', "policy", "Set sandbox policy file and enable the sandbox", "URL"},
	{'s', "silent", "Disable shell prompt and echo for piped stdin/stdout", ""},
	{'V', "verbose", "Verbose mode: print native error traces", ""},
	{'v', "version", "Print version number and exit", ""},
}

// Usage writes the usage listing for the option table to w, in table order.
func Usage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  cinder [option] ... [script] [arg] ...")
	fmt.Fprintln(w, "Options:")
	for _, spec := range Table {
		def := strings.TrimSpace(fmt.Sprintf("-%c --%s %s", spec.Short, spec.Long, spec.ArgName))
		fmt.Fprintf(w, "  %-22s %s\n", def, spec.Description)
	}
}
