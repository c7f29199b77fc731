// Package report normalizes heterogeneous failures into the diagnostic
// stream the cinder binaries and the interactive shell print.
package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/atlanticdynamic/cinder/internal/engine"
)

// Report writes a normalized diagnostic for err to w. Script-origin
// failures print their message, other failures their generic string form;
// then every syntax error collected during the failing operation on its own
// line, in production order; then the script-level trace; then, with
// verbose set, the native failure chain. The ordering (message, syntax
// errors, script trace, native trace) is a fixed contract relied on by
// log-scraping tools.
func Report(w io.Writer, err error, verbose bool) {
	if err == nil {
		return
	}

	var scriptErr *engine.ScriptError
	if errors.As(err, &scriptErr) {
		fmt.Fprintln(w, scriptErr.Message)
	} else {
		fmt.Fprintln(w, err.Error())
	}

	if scriptErr != nil {
		for _, syntaxErr := range scriptErr.SyntaxErrors {
			fmt.Fprintln(w, syntaxErr)
		}
		if scriptErr.ScriptTrace != "" {
			fmt.Fprintln(w, scriptErr.ScriptTrace)
		}
	}

	if verbose {
		for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
			fmt.Fprintf(w, "caused by: %v\n", cause)
		}
	}
}
