package runner

import (
	"fmt"
	"strconv"

	"github.com/atlanticdynamic/cinder/internal/opts"
	"github.com/atlanticdynamic/cinder/internal/sandbox"
)

// apply validates one resolved option and folds it into the configuration.
// Help and version surface as typed signals; every other error is fatal to
// the parse.
func (c *Config) apply(opt opts.Resolved) error {
	switch opt.Long {
	case "help":
		return ErrHelpRequested
	case "version":
		return ErrVersionRequested
	case "interactive":
		c.RunShell = true
	case "debug":
		c.Debug = true
	case "verbose":
		c.Verbose = true
	case "silent":
		// silent implies the shell: it exists to drive the shell over
		// redirected stdin/stdout without prompt or echo
		c.Silent = true
		c.RunShell = true
	case "optlevel":
		level, err := strconv.Atoi(opt.Value)
		if err != nil || level < -1 || level > 9 {
			return &RangeError{Option: opt.Long}
		}
		c.OptLevel = level
	case "history":
		c.HistoryPath = opt.Value
	case "expression":
		// an empty value still counts as given, distinct from no -e at all
		c.Expr = opt.Value
		c.ExprSet = true
	case "bootscript":
		c.BootScripts = append(c.BootScripts, opt.Value)
	case "policy":
		policy, err := sandbox.Load(opt.Value)
		if err != nil {
			return err
		}
		c.Policy = policy
		c.PolicyPath = opt.Value
	default:
		// the option table and this switch are maintained together; a miss
		// here is a programming error
		return fmt.Errorf("unhandled option: %s", opt.Long)
	}
	return nil
}
