package base

import (
	"bytes"
	"flag"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
)

// Command carries what every subcommand needs.
type Command struct {
	Log hclog.Logger
	UI  cli.Ui
}

// FlagSet wraps flag.FlagSet to render flag help for command help text.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet returns a FlagSet whose parse errors and usage are printed by
// the command, not by the flag package.
func NewFlagSet(f *flag.FlagSet) *FlagSet {
	f.Usage = func() {}
	f.SetOutput(&bytes.Buffer{})
	return &FlagSet{FlagSet: f}
}

// Help renders the flags as an "Options:" section.
func (f *FlagSet) Help() string {
	var b bytes.Buffer
	b.WriteString("\n\nOptions:\n")

	f.VisitAll(func(fl *flag.Flag) {
		name, usage := flag.UnquoteUsage(fl)
		if name != "" {
			fmt.Fprintf(&b, "\n  -%s=<%s>\n", fl.Name, name)
		} else {
			fmt.Fprintf(&b, "\n  -%s\n", fl.Name)
		}
		if fl.DefValue != "" && fl.DefValue != "false" {
			usage += fmt.Sprintf(" (default: %s)", fl.DefValue)
		}
		fmt.Fprintf(&b, "    %s\n", usage)
	})

	return b.String()
}
