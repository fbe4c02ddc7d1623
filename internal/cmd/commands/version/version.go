package version

import (
	"github.com/navikt/helsearbeidsgiver-dokarkiv/internal/cmd/base"
	"github.com/navikt/helsearbeidsgiver-dokarkiv/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the version of the binary"
}

func (c *Command) Help() string {
	return `Usage: dokarkiv version

  This command prints the version of the binary.`
}

func (c *Command) Run(args []string) int {
	c.UI.Output(version.HumanVersion())
	return 0
}
