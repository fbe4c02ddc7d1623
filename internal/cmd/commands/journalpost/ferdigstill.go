package journalpost

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/navikt/helsearbeidsgiver-dokarkiv/internal/cmd/base"
)

type FerdigstillCommand struct {
	command

	flagID string
}

func NewFerdigstillCommand(b *base.Command) *FerdigstillCommand {
	return &FerdigstillCommand{command: command{Command: b}}
}

func (c *FerdigstillCommand) Synopsis() string {
	return "Finalize a journalpost"
}

func (c *FerdigstillCommand) Help() string {
	return `Usage: dokarkiv ferdigstill [options]

  This command finalizes a journalpost with the unit from the config file.` +
		c.Flags().Help()
}

func (c *FerdigstillCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("ferdigstill", flag.ContinueOnError))
	c.addCommonFlags(f)

	f.StringVar(&c.flagID, "id", "", "(Required) Journalpost id.")

	return f
}

func (c *FerdigstillCommand) Run(args []string) int {
	ui := c.UI

	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return exitError
	}

	if c.flagID == "" {
		ui.Error("id flag is required")
		return exitError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client, err := c.newClient(ctx)
	if err != nil {
		ui.Error(err.Error())
		return exitError
	}

	if err := client.FerdigstillJournalpost(ctx, c.flagID, c.callID()); err != nil {
		return c.fail("finalizing journalpost", err)
	}

	ui.Info(fmt.Sprintf("Finalized journalpost %s (call id %s)", c.flagID, c.callID()))
	return exitOK
}
