package journalpost

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/navikt/helsearbeidsgiver-dokarkiv/internal/cmd/base"
	"github.com/navikt/helsearbeidsgiver-dokarkiv/pkg/dokarkiv"
)

type OppdaterCommand struct {
	command

	flagID          string
	flagFnr         string
	flagOrgnr       string
	flagNavn        string
	flagAvsenderFnr string
}

func NewOppdaterCommand(b *base.Command) *OppdaterCommand {
	return &OppdaterCommand{command: command{Command: b}}
}

func (c *OppdaterCommand) Synopsis() string {
	return "Update person and sender on an unfinalized journalpost"
}

func (c *OppdaterCommand) Help() string {
	return `Usage: dokarkiv oppdater [options]

  This command sets the person, the sender and a general case link on a
  journalpost that was created but not finalized. Run "dokarkiv ferdigstill"
  afterwards.` +
		c.Flags().Help()
}

func (c *OppdaterCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("oppdater", flag.ContinueOnError))
	c.addCommonFlags(f)

	f.StringVar(&c.flagID, "id", "", "(Required) Journalpost id.")
	f.StringVar(&c.flagFnr, "fnr", "", "(Required) National id of the person the journalpost concerns.")
	f.StringVar(&c.flagOrgnr, "orgnr", "", "Organisation number of the sender.")
	f.StringVar(&c.flagNavn, "navn", "", "Name of the sending organisation.")
	f.StringVar(&c.flagAvsenderFnr, "avsender-fnr", "", "National id of the sender, when the sender is a person.")

	return f
}

func (c *OppdaterCommand) Run(args []string) int {
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
	if c.flagFnr == "" {
		ui.Error("fnr flag is required")
		return exitError
	}
	sender, err := avsender(c.flagOrgnr, c.flagNavn, c.flagAvsenderFnr)
	if err != nil {
		ui.Error(err.Error())
		return exitError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client, err := c.newClient(ctx)
	if err != nil {
		ui.Error(err.Error())
		return exitError
	}

	err = client.OppdaterJournalpost(ctx, c.flagID, dokarkiv.GjelderPerson(c.flagFnr), sender, c.callID())
	if err != nil {
		return c.fail("updating journalpost", err)
	}

	ui.Info(fmt.Sprintf("Updated journalpost %s (call id %s)", c.flagID, c.callID()))
	return exitOK
}
