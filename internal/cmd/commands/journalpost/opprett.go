package journalpost

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/araddon/dateparse"
	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"

	"github.com/navikt/helsearbeidsgiver-dokarkiv/internal/cmd/base"
	"github.com/navikt/helsearbeidsgiver-dokarkiv/pkg/dokarkiv"
)

type OpprettCommand struct {
	command

	flagTittel       string
	flagFnr          string
	flagOrgnr        string
	flagNavn         string
	flagAvsenderFnr  string
	flagMottatt      string
	flagEksternRef   string
	flagKanal        string
	flagBrevkode     string
	flagFagsaksystem string
	flagFagsakID     string
	flagFormat       string
	flagDokumenter   dokumentFlag
}

func NewOpprettCommand(b *base.Command) *OpprettCommand {
	return &OpprettCommand{command: command{Command: b}}
}

func (c *OpprettCommand) Synopsis() string {
	return "Create and finalize an incoming journalpost"
}

func (c *OpprettCommand) Help() string {
	return `Usage: dokarkiv opprett [options]

  This command archives an incoming sick-pay document and asks dokarkiv to
  finalize it in the same call. If dokarkiv already has a journalpost for
  the external reference, that journalpost is returned.

  Exit status is 0 on success, 1 when dokarkiv rejected the request and 2
  when the outcome is unknown and the command may be retried.` +
		c.Flags().Help()
}

func (c *OpprettCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("opprett", flag.ContinueOnError))
	c.addCommonFlags(f)

	f.StringVar(&c.flagTittel, "tittel", "", "Title of the journalpost and its document.")
	f.StringVar(&c.flagFnr, "fnr", "", "(Required) National id of the person the journalpost concerns.")
	f.StringVar(&c.flagOrgnr, "orgnr", "", "Organisation number of the sender.")
	f.StringVar(&c.flagNavn, "navn", "", "Name of the sending organisation.")
	f.StringVar(&c.flagAvsenderFnr, "avsender-fnr", "", "National id of the sender, when the sender is a person.")
	f.StringVar(&c.flagMottatt, "mottatt", "", "Date the document was received. Defaults to today.")
	f.StringVar(&c.flagEksternRef, "ekstern-ref", "", "(Required) External reference, unique per logical document.")
	f.StringVar(&c.flagKanal, "kanal", string(dokarkiv.KanalNavNo), "Intake channel (nav-no or hr-system-api).")
	f.StringVar(&c.flagBrevkode, "brevkode", "", "Document code.")
	f.StringVar(&c.flagFagsaksystem, "fagsaksystem", "", "Case system, links the journalpost to a case.")
	f.StringVar(&c.flagFagsakID, "fagsak-id", "", "Case id in -fagsaksystem.")
	f.StringVar(&c.flagFormat, "format", "json", "Output format (json or yaml).")
	f.Var(&c.flagDokumenter, "dokument", "Document variant as path:FILTYPE:VARIANT. May be repeated.")

	return f
}

func (c *OpprettCommand) Run(args []string) int {
	ui := c.UI

	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return exitError
	}

	in, err := c.input()
	if err != nil {
		ui.Error(err.Error())
		return exitError
	}
	if c.flagFormat != "json" && c.flagFormat != "yaml" {
		ui.Error(fmt.Sprintf("unknown format %q", c.flagFormat))
		return exitError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client, err := c.newClient(ctx)
	if err != nil {
		ui.Error(err.Error())
		return exitError
	}

	callID := c.callID()
	resp, err := client.OpprettOgFerdigstillJournalpost(ctx, in, callID)
	if err != nil {
		return c.fail("creating journalpost", err)
	}

	out, err := c.render(newOpprettOutput(resp, callID))
	if err != nil {
		ui.Error(fmt.Sprintf("error rendering result: %v", err))
		return exitError
	}
	ui.Output(out)

	if !resp.JournalpostFerdigstilt {
		ui.Warn(fmt.Sprintf("journalpost %s was created but not finalized", resp.JournalpostID))
	}
	return exitOK
}

func (c *OpprettCommand) input() (dokarkiv.OpprettOgFerdigstillInput, error) {
	var in dokarkiv.OpprettOgFerdigstillInput

	if c.flagFnr == "" {
		return in, errors.New("fnr flag is required")
	}
	if c.flagEksternRef == "" {
		return in, errors.New("ekstern-ref flag is required")
	}

	sender, err := avsender(c.flagOrgnr, c.flagNavn, c.flagAvsenderFnr)
	if err != nil {
		return in, err
	}

	mottatt := time.Now()
	if c.flagMottatt != "" {
		mottatt, err = dateparse.ParseAny(c.flagMottatt)
		if err != nil {
			return in, fmt.Errorf("error parsing mottatt: %w", err)
		}
	}

	kanal, err := dokarkiv.ParseKanal(strcase.ToScreamingSnake(c.flagKanal))
	if err != nil {
		return in, err
	}

	varianter, err := c.flagDokumenter.varianter(c.fs())
	if err != nil {
		return in, err
	}

	in = dokarkiv.OpprettOgFerdigstillInput{
		Tittel:             c.flagTittel,
		GjelderPerson:      dokarkiv.GjelderPerson(c.flagFnr),
		Avsender:           sender,
		DatoMottatt:        dokarkiv.DatoOf(mottatt),
		EksternReferanseID: c.flagEksternRef,
		Kanal:              kanal,
	}
	if len(varianter) > 0 {
		in.Dokumenter = []dokarkiv.Dokument{{
			Tittel:            c.flagTittel,
			Brevkode:          c.flagBrevkode,
			DokumentVarianter: varianter,
		}}
	}

	switch {
	case c.flagFagsaksystem != "" && c.flagFagsakID != "":
		sak := dokarkiv.Fagsak(c.flagFagsaksystem, c.flagFagsakID)
		in.Sak = &sak
	case c.flagFagsaksystem != "" || c.flagFagsakID != "":
		return in, errors.New("-fagsaksystem and -fagsak-id must be used together")
	}

	return in, nil
}

func (c *OpprettCommand) render(v opprettOutput) (string, error) {
	if c.flagFormat == "yaml" {
		b, err := yaml.Marshal(v)
		return string(b), err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	return string(b), err
}

type opprettOutput struct {
	JournalpostID          string   `json:"journalpostId" yaml:"journalpostId"`
	JournalpostFerdigstilt bool     `json:"journalpostFerdigstilt" yaml:"journalpostFerdigstilt"`
	Melding                string   `json:"melding,omitempty" yaml:"melding,omitempty"`
	DokumentInfoIDer       []string `json:"dokumentInfoIder" yaml:"dokumentInfoIder"`
	CallID                 string   `json:"callId" yaml:"callId"`
}

func newOpprettOutput(resp *dokarkiv.OpprettOgFerdigstillResponse, callID string) opprettOutput {
	out := opprettOutput{
		JournalpostID:          resp.JournalpostID,
		JournalpostFerdigstilt: resp.JournalpostFerdigstilt,
		DokumentInfoIDer:       make([]string, 0, len(resp.Dokumenter)),
		CallID:                 callID,
	}
	if resp.Melding != nil {
		out.Melding = *resp.Melding
	}
	for _, d := range resp.Dokumenter {
		out.DokumentInfoIDer = append(out.DokumentInfoIDer, d.DokumentInfoID)
	}
	return out
}
