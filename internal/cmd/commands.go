package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/navikt/helsearbeidsgiver-dokarkiv/internal/cmd/base"
	"github.com/navikt/helsearbeidsgiver-dokarkiv/internal/cmd/commands/journalpost"
	"github.com/navikt/helsearbeidsgiver-dokarkiv/internal/cmd/commands/version"
)

// Commands is the mapping of all available dokarkiv commands.
var Commands map[string]cli.CommandFactory

func initCommands(log hclog.Logger, ui cli.Ui) {
	b := &base.Command{
		Log: log,
		UI:  ui,
	}

	Commands = map[string]cli.CommandFactory{
		"opprett": func() (cli.Command, error) {
			return journalpost.NewOpprettCommand(b), nil
		},
		"oppdater": func() (cli.Command, error) {
			return journalpost.NewOppdaterCommand(b), nil
		},
		"ferdigstill": func() (cli.Command, error) {
			return journalpost.NewFerdigstillCommand(b), nil
		},
		"version": func() (cli.Command, error) {
			return &version.Command{Command: b}, nil
		},
	}
}
