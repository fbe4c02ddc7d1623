package journalpost

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/navikt/helsearbeidsgiver-dokarkiv/internal/cmd/base"
	"github.com/navikt/helsearbeidsgiver-dokarkiv/internal/config"
	"github.com/navikt/helsearbeidsgiver-dokarkiv/pkg/dokarkiv"
)

const (
	exitOK = iota
	exitError
	// exitRetryable signals that the same command may succeed if run again.
	exitRetryable
)

// command holds what the journalpost commands share.
type command struct {
	*base.Command

	// Fs is where config and document files are read from. Defaults to the
	// OS filesystem.
	Fs afero.Fs

	// Getenv defaults to os.Getenv.
	Getenv func(string) string

	flagConfig string
	flagCallID string
}

func (c *command) addCommonFlags(f *base.FlagSet) {
	f.StringVar(
		&c.flagConfig, "config", "", "(Required) Path to dokarkiv config file",
	)
	f.StringVar(
		&c.flagCallID, "call-id", "",
		"Correlation id sent as Nav-Call-Id. A random UUID is used when empty.",
	)
}

func (c *command) fs() afero.Fs {
	if c.Fs == nil {
		return afero.NewOsFs()
	}
	return c.Fs
}

func (c *command) callID() string {
	if c.flagCallID == "" {
		c.flagCallID = uuid.NewString()
	}
	return c.flagCallID
}

// newClient loads the config file and builds a client from it.
func (c *command) newClient(ctx context.Context) (*dokarkiv.Client, error) {
	if c.flagConfig == "" {
		return nil, errors.New("config flag is required")
	}

	cfg, err := config.Load(c.fs(), c.flagConfig)
	if err != nil {
		return nil, err
	}

	logger := c.Log
	if logger == nil {
		logger = hclog.NewNullLogger()
	} else if cfg.LogLevel != "" {
		logger.SetLevel(cfg.Level())
	}

	getenv := c.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	clientCfg, err := cfg.ClientConfig(ctx, getenv, logger)
	if err != nil {
		return nil, fmt.Errorf("error configuring client: %w", err)
	}

	return dokarkiv.NewClient(*clientCfg)
}

// fail reports err and returns the exit code for it.
func (c *command) fail(action string, err error) int {
	c.UI.Error(fmt.Sprintf("error %s: %v", action, err))
	if dokarkiv.IsRetryable(err) {
		c.UI.Warn("The request may have reached dokarkiv. Retry with the same -call-id and -ekstern-ref.")
		return exitRetryable
	}
	return exitError
}

// avsender picks the sender from the organisation or person flags.
func avsender(orgnr, navn, fnr string) (dokarkiv.Avsender, error) {
	switch {
	case orgnr != "" && fnr != "":
		return nil, errors.New("use either -orgnr or -avsender-fnr, not both")
	case orgnr != "":
		if navn == "" {
			return nil, errors.New("-navn is required with -orgnr")
		}
		return dokarkiv.AvsenderOrganisasjon{Orgnr: orgnr, Navn: navn}, nil
	case fnr != "":
		return dokarkiv.AvsenderPerson{Fnr: fnr}, nil
	default:
		return nil, errors.New("one of -orgnr or -avsender-fnr is required")
	}
}

// dokumentFlag collects repeated -dokument=path:FILTYPE:VARIANT values.
type dokumentFlag []dokumentArg

type dokumentArg struct {
	path          string
	filtype       string
	variantFormat string
}

func (d *dokumentFlag) String() string {
	parts := make([]string, 0, len(*d))
	for _, s := range *d {
		parts = append(parts, s.path+":"+s.filtype+":"+s.variantFormat)
	}
	return strings.Join(parts, ",")
}

func (d *dokumentFlag) Set(value string) error {
	// The path may itself contain colons, so split from the right.
	i := strings.LastIndex(value, ":")
	if i < 0 {
		return fmt.Errorf("expected path:FILTYPE:VARIANT, got %q", value)
	}
	j := strings.LastIndex(value[:i], ":")
	if j <= 0 {
		return fmt.Errorf("expected path:FILTYPE:VARIANT, got %q", value)
	}

	arg := dokumentArg{
		path:          value[:j],
		filtype:       strings.ToUpper(value[j+1 : i]),
		variantFormat: strings.ToUpper(value[i+1:]),
	}
	if arg.filtype == "" || arg.variantFormat == "" {
		return fmt.Errorf("expected path:FILTYPE:VARIANT, got %q", value)
	}

	*d = append(*d, arg)
	return nil
}

// varianter reads every document file into a variant.
func (d dokumentFlag) varianter(fs afero.Fs) ([]dokarkiv.DokumentVariant, error) {
	out := make([]dokarkiv.DokumentVariant, 0, len(d))
	for _, s := range d {
		raw, err := afero.ReadFile(fs, s.path)
		if err != nil {
			return nil, fmt.Errorf("error reading document: %w", err)
		}
		out = append(out, dokarkiv.NewDokumentVariant(s.filtype, s.variantFormat, filepath.Base(s.path), raw))
	}
	return out, nil
}
