package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/spf13/afero"

	"github.com/navikt/helsearbeidsgiver-dokarkiv/pkg/dokarkiv"
	"github.com/navikt/helsearbeidsgiver-dokarkiv/pkg/tokenprovider"
)

const (
	// EnvToken supplies a static bearer token, used instead of the auth block.
	EnvToken = "DOKARKIV_TOKEN"

	// EnvClientSecret supplies auth.client_secret when the file leaves it out.
	EnvClientSecret = "DOKARKIV_CLIENT_SECRET"
)

// Config contains the configuration for the dokarkiv CLI.
type Config struct {
	// LogLevel is the level of logs to output.
	LogLevel string `hcl:"log_level,optional"`

	// Dokarkiv configures the archive API.
	Dokarkiv *Dokarkiv `hcl:"dokarkiv,block"`

	// Auth configures the OAuth2 client credentials flow. Ignored when
	// DOKARKIV_TOKEN is set.
	Auth *tokenprovider.ClientCredentialsConfig `hcl:"auth,block"`
}

// Dokarkiv configures the archive API.
type Dokarkiv struct {
	// BaseURL is the journalpost API root.
	BaseURL string `hcl:"base_url"`

	// Timeout bounds each attempt, as a duration string ("500ms").
	Timeout string `hcl:"timeout,optional"`

	// MaxRetries for timed out attempts and 5xx responses.
	MaxRetries int `hcl:"max_retries,optional"`

	// Enhet is the owning unit used when finalizing.
	Enhet string `hcl:"enhet,optional"`

	// TLSVerify controls TLS certificate verification.
	TLSVerify *bool `hcl:"tls_verify,optional"`

	// TraceServiceName enables request tracing when set.
	TraceServiceName string `hcl:"trace_service_name,optional"`
}

// Load reads and decodes an HCL config file from fs.
func Load(fs afero.Fs, path string) (*Config, error) {
	src, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg := &Config{}
	if err := hclsimple.Decode(path, src, nil, cfg); err != nil {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return cfg, nil
}

// Validate validates the config.
func (c Config) Validate() error {
	if c.Dokarkiv == nil {
		return errors.New("dokarkiv block is required")
	}

	if err := validation.ValidateStruct(&c,
		validation.Field(&c.LogLevel, validation.In("", "trace", "debug", "info", "warn", "error")),
	); err != nil {
		return err
	}

	d := c.Dokarkiv
	return validation.ValidateStruct(d,
		validation.Field(&d.BaseURL, validation.Required),
		validation.Field(&d.Timeout, validation.By(isDuration)),
	)
}

func isDuration(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := time.ParseDuration(s); err != nil {
		return fmt.Errorf("must be a duration such as \"500ms\"")
	}
	return nil
}

// Level returns the hclog level, defaulting to info.
func (c Config) Level() hclog.Level {
	if c.LogLevel == "" {
		return hclog.Info
	}
	return hclog.LevelFromString(c.LogLevel)
}

// ClientConfig builds the dokarkiv client configuration, including the token
// supplier. The environment is read through getenv.
func (c Config) ClientConfig(ctx context.Context, getenv func(string) string, logger hclog.Logger) (*dokarkiv.Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	tokens, err := c.tokens(ctx, getenv)
	if err != nil {
		return nil, err
	}

	cfg := dokarkiv.DefaultConfig()
	cfg.BaseURL = c.Dokarkiv.BaseURL
	cfg.Tokens = tokens
	cfg.Logger = logger
	cfg.TraceServiceName = c.Dokarkiv.TraceServiceName

	if c.Dokarkiv.Enhet != "" {
		cfg.Enhet = c.Dokarkiv.Enhet
	}
	if c.Dokarkiv.MaxRetries != 0 {
		cfg.MaxRetries = c.Dokarkiv.MaxRetries
	}
	if c.Dokarkiv.Timeout != "" {
		// Already validated.
		cfg.AttemptTimeout, _ = time.ParseDuration(c.Dokarkiv.Timeout)
	}
	if c.Dokarkiv.TLSVerify != nil {
		cfg.TLSVerify = c.Dokarkiv.TLSVerify
	}

	return cfg, nil
}

func (c Config) tokens(ctx context.Context, getenv func(string) string) (dokarkiv.TokenSupplier, error) {
	if tok := strings.TrimSpace(getenv(EnvToken)); tok != "" {
		static, err := tokenprovider.NewStatic(tok)
		if err != nil {
			return nil, err
		}
		return static, nil
	}

	if c.Auth == nil {
		return nil, fmt.Errorf("no credentials: set %s or add an auth block", EnvToken)
	}

	auth := *c.Auth
	if auth.ClientSecret == "" {
		auth.ClientSecret = getenv(EnvClientSecret)
	}
	cc, err := tokenprovider.NewClientCredentials(ctx, auth)
	if err != nil {
		return nil, fmt.Errorf("error configuring auth: %w", err)
	}
	return cc, nil
}
