package dokarkiv

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"
	httptrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/net/http"

	"github.com/navikt/helsearbeidsgiver-dokarkiv/pkg/httpretry"
)

// Config contains configuration for the Dokarkiv client.
type Config struct {
	// BaseURL is the journalpost API root, without a trailing /journalpost.
	// Example: "https://dokarkiv.intern.nav.no/rest/journalpostapi/v1"
	BaseURL string

	// Tokens supplies a bearer token before every request.
	Tokens TokenSupplier

	// Enhet is the owning unit used when finalizing.
	// Default: AutomatiskJournalfoeringEnhet
	Enhet string

	// MaxRetries for timed out attempts and 5xx responses. A negative value
	// disables retries.
	// Default: 3
	MaxRetries int

	// AttemptTimeout bounds each attempt. Dokarkiv calls usually sit inside
	// another request, so keep this short.
	// Default: 1 second
	AttemptTimeout time.Duration

	// TLSVerify controls TLS certificate verification.
	// Set to false only for development/testing with self-signed certs
	TLSVerify *bool

	// TraceServiceName enables Datadog tracing of outgoing requests when set.
	TraceServiceName string

	// HTTPClient overrides the client built from the settings above. Retries
	// are then the caller's responsibility.
	HTTPClient *http.Client

	// Logger (optional).
	Logger hclog.Logger
}

var enhetPattern = regexp.MustCompile(`^\d{4}$`)

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	tlsVerify := true
	return &Config{
		Enhet:          AutomatiskJournalfoeringEnhet,
		MaxRetries:     3,
		AttemptTimeout: 1 * time.Second,
		TLSVerify:      &tlsVerify,
	}
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Enhet == "" {
		c.Enhet = defaults.Enhet
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = defaults.MaxRetries
	}
	if c.AttemptTimeout == 0 {
		c.AttemptTimeout = defaults.AttemptTimeout
	}
	if c.TLSVerify == nil {
		c.TLSVerify = defaults.TLSVerify
	}
	if c.Logger == nil {
		c.Logger = hclog.NewNullLogger()
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Tokens == nil {
		return fmt.Errorf("token supplier is required")
	}

	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required, validation.By(validateBaseURL)),
		validation.Field(&c.Enhet, validation.Required, validation.Match(enhetPattern)),
		validation.Field(&c.MaxRetries, validation.Max(10)),
		validation.Field(&c.AttemptTimeout, validation.Min(time.Duration(0))),
	)
}

func validateBaseURL(value interface{}) error {
	s, _ := value.(string)
	parsed, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("must use http or https scheme, got: %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("must include a host")
	}
	return nil
}

// NewHTTPClient creates a client that retries timeouts and 5xx responses.
// It sets no overall timeout; callers bound the whole call with a context.
func (c *Config) NewHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: c.AttemptTimeout,
	}

	// Configure TLS verification
	if c.TLSVerify != nil && !*c.TLSVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	var base http.RoundTripper = transport
	if c.TraceServiceName != "" {
		base = httptrace.WrapRoundTripper(base, httptrace.RTWithServiceName(c.TraceServiceName))
	}

	return &http.Client{
		Transport: httpretry.New(httpretry.Config{
			MaxRetries:     c.MaxRetries,
			AttemptTimeout: c.AttemptTimeout,
			Base:           base,
			Logger:         c.Logger,
		}),
	}
}
