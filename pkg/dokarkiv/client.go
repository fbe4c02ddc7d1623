package dokarkiv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// HeaderCallID carries the caller's correlation id.
const HeaderCallID = "Nav-Call-Id"

const (
	opOpprett              = "OpprettJournalpost"
	opOpprettOgFerdigstill = "OpprettOgFerdigstillJournalpost"
	opOppdater             = "OppdaterJournalpost"
	opFerdigstill          = "FerdigstillJournalpost"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 4 << 20

// TokenSupplier returns a bearer token for the next request.
// Implementations must be safe for concurrent use.
type TokenSupplier interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenSupplier.
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// Client creates, updates and finalizes journalposts in Dokarkiv.
//
// A Client holds only immutable configuration and is safe for concurrent use.
type Client struct {
	baseURL    string
	enhet      string
	tokens     TokenSupplier
	httpClient *http.Client
	logger     hclog.Logger
}

// NewClient creates a new Dokarkiv client.
func NewClient(cfg Config) (*Client, error) {
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dokarkiv client config: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = cfg.NewHTTPClient()
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		enhet:      cfg.Enhet,
		tokens:     cfg.Tokens,
		httpClient: httpClient,
		logger:     cfg.Logger.Named("dokarkiv-client"),
	}, nil
}

// OpprettOgFerdigstillJournalpost creates an inbound journalpost and asks
// Dokarkiv to finalize it in the same call.
//
// If the archive already holds a journalpost for in.EksternReferanseID it
// answers 409 with that journalpost, which is returned as a success. Repeated
// calls for the same submission therefore converge on one journalpost.
//
// A response with JournalpostFerdigstilt false is not an error; the
// journalpost exists but must be finalized later.
func (c *Client) OpprettOgFerdigstillJournalpost(ctx context.Context, in OpprettOgFerdigstillInput, callID string) (*OpprettOgFerdigstillResponse, error) {
	ids := callIDs{op: opOpprettOgFerdigstill, callID: callID, eksternReferanseID: in.EksternReferanseID}
	logger := ids.logger(c.logger)

	if in.Avsender == nil {
		return nil, ids.fail(logger, 0, "avsender is required", ErrClientRejected)
	}

	query := url.Values{"forsoekFerdigstill": []string{"true"}}
	resp, err := c.do(ctx, http.MethodPost, "/journalpost", query, newOpprettOgFerdigstillRequest(in, c.enhet), callID)
	if err != nil {
		return nil, ids.fail(logger, 0, "request failed", err)
	}

	switch outcomeOf(resp.statusCode, true) {
	case OutcomeSucceeded:
		result, err := decodeCreated(resp.body, func(r *OpprettOgFerdigstillResponse) string { return r.JournalpostID })
		if err != nil {
			return nil, ids.fail(logger, resp.statusCode, "malformed response", withCause(ErrTransport, err))
		}
		logger = logger.With("journalpost_id", result.JournalpostID)
		if !result.JournalpostFerdigstilt {
			logger.Warn("journalpost created but not finalized", "melding", deref(result.Melding))
		} else {
			logger.Info("journalpost created and finalized")
		}
		return result, nil

	case OutcomeConflictRecovered:
		result, err := decodeCreated(resp.body, func(r *OpprettOgFerdigstillResponse) string { return r.JournalpostID })
		if err != nil {
			return nil, ids.fail(logger, resp.statusCode, "journalpost already exists", withCause(ErrConflictUnrecoverable, err))
		}
		logger.Info("journalpost already exists for ekstern referanse id, reusing it",
			"journalpost_id", result.JournalpostID,
			"journalpost_ferdigstilt", result.JournalpostFerdigstilt,
		)
		return result, nil

	default:
		return nil, ids.statusError(logger, resp, false)
	}
}

// OpprettJournalpost creates a journalpost of any type from a request the
// caller fills in completely. With forsoekFerdigstill the archive also tries
// to finalize it, which requires JournalfoerendeEnhet and complete metadata;
// the response tells whether it succeeded.
//
// A 409 is recovered as in OpprettOgFerdigstillJournalpost when the request
// carries an EksternReferanseID.
func (c *Client) OpprettJournalpost(ctx context.Context, req OpprettJournalpostRequest, forsoekFerdigstill bool, callID string) (*OpprettJournalpostResponse, error) {
	ids := callIDs{op: opOpprett, callID: callID, eksternReferanseID: req.EksternReferanseID}
	logger := ids.logger(c.logger)

	if req.Journalposttype == "" {
		return nil, ids.fail(logger, 0, "journalposttype is required", ErrClientRejected)
	}

	query := url.Values{"forsoekFerdigstill": []string{strconv.FormatBool(forsoekFerdigstill)}}
	resp, err := c.do(ctx, http.MethodPost, "/journalpost", query, req.withDefaults(), callID)
	if err != nil {
		return nil, ids.fail(logger, 0, "request failed", err)
	}

	journalpostID := func(r *OpprettJournalpostResponse) string { return r.JournalpostID }

	switch outcomeOf(resp.statusCode, req.EksternReferanseID != "") {
	case OutcomeSucceeded:
		result, err := decodeCreated(resp.body, journalpostID)
		if err != nil {
			return nil, ids.fail(logger, resp.statusCode, "malformed response", withCause(ErrTransport, err))
		}
		logger = logger.With("journalpost_id", result.JournalpostID, "journal_status", result.JournalStatus)
		if forsoekFerdigstill && !result.JournalpostFerdigstilt {
			logger.Warn("journalpost created but not finalized", "melding", deref(result.Melding))
		} else {
			logger.Info("journalpost created", "journalpost_ferdigstilt", result.JournalpostFerdigstilt)
		}
		return result, nil

	case OutcomeConflictRecovered:
		result, err := decodeCreated(resp.body, journalpostID)
		if err != nil {
			return nil, ids.fail(logger, resp.statusCode, "journalpost already exists", withCause(ErrConflictUnrecoverable, err))
		}
		logger.Info("journalpost already exists for ekstern referanse id, reusing it",
			"journalpost_id", result.JournalpostID,
		)
		return result, nil

	default:
		return nil, ids.statusError(logger, resp, false)
	}
}

// OppdaterJournalpost sets bruker and avsender on an existing journalpost and
// links it to the generic case.
func (c *Client) OppdaterJournalpost(ctx context.Context, journalpostID string, gjelder GjelderPerson, avsender Avsender, callID string) error {
	ids := callIDs{op: opOppdater, callID: callID, journalpostID: journalpostID}
	logger := ids.logger(c.logger)

	if avsender == nil {
		return ids.fail(logger, 0, "avsender is required", ErrClientRejected)
	}

	path := "/journalpost/" + url.PathEscape(journalpostID)
	resp, err := c.do(ctx, http.MethodPut, path, nil, newOppdaterRequest(gjelder, avsender), callID)
	if err != nil {
		return ids.fail(logger, 0, "request failed", err)
	}

	if outcomeOf(resp.statusCode, false) != OutcomeSucceeded {
		return ids.statusError(logger, resp, true)
	}

	logger.Info("journalpost updated")
	return nil
}

// FerdigstillJournalpost switches a journalpost from provisional to final
// status, filed by the configured owning unit. Dokarkiv answers 400 if the
// journalpost lacks metadata required for finalizing.
func (c *Client) FerdigstillJournalpost(ctx context.Context, journalpostID, callID string) error {
	ids := callIDs{op: opFerdigstill, callID: callID, journalpostID: journalpostID}
	logger := ids.logger(c.logger)

	path := "/journalpost/" + url.PathEscape(journalpostID) + "/ferdigstill"
	resp, err := c.do(ctx, http.MethodPatch, path, nil, newFerdigstillRequest(c.enhet), callID)
	if err != nil {
		return ids.fail(logger, 0, "request failed", err)
	}

	if outcomeOf(resp.statusCode, false) != OutcomeSucceeded {
		return ids.statusError(logger, resp, true)
	}

	logger.Info("journalpost finalized")
	return nil
}

type rawResponse struct {
	statusCode int
	body       []byte
}

// do sends one logical request. Retries happen below, in the HTTP client's
// transport. Errors are already tagged with their kind.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, callID string) (*rawResponse, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, withCause(ErrTransport, fmt.Errorf("failed to marshal request body: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, withCause(ErrTransport, fmt.Errorf("failed to create request: %w", err))
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, withCause(ErrTransport, fmt.Errorf("failed to obtain access token: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(HeaderCallID, callID)

	c.logger.Trace("sending request", "method", method, "path", path, "call_id", callID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, withCause(transportKind(err), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, withCause(transportKind(err), fmt.Errorf("failed to read response: %w", err))
	}

	return &rawResponse{statusCode: resp.StatusCode, body: respBody}, nil
}

// decodeCreated decodes a create response and requires a journalpost id.
func decodeCreated[T any](body []byte, journalpostID func(*T) string) (*T, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("empty response body")
	}

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if journalpostID(&result) == "" {
		return nil, fmt.Errorf("response has no journalpostId")
	}

	return &result, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
