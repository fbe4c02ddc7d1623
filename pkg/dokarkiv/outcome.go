package dokarkiv

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/go-hclog"

	"github.com/navikt/helsearbeidsgiver-dokarkiv/pkg/httpretry"
)

// Outcome is the terminal state of one operation.
type Outcome int

const (
	OutcomeSucceeded Outcome = iota + 1
	OutcomeConflictRecovered
	OutcomeClientError
	OutcomeServerError
	OutcomeTransportError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeConflictRecovered:
		return "conflict-recovered"
	case OutcomeClientError:
		return "client-error"
	case OutcomeServerError:
		return "server-error"
	case OutcomeTransportError:
		return "transport-error"
	default:
		return "unknown"
	}
}

// outcomeOf classifies a received status. A 409 maps to
// OutcomeConflictRecovered only where the operation can recover it; whether
// recovery succeeds depends on the body.
func outcomeOf(status int, recoverConflict bool) Outcome {
	switch {
	case status >= 200 && status < 300:
		return OutcomeSucceeded
	case status == http.StatusConflict && recoverConflict:
		return OutcomeConflictRecovered
	case status >= 400 && status < 500:
		return OutcomeClientError
	default:
		// 5xx, and statuses the API never sends.
		return OutcomeServerError
	}
}

// transportKind classifies a failure where no usable response arrived.
func transportKind(err error) error {
	var exhausted *httpretry.ExhaustedError
	if errors.As(err, &exhausted) {
		return ErrServerUnavailable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrServerUnavailable
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrServerUnavailable
	}
	return ErrTransport
}

// callIDs identifies one operation in logs and errors.
type callIDs struct {
	op                 string
	callID             string
	journalpostID      string
	eksternReferanseID string
}

func (ids callIDs) logger(base hclog.Logger) hclog.Logger {
	args := []interface{}{"op", ids.op, "call_id", ids.callID}
	if ids.journalpostID != "" {
		args = append(args, "journalpost_id", ids.journalpostID)
	}
	if ids.eksternReferanseID != "" {
		args = append(args, "ekstern_referanse_id", ids.eksternReferanseID)
	}
	return base.With(args...)
}

// fail logs the failure once and returns it as *Error.
func (ids callIDs) fail(logger hclog.Logger, status int, msg string, err error) error {
	e := &Error{
		Op:                 ids.op,
		StatusCode:         status,
		JournalpostID:      ids.journalpostID,
		CallID:             ids.callID,
		EksternReferanseID: ids.eksternReferanseID,
		Msg:                msg,
		Err:                err,
	}

	outcome := OutcomeTransportError
	switch {
	case errors.Is(err, ErrClientRejected), errors.Is(err, ErrConflictUnrecoverable):
		outcome = OutcomeClientError
	case errors.Is(err, ErrServerUnavailable):
		outcome = OutcomeServerError
	}

	args := []interface{}{"outcome", outcome.String(), "error", err}
	if status != 0 {
		args = append(args, "status", status)
	}
	logger.Error("dokarkiv "+msg, args...)

	return e
}

// statusError turns a non-2xx response into an error. notFound selects the
// dedicated 404 kind used by operations on an existing journalpost.
func (ids callIDs) statusError(logger hclog.Logger, resp *rawResponse, notFound bool) error {
	status := resp.statusCode
	detail := errorMessage(resp.body)

	var kind error
	var msg string
	switch {
	case status == http.StatusNotFound && notFound:
		kind, msg = ErrNotFound, "journalpost finnes ikke"
	case outcomeOf(status, false) == OutcomeClientError:
		kind, msg = ErrClientRejected, http.StatusText(status)
	default:
		kind, msg = ErrServerUnavailable, http.StatusText(status)
	}
	if msg == "" {
		msg = "unexpected status"
	}
	if detail != "" {
		msg += " (" + detail + ")"
	}

	return ids.fail(logger, status, msg, kind)
}

const maxErrorMessageRunes = 200

// errorMessage extracts a short message from an error body. Dokarkiv returns
// Spring style {"message": ...} bodies, but anything is accepted.
func errorMessage(body []byte) string {
	var wire struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &wire) == nil {
		if wire.Message != "" {
			return wire.Message
		}
		if wire.Error != "" {
			return wire.Error
		}
	}

	text := strings.TrimSpace(string(body))
	if utf8.RuneCountInString(text) > maxErrorMessageRunes {
		text = string([]rune(text)[:maxErrorMessageRunes]) + "..."
	}
	return text
}
