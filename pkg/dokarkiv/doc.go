// Package dokarkiv is a typed client for the Dokarkiv journalpost REST API.
//
// # Overview
//
// The client wraps three operations on journalposts, the archive records
// for inbound and outbound documents:
//
//   - OpprettOgFerdigstillJournalpost: POST /journalpost?forsoekFerdigstill=true
//   - OppdaterJournalpost:             PUT  /journalpost/{id}
//   - FerdigstillJournalpost:          PATCH /journalpost/{id}/ferdigstill
//
// Every request carries a bearer token fetched from the TokenSupplier right
// before the call and the caller's correlation id in the Nav-Call-Id header.
// The client never generates correlation ids.
//
// # Fixed fields
//
// Created journalposts always get tema "SYK", journalposttype "INNGAAENDE"
// and the configured owning unit (default "9999", automatic filing). The
// case link defaults to GENERELL_SAK.
//
// # Error Handling
//
// Timeouts and 5xx responses are retried with exponential backoff by the
// HTTP client's transport (see package httpretry). What remains is
// classified as:
//
//   - ErrClientRejected: 4xx, never retried. ErrNotFound is the 404 case on
//     update and finalize.
//   - ErrConflictUnrecoverable: 409 on create whose body lacks the existing
//     journalpost id.
//   - ErrServerUnavailable: 5xx or timeouts after the retry budget.
//   - ErrTransport: other I/O failures.
//
// A 409 on create that names the existing journalpost is not an error: the
// same eksternReferanseId was already archived, and that journalpost is
// returned. Because the transport may have delivered a request more than
// once, this is what keeps retries from producing duplicates.
//
// # Configuration Example
//
//	client, err := dokarkiv.NewClient(dokarkiv.Config{
//	  BaseURL: "https://dokarkiv.intern.nav.no/rest/journalpostapi/v1",
//	  Tokens:  tokenSupplier,
//	  Logger:  logger,
//	})
package dokarkiv
