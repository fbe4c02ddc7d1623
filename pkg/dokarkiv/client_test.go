package dokarkiv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/h2non/gock.v1"

	"github.com/navikt/helsearbeidsgiver-dokarkiv/pkg/httpretry"
)

const testToken = "mock access token"

func testInput() OpprettOgFerdigstillInput {
	return OpprettOgFerdigstillInput{
		Tittel:        "Inntektsmelding",
		GjelderPerson: GjelderPerson("fnr-apekatt"),
		Avsender: AvsenderOrganisasjon{
			Orgnr: "orgnr-isenkram",
			Navn:  "Iskrem og isenkram AS",
		},
		DatoMottatt: Dato{Year: 2024, Month: time.May, Day: 17},
		Dokumenter: []Dokument{
			{
				Tittel:   "Inntektsmelding",
				Brevkode: "4936",
				DokumentVarianter: []DokumentVariant{
					NewDokumentVariant("XML", "ORIGINAL", "im.xml", []byte("<im/>")),
					NewDokumentVariant("PDFA", "ARKIV", "im.pdf", []byte("%PDF")),
				},
			},
		},
		EksternReferanseID: "ref-123",
	}
}

const okResponse = `{
	"journalpostId": "jid-klassisk-pære",
	"journalpostFerdigstilt": true,
	"melding": "Ha en fin dag!",
	"dokumenter": [
		{"dokumentInfoId": "dok-id-den-første"},
		{"dokumentInfoId": "dok-id-den-andre"}
	]
}`

// fastRetries returns an HTTP client retrying quickly, for tests.
func fastRetries(base http.RoundTripper, attemptTimeout time.Duration) *http.Client {
	return &http.Client{
		Transport: httpretry.New(httpretry.Config{
			MaxRetries:          3,
			AttemptTimeout:      attemptTimeout,
			InitialInterval:     time.Millisecond,
			MaxInterval:         5 * time.Millisecond,
			RandomizationFactor: -1,
			Base:                base,
		}),
	}
}

func newTestClient(t *testing.T, baseURL string, opts ...func(*Config)) *Client {
	t.Helper()

	cfg := Config{
		BaseURL: baseURL,
		Tokens: TokenFunc(func(context.Context) (string, error) {
			return testToken, nil
		}),
		HTTPClient: fastRetries(http.DefaultTransport, time.Second),
		Logger:     hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	client, err := NewClient(cfg)
	require.NoError(t, err)
	return client
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
}

func TestClient_OpprettOgFerdigstillJournalpost(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify request
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/journalpost", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("forsoekFerdigstill"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		assert.Equal(t, "call-1", r.Header.Get("Nav-Call-Id"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Inntektsmelding", body["tittel"])
		assert.Equal(t, "SYK", body["tema"])
		assert.Equal(t, "INNGAAENDE", body["journalposttype"])
		assert.Equal(t, "9999", body["journalfoerendeEnhet"])
		assert.Equal(t, "ref-123", body["eksternReferanseId"])
		assert.Equal(t, "2024-05-17", body["datoMottatt"])

		respond(http.StatusOK, okResponse)(w, r)
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	resp, err := client.OpprettOgFerdigstillJournalpost(context.Background(), testInput(), "call-1")
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, "jid-klassisk-pære", resp.JournalpostID)
	assert.True(t, resp.JournalpostFerdigstilt)
	require.NotNil(t, resp.Melding)
	assert.Equal(t, "Ha en fin dag!", *resp.Melding)
	assert.Equal(t, []DokumentInfoID{
		{DokumentInfoID: "dok-id-den-første"},
		{DokumentInfoID: "dok-id-den-andre"},
	}, resp.Dokumenter)
}

func TestClient_OpprettOgFerdigstillJournalpost_NotFinalized(t *testing.T) {
	mockServer := httptest.NewServer(respond(http.StatusOK, `{
		"journalpostId": "jid-1",
		"journalpostFerdigstilt": false,
		"melding": "mangler avsendernavn",
		"dokumenter": []
	}`))
	defer mockServer.Close()

	var logs bytes.Buffer
	client := newTestClient(t, mockServer.URL, func(cfg *Config) {
		cfg.Logger = hclog.New(&hclog.LoggerOptions{
			Name:   "test",
			Level:  hclog.Info,
			Output: &logs,
		})
	})

	resp, err := client.OpprettOgFerdigstillJournalpost(context.Background(), testInput(), "call-1")
	require.NoError(t, err)
	assert.Equal(t, "jid-1", resp.JournalpostID)
	assert.False(t, resp.JournalpostFerdigstilt)

	assert.Contains(t, logs.String(), "[WARN]")
	assert.Contains(t, logs.String(), "journalpost created but not finalized")
	assert.Contains(t, logs.String(), "journalpost_id=jid-1")
}

func TestClient_OpprettOgFerdigstillJournalpost_LegacyCasing(t *testing.T) {
	mockServer := httptest.NewServer(respond(http.StatusCreated, `{
		"journalpostId": "jid-legacy",
		"journalpostferdigstilt": true,
		"journalStatus": "JOURNALFOERT",
		"dokumenter": []
	}`))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	resp, err := client.OpprettOgFerdigstillJournalpost(context.Background(), testInput(), "call-1")
	require.NoError(t, err)
	assert.Equal(t, "jid-legacy", resp.JournalpostID)
	assert.True(t, resp.JournalpostFerdigstilt)
}

func TestClient_OpprettOgFerdigstillJournalpost_Conflict(t *testing.T) {
	t.Run("existing journalpost is returned", func(t *testing.T) {
		mockServer := httptest.NewServer(respond(http.StatusConflict, okResponse))
		defer mockServer.Close()

		client := newTestClient(t, mockServer.URL)

		resp, err := client.OpprettOgFerdigstillJournalpost(context.Background(), testInput(), "call-1")
		require.NoError(t, err)
		assert.Equal(t, "jid-klassisk-pære", resp.JournalpostID)
		assert.Len(t, resp.Dokumenter, 2)
	})

	t.Run("duplicate submissions converge on one journalpost", func(t *testing.T) {
		var calls int32
		mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				respond(http.StatusOK, okResponse)(w, r)
				return
			}
			respond(http.StatusConflict, okResponse)(w, r)
		}))
		defer mockServer.Close()

		client := newTestClient(t, mockServer.URL)

		first, err := client.OpprettOgFerdigstillJournalpost(context.Background(), testInput(), "call-1")
		require.NoError(t, err)
		second, err := client.OpprettOgFerdigstillJournalpost(context.Background(), testInput(), "call-2")
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	unrecoverable := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "missing journalpost id", body: `{"journalpostFerdigstilt": true, "dokumenter": []}`},
		{name: "empty journalpost id", body: `{"journalpostId": "", "dokumenter": []}`},
		{name: "not json", body: `Conflict`},
	}

	for _, tt := range unrecoverable {
		t.Run(tt.name, func(t *testing.T) {
			mockServer := httptest.NewServer(respond(http.StatusConflict, tt.body))
			defer mockServer.Close()

			client := newTestClient(t, mockServer.URL)

			resp, err := client.OpprettOgFerdigstillJournalpost(context.Background(), testInput(), "call-1")
			require.Error(t, err)
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, ErrConflictUnrecoverable)
			assert.NotErrorIs(t, err, ErrClientRejected)
			assert.Equal(t, http.StatusConflict, StatusCode(err))
			assert.False(t, IsRetryable(err))
		})
	}
}

func TestClient_OpprettOgFerdigstillJournalpost_MalformedSuccess(t *testing.T) {
	mockServer := httptest.NewServer(respond(http.StatusOK, `{"journalpostId": 42}`))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	_, err := client.OpprettOgFerdigstillJournalpost(context.Background(), testInput(), "call-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestClient_ClientRejected(t *testing.T) {
	mockServer := httptest.NewServer(respond(http.StatusBadRequest, `{"message": "ugyldig input"}`))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)
	ctx := context.Background()

	operations := map[string]func() error{
		"opprett": func() error {
			_, err := client.OpprettOgFerdigstillJournalpost(ctx, testInput(), "call-1")
			return err
		},
		"oppdater": func() error {
			return client.OppdaterJournalpost(ctx, "111", GjelderPerson("fnr"), AvsenderPerson{Fnr: "fnr"}, "call-1")
		},
		"ferdigstill": func() error {
			return client.FerdigstillJournalpost(ctx, "111", "call-1")
		},
	}

	for name, op := range operations {
		t.Run(name, func(t *testing.T) {
			err := op()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrClientRejected)
			assert.NotErrorIs(t, err, ErrNotFound)
			assert.Equal(t, http.StatusBadRequest, StatusCode(err))
			assert.Contains(t, err.Error(), "ugyldig input")
			assert.False(t, IsRetryable(err))

			var e *Error
			require.True(t, errors.As(err, &e))
			assert.Equal(t, "call-1", e.CallID)
		})
	}
}

func TestClient_MissingAvsender(t *testing.T) {
	var calls int32
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		respond(http.StatusCreated, okResponse)(w, r)
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)
	ctx := context.Background()

	operations := map[string]struct {
		op   string
		call func() error
	}{
		"opprett": {
			op: "OpprettOgFerdigstillJournalpost",
			call: func() error {
				in := testInput()
				in.Avsender = nil
				_, err := client.OpprettOgFerdigstillJournalpost(ctx, in, "call-1")
				return err
			},
		},
		"oppdater": {
			op: "OppdaterJournalpost",
			call: func() error {
				return client.OppdaterJournalpost(ctx, "111", GjelderPerson("fnr"), nil, "call-1")
			},
		},
	}

	for name, tc := range operations {
		t.Run(name, func(t *testing.T) {
			err := tc.call()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrClientRejected)
			assert.False(t, IsRetryable(err))
			assert.Contains(t, err.Error(), "avsender is required")

			var e *Error
			require.True(t, errors.As(err, &e))
			assert.Equal(t, tc.op, e.Op)
			assert.Equal(t, 0, e.StatusCode)
		})
	}

	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestClient_ClientErrorsAreNotRetried(t *testing.T) {
	var calls int32
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		respond(http.StatusForbidden, "")(w, r)
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	err := client.FerdigstillJournalpost(context.Background(), "111", "call-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrClientRejected)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_NotFound(t *testing.T) {
	mockServer := httptest.NewServer(respond(http.StatusNotFound, ""))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)
	ctx := context.Background()

	err := client.OppdaterJournalpost(ctx, "111", GjelderPerson("fnr"), AvsenderPerson{Fnr: "fnr"}, "call-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, ErrClientRejected)

	err = client.FerdigstillJournalpost(ctx, "111", "call-1")
	assert.ErrorIs(t, err, ErrNotFound)

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "111", e.JournalpostID)
	assert.Equal(t, http.StatusNotFound, e.StatusCode)
}

func TestClient_ServerUnavailableAfterRetries(t *testing.T) {
	var calls int32
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		respond(http.StatusInternalServerError, "")(w, r)
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	_, err := client.OpprettOgFerdigstillJournalpost(context.Background(), testInput(), "call-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServerUnavailable)
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	assert.True(t, IsRetryable(err))

	// First attempt plus three retries.
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestClient_SucceedsWithinRetryBudget(t *testing.T) {
	defer gock.Off()

	const baseURL = "http://dokarkiv.test"

	gock.New(baseURL).
		Post("/journalpost").
		MatchParam("forsoekFerdigstill", "true").
		Times(3).
		Reply(http.StatusInternalServerError)
	gock.New(baseURL).
		Post("/journalpost").
		MatchParam("forsoekFerdigstill", "true").
		MatchHeader("Nav-Call-Id", "call-1").
		Reply(http.StatusOK).
		BodyString(okResponse)

	client := newTestClient(t, baseURL, func(cfg *Config) {
		cfg.HTTPClient = fastRetries(gock.NewTransport(), time.Second)
	})

	resp, err := client.OpprettOgFerdigstillJournalpost(context.Background(), testInput(), "call-1")
	require.NoError(t, err)
	assert.Equal(t, "jid-klassisk-pære", resp.JournalpostID)
	assert.True(t, gock.IsDone())
}

func TestClient_TimeoutsAreRetried(t *testing.T) {
	var calls int32
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		select {
		case <-r.Context().Done():
		case <-time.After(500 * time.Millisecond):
		}
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL, func(cfg *Config) {
		cfg.HTTPClient = fastRetries(http.DefaultTransport, 20*time.Millisecond)
	})

	err := client.FerdigstillJournalpost(context.Background(), "111", "call-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServerUnavailable)
	assert.Equal(t, 0, StatusCode(err))
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestClient_ConnectionRefused(t *testing.T) {
	mockServer := httptest.NewServer(respond(http.StatusOK, ""))
	baseURL := mockServer.URL
	mockServer.Close()

	client := newTestClient(t, baseURL)

	err := client.FerdigstillJournalpost(context.Background(), "111", "call-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.True(t, IsRetryable(err))
}

func TestClient_TokenPerCall(t *testing.T) {
	var fetched int32
	var calls int32
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		// Fail the first attempt so the transport retries once.
		if n == 1 {
			respond(http.StatusBadGateway, "")(w, r)
			return
		}
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		respond(http.StatusOK, "")(w, r)
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL, func(cfg *Config) {
		cfg.Tokens = TokenFunc(func(context.Context) (string, error) {
			n := atomic.AddInt32(&fetched, 1)
			return "token-" + string(rune('0'+n)), nil
		})
	})

	require.NoError(t, client.FerdigstillJournalpost(context.Background(), "111", "call-1"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetched))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_TokenFailure(t *testing.T) {
	var calls int32
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer mockServer.Close()

	tokenErr := errors.New("token endpoint down")
	client := newTestClient(t, mockServer.URL, func(cfg *Config) {
		cfg.Tokens = TokenFunc(func(context.Context) (string, error) {
			return "", tokenErr
		})
	})

	err := client.FerdigstillJournalpost(context.Background(), "111", "call-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, tokenErr)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestClient_OpprettJournalpost(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/journalpost", r.URL.Path)
		assert.Equal(t, "false", r.URL.Query().Get("forsoekFerdigstill"))
		assert.Equal(t, "call-4", r.Header.Get("Nav-Call-Id"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"tema": "SYK",
			"bruker": {"id": "00000000000", "idType": "FNR"},
			"journalposttype": "UTGAAENDE",
			"avsenderMottaker": {"id": "000000000", "idType": "ORGNR", "navn": "Arbeidsgiver"},
			"kanal": "NAV_NO",
			"eksternReferanseId": "#",
			"behandlingsTema": "ab0061",
			"dokumenter": []
		}`, string(body))

		respond(http.StatusCreated, `{
			"journalpostId": "123",
			"journalpostFerdigstilt": false,
			"journalStatus": "MOTTATT",
			"melding": "",
			"dokumenter": []
		}`)(w, r)
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	navn := "Arbeidsgiver"
	resp, err := client.OpprettJournalpost(context.Background(), OpprettJournalpostRequest{
		Tema:               "SYK",
		Bruker:             &Bruker{ID: "00000000000", IDType: IDTypeFnr},
		Journalposttype:    JournalposttypeUtgaaende,
		AvsenderMottaker:   &AvsenderMottaker{ID: "000000000", IDType: IDTypeOrgnr, Navn: &navn},
		Kanal:              "NAV_NO",
		EksternReferanseID: "#",
		BehandlingsTema:    "ab0061",
	}, false, "call-4")
	require.NoError(t, err)

	assert.Equal(t, "123", resp.JournalpostID)
	assert.False(t, resp.JournalpostFerdigstilt)
	assert.Equal(t, "MOTTATT", resp.JournalStatus)
	assert.Empty(t, resp.Dokumenter)
}

func TestClient_OpprettJournalpost_ForsoekFerdigstill(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("forsoekFerdigstill"))
		respond(http.StatusOK, okResponse)(w, r)
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	resp, err := client.OpprettJournalpost(context.Background(), OpprettJournalpostRequest{
		Journalposttype:      JournalposttypeInngaaende,
		JournalfoerendeEnhet: "9999",
	}, true, "call-5")
	require.NoError(t, err)
	assert.Equal(t, "jid-klassisk-pære", resp.JournalpostID)
	assert.True(t, resp.JournalpostFerdigstilt)
	require.Len(t, resp.Dokumenter, 2)
	assert.Equal(t, "dok-id-den-andre", resp.Dokumenter[1].DokumentInfoID)
}

func TestClient_OpprettJournalpost_Errors(t *testing.T) {
	t.Run("missing journalposttype", func(t *testing.T) {
		client := newTestClient(t, "http://dokarkiv.invalid")

		_, err := client.OpprettJournalpost(context.Background(), OpprettJournalpostRequest{}, false, "call-1")
		assert.ErrorIs(t, err, ErrClientRejected)
	})

	t.Run("conflict without ekstern referanse id", func(t *testing.T) {
		mockServer := httptest.NewServer(respond(http.StatusConflict, okResponse))
		defer mockServer.Close()

		client := newTestClient(t, mockServer.URL)

		_, err := client.OpprettJournalpost(context.Background(), OpprettJournalpostRequest{
			Journalposttype: JournalposttypeNotat,
		}, false, "call-1")
		assert.ErrorIs(t, err, ErrClientRejected)
		assert.Equal(t, http.StatusConflict, StatusCode(err))
	})

	t.Run("conflict with ekstern referanse id", func(t *testing.T) {
		mockServer := httptest.NewServer(respond(http.StatusConflict, okResponse))
		defer mockServer.Close()

		client := newTestClient(t, mockServer.URL)

		resp, err := client.OpprettJournalpost(context.Background(), OpprettJournalpostRequest{
			Journalposttype:    JournalposttypeInngaaende,
			EksternReferanseID: "ref-1",
		}, false, "call-1")
		require.NoError(t, err)
		assert.Equal(t, "jid-klassisk-pære", resp.JournalpostID)
	})

	t.Run("server error", func(t *testing.T) {
		mockServer := httptest.NewServer(respond(http.StatusInternalServerError, ""))
		defer mockServer.Close()

		client := newTestClient(t, mockServer.URL)

		_, err := client.OpprettJournalpost(context.Background(), OpprettJournalpostRequest{
			Journalposttype: JournalposttypeNotat,
		}, false, "call-1")
		assert.ErrorIs(t, err, ErrServerUnavailable)
		assert.True(t, IsRetryable(err))

		var e *Error
		require.True(t, errors.As(err, &e))
		assert.Equal(t, "OpprettJournalpost", e.Op)
	})
}

func TestClient_OppdaterJournalpost(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/journalpost/jp%2F1", r.URL.EscapedPath())
		assert.Equal(t, "call-2", r.Header.Get("Nav-Call-Id"))
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))

		var body oppdaterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, Bruker{ID: "fnr-1", IDType: IDTypeFnr}, body.Bruker)
		assert.Equal(t, "orgnr-1", body.AvsenderMottaker.ID)
		assert.Equal(t, IDTypeOrgnr, body.AvsenderMottaker.IDType)
		assert.Equal(t, SakstypeGenerellSak, body.Sak.Sakstype)

		respond(http.StatusOK, "")(w, r)
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	err := client.OppdaterJournalpost(context.Background(), "jp/1",
		GjelderPerson("fnr-1"),
		AvsenderOrganisasjon{Orgnr: "orgnr-1", Navn: "Bedrift AS"},
		"call-2",
	)
	require.NoError(t, err)
}

func TestClient_FerdigstillJournalpost(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/journalpost/111/ferdigstill", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"journalfoerendeEnhet": "4488"}`, string(body))

		respond(http.StatusOK, "")(w, r)
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL+"/api/", func(cfg *Config) {
		cfg.Enhet = "4488"
	})

	require.NoError(t, client.FerdigstillJournalpost(context.Background(), "111", "call-3"))
}

func TestClient_Cancellation(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := client.FerdigstillJournalpost(ctx, "111", "call-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestClient_ConcurrentUse(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body opprettOgFerdigstillRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		respond(http.StatusOK, `{"journalpostId": "jid-`+body.EksternReferanseID+`", "journalpostFerdigstilt": true, "dokumenter": []}`)(w, r)
	}))
	defer mockServer.Close()

	client := newTestClient(t, mockServer.URL)

	var wg sync.WaitGroup
	refs := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	results := make([]string, len(refs))
	for i, ref := range refs {
		wg.Add(1)
		go func(i int, ref string) {
			defer wg.Done()
			in := testInput()
			in.EksternReferanseID = ref
			resp, err := client.OpprettOgFerdigstillJournalpost(context.Background(), in, "call-"+ref)
			if assert.NoError(t, err) {
				results[i] = resp.JournalpostID
			}
		}(i, ref)
	}
	wg.Wait()

	for i, ref := range refs {
		assert.Equal(t, "jid-"+ref, results[i])
	}
}

func TestNewClient_InvalidConfig(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "ftp://dokarkiv"})
	require.Error(t, err)

	_, err = NewClient(Config{
		BaseURL: "ftp://dokarkiv",
		Tokens:  TokenFunc(func(context.Context) (string, error) { return "", nil }),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid dokarkiv client config")
}
