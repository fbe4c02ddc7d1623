package dokarkiv

import "encoding/json"

// OpprettOgFerdigstillResponse is returned when a journalpost is created,
// and also embedded in the 409 body when the eksternReferanseId was already
// used.
//
// Older archive versions send the flag as "journalpostferdigstilt". Both
// keys are accepted; "journalpostFerdigstilt" wins when both are present.
type OpprettOgFerdigstillResponse struct {
	JournalpostID          string           `json:"journalpostId"`
	JournalpostFerdigstilt bool             `json:"journalpostFerdigstilt"`
	Melding                *string          `json:"melding,omitempty"`
	Dokumenter             []DokumentInfoID `json:"dokumenter"`
}

func (r *OpprettOgFerdigstillResponse) UnmarshalJSON(b []byte) error {
	type plain OpprettOgFerdigstillResponse
	if err := json.Unmarshal(b, (*plain)(r)); err != nil {
		return err
	}
	ferdigstilt, err := decodeFerdigstilt(b)
	if err != nil {
		return err
	}
	r.JournalpostFerdigstilt = ferdigstilt
	return nil
}

// DokumentInfoID is the id the archive assigned to one document.
type DokumentInfoID struct {
	DokumentInfoID string `json:"dokumentInfoId"`
}

// OpprettJournalpostResponse is returned by the general create operation.
type OpprettJournalpostResponse struct {
	JournalpostID          string `json:"journalpostId"`
	JournalpostFerdigstilt bool   `json:"journalpostFerdigstilt"`

	// JournalStatus is the archive's status for the journalpost, e.g.
	// "MOTTATT" or "JOURNALFOERT".
	JournalStatus string         `json:"journalStatus,omitempty"`
	Melding       *string        `json:"melding,omitempty"`
	Dokumenter    []DokumentInfo `json:"dokumenter"`
}

func (r *OpprettJournalpostResponse) UnmarshalJSON(b []byte) error {
	type plain OpprettJournalpostResponse
	if err := json.Unmarshal(b, (*plain)(r)); err != nil {
		return err
	}
	ferdigstilt, err := decodeFerdigstilt(b)
	if err != nil {
		return err
	}
	r.JournalpostFerdigstilt = ferdigstilt
	return nil
}

// DokumentInfo describes one document of a created journalpost.
type DokumentInfo struct {
	DokumentInfoID string  `json:"dokumentInfoId"`
	Brevkode       *string `json:"brevkode,omitempty"`
	Tittel         *string `json:"tittel,omitempty"`
}

// decodeFerdigstilt reads the finalized flag under both casings. Exact key
// matches take priority over case-insensitive ones, so each key lands in its
// own field regardless of order.
func decodeFerdigstilt(b []byte) (bool, error) {
	var keys struct {
		Canonical *bool `json:"journalpostFerdigstilt"`
		Legacy    *bool `json:"journalpostferdigstilt"`
	}
	if err := json.Unmarshal(b, &keys); err != nil {
		return false, err
	}
	switch {
	case keys.Canonical != nil:
		return *keys.Canonical, nil
	case keys.Legacy != nil:
		return *keys.Legacy, nil
	default:
		return false, nil
	}
}
