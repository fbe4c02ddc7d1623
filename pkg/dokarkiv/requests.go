package dokarkiv

const temaSykepenger = "SYK"

// OpprettOgFerdigstillInput holds what the caller decides when creating and
// finalizing an inbound journalpost. Tema, journalposttype and owning unit
// are fixed by the client.
type OpprettOgFerdigstillInput struct {
	// Tittel describes the whole submission, e.g. "Inntektsmelding".
	Tittel        string
	GjelderPerson GjelderPerson
	Avsender      Avsender
	DatoMottatt   Dato
	Dokumenter    []Dokument

	// EksternReferanseID uniquely identifies the submission. The archive
	// rejects a second journalpost with the same id with 409 Conflict.
	EksternReferanseID string

	// Kanal defaults to KanalNavNo.
	Kanal Kanal

	// Sak defaults to GenerellSak.
	Sak *Sak
}

type opprettOgFerdigstillRequest struct {
	Tittel               string           `json:"tittel"`
	Bruker               Bruker           `json:"bruker"`
	AvsenderMottaker     AvsenderMottaker `json:"avsenderMottaker"`
	DatoMottatt          Dato             `json:"datoMottatt"`
	Dokumenter           []Dokument       `json:"dokumenter"`
	EksternReferanseID   string           `json:"eksternReferanseId"`
	Kanal                Kanal            `json:"kanal"`
	Tema                 string           `json:"tema"`
	Journalposttype      Journalposttype  `json:"journalposttype"`
	JournalfoerendeEnhet string           `json:"journalfoerendeEnhet"`
	Sak                  Sak              `json:"sak"`
}

// OpprettJournalpostRequest is the general create request. Unlike
// OpprettOgFerdigstillInput nothing is fixed by the client: the caller picks
// tema, journalposttype, channel and owning unit. Empty optional fields are
// left out of the body.
type OpprettJournalpostRequest struct {
	Tema             string            `json:"tema,omitempty"`
	Bruker           *Bruker           `json:"bruker,omitempty"`
	Journalposttype  Journalposttype   `json:"journalposttype"`
	AvsenderMottaker *AvsenderMottaker `json:"avsenderMottaker,omitempty"`
	Tittel           string            `json:"tittel,omitempty"`

	// JournalfoerendeEnhet must be set if the archive is to finalize the
	// journalpost.
	JournalfoerendeEnhet string `json:"journalfoerendeEnhet,omitempty"`

	// Kanal is free text here since outbound channels differ from the
	// inbound ones in Kanal.
	Kanal              string     `json:"kanal,omitempty"`
	EksternReferanseID string     `json:"eksternReferanseId,omitempty"`
	Dokumenter         []Dokument `json:"dokumenter"`
	Sak                *Sak       `json:"sak,omitempty"`
	DatoMottatt        *Dato      `json:"datoMottatt,omitempty"`
	BehandlingsTema    string     `json:"behandlingsTema,omitempty"`
}

type oppdaterRequest struct {
	Bruker           Bruker           `json:"bruker"`
	AvsenderMottaker AvsenderMottaker `json:"avsenderMottaker"`
	Sak              Sak              `json:"sak"`
}

type ferdigstillRequest struct {
	JournalfoerendeEnhet string `json:"journalfoerendeEnhet"`
}

func newOpprettOgFerdigstillRequest(in OpprettOgFerdigstillInput, enhet string) opprettOgFerdigstillRequest {
	kanal := in.Kanal
	if kanal == "" {
		kanal = KanalNavNo
	}

	sak := GenerellSak()
	if in.Sak != nil {
		sak = *in.Sak
	}

	dokumenter := in.Dokumenter
	if dokumenter == nil {
		dokumenter = []Dokument{}
	}

	return opprettOgFerdigstillRequest{
		Tittel:               in.Tittel,
		Bruker:               in.GjelderPerson.tilBruker(),
		AvsenderMottaker:     in.Avsender.tilAvsenderMottaker(),
		DatoMottatt:          in.DatoMottatt,
		Dokumenter:           dokumenter,
		EksternReferanseID:   in.EksternReferanseID,
		Kanal:                kanal,
		Tema:                 temaSykepenger,
		Journalposttype:      JournalposttypeInngaaende,
		JournalfoerendeEnhet: enhet,
		Sak:                  sak,
	}
}

// withDefaults returns a copy that always encodes dokumenter as a list.
func (r OpprettJournalpostRequest) withDefaults() OpprettJournalpostRequest {
	if r.Dokumenter == nil {
		r.Dokumenter = []Dokument{}
	}
	return r
}

func newOppdaterRequest(gjelder GjelderPerson, avsender Avsender) oppdaterRequest {
	return oppdaterRequest{
		Bruker:           gjelder.tilBruker(),
		AvsenderMottaker: avsender.tilAvsenderMottaker(),
		Sak:              GenerellSak(),
	}
}

func newFerdigstillRequest(enhet string) ferdigstillRequest {
	return ferdigstillRequest{JournalfoerendeEnhet: enhet}
}
