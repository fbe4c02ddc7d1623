package dokarkiv

import (
	"encoding/base64"
	"fmt"
	"time"
)

// AutomatiskJournalfoeringEnhet is the owning unit used when a journalpost is
// filed without a human involved.
const AutomatiskJournalfoeringEnhet = "9999"

// IDType tells what kind of identifier an identity reference carries.
type IDType string

const (
	IDTypeFnr    IDType = "FNR"
	IDTypeOrgnr  IDType = "ORGNR"
	IDTypeHprnr  IDType = "HPRNR"
	IDTypeUtlOrg IDType = "UTL_ORG"
)

// Bruker is the person or entity the journalpost concerns.
type Bruker struct {
	ID     string `json:"id"`
	IDType IDType `json:"idType"`
}

// AvsenderMottaker is the sender (inbound) or receiver (outbound) of the
// documents. Navn is required for finalizing when the party is an
// organisation.
type AvsenderMottaker struct {
	ID     string  `json:"id"`
	IDType IDType  `json:"idType"`
	Navn   *string `json:"navn"`
	Land   *string `json:"land,omitempty"`
}

// GjelderPerson is the national id of the person a journalpost concerns.
type GjelderPerson string

func (p GjelderPerson) tilBruker() Bruker {
	return Bruker{
		ID:     string(p),
		IDType: IDTypeFnr,
	}
}

// Avsender is either an AvsenderPerson or an AvsenderOrganisasjon.
type Avsender interface {
	tilAvsenderMottaker() AvsenderMottaker
}

// AvsenderPerson is a private person sending documents.
type AvsenderPerson struct {
	Fnr string
}

// AvsenderOrganisasjon is an organisation sending documents.
type AvsenderOrganisasjon struct {
	Orgnr string
	Navn  string
}

func (a AvsenderPerson) tilAvsenderMottaker() AvsenderMottaker {
	return AvsenderMottaker{
		ID:     a.Fnr,
		IDType: IDTypeFnr,
	}
}

func (a AvsenderOrganisasjon) tilAvsenderMottaker() AvsenderMottaker {
	navn := a.Navn
	return AvsenderMottaker{
		ID:     a.Orgnr,
		IDType: IDTypeOrgnr,
		Navn:   &navn,
	}
}

// Dokument is one logical document in a journalpost.
type Dokument struct {
	// Tittel is visible to the user on nav.no and in case handling systems,
	// e.g. "Inntektsmelding".
	Tittel string `json:"tittel"`

	// Brevkode classifies the content, e.g. a form id like "NAV 14-05.09".
	Brevkode string `json:"brevkode"`

	// DokumentVarianter are renditions of the same document, for example an
	// XML and a PDF variant. Order is kept on the wire.
	DokumentVarianter []DokumentVariant `json:"dokumentVarianter"`
}

// DokumentVariant holds one base64 encoded rendition of a document.
type DokumentVariant struct {
	Filtype        string  `json:"filtype"`
	FysiskDokument string  `json:"fysiskDokument"`
	VariantFormat  string  `json:"variantFormat"`
	Filnavn        *string `json:"filnavn"`
}

// NewDokumentVariant base64 encodes raw and returns the variant. An empty
// filnavn is sent as null.
func NewDokumentVariant(filtype, variantFormat, filnavn string, raw []byte) DokumentVariant {
	v := DokumentVariant{
		Filtype:        filtype,
		FysiskDokument: base64.StdEncoding.EncodeToString(raw),
		VariantFormat:  variantFormat,
	}
	if filnavn != "" {
		v.Filnavn = &filnavn
	}
	return v
}

// Sakstype is the kind of case a journalpost is linked to.
type Sakstype string

const (
	// SakstypeGenerellSak is used for documents that belong to no specific
	// case. It can be seen as the user's folder for a given topic.
	SakstypeGenerellSak Sakstype = "GENERELL_SAK"

	// SakstypeFagsak links documents to a case in a case handling system.
	// Both fagsaksystem and fagsakId must be set.
	SakstypeFagsak Sakstype = "FAGSAK"
)

// Sak is the case link of a journalpost.
type Sak struct {
	Sakstype     Sakstype `json:"sakstype"`
	Fagsaksystem *string  `json:"fagsaksystem"`
	FagsakID     *string  `json:"fagsakId"`
}

// GenerellSak returns the default case link.
func GenerellSak() Sak {
	return Sak{Sakstype: SakstypeGenerellSak}
}

// Fagsak returns a case link to a case in an external system.
func Fagsak(fagsaksystem, fagsakID string) Sak {
	return Sak{
		Sakstype:     SakstypeFagsak,
		Fagsaksystem: &fagsaksystem,
		FagsakID:     &fagsakID,
	}
}

// Journalposttype tells which way the documents travelled.
type Journalposttype string

const (
	// JournalposttypeInngaaende is for documents received from an external
	// party, such as applications or messages from employers.
	JournalposttypeInngaaende Journalposttype = "INNGAAENDE"

	// JournalposttypeUtgaaende is for documents produced and sent out by NAV.
	JournalposttypeUtgaaende Journalposttype = "UTGAAENDE"

	// JournalposttypeNotat is for internal documents not meant to leave NAV.
	JournalposttypeNotat Journalposttype = "NOTAT"
)

// Kanal is the channel an inbound document was received through.
type Kanal string

const (
	KanalNavNo       Kanal = "NAV_NO"
	KanalHRSystemAPI Kanal = "HR_SYSTEM_API"
)

// ParseKanal returns the Kanal named by s.
func ParseKanal(s string) (Kanal, error) {
	switch k := Kanal(s); k {
	case KanalNavNo, KanalHRSystemAPI:
		return k, nil
	default:
		return "", fmt.Errorf("unknown kanal %q", s)
	}
}

const datoLayout = "2006-01-02"

// Dato is a calendar date without time of day, encoded as YYYY-MM-DD.
type Dato struct {
	Year  int
	Month time.Month
	Day   int
}

// DatoOf returns the calendar date of t in t's location.
func DatoOf(t time.Time) Dato {
	y, m, d := t.Date()
	return Dato{Year: y, Month: m, Day: d}
}

// ParseDato parses a YYYY-MM-DD date.
func ParseDato(s string) (Dato, error) {
	t, err := time.Parse(datoLayout, s)
	if err != nil {
		return Dato{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DatoOf(t), nil
}

func (d Dato) String() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(datoLayout)
}

func (d Dato) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Dato) UnmarshalText(b []byte) error {
	parsed, err := ParseDato(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
