package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the canonical calendar-date layout used everywhere in the
// service. Provider date fields are normalized to it before leaving the core.
const DateFormat = "2006-01-02"

// TransactionAmount is the provider's money representation: a decimal string
// plus an ISO currency code. The string form is preserved on the wire;
// arithmetic always goes through Decimal.
type TransactionAmount struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// Decimal parses the amount string into an exact decimal value.
func (a TransactionAmount) Decimal() (decimal.Decimal, error) {
	s := strings.TrimSpace(a.Amount)
	if s == "" {
		return decimal.Zero, fmt.Errorf("transaction amount is empty")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", a.Amount, err)
	}

	return d, nil
}

// RawTransaction is a single provider-supplied transaction record. Apart from
// the amount, every field is optional: institutions populate different
// subsets, and the free-text remittance fields carry whatever the paying bank
// decided to write into them.
type RawTransaction struct {
	TransactionID  string `json:"transactionId,omitempty"`
	EntryReference string `json:"entryReference,omitempty"`

	TransactionAmount TransactionAmount `json:"transactionAmount"`

	BookingDate     string `json:"bookingDate,omitempty"`
	BookingDateTime string `json:"bookingDateTime,omitempty"`
	ValueDate       string `json:"valueDate,omitempty"`
	ValueDateTime   string `json:"valueDateTime,omitempty"`

	RemittanceInformationUnstructured      string   `json:"remittanceInformationUnstructured,omitempty"`
	RemittanceInformationUnstructuredArray []string `json:"remittanceInformationUnstructuredArray,omitempty"`
	RemittanceInformationStructured        string   `json:"remittanceInformationStructured,omitempty"`

	DebtorName            string `json:"debtorName,omitempty"`
	CreditorName          string `json:"creditorName,omitempty"`
	AdditionalInformation string `json:"additionalInformation,omitempty"`
}

// Remittance returns the free-text payment description, preferring the
// unstructured field, then the unstructured array joined with spaces, then
// the structured field. Empty when the institution supplied none of them.
func (t RawTransaction) Remittance() string {
	if t.RemittanceInformationUnstructured != "" {
		return t.RemittanceInformationUnstructured
	}
	if len(t.RemittanceInformationUnstructuredArray) > 0 {
		return strings.Join(t.RemittanceInformationUnstructuredArray, " ")
	}
	return t.RemittanceInformationStructured
}

// SettlementDate derives the canonical transaction date from whichever source
// date field is present, in fixed precedence order: bookingDate,
// bookingDateTime, valueDate, valueDateTime. The result is normalized to
// YYYY-MM-DD; it is empty only when every date field is absent or
// unparseable.
func (t RawTransaction) SettlementDate() string {
	for _, raw := range []string{t.BookingDate, t.BookingDateTime, t.ValueDate, t.ValueDateTime} {
		if raw == "" {
			continue
		}
		if date, ok := NormalizeDate(raw); ok {
			return date
		}
	}
	return ""
}

// dateLayouts covers the date and datetime shapes observed across provider
// institutions.
var dateLayouts = []string{
	DateFormat,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// NormalizeDate parses a provider date or datetime string and reduces it to
// the canonical YYYY-MM-DD form.
func NormalizeDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.Format(DateFormat), true
		}
	}

	return "", false
}

// NormalizedTransaction is the canonical record every normalizer produces:
// the raw transaction preserved unchanged, plus a payee name (possibly empty)
// and a canonical date. Derived once, never mutated.
type NormalizedTransaction struct {
	RawTransaction

	PayeeName string `json:"payeeName"`
	Date      string `json:"date"`
}

// Amount parses the transaction amount into an exact decimal value.
func (t NormalizedTransaction) Amount() (decimal.Decimal, error) {
	return t.TransactionAmount.Decimal()
}

// Account is the provider's account metadata. The IBAN is sensitive and must
// be hashed before it leaves the service.
type Account struct {
	ID            string `json:"id"`
	IBAN          string `json:"iban,omitempty"`
	InstitutionID string `json:"institution_id"`
	Status        string `json:"status,omitempty"`
	OwnerName     string `json:"owner_name,omitempty"`
}

// RequisitionStatus is the provider-defined linkage state of a requisition.
type RequisitionStatus string

// Requisition statuses as reported by the provider.
const (
	RequisitionCreated   RequisitionStatus = "CR"
	RequisitionLinked    RequisitionStatus = "LN"
	RequisitionExpired   RequisitionStatus = "EX"
	RequisitionRejected  RequisitionStatus = "RJ"
	RequisitionSuspended RequisitionStatus = "SU"
)

// IsLinked reports whether accounts under this requisition are usable for
// transaction retrieval.
func (s RequisitionStatus) IsLinked() bool {
	return s == RequisitionLinked
}

// Requisition is a provider-side authorization linking bank accounts to this
// service. Its lifecycle is driven entirely by the provider.
type Requisition struct {
	ID            string            `json:"id"`
	Status        RequisitionStatus `json:"status"`
	InstitutionID string            `json:"institution_id,omitempty"`
	Reference     string            `json:"reference,omitempty"`
	Link          string            `json:"link,omitempty"`
	Accounts      []string          `json:"accounts"`
}

// BalanceSnapshot is one balance figure reported by the provider for an
// account. An account usually carries several, distinguished by type
// (closingBooked, expected, interimAvailable, ...).
type BalanceSnapshot struct {
	BalanceAmount TransactionAmount `json:"balanceAmount"`
	BalanceType   string            `json:"balanceType"`
	ReferenceDate string            `json:"referenceDate,omitempty"`
}

// Institution is a bank listed by the provider for a given country.
type Institution struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TransactionBuckets groups normalized transactions the way the provider
// reports them: settled records and records still in flight.
type TransactionBuckets struct {
	Booked  []NormalizedTransaction `json:"booked"`
	Pending []NormalizedTransaction `json:"pending"`
	All     []NormalizedTransaction `json:"all"`
}

// ReconciledWindow is the reconciler's output for one account and date
// window. StartingBalance is nil when no usable balance snapshot was
// available; it is never fabricated.
type ReconciledWindow struct {
	InstitutionID   string             `json:"institutionId"`
	StartingBalance *decimal.Decimal   `json:"startingBalance,omitempty"`
	Balances        []BalanceSnapshot  `json:"balances,omitempty"`
	Transactions    TransactionBuckets `json:"transactions"`
}
