package banks

import (
	"regexp"
	"strings"

	"github.com/nico-iaco/nexabudget-gocardless-integrator/internal/models"
)

// Widiba extracts payees from Banca Widiba remittance text. The bank prefixes
// every description with a "Causale: ... - Descrizione: ..." wrapper and
// buries the counterparty in a handful of fixed phrasings, matched here in
// order of specificity.
type Widiba struct {
	fallback Normalizer
	rules    RuleSet
}

// NewWidiba builds the Widiba normalizer around the given fallback.
func NewWidiba(fallback Normalizer) *Widiba {
	return &Widiba{
		fallback: fallback,
		rules: RuleSet{
			{
				// BANCOMAT Pay incoming transfer: the sender's name sits
				// between "DA" and the "DATA:" timestamp marker.
				Name:    "bancomat-pay",
				Pattern: regexp.MustCompile(`(?i)RICEZIONE DENARO CON BANCOMAT PAY DA ([^D]+?)\s+DATA:`),
				Extract: func(m []string) string {
					return "da " + strings.ToLower(strings.TrimSpace(m[1]))
				},
			},
			{
				// Instant transfer: the user-entered purpose follows the
				// numeric cause code, e.g. "Caus: 048 Regalo".
				Name:    "caus-code",
				Pattern: regexp.MustCompile(`(?i)Caus:\s*\d+\s+(.+)$`),
				Extract: func(m []string) string { return m[1] },
			},
			{
				// Card payment: merchant name up to the next dash.
				Name:    "esercente",
				Pattern: regexp.MustCompile(`(?i)esercente:\s*([^-]+)`),
				Extract: func(m []string) string { return m[1] },
			},
			{
				// SDD direct debit: keep the whole mandate description up to
				// "Codice Mandato".
				Name:    "addebito-sdd",
				Pattern: regexp.MustCompile(`(?i)(Addebito Sdd\s+.+?)\s+Codice Mandato`),
				Extract: func(m []string) string { return m[1] },
			},
		},
	}
}

// InstitutionIDs implements Normalizer.
func (w *Widiba) InstitutionIDs() []string {
	return []string{"WIDIBA_WIDIITMM"}
}

// Normalize applies the extraction rules in order and defers to the generic
// fallback when none matches.
func (w *Widiba) Normalize(tx models.RawTransaction, booked bool) models.NormalizedTransaction {
	if extraction, ok := w.rules.Match(tx.Remittance()); ok {
		return models.NormalizedTransaction{
			RawTransaction: tx,
			PayeeName:      extraction.PayeeName,
			Date:           tx.SettlementDate(),
		}
	}

	return w.fallback.Normalize(tx, booked)
}
