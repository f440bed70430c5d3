// Package banks turns raw provider transactions into the canonical
// normalized shape. Institution-specific normalizers layer ordered extraction
// rules over a generic fallback; the registry guarantees exactly one
// normalizer resolves per institution.
package banks

import (
	"strings"
	"unicode"

	"github.com/nico-iaco/nexabudget-gocardless-integrator/internal/models"
)

// Normalizer converts one raw transaction into its canonical form. Normalize
// must be pure and total: no I/O, no mutation of the input, and a value for
// every input. Institution implementations hold a reference to the generic
// fallback and delegate to it whenever none of their rules match.
type Normalizer interface {
	// InstitutionIDs lists the provider institution identifiers this
	// normalizer handles.
	InstitutionIDs() []string

	// Normalize derives payee name and canonical date for one transaction.
	// The booked flag tells settled records from pending ones.
	Normalize(tx models.RawTransaction, booked bool) models.NormalizedTransaction
}

// Generic is the baseline normalizer used for every institution without
// specific rules. Payee derivation is a minimal heuristic: the counterparty
// name when the record carries one, otherwise the title-cased free-text
// remittance, otherwise empty.
type Generic struct{}

// NewGeneric returns the fallback normalizer.
func NewGeneric() *Generic {
	return &Generic{}
}

// InstitutionIDs returns nil: the generic normalizer is never registered for
// a specific institution, it is the registry's default.
func (g *Generic) InstitutionIDs() []string {
	return nil
}

// Normalize implements the fallback rule described above.
func (g *Generic) Normalize(tx models.RawTransaction, _ bool) models.NormalizedTransaction {
	payee := counterpartyName(tx)
	if payee == "" {
		payee = TitleCase(tx.Remittance())
	}

	return models.NormalizedTransaction{
		RawTransaction: tx,
		PayeeName:      payee,
		Date:           tx.SettlementDate(),
	}
}

// counterpartyName picks the debtor or creditor name by amount sign: money
// leaving the account names the creditor, money arriving names the debtor.
// Falls back to whichever of the two is present.
func counterpartyName(tx models.RawTransaction) string {
	debtor := strings.TrimSpace(tx.DebtorName)
	creditor := strings.TrimSpace(tx.CreditorName)

	amount, err := tx.TransactionAmount.Decimal()
	if err == nil && amount.IsNegative() {
		if creditor != "" {
			return creditor
		}
		return debtor
	}

	if debtor != "" {
		return debtor
	}
	return creditor
}

// TitleCase lowercases each whitespace-separated word and capitalizes its
// first letter ("Bonifico ordinario" -> "Bonifico Ordinario"). Surrounding
// and repeated whitespace is collapsed.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
