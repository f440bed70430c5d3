// Package reconciler merges booked and pending transactions into a
// balance-consistent timeline. All arithmetic is exact decimal; binary
// floating point never touches an amount.
package reconciler

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/nico-iaco/nexabudget-gocardless-integrator/internal/models"
)

// Config holds the reconciler's single configuration point: which balance
// type to reconcile against when the provider reports several.
type Config struct {
	// BalanceTypes is an ordered preference list; the first type present in
	// the provider's balance set wins.
	BalanceTypes []string
}

// DefaultConfig prefers settled figures over projections.
func DefaultConfig() *Config {
	return &Config{
		BalanceTypes: []string{
			"closingBooked",
			"expected",
			"interimAvailable",
			"interimBooked",
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.BalanceTypes) == 0 {
		return fmt.Errorf("at least one balance type preference is required")
	}
	for _, t := range c.BalanceTypes {
		if t == "" {
			return fmt.Errorf("balance type preference cannot be empty")
		}
	}
	return nil
}

// Reconciler computes starting balances and merge order for one account
// window. It is pure: no I/O, no retained state between calls.
type Reconciler struct {
	config *Config
}

// New creates a Reconciler with the given configuration.
func New(config *Config) (*Reconciler, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid reconciler configuration: %w", err)
	}
	return &Reconciler{config: config}, nil
}

// SelectBalance picks the snapshot to reconcile against, walking the
// configured type preference in order. ok is false when none of the preferred
// types is present.
func (r *Reconciler) SelectBalance(balances []models.BalanceSnapshot) (models.BalanceSnapshot, bool) {
	for _, preferred := range r.config.BalanceTypes {
		for _, balance := range balances {
			if balance.BalanceType == preferred {
				return balance, true
			}
		}
	}
	return models.BalanceSnapshot{}, false
}

// Reconcile produces the balance-consistent window for one account. The
// starting balance is the selected ending balance minus the signed sum of
// booked amounts; it is omitted, never zero-filled, when no usable balance
// snapshot exists. The merged sequence is ascending by date with booked
// entries preceding pending ones on equal dates.
func (r *Reconciler) Reconcile(
	institutionID string,
	balances []models.BalanceSnapshot,
	booked, pending []models.NormalizedTransaction,
) (models.ReconciledWindow, error) {

	window := models.ReconciledWindow{
		InstitutionID: institutionID,
		Balances:      balances,
		Transactions: models.TransactionBuckets{
			Booked:  booked,
			Pending: pending,
			All:     MergeOrdered(booked, pending),
		},
	}

	balance, ok := r.SelectBalance(balances)
	if !ok {
		return window, nil
	}

	starting, err := StartingBalance(balance, booked)
	if err != nil {
		return models.ReconciledWindow{}, err
	}
	window.StartingBalance = &starting

	return window, nil
}

// StartingBalance derives the balance immediately before the earliest booked
// transaction: the reported ending balance minus the signed sum of every
// booked amount in the window.
func StartingBalance(balance models.BalanceSnapshot, booked []models.NormalizedTransaction) (decimal.Decimal, error) {
	ending, err := balance.BalanceAmount.Decimal()
	if err != nil {
		return decimal.Zero, fmt.Errorf("balance %s: %w", balance.BalanceType, err)
	}

	total := decimal.Zero
	for _, tx := range booked {
		amount, err := tx.Amount()
		if err != nil {
			return decimal.Zero, fmt.Errorf("booked transaction %s: %w", tx.TransactionID, err)
		}
		total = total.Add(amount)
	}

	return ending.Sub(total), nil
}

// MergeOrdered concatenates booked then pending and sorts stably by ascending
// date. The stable sort is what keeps booked entries ahead of pending ones
// sharing a date: settled records are considered first on ties.
func MergeOrdered(booked, pending []models.NormalizedTransaction) []models.NormalizedTransaction {
	all := make([]models.NormalizedTransaction, 0, len(booked)+len(pending))
	all = append(all, booked...)
	all = append(all, pending...)

	// Canonical dates are ISO strings, so lexicographic order is date order.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Date < all[j].Date
	})

	return all
}
