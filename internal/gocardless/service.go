package gocardless

import (
	"context"

	"github.com/nico-iaco/nexabudget-gocardless-integrator/internal/banks"
	"github.com/nico-iaco/nexabudget-gocardless-integrator/internal/models"
	"github.com/nico-iaco/nexabudget-gocardless-integrator/internal/reconciler"
	"github.com/nico-iaco/nexabudget-gocardless-integrator/internal/requisitions"
	"github.com/nico-iaco/nexabudget-gocardless-integrator/pkg/logger"
)

// DemoInstitutionID is the provider's sandbox bank, offered to callers that
// want to test the sync flow without a real bank.
const DemoInstitutionID = "SANDBOXFINANCE_SFIN0000"

// ProviderClient is the slice of the provider API the service consumes.
// Satisfied by *Client; narrowed to an interface so tests can substitute a
// fake provider.
type ProviderClient interface {
	IsConfigured() bool
	GetInstitutions(ctx context.Context, country string) ([]models.Institution, error)
	CreateRequisition(ctx context.Context, institutionID, reference string) (models.Requisition, error)
	GetRequisition(ctx context.Context, requisitionID string) (models.Requisition, error)
	DeleteRequisition(ctx context.Context, requisitionID string) (DeletionResult, error)
	GetAccountMetadata(ctx context.Context, accountID string) (models.Account, error)
	GetBalances(ctx context.Context, accountID string) ([]models.BalanceSnapshot, error)
	GetTransactions(ctx context.Context, accountID, dateFrom, dateTo string) (Transactions, error)
}

// Service orchestrates one account-window retrieval: requisition state check,
// raw fetch, per-institution normalization, reconciliation. The service holds
// no mutable state; concurrent requests need no coordination.
type Service struct {
	client     ProviderClient
	registry   *banks.Registry
	reconciler *reconciler.Reconciler
	log        logger.Logger
}

// NewService wires the service together.
func NewService(client ProviderClient, registry *banks.Registry, rec *reconciler.Reconciler, log logger.Logger) *Service {
	return &Service{
		client:     client,
		registry:   registry,
		reconciler: rec,
		log:        log.WithComponent("gocardless"),
	}
}

// IsConfigured reports whether provider credentials are present.
func (s *Service) IsConfigured() bool {
	return s.client.IsConfigured()
}

// GetBanks lists institutions for a country, optionally prepending the
// provider's demo bank.
func (s *Service) GetBanks(ctx context.Context, country string, showDemo bool) ([]models.Institution, error) {
	institutions, err := s.client.GetInstitutions(ctx, country)
	if err != nil {
		return nil, err
	}

	if showDemo {
		demo := models.Institution{
			ID:   DemoInstitutionID,
			Name: "DEMO bank (used for testing bank-sync)",
		}
		institutions = append([]models.Institution{demo}, institutions...)
	}

	return institutions, nil
}

// CreateRequisition starts a linking flow and returns the end-user link.
func (s *Service) CreateRequisition(ctx context.Context, institutionID, reference string) (models.Requisition, error) {
	return s.client.CreateRequisition(ctx, institutionID, reference)
}

// DeleteRequisition removes a requisition.
func (s *Service) DeleteRequisition(ctx context.Context, requisitionID string) (DeletionResult, error) {
	return s.client.DeleteRequisition(ctx, requisitionID)
}

// GetRequisitionWithAccounts fetches a requisition and the metadata of every
// account it links. Fails with RequisitionNotLinked when the linking flow was
// never completed.
func (s *Service) GetRequisitionWithAccounts(ctx context.Context, requisitionID string) (models.Requisition, []models.Account, error) {
	requisition, err := s.client.GetRequisition(ctx, requisitionID)
	if err != nil {
		return models.Requisition{}, nil, err
	}

	if err := requisitions.EnsureLinked(requisition); err != nil {
		return models.Requisition{}, nil, err
	}

	accounts := make([]models.Account, 0, len(requisition.Accounts))
	for _, accountID := range requisition.Accounts {
		account, err := s.client.GetAccountMetadata(ctx, accountID)
		if err != nil {
			return models.Requisition{}, nil, err
		}
		accounts = append(accounts, account)
	}

	return requisition, accounts, nil
}

// GetNormalizedTransactions retrieves and normalizes one account window
// without touching balances; the reconciled result carries no starting
// balance.
func (s *Service) GetNormalizedTransactions(ctx context.Context, requisitionID, accountID, startDate, endDate string) (models.ReconciledWindow, error) {
	institutionID, booked, pending, err := s.fetchNormalized(ctx, requisitionID, accountID, startDate, endDate)
	if err != nil {
		return models.ReconciledWindow{}, err
	}

	return s.reconciler.Reconcile(institutionID, nil, booked, pending)
}

// GetTransactionsWithBalance retrieves one account window together with the
// provider's balance snapshots and reconciles the starting balance against
// the preferred snapshot.
func (s *Service) GetTransactionsWithBalance(ctx context.Context, requisitionID, accountID, startDate, endDate string) (models.ReconciledWindow, error) {
	institutionID, booked, pending, err := s.fetchNormalized(ctx, requisitionID, accountID, startDate, endDate)
	if err != nil {
		return models.ReconciledWindow{}, err
	}

	balances, err := s.client.GetBalances(ctx, accountID)
	if err != nil {
		return models.ReconciledWindow{}, err
	}

	return s.reconciler.Reconcile(institutionID, balances, booked, pending)
}

// fetchNormalized runs the shared front half of both transaction operations:
// requisition classification, account resolution, raw fetch, normalization.
func (s *Service) fetchNormalized(ctx context.Context, requisitionID, accountID, startDate, endDate string) (string, []models.NormalizedTransaction, []models.NormalizedTransaction, error) {
	requisition, err := s.client.GetRequisition(ctx, requisitionID)
	if err != nil {
		return "", nil, nil, err
	}

	if err := requisitions.EnsureAccountLinked(requisition, accountID); err != nil {
		return "", nil, nil, err
	}

	account, err := s.client.GetAccountMetadata(ctx, accountID)
	if err != nil {
		return "", nil, nil, err
	}

	raw, err := s.client.GetTransactions(ctx, accountID, startDate, endDate)
	if err != nil {
		return "", nil, nil, err
	}

	normalizer := s.registry.Resolve(account.InstitutionID)
	s.log.WithFields(logger.Fields{
		"institutionId": account.InstitutionID,
		"booked":        len(raw.Booked),
		"pending":       len(raw.Pending),
	}).Debug("normalizing transactions")

	booked := normalizeAll(normalizer, raw.Booked, true)
	pending := normalizeAll(normalizer, raw.Pending, false)

	return account.InstitutionID, booked, pending, nil
}

func normalizeAll(n banks.Normalizer, raw []models.RawTransaction, booked bool) []models.NormalizedTransaction {
	normalized := make([]models.NormalizedTransaction, 0, len(raw))
	for _, tx := range raw {
		normalized = append(normalized, n.Normalize(tx, booked))
	}
	return normalized
}
