// Package server exposes the integrator over HTTP. Every endpoint answers
// with a {status, data} envelope; classified provider failures ride inside a
// successful envelope so the consuming budget software always receives
// structured, actionable data.
package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/nico-iaco/nexabudget-gocardless-integrator/internal/gocardless"
	"github.com/nico-iaco/nexabudget-gocardless-integrator/internal/hash"
	"github.com/nico-iaco/nexabudget-gocardless-integrator/internal/models"
	"github.com/nico-iaco/nexabudget-gocardless-integrator/pkg/errors"
	"github.com/nico-iaco/nexabudget-gocardless-integrator/pkg/logger"
)

// maxBodyBytes caps request bodies at 5 MB.
const maxBodyBytes = 5 << 20

// IntegrationService is the surface the HTTP layer consumes. Satisfied by
// *gocardless.Service.
type IntegrationService interface {
	IsConfigured() bool
	GetBanks(ctx context.Context, country string, showDemo bool) ([]models.Institution, error)
	CreateRequisition(ctx context.Context, institutionID, reference string) (models.Requisition, error)
	DeleteRequisition(ctx context.Context, requisitionID string) (gocardless.DeletionResult, error)
	GetRequisitionWithAccounts(ctx context.Context, requisitionID string) (models.Requisition, []models.Account, error)
	GetNormalizedTransactions(ctx context.Context, requisitionID, accountID, startDate, endDate string) (models.ReconciledWindow, error)
	GetTransactionsWithBalance(ctx context.Context, requisitionID, accountID, startDate, endDate string) (models.ReconciledWindow, error)
}

// Server routes integrator endpoints onto the service layer.
type Server struct {
	service IntegrationService
	log     logger.Logger
	mux     *http.ServeMux
}

// New builds the server and registers every route.
func New(service IntegrationService, log logger.Logger) *Server {
	s := &Server{
		service: service,
		log:     log.WithComponent("server"),
		mux:     http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /status", s.handleStatus)
	s.mux.HandleFunc("POST /create-web-token", s.handleCreateWebToken)
	s.mux.HandleFunc("POST /get-accounts", s.handleGetAccounts)
	s.mux.HandleFunc("POST /get-banks", s.handleGetBanks)
	s.mux.HandleFunc("POST /remove-account", s.handleRemoveAccount)
	s.mux.HandleFunc("POST /transactions", s.handleTransactions)

	return s
}

// Handler returns the complete handler chain, request logging included.
func (s *Server) Handler() http.Handler {
	return RequestLogging(s.log)(s.mux)
}

// envelope is the uniform response shape.
type envelope struct {
	Status            string      `json:"status"`
	RequisitionStatus string      `json:"requisitionStatus,omitempty"`
	Data              interface{} `json:"data,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, e envelope) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(e); err != nil {
		s.log.WithError(err).Error("failed to encode response")
	}
}

func (s *Server) writeOK(w http.ResponseWriter, data interface{}) {
	s.writeJSON(w, envelope{Status: "ok", Data: data})
}

// writeClassified reports a failure as a successful envelope carrying the
// classified payload. The transport never surfaces a bare error.
func (s *Server) writeClassified(w http.ResponseWriter, r *http.Request, err error) {
	classified := errors.Classify(err)

	s.log.WithFields(logger.Fields{
		"path":       r.URL.Path,
		"error_type": classified.ErrorType,
		"error_code": classified.ErrorCode,
		"reason":     classified.Reason,
	}).WithError(err).Error("request failed")

	s.writeOK(w, classified)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, into interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		s.log.WithError(err).Warn("malformed request body")
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeOK(w, map[string]bool{"configured": s.service.IsConfigured()})
}

func (s *Server) handleCreateWebToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InstitutionID  string `json:"institutionId"`
		LocalAccountID string `json:"localAccountId"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	s.log.Infof("creating web token for account %s", req.LocalAccountID)

	requisition, err := s.service.CreateRequisition(r.Context(), req.InstitutionID, req.LocalAccountID)
	if err != nil {
		s.writeClassified(w, r, err)
		return
	}

	s.writeOK(w, map[string]string{
		"link":          requisition.Link,
		"requisitionId": requisition.ID,
	})
}

// requisitionWithAccounts spreads the requisition fields and replaces the
// account id list with full account records. The outer Accounts field shadows
// the embedded one in the JSON output.
type requisitionWithAccounts struct {
	models.Requisition
	Accounts []models.Account `json:"accounts"`
}

func (s *Server) handleGetAccounts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RequisitionID string `json:"requisitionId"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	s.log.Infof("fetching accounts for requisition %s", req.RequisitionID)

	requisition, accounts, err := s.service.GetRequisitionWithAccounts(r.Context(), req.RequisitionID)
	if err != nil {
		if pe, ok := errors.As(err); ok && pe.Kind == errors.KindRequisitionNotLinked {
			status, _ := pe.Details["requisitionStatus"].(string)
			s.log.WithFields(logger.Fields{
				"requisitionId":     req.RequisitionID,
				"requisitionStatus": status,
			}).Warn("requisition not linked")
			s.writeJSON(w, envelope{Status: "ok", RequisitionStatus: status})
			return
		}
		s.writeClassified(w, r, err)
		return
	}

	// IBANs never leave the service unhashed.
	for i := range accounts {
		if accounts[i].IBAN != "" {
			accounts[i].IBAN = hash.String(accounts[i].IBAN)
		}
	}

	s.writeOK(w, requisitionWithAccounts{
		Requisition: requisition,
		Accounts:    accounts,
	})
}

func (s *Server) handleGetBanks(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Country  string `json:"country"`
		ShowDemo bool   `json:"showDemo"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	s.log.Infof("fetching banks for country %s", req.Country)

	institutions, err := s.service.GetBanks(r.Context(), req.Country, req.ShowDemo)
	if err != nil {
		s.writeClassified(w, r, err)
		return
	}

	s.writeOK(w, institutions)
}

func (s *Server) handleRemoveAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RequisitionID string `json:"requisitionId"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	s.log.Infof("removing account with requisition id %s", req.RequisitionID)

	result, err := s.service.DeleteRequisition(r.Context(), req.RequisitionID)
	if err != nil {
		s.writeClassified(w, r, err)
		return
	}

	if result.Summary != "Requisition deleted" {
		s.log.WithField("requisitionId", req.RequisitionID).Warn("failed to remove account")
		s.writeJSON(w, envelope{Status: "error", Data: map[string]interface{}{
			"data":   result,
			"reason": "Can not delete requisition",
		}})
		return
	}

	s.writeOK(w, result)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	req := struct {
		RequisitionID  string `json:"requisitionId"`
		AccountID      string `json:"accountId"`
		StartDate      string `json:"startDate"`
		EndDate        string `json:"endDate"`
		IncludeBalance *bool  `json:"includeBalance"`
	}{}
	if !s.decode(w, r, &req) {
		return
	}

	includeBalance := req.IncludeBalance == nil || *req.IncludeBalance

	s.log.WithFields(logger.Fields{
		"requisitionId":  req.RequisitionID,
		"accountId":      req.AccountID,
		"startDate":      req.StartDate,
		"endDate":        req.EndDate,
		"includeBalance": includeBalance,
	}).Info("fetching transactions")

	var window models.ReconciledWindow
	var err error
	if includeBalance {
		window, err = s.service.GetTransactionsWithBalance(r.Context(), req.RequisitionID, req.AccountID, req.StartDate, req.EndDate)
	} else {
		window, err = s.service.GetNormalizedTransactions(r.Context(), req.RequisitionID, req.AccountID, req.StartDate, req.EndDate)
	}
	if err != nil {
		s.writeClassified(w, r, err)
		return
	}

	s.writeOK(w, window)
}
