// Package gocardless talks to the GoCardless Bank Account Data API and
// orchestrates normalization and reconciliation on top of it. All network
// failures are converted into the closed provider-error taxonomy before they
// leave this package.
package gocardless

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nico-iaco/nexabudget-gocardless-integrator/internal/models"
	"github.com/nico-iaco/nexabudget-gocardless-integrator/pkg/errors"
)

// DefaultBaseURL is the production Bank Account Data endpoint.
const DefaultBaseURL = "https://bankaccountdata.gocardless.com"

// tokenSafetyMargin renews access tokens slightly before the provider
// expires them.
const tokenSafetyMargin = 30 * time.Second

// Transactions groups raw provider records the way the transactions endpoint
// reports them.
type Transactions struct {
	Booked  []models.RawTransaction `json:"booked"`
	Pending []models.RawTransaction `json:"pending"`
}

// DeletionResult is the provider's answer to a requisition deletion.
type DeletionResult struct {
	Summary string `json:"summary"`
	Detail  string `json:"detail"`
}

// ClientConfig holds provider credentials and connection settings. Empty
// credentials are allowed: the client then reports itself unconfigured and
// token acquisition fails upstream.
type ClientConfig struct {
	SecretID    string
	SecretKey   string
	BaseURL     string
	RedirectURI string
	Timeout     time.Duration
}

// Client is the Bank Account Data API client. It caches the access token and
// renews it on expiry; everything else is a plain authenticated JSON call.
type Client struct {
	config     ClientConfig
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a provider client. The configuration may be empty; the
// client then reports itself unconfigured and every call fails upstream.
func NewClient(config ClientConfig) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// IsConfigured reports whether provider credentials are present.
func (c *Client) IsConfigured() bool {
	return c.config.SecretID != "" && c.config.SecretKey != ""
}

// tokenResponse is the provider's token grant payload.
type tokenResponse struct {
	Access        string `json:"access"`
	AccessExpires int    `json:"access_expires"`
}

// ensureToken acquires or renews the cached access token.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	var grant tokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/v2/token/new/", map[string]string{
		"secret_id":  c.config.SecretID,
		"secret_key": c.config.SecretKey,
	}, "", &grant)
	if err != nil {
		return "", err
	}

	c.accessToken = grant.Access
	c.tokenExpiry = time.Now().Add(time.Duration(grant.AccessExpires)*time.Second - tokenSafetyMargin)

	return c.accessToken, nil
}

// call performs an authenticated JSON request against the provider API.
func (c *Client) call(ctx context.Context, method, path string, body, out interface{}) error {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, method, path, body, token, out)
}

// doJSON performs one JSON request and classifies every failure mode:
// network errors become transport errors, 429 becomes a rate-limit error
// carrying the response headers, any other non-2xx becomes a generic
// provider error.
func (c *Client) doJSON(ctx context.Context, method, path string, body interface{}, token string, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.Unknown(err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return errors.Unknown(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Transport(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Transport(err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return errors.RateLimit(resp.StatusCode, resp.Header)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Provider(resp.StatusCode, providerMessage(resp.StatusCode, payload), resp.Header).
			WithDetail("path", path)
	}

	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return errors.Provider(resp.StatusCode, "malformed provider response", resp.Header).
			WithDetail("path", path)
	}

	return nil
}

// providerMessage extracts the human-readable part of a provider error body.
func providerMessage(status int, payload []byte) string {
	var body struct {
		Summary string `json:"summary"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(payload, &body); err == nil {
		parts := make([]string, 0, 2)
		if body.Summary != "" {
			parts = append(parts, body.Summary)
		}
		if body.Detail != "" {
			parts = append(parts, body.Detail)
		}
		if len(parts) > 0 {
			return strings.Join(parts, ": ")
		}
	}
	return fmt.Sprintf("provider returned status %d", status)
}

// GetInstitutions lists the provider's banks for a country.
func (c *Client) GetInstitutions(ctx context.Context, country string) ([]models.Institution, error) {
	var institutions []models.Institution
	path := "/api/v2/institutions/?country=" + url.QueryEscape(country)
	if err := c.call(ctx, http.MethodGet, path, nil, &institutions); err != nil {
		return nil, err
	}
	return institutions, nil
}

// CreateRequisition starts a new linking flow for an institution. The
// reference ties the requisition back to the caller's local account.
func (c *Client) CreateRequisition(ctx context.Context, institutionID, reference string) (models.Requisition, error) {
	var requisition models.Requisition
	err := c.call(ctx, http.MethodPost, "/api/v2/requisitions/", map[string]string{
		"redirect":       c.config.RedirectURI,
		"institution_id": institutionID,
		"reference":      reference,
	}, &requisition)
	if err != nil {
		return models.Requisition{}, err
	}
	return requisition, nil
}

// GetRequisition fetches a requisition's current state and linked accounts.
func (c *Client) GetRequisition(ctx context.Context, requisitionID string) (models.Requisition, error) {
	var requisition models.Requisition
	path := "/api/v2/requisitions/" + url.PathEscape(requisitionID) + "/"
	if err := c.call(ctx, http.MethodGet, path, nil, &requisition); err != nil {
		return models.Requisition{}, err
	}
	return requisition, nil
}

// DeleteRequisition removes a requisition and its end-user agreement.
func (c *Client) DeleteRequisition(ctx context.Context, requisitionID string) (DeletionResult, error) {
	var result DeletionResult
	path := "/api/v2/requisitions/" + url.PathEscape(requisitionID) + "/"
	if err := c.call(ctx, http.MethodDelete, path, nil, &result); err != nil {
		return DeletionResult{}, err
	}
	return result, nil
}

// GetAccountMetadata fetches the provider's account record, including the
// institution id that drives normalizer resolution.
func (c *Client) GetAccountMetadata(ctx context.Context, accountID string) (models.Account, error) {
	var account models.Account
	path := "/api/v2/accounts/" + url.PathEscape(accountID) + "/"
	if err := c.call(ctx, http.MethodGet, path, nil, &account); err != nil {
		return models.Account{}, err
	}
	return account, nil
}

// GetBalances fetches every balance snapshot the provider reports for an
// account.
func (c *Client) GetBalances(ctx context.Context, accountID string) ([]models.BalanceSnapshot, error) {
	var response struct {
		Balances []models.BalanceSnapshot `json:"balances"`
	}
	path := "/api/v2/accounts/" + url.PathEscape(accountID) + "/balances/"
	if err := c.call(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, err
	}
	return response.Balances, nil
}

// GetTransactions fetches raw booked and pending records for an inclusive
// calendar-date window (YYYY-MM-DD).
func (c *Client) GetTransactions(ctx context.Context, accountID, dateFrom, dateTo string) (Transactions, error) {
	var response struct {
		Transactions Transactions `json:"transactions"`
	}

	query := url.Values{}
	if dateFrom != "" {
		query.Set("date_from", dateFrom)
	}
	if dateTo != "" {
		query.Set("date_to", dateTo)
	}

	path := "/api/v2/accounts/" + url.PathEscape(accountID) + "/transactions/"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	if err := c.call(ctx, http.MethodGet, path, nil, &response); err != nil {
		return Transactions{}, err
	}
	return response.Transactions, nil
}
