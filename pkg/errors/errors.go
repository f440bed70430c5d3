// Package errors defines the closed failure taxonomy for upstream provider
// interaction and the classifier that maps any failure onto the fixed
// reporting vocabulary. The normalization and reconciliation core never
// raises these; only the requisition checks and the provider client do, and
// the transport layer catches them at the boundary.
package errors

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Kind is the failure category. Exactly one Kind is assigned to every
// failure surfaced while talking to the provider.
type Kind string

const (
	KindRequisitionNotLinked           Kind = "requisition_not_linked"
	KindAccountNotLinkedToRequisition  Kind = "account_not_linked_to_requisition"
	KindRateLimit                      Kind = "rate_limit"
	KindGenericProvider                Kind = "generic_provider_error"
	KindTransport                      Kind = "transport_error"
	KindUnknown                        Kind = "unknown"
)

// ProviderError is the single error type carried across the provider
// boundary. Kind drives classification; the remaining fields preserve
// whatever context the failure arrived with.
type ProviderError struct {
	Kind       Kind                   `json:"kind"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"status_code,omitempty"`
	Headers    http.Header            `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace errors.StackTrace      `json:"-"`
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause error.
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// WithDetail attaches context information to the error.
func (e *ProviderError) WithDetail(key string, value interface{}) *ProviderError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// stackTracer interface for extracting stack traces from pkg/errors values.
type stackTracer interface {
	StackTrace() errors.StackTrace
}

func newError(kind Kind, message string, cause error) *ProviderError {
	e := &ProviderError{
		Kind:    kind,
		Message: message,
		Cause:   cause,
	}

	if cause != nil {
		if st, ok := errors.WithStack(cause).(stackTracer); ok {
			e.StackTrace = st.StackTrace()
		}
	} else if st, ok := errors.New(message).(stackTracer); ok {
		e.StackTrace = st.StackTrace()
	}

	return e
}

// RequisitionNotLinked reports a requisition whose linkage flow was never
// completed, or has expired, been rejected or suspended. Terminal: recovery
// requires a new linking flow.
func RequisitionNotLinked(requisitionID string, requisitionStatus string) *ProviderError {
	return newError(KindRequisitionNotLinked,
		fmt.Sprintf("requisition %s is not linked (status %s)", requisitionID, requisitionStatus), nil).
		WithDetail("requisitionId", requisitionID).
		WithDetail("requisitionStatus", requisitionStatus)
}

// AccountNotLinkedToRequisition reports a linked requisition that does not
// include the requested account. Terminal, like RequisitionNotLinked.
func AccountNotLinkedToRequisition(requisitionID, accountID string) *ProviderError {
	return newError(KindAccountNotLinkedToRequisition,
		fmt.Sprintf("account %s is not linked to requisition %s", accountID, requisitionID), nil).
		WithDetail("requisitionId", requisitionID).
		WithDetail("accountId", accountID)
}

// RateLimit reports a provider rate-limit rejection. The response headers are
// kept verbatim so the caller can surface the provider's quota counters; this
// service never parses or acts on them.
func RateLimit(statusCode int, headers http.Header) *ProviderError {
	e := newError(KindRateLimit, "provider rate limit exceeded", nil)
	e.StatusCode = statusCode
	e.Headers = headers
	return e
}

// Provider reports a structured provider failure (a non-2xx API response that
// is not a rate limit).
func Provider(statusCode int, message string, headers http.Header) *ProviderError {
	e := newError(KindGenericProvider, message, nil)
	e.StatusCode = statusCode
	e.Headers = headers
	return e
}

// Transport reports a network-level failure that never produced a provider
// response.
func Transport(cause error) *ProviderError {
	return newError(KindTransport, "provider request failed", cause)
}

// Unknown wraps a failure that fits no other category.
func Unknown(cause error) *ProviderError {
	return newError(KindUnknown, "unexpected error", cause)
}

// As extracts a ProviderError from an error chain.
func As(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsKind reports whether err is a ProviderError of the given kind.
func IsKind(err error, kind Kind) bool {
	pe, ok := As(err)
	return ok && pe.Kind == kind
}
