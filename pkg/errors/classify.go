package errors

import (
	"strings"
)

// Reporting vocabulary. Values are fixed by the consuming budget software and
// must not be extended.
const (
	ErrorTypeItem      = "ITEM_ERROR"
	ErrorTypeInput     = "INVALID_INPUT"
	ErrorTypeRateLimit = "RATE_LIMIT_EXCEEDED"
	ErrorTypeSync      = "SYNC_ERROR"
	ErrorTypeUnknown   = "UNKNOWN"

	ErrorCodeLoginRequired = "ITEM_LOGIN_REQUIRED"
	ErrorCodeInvalidToken  = "INVALID_ACCESS_TOKEN"
	ErrorCodeNordigen      = "NORDIGEN_ERROR"
	ErrorCodeUnknown       = "UNKNOWN"
)

// Envelope is the classified failure payload reported upward. It always rides
// inside a successful transport response so callers receive actionable
// structured data instead of a bare error.
type Envelope struct {
	ErrorType        string                 `json:"error_type"`
	ErrorCode        string                 `json:"error_code"`
	Status           string                 `json:"status,omitempty"`
	Reason           string                 `json:"reason,omitempty"`
	Details          map[string]interface{} `json:"details,omitempty"`
	RateLimitHeaders map[string]string      `json:"rateLimitHeaders,omitempty"`
}

// Classify maps any failure onto exactly one Envelope. Structured
// ProviderErrors classify by kind; anything else is unknown. Classification
// never retries and never drops information: details and rate-limit headers
// travel with the envelope verbatim.
func Classify(err error) Envelope {
	envelope := Envelope{
		ErrorType: ErrorTypeUnknown,
		ErrorCode: ErrorCodeUnknown,
		Reason:    "Something went wrong",
	}

	pe, ok := As(err)
	if !ok {
		return envelope
	}

	envelope.Details = pe.Details
	envelope.RateLimitHeaders = RateLimitHeaders(pe.Headers)

	switch pe.Kind {
	case KindRequisitionNotLinked:
		envelope.ErrorType = ErrorTypeItem
		envelope.ErrorCode = ErrorCodeLoginRequired
		envelope.Status = "expired"
		envelope.Reason = "Access to account has expired as set in End User Agreement"
	case KindAccountNotLinkedToRequisition:
		envelope.ErrorType = ErrorTypeInput
		envelope.ErrorCode = ErrorCodeInvalidToken
		envelope.Status = "rejected"
		envelope.Reason = "Account not linked with this requisition"
	case KindRateLimit:
		envelope.ErrorType = ErrorTypeRateLimit
		envelope.ErrorCode = ErrorCodeNordigen
		envelope.Status = "rejected"
		envelope.Reason = "Rate limit exceeded"
	case KindGenericProvider, KindTransport:
		envelope.ErrorType = ErrorTypeSync
		envelope.ErrorCode = ErrorCodeNordigen
		envelope.Reason = ""
	default:
		envelope.Reason = "Something went wrong"
	}

	return envelope
}

// RateLimitHeaders extracts the provider's rate-limit headers verbatim. The
// provider names them HTTP_X_RATELIMIT_*; matching is case-insensitive and
// tolerates dash/underscore variants.
func RateLimitHeaders(headers map[string][]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}

	extracted := make(map[string]string)
	for name, values := range headers {
		normalized := strings.ToLower(strings.ReplaceAll(name, "-", "_"))
		if !strings.HasPrefix(normalized, "http_x_ratelimit") {
			continue
		}
		if len(values) > 0 {
			extracted[name] = values[0]
		}
	}

	if len(extracted) == 0 {
		return nil
	}
	return extracted
}
