package errors

import (
	"fmt"
	"net/http"
	"testing"

	pkgerrors "github.com/pkg/errors"
)

func TestConstructorsAssignKinds(t *testing.T) {
	headers := http.Header{"Http_x_ratelimit_limit": []string{"10"}}

	tests := []struct {
		name string
		err  *ProviderError
		kind Kind
	}{
		{"requisition not linked", RequisitionNotLinked("req-1", "CR"), KindRequisitionNotLinked},
		{"account not linked", AccountNotLinkedToRequisition("req-1", "acc-1"), KindAccountNotLinkedToRequisition},
		{"rate limit", RateLimit(429, headers), KindRateLimit},
		{"provider", Provider(500, "boom", nil), KindGenericProvider},
		{"transport", Transport(fmt.Errorf("dial tcp: refused")), KindTransport},
		{"unknown", Unknown(fmt.Errorf("weird")), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %s, want %s", tt.err.Kind, tt.kind)
			}
			if tt.err.Error() == "" {
				t.Error("error message must not be empty")
			}
			if !IsKind(tt.err, tt.kind) {
				t.Errorf("IsKind(%s) = false", tt.kind)
			}
		})
	}
}

func TestAsUnwrapsWrappedErrors(t *testing.T) {
	inner := RequisitionNotLinked("req-1", "EX")
	wrapped := pkgerrors.Wrap(inner, "fetching transactions")

	pe, ok := As(wrapped)
	if !ok {
		t.Fatal("expected to extract ProviderError through the wrap")
	}
	if pe.Kind != KindRequisitionNotLinked {
		t.Errorf("Kind = %s, want %s", pe.Kind, KindRequisitionNotLinked)
	}
}

func TestAsRejectsPlainErrors(t *testing.T) {
	if _, ok := As(fmt.Errorf("plain")); ok {
		t.Error("plain errors must not classify as ProviderError")
	}
	if IsKind(nil, KindUnknown) {
		t.Error("nil is not a ProviderError")
	}
}

func TestDetailsTravelWithError(t *testing.T) {
	err := RequisitionNotLinked("req-1", "SU")

	if err.Details["requisitionId"] != "req-1" {
		t.Errorf("requisitionId detail = %v", err.Details["requisitionId"])
	}
	if err.Details["requisitionStatus"] != "SU" {
		t.Errorf("requisitionStatus detail = %v", err.Details["requisitionStatus"])
	}
}

func TestTransportPreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := Transport(cause)

	if err.Unwrap() != cause {
		t.Error("Unwrap() should return the original cause")
	}
}
