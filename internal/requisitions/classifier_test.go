package requisitions

import (
	"testing"

	"github.com/nico-iaco/nexabudget-gocardless-integrator/internal/models"
	"github.com/nico-iaco/nexabudget-gocardless-integrator/pkg/errors"
)

func TestEnsureLinked(t *testing.T) {
	tests := []struct {
		name     string
		status   models.RequisitionStatus
		wantKind errors.Kind
		wantOK   bool
	}{
		{"linked", models.RequisitionLinked, "", true},
		{"created", models.RequisitionCreated, errors.KindRequisitionNotLinked, false},
		{"expired", models.RequisitionExpired, errors.KindRequisitionNotLinked, false},
		{"rejected", models.RequisitionRejected, errors.KindRequisitionNotLinked, false},
		{"suspended", models.RequisitionSuspended, errors.KindRequisitionNotLinked, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := EnsureLinked(models.Requisition{ID: "req-1", Status: tt.status})

			if tt.wantOK {
				if err != nil {
					t.Fatalf("EnsureLinked() error = %v, want nil", err)
				}
				return
			}

			if !errors.IsKind(err, tt.wantKind) {
				t.Errorf("EnsureLinked() error = %v, want kind %s", err, tt.wantKind)
			}
		})
	}
}

func TestEnsureLinkedCarriesStatusDetail(t *testing.T) {
	err := EnsureLinked(models.Requisition{ID: "req-1", Status: models.RequisitionCreated})

	pe, ok := errors.As(err)
	if !ok {
		t.Fatal("expected a ProviderError")
	}
	if got := pe.Details["requisitionStatus"]; got != "CR" {
		t.Errorf("requisitionStatus detail = %v, want CR", got)
	}
}

func TestEnsureAccountLinked(t *testing.T) {
	linked := models.Requisition{
		ID:       "req-1",
		Status:   models.RequisitionLinked,
		Accounts: []string{"acc-1", "acc-2"},
	}

	tests := []struct {
		name        string
		requisition models.Requisition
		accountID   string
		wantKind    errors.Kind
		wantOK      bool
	}{
		{"account present", linked, "acc-2", "", true},
		{"account absent", linked, "acc-3", errors.KindAccountNotLinkedToRequisition, false},
		{
			"not linked dominates account check",
			models.Requisition{ID: "req-1", Status: models.RequisitionCreated, Accounts: []string{"acc-1"}},
			"acc-1",
			errors.KindRequisitionNotLinked,
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := EnsureAccountLinked(tt.requisition, tt.accountID)

			if tt.wantOK {
				if err != nil {
					t.Fatalf("EnsureAccountLinked() error = %v, want nil", err)
				}
				return
			}

			if !errors.IsKind(err, tt.wantKind) {
				t.Errorf("EnsureAccountLinked() error = %v, want kind %s", err, tt.wantKind)
			}
		})
	}
}
