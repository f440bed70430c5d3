package banks

import (
	"strings"
	"testing"

	"github.com/nico-iaco/nexabudget-gocardless-integrator/internal/models"
)

// stubNormalizer registers under fixed ids and marks everything it touches.
type stubNormalizer struct {
	ids []string
}

func (s *stubNormalizer) InstitutionIDs() []string { return s.ids }

func (s *stubNormalizer) Normalize(tx models.RawTransaction, _ bool) models.NormalizedTransaction {
	return models.NormalizedTransaction{RawTransaction: tx, PayeeName: "stub"}
}

func TestRegistryResolve(t *testing.T) {
	fallback := NewGeneric()
	registry := NewRegistry(fallback)

	stub := &stubNormalizer{ids: []string{"BANK_A", "BANK_B"}}
	if err := registry.Register(stub); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name          string
		institutionID string
		wantStub      bool
	}{
		{"registered id", "BANK_A", true},
		{"second registered id", "BANK_B", true},
		{"case-insensitive lookup", "bank_a", true},
		{"unknown id resolves to fallback", "UNKNOWN_BANK", false},
		{"empty id resolves to fallback", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved := registry.Resolve(tt.institutionID)
			if (resolved == Normalizer(stub)) != tt.wantStub {
				t.Errorf("Resolve(%q) stub = %v, want %v", tt.institutionID, !tt.wantStub, tt.wantStub)
			}
		})
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := NewRegistry(NewGeneric())

	if err := registry.Register(&stubNormalizer{ids: []string{"BANK_A"}}); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	err := registry.Register(&stubNormalizer{ids: []string{"bank_a"}})
	if err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
	if !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("error %q should mention the duplicate", err)
	}
}

func TestRegistryRejectsEmptyIDs(t *testing.T) {
	registry := NewRegistry(NewGeneric())

	if err := registry.Register(&stubNormalizer{}); err == nil {
		t.Error("expected registration without institution ids to fail")
	}
	if err := registry.Register(&stubNormalizer{ids: []string{"  "}}); err == nil {
		t.Error("expected registration with a blank institution id to fail")
	}
}

func TestBuiltinRegistry(t *testing.T) {
	registry := Builtin()

	if _, ok := registry.Resolve("WIDIBA_WIDIITMM").(*Widiba); !ok {
		t.Error("expected WIDIBA_WIDIITMM to resolve to the Widiba normalizer")
	}
	if _, ok := registry.Resolve("SOMETHING_ELSE").(*Generic); !ok {
		t.Error("expected unknown institutions to resolve to the generic normalizer")
	}
}
