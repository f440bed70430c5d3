package banks

import (
	"fmt"
	"strings"
)

// Registry maps institution identifiers to their normalizers. It is built
// once at startup and read-only afterwards; Resolve never fails because
// unknown institutions fall back to the generic normalizer.
type Registry struct {
	byInstitution map[string]Normalizer
	fallback      Normalizer
}

// NewRegistry creates an empty registry around the given fallback.
func NewRegistry(fallback Normalizer) *Registry {
	return &Registry{
		byInstitution: make(map[string]Normalizer),
		fallback:      fallback,
	}
}

// Register adds a normalizer under every institution id it declares.
// Registering two normalizers for the same institution is a configuration
// error and is rejected, so misconfiguration surfaces at startup rather than
// per request.
func (r *Registry) Register(n Normalizer) error {
	ids := n.InstitutionIDs()
	if len(ids) == 0 {
		return fmt.Errorf("normalizer declares no institution ids")
	}

	for _, id := range ids {
		key := strings.ToUpper(strings.TrimSpace(id))
		if key == "" {
			return fmt.Errorf("normalizer declares an empty institution id")
		}
		if _, exists := r.byInstitution[key]; exists {
			return fmt.Errorf("duplicate normalizer registration for institution %s", key)
		}
		r.byInstitution[key] = n
	}

	return nil
}

// Resolve returns the normalizer for an institution, or the generic fallback
// when the institution has no specific rules.
func (r *Registry) Resolve(institutionID string) Normalizer {
	if n, ok := r.byInstitution[strings.ToUpper(strings.TrimSpace(institutionID))]; ok {
		return n
	}
	return r.fallback
}

// Fallback returns the registry's generic normalizer.
func (r *Registry) Fallback() Normalizer {
	return r.fallback
}

// Institutions lists every institution id with a specific normalizer.
func (r *Registry) Institutions() []string {
	ids := make([]string, 0, len(r.byInstitution))
	for id := range r.byInstitution {
		ids = append(ids, id)
	}
	return ids
}

// Builtin assembles the registry with every institution normalizer shipped
// with the service. Panics on duplicate registration: the bank list is
// compiled in, so a duplicate is a programming error, not runtime input.
func Builtin() *Registry {
	fallback := NewGeneric()
	registry := NewRegistry(fallback)

	for _, n := range []Normalizer{
		NewWidiba(fallback),
	} {
		if err := registry.Register(n); err != nil {
			panic(err)
		}
	}

	return registry
}
