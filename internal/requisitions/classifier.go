// Package requisitions classifies requisition linkage state. Transitions are
// driven entirely by the provider; this package only decides whether a
// requisition/account pair is usable for transaction retrieval.
package requisitions

import (
	"github.com/nico-iaco/nexabudget-gocardless-integrator/internal/models"
	"github.com/nico-iaco/nexabudget-gocardless-integrator/pkg/errors"
)

// EnsureLinked verifies the requisition completed its linking flow. Any
// status other than linked is terminal from this service's perspective.
func EnsureLinked(requisition models.Requisition) error {
	if !requisition.Status.IsLinked() {
		return errors.RequisitionNotLinked(requisition.ID, string(requisition.Status))
	}
	return nil
}

// EnsureAccountLinked verifies the requisition is linked and includes the
// requested account.
func EnsureAccountLinked(requisition models.Requisition, accountID string) error {
	if err := EnsureLinked(requisition); err != nil {
		return err
	}

	for _, linked := range requisition.Accounts {
		if linked == accountID {
			return nil
		}
	}

	return errors.AccountNotLinkedToRequisition(requisition.ID, accountID)
}
