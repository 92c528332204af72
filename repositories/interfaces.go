// Package repositories defines the data access interfaces for policy and
// subject definitions. Only definitions are stored; decisions are never
// persisted.
package repositories

import (
	"context"

	"github.com/gatewise/accesssim/models"
)

// PolicyRepository loads ordered policy definitions. Order is preserved
// end to end: it is the evaluation precedence tie-break.
type PolicyRepository interface {
	// ListPolicies returns every policy in evaluation order.
	ListPolicies(ctx context.Context) (*models.PolicySet, error)
}

// SubjectRepository loads the subject directory.
type SubjectRepository interface {
	// ListSubjects returns every subject identity record.
	ListSubjects(ctx context.Context) (*models.SubjectDirectory, error)
}
