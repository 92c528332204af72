package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gatewise/accesssim/models"
	"github.com/gatewise/accesssim/repositories"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// PolicyRepository implements repositories.PolicyRepository against the
// policies table. Each row stores one policy; the position column
// encodes evaluation order.
type PolicyRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewPolicyRepository creates a new policy repository
func NewPolicyRepository(db *DB, logger *zap.Logger) repositories.PolicyRepository {
	return &PolicyRepository{
		db:     db,
		logger: logger,
	}
}

// ListPolicies returns every policy in evaluation order.
func (r *PolicyRepository) ListPolicies(ctx context.Context) (*models.PolicySet, error) {
	query := `
		SELECT name, status, subjects, conditions, access
		FROM policies
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}
	defer rows.Close()

	set := &models.PolicySet{Policies: make([]models.Policy, 0)}
	for rows.Next() {
		var (
			policy        models.Policy
			subjects      pq.StringArray
			conditionsRaw []byte
		)

		if err := rows.Scan(&policy.Name, &policy.Status, &subjects, &conditionsRaw, &policy.GrantControls.Access); err != nil {
			return nil, fmt.Errorf("failed to scan policy: %w", err)
		}

		policy.Subjects = subjects
		if len(conditionsRaw) > 0 {
			if err := json.Unmarshal(conditionsRaw, &policy.Conditions); err != nil {
				return nil, fmt.Errorf("failed to decode conditions for policy %q: %w", policy.Name, err)
			}
		}

		set.Policies = append(set.Policies, policy)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate policies: %w", err)
	}

	r.logger.Debug("listed policies", zap.Int("count", len(set.Policies)))
	return set, nil
}
