package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gatewise/accesssim/models"
	"github.com/gatewise/accesssim/repositories"
	"go.uber.org/zap"
)

// SubjectRepository implements repositories.SubjectRepository against the
// subjects table. Profile attributes live in a JSONB column and stay
// opaque to the engine.
type SubjectRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewSubjectRepository creates a new subject repository
func NewSubjectRepository(db *DB, logger *zap.Logger) repositories.SubjectRepository {
	return &SubjectRepository{
		db:     db,
		logger: logger,
	}
}

// ListSubjects returns every subject identity record.
func (r *SubjectRepository) ListSubjects(ctx context.Context) (*models.SubjectDirectory, error) {
	query := `
		SELECT id, attributes
		FROM subjects
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	defer rows.Close()

	dir := &models.SubjectDirectory{Users: make([]models.User, 0)}
	for rows.Next() {
		var (
			user          models.User
			attributesRaw []byte
		)

		if err := rows.Scan(&user.ID, &attributesRaw); err != nil {
			return nil, fmt.Errorf("failed to scan subject: %w", err)
		}

		if len(attributesRaw) > 0 {
			if err := json.Unmarshal(attributesRaw, &user.Attributes); err != nil {
				return nil, fmt.Errorf("failed to decode attributes for subject %q: %w", user.ID, err)
			}
		}

		dir.Users = append(dir.Users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subjects: %w", err)
	}

	r.logger.Debug("listed subjects", zap.Int("count", len(dir.Users)))
	return dir, nil
}
