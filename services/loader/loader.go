// Package loader reads the policy, subject and context documents the
// engine consumes. It owns parsing and structural validation so the
// evaluator only ever sees well-typed inputs; a file that is missing,
// unreadable or not valid JSON surfaces as a data_unavailable error,
// which callers must keep distinct from a deny decision.
package loader

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gatewise/accesssim/models"
	"github.com/gatewise/accesssim/services"
	"github.com/gatewise/accesssim/utils"
	"go.uber.org/zap"
)

// Default document paths, matching the historical file layout.
const (
	DefaultPolicyFile  = "policies.json"
	DefaultUserFile    = "users.json"
	DefaultContextFile = "context.json"
)

// Loader reads evaluation inputs from JSON files on disk.
type Loader struct {
	logger *zap.Logger
}

// New creates a new Loader instance
func New(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

// readDocument loads and decodes one JSON document into out.
func (l *Loader) readDocument(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		l.logger.Error("failed to read document", zap.String("path", path), zap.Error(err))
		return services.WrapDataUnavailable(fmt.Sprintf("cannot read %s", path), err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		l.logger.Error("invalid JSON document", zap.String("path", path), zap.Error(err))
		return services.WrapDataUnavailable(fmt.Sprintf("invalid JSON in %s", path), err)
	}

	l.logger.Debug("loaded document", zap.String("path", path))
	return nil
}

// LoadPolicySet reads and validates a policy document.
func (l *Loader) LoadPolicySet(path string) (*models.PolicySet, error) {
	var set models.PolicySet
	if err := l.readDocument(path, &set); err != nil {
		return nil, err
	}

	if set.Policies == nil {
		return nil, services.NewDomainError(services.ErrorTypeValidation,
			fmt.Sprintf("policy document %s is missing the policies key", path), nil)
	}

	if err := utils.ValidateStruct(&set); err != nil {
		details := utils.GetValidationFields(err)
		domainErr := services.NewDomainError(services.ErrorTypeValidation,
			fmt.Sprintf("policy document %s failed validation", path), err)
		for field, msg := range details {
			domainErr.WithDetail(field, msg)
		}
		return nil, domainErr
	}

	l.logger.Info("loaded policy set", zap.String("path", path), zap.Int("policies", len(set.Policies)))
	return &set, nil
}

// LoadSubjectDirectory reads and validates a subject directory document.
func (l *Loader) LoadSubjectDirectory(path string) (*models.SubjectDirectory, error) {
	var dir models.SubjectDirectory
	if err := l.readDocument(path, &dir); err != nil {
		return nil, err
	}

	if dir.Users == nil {
		return nil, services.NewDomainError(services.ErrorTypeValidation,
			fmt.Sprintf("subject document %s is missing the users key", path), nil)
	}

	for i := range dir.Users {
		if dir.Users[i].ID == "" {
			return nil, services.NewDomainError(services.ErrorTypeValidation,
				fmt.Sprintf("subject document %s has a user without an id", path), nil)
		}
	}

	l.logger.Info("loaded subject directory", zap.String("path", path), zap.Int("users", len(dir.Users)))
	return &dir, nil
}

// LoadContextSnapshot reads a context snapshot document. Both context
// fields are optional, so only well-formedness is checked.
func (l *Loader) LoadContextSnapshot(path string) (*models.ContextSnapshot, error) {
	var snap models.ContextSnapshot
	if err := l.readDocument(path, &snap); err != nil {
		return nil, err
	}

	if snap.Context == nil {
		return nil, services.NewDomainError(services.ErrorTypeValidation,
			fmt.Sprintf("context document %s is missing the context key", path), nil)
	}

	l.logger.Info("loaded context snapshot", zap.String("path", path))
	return &snap, nil
}

// LoadAll loads the three evaluation inputs in one call. The first
// failure wins; no partial results are returned.
func (l *Loader) LoadAll(policyPath, userPath, contextPath string) (*models.PolicySet, *models.SubjectDirectory, *models.ContextSnapshot, error) {
	set, err := l.LoadPolicySet(policyPath)
	if err != nil {
		return nil, nil, nil, err
	}
	dir, err := l.LoadSubjectDirectory(userPath)
	if err != nil {
		return nil, nil, nil, err
	}
	snap, err := l.LoadContextSnapshot(contextPath)
	if err != nil {
		return nil, nil, nil, err
	}
	return set, dir, snap, nil
}
