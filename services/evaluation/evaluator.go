package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/gatewise/accesssim/models"
	"github.com/gatewise/accesssim/services"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service is the policy decision engine. It holds no mutable state across
// calls and performs no I/O: given the same policy set, directory,
// snapshot and instant it always produces the same decision, so it is safe
// to call concurrently without synchronization.
type Service struct {
	logger *zap.Logger
}

// NewService creates a new evaluation Service instance
func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}
}

// Evaluate decides whether the subject named in req should be granted
// access under the supplied policy set, subject directory and context
// snapshot.
//
// Precedence contract: policies are scanned in the order supplied and the
// first enabled, targeted policy whose conditions hold and whose grant
// control is "grant" authorizes access; the scan stops there, so no later
// policy can override a grant. Matching policies with any other grant
// control are recorded in the trace and the scan continues. This ordered
// first-grant-wins rule is a business rule, not an optimization: callers
// must not reorder stored policies without intending a semantic change.
//
// Missing top-level inputs are a loading failure upstream and return a
// data_unavailable error; they are never conflated with an empty data set
// that legitimately denies. An unknown subject is a legitimate deny
// decision, not an error. A malformed condition aborts the evaluation
// with a malformed_condition error naming the offending policy.
func (s *Service) Evaluate(ctx context.Context, set *models.PolicySet, dir *models.SubjectDirectory, snap *models.ContextSnapshot, req Request) (*Decision, error) {
	// A nil slice or inner pointer means the document's top-level key was
	// absent upstream, which is a loading defect, not an empty data set.
	if set == nil || set.Policies == nil {
		return nil, services.ErrPolicyDataUnavailable
	}
	if dir == nil || dir.Users == nil {
		return nil, services.ErrSubjectDataUnavailable
	}
	if snap == nil || snap.Context == nil {
		return nil, services.ErrContextDataUnavailable
	}
	if req.SubjectID == "" {
		return nil, services.ErrEmptySubjectID
	}

	// The evaluation instant is captured once for the whole call so every
	// policy sees the same clock. Zero means the caller did not pin it.
	at := req.At
	if at.IsZero() {
		at = time.Now()
	}

	decision := &Decision{
		EvaluationID: uuid.New(),
		SubjectID:    req.SubjectID,
		EvaluatedAt:  at,
		Trace:        make([]TraceEntry, 0, len(set.Policies)),
	}

	user := dir.FindUser(req.SubjectID)
	if user == nil {
		decision.Reason = "unknown subject"
		s.logger.Warn("subject not found in directory",
			zap.String("subject_id", req.SubjectID),
			zap.String("evaluation_id", decision.EvaluationID.String()))
		return decision, nil
	}

	for i := range set.Policies {
		policy := &set.Policies[i]

		if !policy.Enabled() {
			decision.Trace = append(decision.Trace, TraceEntry{
				Policy:  policy.Name,
				Outcome: OutcomeSkippedDisabled,
			})
			continue
		}

		if !policy.AppliesTo(user.ID) {
			decision.Trace = append(decision.Trace, TraceEntry{
				Policy:  policy.Name,
				Outcome: OutcomeNotTargeted,
			})
			continue
		}

		matched, reason, err := MatchConditions(policy.Conditions, *snap.Context, at)
		if err != nil {
			return nil, services.WrapError(services.ErrorTypeMalformedCondition,
				fmt.Sprintf("policy %q has an unparseable condition", policy.Name), err)
		}

		if !matched {
			decision.Trace = append(decision.Trace, TraceEntry{
				Policy:  policy.Name,
				Outcome: OutcomeConditionsNotMet,
				Reason:  reason,
			})
			continue
		}

		if policy.GrantControls.Access == models.AccessGrant {
			decision.Granted = true
			decision.GrantedBy = policy.Name
			decision.Reason = fmt.Sprintf("granted by policy %q", policy.Name)
			decision.Trace = append(decision.Trace, TraceEntry{
				Policy:  policy.Name,
				Outcome: OutcomeGranted,
			})
			s.logger.Info("access granted",
				zap.String("subject_id", user.ID),
				zap.String("policy", policy.Name),
				zap.String("evaluation_id", decision.EvaluationID.String()))
			// Grant takes precedence over anything that follows.
			return decision, nil
		}

		decision.Trace = append(decision.Trace, TraceEntry{
			Policy:  policy.Name,
			Outcome: OutcomeMatchedNotGranting,
			Reason:  fmt.Sprintf("grant control is %q", policy.GrantControls.Access),
		})
	}

	decision.Reason = "no qualifying grant"
	s.logger.Info("access denied",
		zap.String("subject_id", user.ID),
		zap.String("evaluation_id", decision.EvaluationID.String()),
		zap.Int("policies_considered", len(decision.Trace)))
	return decision, nil
}
