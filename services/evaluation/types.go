package evaluation

import (
	"time"

	"github.com/google/uuid"
)

// Request identifies the subject to evaluate and pins the evaluation
// instant. At is explicit rather than read from the wall clock inside the
// engine so that a call is a pure function of its inputs; the outermost
// caller (CLI or HTTP handler) defaults it to time.Now().
type Request struct {
	SubjectID string
	At        time.Time
}

// Outcome classifies what happened to one policy during a scan.
type Outcome string

const (
	// OutcomeSkippedDisabled: the policy is not enabled and was never evaluated.
	OutcomeSkippedDisabled Outcome = "skipped_disabled"
	// OutcomeNotTargeted: the policy does not list the subject.
	OutcomeNotTargeted Outcome = "not_targeted"
	// OutcomeConditionsNotMet: the policy targets the subject but at least
	// one condition failed against the context snapshot.
	OutcomeConditionsNotMet Outcome = "conditions_not_met"
	// OutcomeMatchedNotGranting: every condition held but the grant control
	// is not "grant"; the scan continues past it.
	OutcomeMatchedNotGranting Outcome = "matched_not_granting"
	// OutcomeGranted: the policy matched and granted; the scan stops here.
	OutcomeGranted Outcome = "granted"
)

// TraceEntry records why one policy did or did not authorize access.
type TraceEntry struct {
	Policy  string  `json:"policy"`
	Outcome Outcome `json:"outcome"`
	Reason  string  `json:"reason,omitempty"`
}

// Decision is the result of one evaluation call. Policies listed after a
// granting one carry no trace entries: the scan stops at the first grant.
type Decision struct {
	EvaluationID uuid.UUID    `json:"evaluation_id"`
	SubjectID    string       `json:"subject_id"`
	Granted      bool         `json:"granted"`
	GrantedBy    string       `json:"granted_by,omitempty"`
	Reason       string       `json:"reason,omitempty"`
	EvaluatedAt  time.Time    `json:"evaluated_at"`
	Trace        []TraceEntry `json:"trace"`
}
