package models

// PolicyStatus controls whether a policy participates in evaluation.
type PolicyStatus string

const (
	PolicyStatusEnabled  PolicyStatus = "enabled"
	PolicyStatusDisabled PolicyStatus = "disabled"
)

// AccessGrant is the only grant control value with a positive effect.
// Any other value means the policy can match but never authorizes access.
const AccessGrant = "grant"

// TimeWindow restricts a policy to a daily time range, inclusive on both
// ends. Bounds are "HH:MM" strings; an absent bound defaults to the start
// or end of the day. A window whose end precedes its start never matches:
// overnight ranges are not supported.
type TimeWindow struct {
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

// Conditions is the predicate a context snapshot must satisfy for a policy
// to apply. Every field is optional and the fields are ANDed together; an
// absent or empty field is satisfied by any context. That open default is
// deliberate: conditions narrow a policy, they are never required.
type Conditions struct {
	Time         *TimeWindow `json:"time,omitempty"`
	Locations    []string    `json:"location,omitempty"`
	DeviceHealth string      `json:"device_health,omitempty"`
}

// GrantControls carries the effect a matching policy has.
type GrantControls struct {
	Access string `json:"access" validate:"required"`
}

// Policy binds a set of subjects to a condition predicate and a grant
// control. Names are used for audit output and should be unique, though
// uniqueness is not enforced.
type Policy struct {
	Name          string        `json:"name" validate:"required"`
	Status        PolicyStatus  `json:"status" validate:"required,oneof=enabled disabled"`
	Subjects      []string      `json:"users"`
	Conditions    Conditions    `json:"conditions"`
	GrantControls GrantControls `json:"grant_controls"`
}

// Enabled reports whether the policy participates in evaluation.
func (p *Policy) Enabled() bool {
	return p.Status == PolicyStatusEnabled
}

// AppliesTo reports whether the policy targets the given subject id.
func (p *Policy) AppliesTo(subjectID string) bool {
	for _, s := range p.Subjects {
		if s == subjectID {
			return true
		}
	}
	return false
}

// PolicySet is the document shape policies arrive in. Order is
// significant: it is the precedence tie-break during evaluation. A nil
// Policies slice means the top-level key was absent, which is a loading
// defect; an empty slice is a legal set that denies everything.
type PolicySet struct {
	Policies []Policy `json:"policies" validate:"omitempty,dive"`
}
