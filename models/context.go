package models

// RequestContext holds the environmental facts about one access attempt.
// Both fields are optional; an absent value only fails conditions that
// require it.
type RequestContext struct {
	Location     string `json:"location,omitempty"`
	DeviceHealth string `json:"device_health,omitempty"`
}

// ContextSnapshot is the document shape context data arrives in. It is
// valid for exactly one evaluation call; the evaluation instant is not
// part of the snapshot and is threaded separately so evaluation stays
// deterministic under test. Context is a pointer so a document missing
// the top-level key is distinguishable from an empty context.
type ContextSnapshot struct {
	Context *RequestContext `json:"context"`
}
