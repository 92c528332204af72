package observability

import "sync/atomic"

// DecisionCounters tracks evaluation outcomes for the lifetime of the
// process. Safe for concurrent use.
type DecisionCounters struct {
	granted uint64
	denied  uint64
	errors  uint64
}

// RecordGrant increments the grant counter.
func (c *DecisionCounters) RecordGrant() {
	atomic.AddUint64(&c.granted, 1)
}

// RecordDeny increments the deny counter.
func (c *DecisionCounters) RecordDeny() {
	atomic.AddUint64(&c.denied, 1)
}

// RecordError increments the evaluation-error counter.
func (c *DecisionCounters) RecordError() {
	atomic.AddUint64(&c.errors, 1)
}

// Snapshot returns the current counter values.
func (c *DecisionCounters) Snapshot() (granted, denied, errors uint64) {
	return atomic.LoadUint64(&c.granted), atomic.LoadUint64(&c.denied), atomic.LoadUint64(&c.errors)
}
