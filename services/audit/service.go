// Package audit records evaluation decisions asynchronously so the
// decision path never blocks on observability. Decisions are not
// persisted; the shipped sink emits structured log events and the trace
// they carry is the audit trail.
package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gatewise/accesssim/internal/observability"
	"github.com/gatewise/accesssim/services/evaluation"
	"go.uber.org/zap"
)

// Event carries one decision to the sink.
type Event struct {
	Decision   *evaluation.Decision
	RecordedAt time.Time
}

// Sink consumes decision events.
type Sink interface {
	Record(ctx context.Context, event *Event) error
}

// ZapSink writes decision events as structured log entries.
type ZapSink struct {
	logger *zap.Logger
}

// NewZapSink creates a new ZapSink instance
func NewZapSink(logger *zap.Logger) *ZapSink {
	return &ZapSink{logger: logger}
}

// Record implements Sink.
func (s *ZapSink) Record(_ context.Context, event *Event) error {
	d := event.Decision
	fields := []zap.Field{
		zap.String("evaluation_id", d.EvaluationID.String()),
		zap.String("subject_id", d.SubjectID),
		zap.Bool("granted", d.Granted),
		zap.Time("evaluated_at", d.EvaluatedAt),
		zap.Int("policies_traced", len(d.Trace)),
	}
	if d.GrantedBy != "" {
		fields = append(fields, zap.String("granted_by", d.GrantedBy))
	}
	if d.Reason != "" {
		fields = append(fields, zap.String("reason", d.Reason))
	}
	for _, entry := range d.Trace {
		fields = append(fields, zap.String("policy."+entry.Policy, string(entry.Outcome)))
	}
	s.logger.Info("access decision", fields...)
	return nil
}

// Config holds configuration for the Recorder
type Config struct {
	BufferSize  int // Size of the event buffer channel
	WorkerCount int // Number of concurrent workers
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:  1024,
		WorkerCount: 2,
	}
}

// Recorder fans decision events out to a sink from a worker pool.
type Recorder struct {
	sink        Sink
	logger      *zap.Logger
	counters    *observability.DecisionCounters
	eventChan   chan *Event
	workerCount int
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	started     bool
	mu          sync.Mutex
}

// NewRecorder creates a new Recorder instance
func NewRecorder(sink Sink, logger *zap.Logger, config Config) *Recorder {
	ctx, cancel := context.WithCancel(context.Background())
	return &Recorder{
		sink:        sink,
		logger:      logger,
		counters:    &observability.DecisionCounters{},
		eventChan:   make(chan *Event, config.BufferSize),
		workerCount: config.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start starts the background workers
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return fmt.Errorf("audit recorder already started")
	}

	for i := 0; i < r.workerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.started = true
	r.logger.Info("started audit recorder",
		zap.Int("worker_count", r.workerCount),
		zap.Int("buffer_size", cap(r.eventChan)))
	return nil
}

// Submit enqueues a decision without blocking. Returns false when the
// buffer is full and the event was dropped.
func (r *Recorder) Submit(decision *evaluation.Decision) bool {
	if decision == nil {
		return false
	}

	if decision.Granted {
		r.counters.RecordGrant()
	} else {
		r.counters.RecordDeny()
	}

	event := &Event{Decision: decision, RecordedAt: time.Now()}
	select {
	case r.eventChan <- event:
		return true
	default:
		r.logger.Warn("audit buffer full, dropping decision event",
			zap.String("evaluation_id", decision.EvaluationID.String()))
		return false
	}
}

// SubmitError counts an evaluation that failed before producing a decision.
func (r *Recorder) SubmitError() {
	r.counters.RecordError()
}

// Counters exposes the decision counters.
func (r *Recorder) Counters() *observability.DecisionCounters {
	return r.counters
}

// Stop drains pending events and stops the workers. Waits up to timeout.
func (r *Recorder) Stop(timeout time.Duration) error {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return fmt.Errorf("audit recorder not started")
	}
	r.mu.Unlock()

	r.logger.Info("stopping audit recorder", zap.Int("pending_events", len(r.eventChan)))
	close(r.eventChan)

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.cancel()
		return nil
	case <-time.After(timeout):
		r.cancel()
		return fmt.Errorf("audit recorder stop timeout after %v", timeout)
	}
}

func (r *Recorder) worker(id int) {
	defer r.wg.Done()

	for event := range r.eventChan {
		if err := r.sink.Record(r.ctx, event); err != nil {
			r.logger.Error("failed to record decision",
				zap.Int("worker", id),
				zap.String("evaluation_id", event.Decision.EvaluationID.String()),
				zap.Error(err))
		}
	}
}
