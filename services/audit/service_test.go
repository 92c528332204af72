package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gatewise/accesssim/services/evaluation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// captureSink collects recorded events for assertions.
type captureSink struct {
	mu     sync.Mutex
	events []*Event
}

func (s *captureSink) Record(_ context.Context, event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *captureSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func testDecision(granted bool) *evaluation.Decision {
	return &evaluation.Decision{
		EvaluationID: uuid.New(),
		SubjectID:    "u1",
		Granted:      granted,
		EvaluatedAt:  time.Now(),
	}
}

func TestRecorder_SubmitAndDrain(t *testing.T) {
	sink := &captureSink{}
	recorder := NewRecorder(sink, zap.NewNop(), Config{BufferSize: 16, WorkerCount: 2})
	require.NoError(t, recorder.Start())

	for i := 0; i < 10; i++ {
		assert.True(t, recorder.Submit(testDecision(i%2 == 0)))
	}

	require.NoError(t, recorder.Stop(2*time.Second))
	assert.Equal(t, 10, sink.len())

	granted, denied, _ := recorder.Counters().Snapshot()
	assert.Equal(t, uint64(5), granted)
	assert.Equal(t, uint64(5), denied)
}

func TestRecorder_DropsWhenBufferFull(t *testing.T) {
	sink := &captureSink{}
	recorder := NewRecorder(sink, zap.NewNop(), Config{BufferSize: 1, WorkerCount: 1})
	// Not started: nothing drains the channel, so the second submit drops.

	assert.True(t, recorder.Submit(testDecision(true)))
	assert.False(t, recorder.Submit(testDecision(true)))
}

func TestRecorder_StartTwice(t *testing.T) {
	recorder := NewRecorder(&captureSink{}, zap.NewNop(), DefaultConfig())
	require.NoError(t, recorder.Start())
	assert.Error(t, recorder.Start())
	require.NoError(t, recorder.Stop(time.Second))
}

func TestRecorder_StopWithoutStart(t *testing.T) {
	recorder := NewRecorder(&captureSink{}, zap.NewNop(), DefaultConfig())
	assert.Error(t, recorder.Stop(time.Second))
}

func TestRecorder_NilDecisionIgnored(t *testing.T) {
	recorder := NewRecorder(&captureSink{}, zap.NewNop(), DefaultConfig())
	assert.False(t, recorder.Submit(nil))
}

func TestZapSink_Record(t *testing.T) {
	sink := NewZapSink(zap.NewNop())
	d := testDecision(true)
	d.GrantedBy = "P1"
	d.Trace = []evaluation.TraceEntry{{Policy: "P1", Outcome: evaluation.OutcomeGranted}}

	assert.NoError(t, sink.Record(context.Background(), &Event{Decision: d, RecordedAt: time.Now()}))
}
