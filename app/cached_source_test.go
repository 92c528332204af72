package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gatewise/accesssim/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSource counts inner loads and can be switched to failing.
type countingSource struct {
	loads int
	fail  bool
}

func (s *countingSource) Load(_ context.Context) (*models.PolicySet, *models.SubjectDirectory, *models.ContextSnapshot, error) {
	s.loads++
	if s.fail {
		return nil, nil, nil, errors.New("source unavailable")
	}
	return &models.PolicySet{Policies: []models.Policy{}},
		&models.SubjectDirectory{Users: []models.User{}},
		&models.ContextSnapshot{Context: &models.RequestContext{}},
		nil
}

func TestCachedSource_HitWithinTTL(t *testing.T) {
	inner := &countingSource{}
	cache := NewCachedSource(inner, 5*time.Minute)

	_, _, _, err := cache.Load(context.Background())
	require.NoError(t, err)
	_, _, _, err = cache.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, inner.loads)
	hits, misses := cache.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
}

func TestCachedSource_ExpiredEntryReloads(t *testing.T) {
	inner := &countingSource{}
	cache := NewCachedSource(inner, time.Nanosecond)

	_, _, _, err := cache.Load(context.Background())
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	_, _, _, err = cache.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, inner.loads)
}

func TestCachedSource_FailureNotCached(t *testing.T) {
	inner := &countingSource{fail: true}
	cache := NewCachedSource(inner, 5*time.Minute)

	_, _, _, err := cache.Load(context.Background())
	require.Error(t, err)

	inner.fail = false
	_, _, _, err = cache.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, inner.loads)
}

func TestCachedSource_Invalidate(t *testing.T) {
	inner := &countingSource{}
	cache := NewCachedSource(inner, 5*time.Minute)

	_, _, _, err := cache.Load(context.Background())
	require.NoError(t, err)

	cache.Invalidate()

	_, _, _, err = cache.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, inner.loads)
}
