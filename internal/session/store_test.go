package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGetDelete(t *testing.T) {
	s := NewStore()
	a := s.Create("ben-hackett")
	b := s.Create("ben-hackett")
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, s.Len())

	got, err := s.Get(a.ID)
	require.NoError(t, err)
	assert.Same(t, a, got)

	s.Delete(a.ID)
	_, err = s.Get(a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, s.Len())

	_, err = s.Get(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSweep(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := base
	s := NewStore()
	s.now = func() time.Time { return clock }

	stale := s.Create("a")
	clock = base.Add(90 * time.Minute)
	fresh := s.Create("b")

	assert.Equal(t, 0, s.Sweep(clock, 0))
	assert.Equal(t, 1, s.Sweep(clock, time.Hour))

	_, err := s.Get(stale.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestGetKeepsSessionAlive(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := base
	s := NewStore()
	s.now = func() time.Time { return clock }

	sess := s.Create("a")
	clock = base.Add(50 * time.Minute)
	_, err := s.Get(sess.ID)
	require.NoError(t, err)

	clock = base.Add(100 * time.Minute)
	assert.Equal(t, 0, s.Sweep(clock, time.Hour))
	assert.Equal(t, 1, s.Len())
}
