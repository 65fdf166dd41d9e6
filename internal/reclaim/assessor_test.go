package reclaim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssessorTrackBytesDeleted(t *testing.T) {
	space := &fakeSpace{free: 850}
	a := NewAssessor(space, root, 1000, 850)
	assert.Equal(t, int64(150), a.Deficit())

	for freed, want := range map[int64]bool{0: false, 149: false, 150: true, 300: true} {
		ok, err := a.Sufficient(TrackBytesDeleted, freed)
		require.NoError(t, err)
		assert.Equal(t, want, ok, "freed=%d", freed)
	}
	assert.Zero(t, space.calls)
}

func TestAssessorNegativeDeficit(t *testing.T) {
	a := NewAssessor(&fakeSpace{}, root, 100, 500)
	assert.Equal(t, int64(-400), a.Deficit())

	ok, err := a.Sufficient(TrackBytesDeleted, 0)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAssessorFilesystemFree(t *testing.T) {
	space := &fakeSpace{free: 850}
	a := NewAssessor(space, root, 1000, 850)

	ok, err := a.Sufficient(TrackFilesystemFree, 1_000_000)
	require.NoError(t, err)
	assert.False(t, ok, "bytes freed are not consulted")

	space.free = 1000
	ok, err = a.Sufficient(TrackFilesystemFree, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, space.calls)

	space.err = errors.New("statfs failed")
	_, err = a.Sufficient(TrackFilesystemFree, 0)
	assert.ErrorIs(t, err, ErrFreeSpace)
}
