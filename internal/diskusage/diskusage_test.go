package diskusage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeFreeBytes(t *testing.T) {
	dir := t.TempDir()

	free, err := Probe{}.FreeBytes(dir)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, free, int64(0))

	usage, err := Probe{}.Usage(dir)
	require.NoError(t, err)
	assert.LessOrEqual(t, usage.Free, usage.Total)
}

func TestProbeMissingPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	_, err := Probe{}.FreeBytes(missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), missing)
}
