package lock

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vm.lock")

	first, err := Acquire(path)
	require.NoError(t, err)

	// flock locks belong to the open file description, so a second open
	// in the same process conflicts too.
	_, err = Acquire(path)
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, first.Release())

	again, err := Acquire(path)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}

func TestReleaseTwice(t *testing.T) {
	l, err := Acquire(filepath.Join(t.TempDir(), "vm.lock"))
	require.NoError(t, err)
	require.NoError(t, l.Release())
	assert.NoError(t, l.Release())
}

func TestPathFor(t *testing.T) {
	p := PathFor("testvm")
	assert.True(t, strings.HasSuffix(p, "qvm-testvm.lock"))
}
