package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZWithoutInit(t *testing.T) {
	L = nil
	assert.NotNil(t, Z())
	assert.NotPanics(t, func() { Infow("hello", "k", 1) })
}

func TestReleaseModeWritesFile(t *testing.T) {
	dir := t.TempDir()
	l := New("release", Options{Dir: dir, Filename: "test.log"})
	l.Info("order created")
	require.NoError(t, l.Sync())

	b, err := os.ReadFile(filepath.Join(dir, "test.log"))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"message":"order created"`)
}

func TestInitReplacesGlobal(t *testing.T) {
	t.Cleanup(func() { L = nil })
	l := Init("debug", Options{})
	assert.Same(t, l, Z())
}
