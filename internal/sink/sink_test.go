package sink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSinkFlushesPerRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.csv")

	s, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Name())

	require.NoError(t, s.Write("line one\n"))

	// Each record must be durable before the next poll, without Close.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line one\n", string(data))

	require.NoError(t, s.Write("line two\n"))
	require.NoError(t, s.Close())

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", string(data))
}

func TestStdoutSink(t *testing.T) {
	s, err := New("")
	require.NoError(t, err)
	assert.Equal(t, "stdout", s.Name())
	// Closing must not close the process's stdout.
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}

func TestSinkOpenError(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "capture.csv"))
	require.Error(t, err)
}
