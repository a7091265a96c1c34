package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Folder = t.TempDir()
	opts.Level = "warn"

	log, err := NewWithOptions(opts)
	require.NoError(t, err)
	log.Debug("only in the debug file")
	log.Info("info and debug file")
	_ = log.Sync()

	info, err := os.ReadFile(filepath.Join(opts.Folder, opts.Filename))
	require.NoError(t, err)
	debug, err := os.ReadFile(filepath.Join(opts.Folder, opts.DebugFilename))
	require.NoError(t, err)

	assert.NotContains(t, string(info), "only in the debug file")
	assert.Contains(t, string(info), "info and debug file")
	assert.Contains(t, string(debug), "only in the debug file")
}

func TestNewWithBadLevel(t *testing.T) {
	opts := DefaultOptions()
	opts.Folder = t.TempDir()
	opts.Level = "loud"
	_, err := NewWithOptions(opts)
	assert.Error(t, err)
}
