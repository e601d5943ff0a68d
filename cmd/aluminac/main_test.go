package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLibraryModeSucceedsWithEmptyScope(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.c")

	code := run([]string{"--library", "-o", out})
	assert.Equal(t, 0, code)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotNil(t, data)
}

func TestRunWithoutLibraryFlagFailsOnMissingMain(t *testing.T) {
	code := run([]string{"-o", filepath.Join(t.TempDir(), "out.c")})
	assert.Equal(t, 1, code)
}

func TestRunRejectsUnknownFlag(t *testing.T) {
	code := run([]string{"--not-a-flag"})
	assert.Equal(t, 1, code)
}

func TestRunAcceptsRepeatedCfgFlags(t *testing.T) {
	code := run([]string{"--library", "--cfg", "threading", "--cfg", "target=linux", "-o", filepath.Join(t.TempDir(), "out.c")})
	assert.Equal(t, 0, code)
}
