package models

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/pitchnet-go/internal/conf"
)

func TestListModels(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"pesto_512.tflite", "pesto_1024.tflite", "readme.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	var buf bytes.Buffer
	require.NoError(t, listModels(&buf, dir))

	out := buf.String()
	assert.Contains(t, out, "pesto_512.tflite")
	assert.Contains(t, out, "512")
	assert.Contains(t, out, "pesto_1024.tflite")
	assert.Contains(t, out, "1024")
	assert.NotContains(t, out, "readme.txt")
}

func TestListModelsEmptyDirectory(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, listModels(&buf, t.TempDir()))
	assert.Contains(t, buf.String(), "No models found")
}

func TestListModelsMissingDirectory(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	assert.Error(t, listModels(&buf, filepath.Join(t.TempDir(), "nope")))
}

func TestCommandRunsAgainstArgumentDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pesto_256.tflite"), []byte("x"), 0o644))

	var buf bytes.Buffer
	cmd := Command(&conf.Settings{})
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{dir})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "pesto_256.tflite")
}
