package validation

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckCommandExists(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("relies on POSIX tools on PATH")
	}

	require.NoError(t, CheckCommandExists("sh"))
	require.Error(t, CheckCommandExists("command-that-should-not-exist-12345"))
	require.Error(t, CheckCommandExists(""))
}

func TestCheckFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "fob.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0o600))

	require.NoError(t, CheckFileExists(file))
	require.NoError(t, CheckFileExists(dir))
	require.ErrorContains(t, CheckFileExists(filepath.Join(dir, "missing")), "does not exist")
	require.Error(t, CheckFileExists(""))
}
