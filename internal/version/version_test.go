package version

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	f := File{Path: filepath.Join(t.TempDir(), "version.json")}
	want := Version{Version: "alpha", Build: 3}

	require.NoError(t, f.Write(want))
	require.Equal(t, want, f.Read())
}

func TestReadMissingOrBrokenFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.Equal(t, Default(), File{Path: filepath.Join(dir, "missing.json")}.Read())

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{not json"), 0o600))
	require.Equal(t, Version{Version: "alpha", Build: 0}, File{Path: broken}.Read())

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte("{}"), 0o600))
	require.Equal(t, Default(), File{Path: empty}.Read())
}

func TestIncFromMissingFile(t *testing.T) {
	t.Parallel()

	f := File{Path: filepath.Join(t.TempDir(), "version.json")}

	_, err := f.Inc()
	require.NoError(t, err)
	v, err := f.Inc()
	require.NoError(t, err)

	require.Equal(t, Version{Version: "alpha", Build: 2}, v)
	require.Equal(t, Version{Version: "alpha", Build: 2}, f.Read())
}

func TestWriteFailure(t *testing.T) {
	t.Parallel()

	f := File{Path: filepath.Join(t.TempDir(), "no", "such", "dir", "version.json")}
	require.Error(t, f.Write(Default()))

	_, err := f.Inc()
	require.Error(t, err)

	require.Error(t, File{}.Write(Default()))
}

func TestFileFormat(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "version.json")
	require.NoError(t, File{Path: path}.Write(Version{Version: "beta", Build: 7}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, `{"Version":"beta","Build":7}`, string(data))
}

func TestShiftAndParse(t *testing.T) {
	t.Parallel()

	v := Version{Version: "alpha", Build: 4}
	require.Equal(t, "alpha.4", v.String())
	require.Equal(t, "alpha.5", v.Shift(1))

	parsed, ok := Parse("alpha.12")
	require.True(t, ok)
	require.Equal(t, Version{Version: "alpha", Build: 12}, parsed)

	parsed, ok = Parse("beta.x")
	require.True(t, ok)
	require.Equal(t, Version{Version: "beta"}, parsed)

	_, ok = Parse("latest")
	require.False(t, ok)
}
