package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWritePrivate_CreatesFileAndParents(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "nested", "dir", "session")

	require.NoError(t, WritePrivate(path, []byte("v1")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "v1", string(got))

	if runtime.GOOS != "windows" {
		fi, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

		di, err := os.Stat(filepath.Dir(path))
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o700), di.Mode().Perm()&0o700)
	}
}

func TestWritePrivate_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session")

	require.NoError(t, WritePrivate(path, []byte("first")))
	require.NoError(t, WritePrivate(path, []byte("second")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "second", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWritePrivate_ParentIsFile(t *testing.T) {
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	err := WritePrivate(filepath.Join(blocker, "session"), []byte("v"))
	require.Error(t, err)
}

func TestReadOptional(t *testing.T) {
	tmp := t.TempDir()

	got, err := ReadOptional(filepath.Join(tmp, "missing"))
	require.NoError(t, err)
	require.Nil(t, got)

	path := filepath.Join(tmp, "present")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o600))
	got, err = ReadOptional(path)
	require.NoError(t, err)
	require.Equal(t, "data", string(got))
}

func TestRemoveOptional(t *testing.T) {
	tmp := t.TempDir()
	require.NoError(t, RemoveOptional(filepath.Join(tmp, "missing")))

	path := filepath.Join(tmp, "present")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o600))
	require.NoError(t, RemoveOptional(path))
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
}
