package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSave(t *testing.T) {
	store, err := NewLocalStorage(filepath.Join(t.TempDir(), "exports"))
	require.NoError(t, err)

	path, err := store.Save("streams/cs-3a.csv", []byte("Day,Time\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.Dir(), "streams", "cs-3a.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Day,Time\n", string(data))
}

func TestLocalStorageRejectsEscapingNames(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "../outside.csv", "/etc/passwd", "a/../../b.csv"} {
		_, err := store.Save(name, []byte("x"))
		assert.Error(t, err, name)
	}
}
