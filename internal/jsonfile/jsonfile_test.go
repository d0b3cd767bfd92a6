package jsonfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	t.Run("should create missing directories and write indented json", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "nested", "data.json")

		// when
		err := Write(path, map[string]string{"Monday": "2:00 PM - 5:00 PM"})

		// then
		require.NoError(t, err)
		data, err := Read(path)
		require.NoError(t, err)
		assert.Equal(t, "{\n  \"Monday\": \"2:00 PM - 5:00 PM\"\n}\n", string(data))
	})

	t.Run("should replace existing content without leaving temp files", func(t *testing.T) {
		// given
		dir := t.TempDir()
		path := filepath.Join(dir, "data.json")
		require.NoError(t, Write(path, map[string]string{"a": "1"}))

		// when
		err := Write(path, map[string]string{"a": "2"})

		// then
		require.NoError(t, err)
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "data.json", entries[0].Name())
		data, err := Read(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"a": "2"`)
	})

	t.Run("should not escape html characters or non-ascii text", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "data.json")

		// when
		err := Write(path, map[string]string{"note": "<b>—</b> & more"})

		// then
		require.NoError(t, err)
		data, err := Read(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "<b>—</b> & more")
	})

	t.Run("should fail on values that cannot be encoded", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "data.json")

		// when
		err := Write(path, map[string]any{"fn": func() {}})

		// then
		require.Error(t, err)
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
	})
}
