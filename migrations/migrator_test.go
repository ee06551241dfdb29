package migrations

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPending_SortsAndFilters(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_products.sql": {Data: []byte("SELECT 1;")},
		"0001_init.SQL":     {Data: []byte("SELECT 1;")},
		"README.md":         {Data: []byte("notes")},
		"old/0000_x.sql":    {Data: []byte("SELECT 1;")},
	}
	files, err := Pending(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_init.SQL", "0002_products.sql"}, files)
}

func TestFiles_Embedded(t *testing.T) {
	files, err := Pending(Files())
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "0001_init.sql", files[0])

	body, err := fs.ReadFile(Files(), files[0])
	require.NoError(t, err)
	for _, table := range []string{"chatbots", "products", "conversations", "messages", "tickets", "ticket_replies", "widget_events", "admin_sessions"} {
		assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS "+table+" (", table)
	}
}

func TestSource_FallsBackToEmbedded(t *testing.T) {
	files, err := Pending(Source(""))
	require.NoError(t, err)
	assert.Contains(t, files, "0001_init.sql")

	files, err = Pending(Source(t.TempDir()))
	require.NoError(t, err)
	assert.Contains(t, files, "0001_init.sql")
}

func TestSource_UsesDirectoryWithMigrations(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0001_custom.sql"), []byte("SELECT 1;"), 0o600))
	files, err := Pending(Source(dir))
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_custom.sql"}, files)
}
