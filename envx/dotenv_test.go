package envx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	doc := `
# admin
ADMIN_EMAIL=admin@example.com
export PUBLIC_BASE_URL="https://chat.example.com"
CHAT_SYSTEM_PROMPT='شما دستیار فروشگاه هستید # نه کامنت'
LOG_LEVEL=debug # verbose
not a pair
=missing-key
`
	pairs, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, [][2]string{
		{"ADMIN_EMAIL", "admin@example.com"},
		{"PUBLIC_BASE_URL", "https://chat.example.com"},
		{"CHAT_SYSTEM_PROMPT", "شما دستیار فروشگاه هستید # نه کامنت"},
		{"LOG_LEVEL", "debug"},
	}, pairs)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ORION_TEST_KEEP=file\nORION_TEST_NEW=file\n"), 0o600))

	t.Setenv("ORION_TEST_KEEP", "process")
	t.Setenv("ORION_TEST_NEW", "")
	require.NoError(t, os.Unsetenv("ORION_TEST_NEW"))

	require.NoError(t, LoadDotEnvIfPresent(path))
	assert.Equal(t, "process", os.Getenv("ORION_TEST_KEEP"))
	assert.Equal(t, "file", os.Getenv("ORION_TEST_NEW"))

	require.NoError(t, LoadDotEnvOverrideIfPresent(path))
	assert.Equal(t, "file", os.Getenv("ORION_TEST_KEEP"))
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	assert.NoError(t, LoadDotEnvIfPresent(filepath.Join(t.TempDir(), "absent.env")))
}
