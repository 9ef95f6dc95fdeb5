package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefixFor(t *testing.T) {
	prefix, ok := PrefixFor("translation")
	require.True(t, ok)
	assert.Equal(t, "translations", prefix)

	_, ok = PrefixFor("secrets")
	assert.False(t, ok)
}

func TestValidKey(t *testing.T) {
	assert.True(t, ValidKey("content/2025/09/01/song_123.mp3"))
	assert.True(t, ValidKey("translations/2025/09/01/doc_123.pdf"))

	assert.False(t, ValidKey("content/../etc/passwd"))
	assert.False(t, ValidKey("backups/2025/dump.sql"))
	assert.False(t, ValidKey(""))
}

func TestGenerateKeyStaysUnderPrefix(t *testing.T) {
	key := GenerateKey("consent", "signed form.pdf")

	assert.True(t, strings.HasPrefix(key, "consent/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))
	assert.True(t, ValidKey(key))
}
