package credential

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Low cost keeps the bcrypt tests fast; verification is cost-agnostic.
const testCost = 4

func TestHashVerifyRoundTrip(t *testing.T) {
	t.Parallel()
	h, err := Hash("3F2A9C11D4B870E6", testCost)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(h, "$2"))

	assert.True(t, Verify("3F2A9C11D4B870E6", h))
	assert.False(t, Verify("3F2A9C11D4B870E7", h))
	assert.False(t, Verify("", h))
}

func TestVerifyNormalizesCandidate(t *testing.T) {
	t.Parallel()
	h, err := Hash("abcd1234", testCost)
	require.NoError(t, err)

	assert.True(t, Verify("ABCD1234", h))
	assert.True(t, Verify("  abcd1234\n", h))
	assert.False(t, Verify("ABCD 1234", h))
}

func TestVerifyLegacyPlaintext(t *testing.T) {
	t.Parallel()
	// Records written before hashing store the normalized secret verbatim.
	stored := "LEGACY99KEY"

	assert.True(t, Verify("legacy99key", stored))
	assert.True(t, Verify("  LEGACY99KEY  ", stored))
	assert.False(t, Verify("LEGACY99KEX", stored))
	assert.False(t, Verify("LEGACY99KEY0", stored))
}

func TestVerifyRejectsEmptyStoredForm(t *testing.T) {
	t.Parallel()
	assert.False(t, Verify("anything", ""))
	assert.False(t, Verify("", ""))
}

func TestNewUserCodeShape(t *testing.T) {
	t.Parallel()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := NewUserCode()
		require.NoError(t, err)
		require.Len(t, code, len("INV-")+6)
		require.True(t, strings.HasPrefix(code, "INV-"))
		for _, r := range code[4:] {
			assert.Contains(t, codeAlphabet, string(r))
		}
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}

func TestGeneratedSecretLengths(t *testing.T) {
	t.Parallel()
	key, err := NewAccessKey()
	require.NoError(t, err)
	tok, err := NewEnlistToken()
	require.NoError(t, err)

	assert.Len(t, key, 32)
	assert.Len(t, tok, 48)
	assert.Greater(t, len(tok), len(key))
	assert.Equal(t, strings.ToUpper(key), key)
}
