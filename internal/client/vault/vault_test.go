package vault

import (
	"testing"

	"github.com/dmitrijs2005/walletvault/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundtrip(t *testing.T) {
	salt := NewSalt()
	require.Len(t, salt, cryptox.KDFSaltSize)

	sealed, err := SealSeed("abandon ability able about", []byte("password-123"), salt)
	require.NoError(t, err)
	assert.NotContains(t, sealed, "abandon", "ciphertext must not leak the phrase")

	seed, ok := OpenSeed(sealed, []byte("password-123"), salt)
	require.True(t, ok)
	assert.Equal(t, "abandon ability able about", seed)
}

func TestOpenSeed_WrongPassword(t *testing.T) {
	salt := NewSalt()
	sealed, err := SealSeed("abandon ability able about", []byte("password-123"), salt)
	require.NoError(t, err)

	_, ok := OpenSeed(sealed, []byte("password-124"), salt)
	assert.False(t, ok)
}

func TestOpenSeed_WrongSalt(t *testing.T) {
	salt := NewSalt()
	sealed, err := SealSeed("abandon ability able about", []byte("password-123"), salt)
	require.NoError(t, err)

	_, ok := OpenSeed(sealed, []byte("password-123"), NewSalt())
	assert.False(t, ok)
}

func TestNewSalt_Unique(t *testing.T) {
	assert.NotEqual(t, NewSalt(), NewSalt())
}
