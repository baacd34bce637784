// Package vault performs client-side sealing of the wallet seed phrase.
// The seed is encrypted with a key derived from the user's password before
// it ever leaves the machine; the server only stores the resulting blob and
// the salt needed to re-derive the key.
package vault

import (
	"github.com/dmitrijs2005/walletvault/internal/common"
	"github.com/dmitrijs2005/walletvault/internal/cryptox"
)

// NewSalt returns a fresh KDF salt. A new one is drawn for every seal so the
// derived key changes whenever the password does.
func NewSalt() []byte {
	return common.GenerateRandByteArray(cryptox.KDFSaltSize)
}

// SealSeed encrypts the seed phrase under a key derived from password and
// salt. The derived key is wiped before returning.
func SealSeed(seed string, password []byte, salt []byte) (string, error) {
	key := cryptox.DeriveKey(password, salt)
	defer common.WipeByteArray(key)
	return cryptox.EncryptSeed(seed, key)
}

// OpenSeed decrypts a sealed blob. The second return is false when the
// password is wrong or the blob is damaged; the two cases are intentionally
// indistinguishable.
func OpenSeed(sealed string, password []byte, salt []byte) (string, bool) {
	key := cryptox.DeriveKey(password, salt)
	defer common.WipeByteArray(key)
	return cryptox.DecryptSeed(sealed, key)
}
