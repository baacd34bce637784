// Package cryptox implements the wallet-secret primitives: an argon2id key
// derivation function and an AES-GCM seed cipher. The ciphertext produced by
// EncryptSeed is self-contained (the nonce travels inside it), so decryption
// needs only the ciphertext string and the key.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"

	"golang.org/x/crypto/argon2"
)

// KDFSaltSize is the size of the per-account salt mixed into key derivation.
const KDFSaltSize = 32

// DeriveKey derives a 32-byte AES key from a password and a per-account salt
// using argon2id. Deterministic: the same (password, salt) pair always yields
// the same key, which is what lets a seed encrypted at registration be
// decrypted on any later login. The salt keeps two accounts with the same
// password from deriving the same key.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// EncryptSeed encrypts the plaintext seed with AES-256-GCM under key.
// The returned string is base64(nonce || ciphertext). A fresh random nonce
// is generated per call, so encrypting the same seed twice yields different
// ciphertexts.
func EncryptSeed(seed string, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := aesgcm.Seal(nonce, nonce, []byte(seed), nil)

	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptSeed reverses EncryptSeed. The second return value is false when the
// ciphertext is malformed or does not authenticate under key (wrong password).
// It never returns an error: a failed decrypt is an expected outcome the
// caller must branch on, not a fault.
func DecryptSeed(ciphertext string, key []byte) (string, bool) {
	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", false
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", false
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", false
	}

	if len(sealed) < aesgcm.NonceSize() {
		return "", false
	}
	nonce, ct := sealed[:aesgcm.NonceSize()], sealed[aesgcm.NonceSize():]

	seed, err := aesgcm.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", false
	}
	return string(seed), true
}
