package models

import "time"

// Wallet holds the single encrypted seed blob of an account (1:1).
//
// EncryptedSeed is ciphertext produced client-side with a key derived from
// the account's current password and KDFSalt; the server never sees the
// plaintext seed. The invariant the password-change flow must preserve:
// EncryptedSeed always decrypts under the key derived from the *current*
// password and the stored salt.
type Wallet struct {
	ID            string
	AccountID     string
	WalletAddress string
	EncryptedSeed string
	KDFSalt       []byte
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
