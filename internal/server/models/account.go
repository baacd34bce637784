// Package models defines the persistence-level entities of the wallet
// backend: accounts, wallets, refresh tokens, and password reset codes.
package models

import "time"

// Account is a registered user. PasswordHash is a bcrypt hash and is never
// serialized to clients. TwoFactorSecret is a base32 TOTP secret, set once
// at enrollment and empty when 2FA is disabled.
type Account struct {
	ID              string
	Username        string
	Email           string
	Name            string
	PasswordHash    string
	WalletAddress   string
	PhoneNumber     string
	AvatarURI       string
	CountryCode     string
	CallingCode     string
	TwoFactorSecret string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TwoFactorEnabled reports whether the account completed TOTP enrollment.
func (a *Account) TwoFactorEnabled() bool {
	return a.TwoFactorSecret != ""
}
