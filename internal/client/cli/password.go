package cli

import (
	"context"
	"log"

	"github.com/dmitrijs2005/walletvault/internal/common"
)

// ChangePassword needs the old password because the server re-encrypts the
// stored seed: it decrypts with the old key and seals with a key derived
// from the new password and a fresh salt, all in one transaction.
func (a *App) ChangePassword(ctx context.Context) {
	oldPassword, err := GetPassword("Enter current password", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	defer common.WipeByteArray(oldPassword)

	newPassword, err := GetPassword("Enter new password", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	defer common.WipeByteArray(newPassword)

	confirm, err := GetPassword("Repeat new password", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	defer common.WipeByteArray(confirm)

	if string(newPassword) != string(confirm) {
		log.Printf("Passwords do not match")
		return
	}

	err = a.withToken(ctx, func(token string) error {
		return a.api.ChangePassword(ctx, token, string(oldPassword), string(newPassword))
	})
	if err != nil {
		log.Printf("Password change unsuccessful: %s", err.Error())
		return
	}

	log.Printf("Password changed; the wallet was re-encrypted under the new password")
}

// ResetPassword walks the forgot-password flow: request a mailed code,
// verify it, then set the new password with the returned ticket. Existing
// sessions are revoked and the seed stays sealed under the old password
// until 'recover' is run.
func (a *App) ResetPassword(ctx context.Context) {
	email, err := GetSimpleText(a.reader, "Enter account email", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	if err := a.api.RequestPasswordReset(ctx, email); err != nil {
		log.Printf("error: %s", err.Error())
		return
	}
	log.Printf("If the email is registered, a 6-digit code has been sent")

	code, err := GetSimpleText(a.reader, "Enter the code from the email", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	ticket, err := a.api.VerifyResetCode(ctx, email, code)
	if err != nil {
		log.Printf("Code verification unsuccessful: %s", err.Error())
		return
	}

	newPassword, err := GetPassword("Enter new password", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	defer common.WipeByteArray(newPassword)

	if err := a.api.ResetPassword(ctx, ticket, string(newPassword)); err != nil {
		log.Printf("Password reset unsuccessful: %s", err.Error())
		return
	}

	log.Printf("Password reset. Log in and run 'recover' to re-import your seed phrase:")
	log.Printf("the stored seed is still sealed under the old password.")
}
