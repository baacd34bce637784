package cli

import (
	"context"
	"log"

	"github.com/dmitrijs2005/walletvault/internal/client/client"
	"github.com/dmitrijs2005/walletvault/internal/client/vault"
	"github.com/dmitrijs2005/walletvault/internal/common"
)

// Register creates an account. The seed phrase is sealed locally under the
// chosen password before anything is sent; the server never sees it in the
// clear.
func (a *App) Register(ctx context.Context) {
	username, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	walletAddress, err := GetSimpleText(a.reader, "Enter wallet address", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	seed, err := GetSimpleText(a.reader, "Enter seed phrase", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	password, err := GetPassword("Choose password", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	defer common.WipeByteArray(password)

	confirm, err := GetPassword("Repeat password", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	defer common.WipeByteArray(confirm)

	if string(password) != string(confirm) {
		log.Printf("Passwords do not match")
		return
	}

	enable2FA, err := GetConfirmation(a.reader, "Enable two-factor authentication?", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	salt := vault.NewSalt()
	sealed, err := vault.SealSeed(seed, password, salt)
	if err != nil {
		log.Printf("error sealing seed: %v", err)
		return
	}

	res, err := a.api.Register(ctx, client.RegisterInput{
		Username:         username,
		Email:            email,
		Password:         string(password),
		WalletAddress:    walletAddress,
		EncryptedSeed:    sealed,
		KDFSalt:          salt,
		TwoFactorEnabled: enable2FA,
	})
	if err != nil {
		log.Printf("Registration unsuccessful: %s", err.Error())
		return
	}

	log.Printf("Registered as %s", res.Account.Username)
	if res.OtpauthURL != "" {
		log.Printf("Add this to your authenticator app NOW, it will not be shown again:")
		log.Printf("  %s", res.OtpauthURL)
	}
}
