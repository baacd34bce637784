package cli

import (
	"context"
	"log"

	"github.com/dmitrijs2005/walletvault/internal/client/client"
	"github.com/dmitrijs2005/walletvault/internal/client/vault"
	"github.com/dmitrijs2005/walletvault/internal/common"
)

// ShowSeed fetches the sealed wallet and opens it locally with the user's
// password. A wrong password and a blob sealed under an older password (after
// a reset) look the same; the user is pointed at the recover command.
func (a *App) ShowSeed(ctx context.Context) {
	var wallet *client.Wallet
	err := a.withToken(ctx, func(token string) error {
		w, err := a.api.GetWallet(ctx, token)
		if err != nil {
			return err
		}
		wallet = w
		return nil
	})
	if err != nil {
		log.Printf("error: %s", err.Error())
		return
	}

	password, err := GetPassword("Enter password", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	defer common.WipeByteArray(password)

	seed, ok := vault.OpenSeed(wallet.EncryptedSeed, password, wallet.KDFSalt)
	if !ok {
		log.Printf("Could not decrypt the seed. Wrong password, or the password was reset.")
		log.Printf("If you reset your password, run 'recover' to re-import the seed phrase.")
		return
	}

	log.Printf("Wallet %s", wallet.WalletAddress)
	log.Printf("Seed phrase: %s", seed)
}

// RecoverSeed re-imports the seed phrase and seals it under the current
// password with a fresh salt. This is the follow-up to a password reset,
// which replaces the password but cannot re-encrypt the seed server-side.
func (a *App) RecoverSeed(ctx context.Context) {
	seed, err := GetSimpleText(a.reader, "Enter seed phrase", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	password, err := GetPassword("Enter current password", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	defer common.WipeByteArray(password)

	salt := vault.NewSalt()
	sealed, err := vault.SealSeed(seed, password, salt)
	if err != nil {
		log.Printf("error sealing seed: %v", err)
		return
	}

	err = a.withToken(ctx, func(token string) error {
		return a.api.PutSeed(ctx, token, sealed, salt)
	})
	if err != nil {
		log.Printf("error: %s", err.Error())
		return
	}

	log.Printf("Seed re-imported and sealed under the current password")
}
