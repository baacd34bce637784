package cli

import (
	"context"
	"log"

	"github.com/dmitrijs2005/walletvault/internal/common"
)

// Login authenticates by username or email, walking through the TOTP step
// when the account has it enabled.
func (a *App) Login(ctx context.Context) {
	identifier, err := GetSimpleText(a.reader, "Enter username or email", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	password, err := GetPassword("Enter password", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	defer common.WipeByteArray(password)

	res, err := a.api.Login(ctx, identifier, string(password))
	if err != nil {
		log.Printf("Login unsuccessful: %s", err.Error())
		return
	}

	if res.Requires2FA {
		code, err := GetSimpleText(a.reader, "Enter 6-digit code from your authenticator", a.out)
		if err != nil {
			log.Printf("error: %v", err)
			return
		}

		res, err = a.api.VerifySecondFactor(ctx, res.PendingID, code)
		if err != nil {
			log.Printf("Verification unsuccessful: %s", err.Error())
			return
		}
	}

	if err := a.guard.SetToken(res.AccessToken); err != nil {
		log.Printf("error: %v", err)
		return
	}
	// a leftover logout signal from a previous session must not clobber
	// the account we are about to install
	a.consumeLogout()
	a.account = res.Account

	log.Printf("Login successful")
}

// Logout revokes the session server-side and drops local state.
func (a *App) Logout(ctx context.Context) {
	if err := a.api.Logout(ctx); err != nil {
		log.Printf("Logout error: %s", err.Error())
	}
	a.guard.Clear()
	a.account = nil
	log.Printf("Logged out")
}

func (a *App) CheckUsername(ctx context.Context) {
	username, err := GetSimpleText(a.reader, "Enter username to check", a.out)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	available, err := a.api.CheckUsername(ctx, username)
	if err != nil {
		log.Printf("error: %s", err.Error())
		return
	}

	if available {
		log.Printf("Username %q is available", username)
	} else {
		log.Printf("Username %q is taken", username)
	}
}

func (a *App) Ping(ctx context.Context) {
	if err := a.api.Ping(ctx); err != nil {
		log.Printf("Server unavailable: %s", err.Error())
		return
	}
	log.Printf("Server is up")
}
