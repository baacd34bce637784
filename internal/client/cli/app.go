// Package cli implements the interactive walletctl client: a small REPL over
// the HTTP API with client-side sealing of the seed phrase.
package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/walletvault/internal/client/client"
	"github.com/dmitrijs2005/walletvault/internal/client/config"
	"github.com/dmitrijs2005/walletvault/internal/client/session"
	"github.com/dmitrijs2005/walletvault/internal/common"
)

// apiClient is the surface of client.Client the commands use; tests provide
// a stub.
type apiClient interface {
	Ping(ctx context.Context) error
	Register(ctx context.Context, in client.RegisterInput) (*client.RegisterResult, error)
	Login(ctx context.Context, identifier, password string) (*client.LoginResult, error)
	VerifySecondFactor(ctx context.Context, pendingID, code string) (*client.LoginResult, error)
	Refresh(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
	ChangePassword(ctx context.Context, accessToken, oldPassword, newPassword string) error
	CheckUsername(ctx context.Context, username string) (bool, error)
	RequestPasswordReset(ctx context.Context, email string) error
	VerifyResetCode(ctx context.Context, email, code string) (string, error)
	ResetPassword(ctx context.Context, ticket, newPassword string) error
	GetWallet(ctx context.Context, accessToken string) (*client.Wallet, error)
	PutSeed(ctx context.Context, accessToken, encryptedSeed string, kdfSalt []byte) error
}

type App struct {
	config  *config.Config
	api     apiClient
	guard   *session.Guard
	account *client.Account
	logout  chan struct{}
	online  atomic.Bool
	reader  *bufio.Reader
	out     io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	api, err := client.New(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}

	a := &App{
		config: c,
		api:    api,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
	a.guard = session.NewGuard(api.Refresh)
	a.logout = a.guard.Subscribe()
	return a, nil
}

func (a *App) Run(ctx context.Context) {
	go a.watchServer(ctx)
	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
}

// watchServer pings the API on a fixed interval so the prompt can show
// whether the server is reachable.
func (a *App) watchServer(ctx context.Context) {
	a.checkOnline(ctx)
	t := time.NewTicker(a.config.OnlineCheckInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			a.checkOnline(ctx)
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	a.online.Store(a.api.Ping(ctx) == nil)
}

// consumeLogout drops the cached account when the session guard reports the
// session ended, either by an explicit logout or a rejected refresh.
func (a *App) consumeLogout() {
	select {
	case <-a.logout:
		a.account = nil
	default:
	}
}

func (a *App) isLoggedIn() bool {
	a.consumeLogout()
	return a.account != nil
}

func (a *App) status() string {
	a.consumeLogout()
	s := "not logged in"
	if a.account != nil {
		s = a.account.Username
	}
	if !a.online.Load() {
		s += " [offline]"
	}
	return s
}

// withToken runs fn with a valid access token, refreshing and retrying once
// when the server rejects a token that looked fresh locally.
func (a *App) withToken(ctx context.Context, fn func(token string) error) error {
	token, err := a.guard.Token(ctx)
	if err != nil {
		return err
	}

	err = fn(token)
	if !errors.Is(err, common.ErrUnauthorized) {
		return err
	}

	token, refreshErr := a.guard.HandleUnauthorized(ctx, token)
	if refreshErr != nil {
		return err
	}
	return fn(token)
}
