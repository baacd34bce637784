package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/walletvault/internal/common"
	"github.com/dmitrijs2005/walletvault/internal/dbx"
	"github.com/dmitrijs2005/walletvault/internal/logging"
	"github.com/dmitrijs2005/walletvault/internal/server/models"
	"github.com/dmitrijs2005/walletvault/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/walletvault/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/walletvault/internal/server/repositories/resetcodes"
	"github.com/dmitrijs2005/walletvault/internal/server/repositories/wallets"
)

// In-memory repository fakes. The sql handle the manager receives is ignored;
// transactional tests still pair them with sqlmock so Begin/Commit run against
// something real.

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, args ...any) {}
func (nopLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Error(ctx context.Context, msg string, args ...any) {}
func (l nopLogger) With(args ...any) logging.Logger                  { return l }

type fakeAccounts struct {
	byID      map[string]*models.Account
	createErr error
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byID: make(map[string]*models.Account)}
}

func (f *fakeAccounts) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, existing := range f.byID {
		if strings.EqualFold(existing.Username, a.Username) || strings.EqualFold(existing.Email, a.Email) {
			return nil, common.ErrConflict
		}
	}
	cp := *a
	cp.CreatedAt = time.Now()
	f.byID[a.ID] = &cp
	return &cp, nil
}

func (f *fakeAccounts) GetByID(ctx context.Context, id string) (*models.Account, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) GetByIdentifier(ctx context.Context, identifier string) (*models.Account, error) {
	for _, a := range f.byID {
		if strings.EqualFold(a.Username, identifier) || strings.EqualFold(a.Email, identifier) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeAccounts) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	for _, a := range f.byID {
		if strings.EqualFold(a.Email, email) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeAccounts) UsernameTaken(ctx context.Context, username string) (bool, error) {
	for _, a := range f.byID {
		if strings.EqualFold(a.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAccounts) UpdatePasswordHash(ctx context.Context, id string, passwordHash string) error {
	a, ok := f.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	a.PasswordHash = passwordHash
	return nil
}

type fakeWallets struct {
	byAccountID map[string]*models.Wallet
}

func newFakeWallets() *fakeWallets {
	return &fakeWallets{byAccountID: make(map[string]*models.Wallet)}
}

func (f *fakeWallets) Create(ctx context.Context, w *models.Wallet) error {
	if _, ok := f.byAccountID[w.AccountID]; ok {
		return common.ErrConflict
	}
	cp := *w
	f.byAccountID[w.AccountID] = &cp
	return nil
}

func (f *fakeWallets) GetByAccountID(ctx context.Context, accountID string) (*models.Wallet, error) {
	w, ok := f.byAccountID[accountID]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (f *fakeWallets) UpdateSeed(ctx context.Context, accountID string, encryptedSeed string, kdfSalt []byte) error {
	w, ok := f.byAccountID[accountID]
	if !ok {
		return common.ErrNotFound
	}
	w.EncryptedSeed = encryptedSeed
	w.KDFSalt = append([]byte(nil), kdfSalt...)
	return nil
}

type fakeRefreshTokens struct {
	byToken    map[string]*models.RefreshToken
	purgeCalls int
}

func newFakeRefreshTokens() *fakeRefreshTokens {
	return &fakeRefreshTokens{byToken: make(map[string]*models.RefreshToken)}
}

func (f *fakeRefreshTokens) Create(ctx context.Context, accountID string, token string, validity time.Duration) error {
	f.byToken[token] = &models.RefreshToken{
		ID:        fmt.Sprintf("rt-%d", len(f.byToken)+1),
		AccountID: accountID,
		Token:     token,
		ExpiresAt: time.Now().Add(validity),
		CreatedAt: time.Now(),
	}
	return nil
}

func (f *fakeRefreshTokens) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	t, ok := f.byToken[token]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeRefreshTokens) Delete(ctx context.Context, token string) error {
	delete(f.byToken, token)
	return nil
}

func (f *fakeRefreshTokens) DeleteAllForAccount(ctx context.Context, accountID string) error {
	for k, t := range f.byToken {
		if t.AccountID == accountID {
			delete(f.byToken, k)
		}
	}
	return nil
}

func (f *fakeRefreshTokens) PurgeExpired(ctx context.Context) error {
	f.purgeCalls++
	now := time.Now()
	for k, t := range f.byToken {
		if t.ExpiresAt.Before(now) {
			delete(f.byToken, k)
		}
	}
	return nil
}

type fakeResetCodes struct {
	byID map[string]*models.PasswordResetCode
	seq  int
}

func newFakeResetCodes() *fakeResetCodes {
	return &fakeResetCodes{byID: make(map[string]*models.PasswordResetCode)}
}

func (f *fakeResetCodes) Create(ctx context.Context, accountID string, code string, validity time.Duration) error {
	f.seq++
	id := fmt.Sprintf("rc-%d", f.seq)
	f.byID[id] = &models.PasswordResetCode{
		ID:        id,
		AccountID: accountID,
		Code:      code,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(validity),
	}
	return nil
}

func (f *fakeResetCodes) FindLatestActive(ctx context.Context, accountID string) (*models.PasswordResetCode, error) {
	var active []*models.PasswordResetCode
	now := time.Now()
	for _, rc := range f.byID {
		if rc.AccountID == accountID && rc.ExpiresAt.After(now) {
			active = append(active, rc)
		}
	}
	if len(active) == 0 {
		return nil, common.ErrNotFound
	}
	sort.Slice(active, func(i, j int) bool { return active[i].CreatedAt.After(active[j].CreatedAt) })
	cp := *active[0]
	return &cp, nil
}

func (f *fakeResetCodes) FindByAccountAndCode(ctx context.Context, accountID string, code string) (*models.PasswordResetCode, error) {
	now := time.Now()
	for _, rc := range f.byID {
		if rc.AccountID == accountID && rc.Code == code && rc.ExpiresAt.After(now) {
			cp := *rc
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeResetCodes) AttachTicket(ctx context.Context, codeID string, ticket string, validity time.Duration) error {
	rc, ok := f.byID[codeID]
	if !ok {
		return common.ErrNotFound
	}
	rc.Ticket = ticket
	rc.TicketExpiresAt = time.Now().Add(validity)
	return nil
}

func (f *fakeResetCodes) ConsumeTicket(ctx context.Context, ticket string) (string, error) {
	now := time.Now()
	for _, rc := range f.byID {
		if rc.Ticket != "" && rc.Ticket == ticket && rc.TicketExpiresAt.After(now) {
			rc.Ticket = ""
			return rc.AccountID, nil
		}
	}
	return "", common.ErrResetCodeInvalid
}

func (f *fakeResetCodes) DeleteAllForAccount(ctx context.Context, accountID string) error {
	for k, rc := range f.byID {
		if rc.AccountID == accountID {
			delete(f.byID, k)
		}
	}
	return nil
}

func (f *fakeResetCodes) PurgeExpired(ctx context.Context) error {
	now := time.Now()
	for k, rc := range f.byID {
		if rc.ExpiresAt.Before(now) {
			delete(f.byID, k)
		}
	}
	return nil
}

type fakeRepoManager struct {
	accounts      *fakeAccounts
	wallets       *fakeWallets
	refreshTokens *fakeRefreshTokens
	resetCodes    *fakeResetCodes
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		accounts:      newFakeAccounts(),
		wallets:       newFakeWallets(),
		refreshTokens: newFakeRefreshTokens(),
		resetCodes:    newFakeResetCodes(),
	}
}

func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

func (m *fakeRepoManager) Accounts(db dbx.DBTX) accounts.Repository           { return m.accounts }
func (m *fakeRepoManager) Wallets(db dbx.DBTX) wallets.Repository             { return m.wallets }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository { return m.refreshTokens }
func (m *fakeRepoManager) ResetCodes(db dbx.DBTX) resetcodes.Repository       { return m.resetCodes }

type fakeMailer struct {
	sent chan string // "to|subject|body"
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sent: make(chan string, 8)}
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	f.sent <- to + "|" + subject + "|" + body
	return nil
}
