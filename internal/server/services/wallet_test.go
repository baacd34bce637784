package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/walletvault/internal/common"
	"github.com/dmitrijs2005/walletvault/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWalletService(t *testing.T) (*WalletService, *fakeRepoManager) {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	m := newFakeRepoManager()
	return NewWalletService(db, m, nopLogger{}), m
}

func TestWalletGet(t *testing.T) {
	svc, m := newTestWalletService(t)
	account := seedAccount(t, m, "correct-horse-battery", "")
	seedWallet(t, m, account.ID, "correct-horse-battery", "abandon ability able about")

	w, err := svc.Get(context.Background(), account.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, w.EncryptedSeed)
	assert.Len(t, w.KDFSalt, cryptox.KDFSaltSize)

	_, err = svc.Get(context.Background(), "no-such-account")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestWalletPutSeed(t *testing.T) {
	svc, m := newTestWalletService(t)
	account := seedAccount(t, m, "correct-horse-battery", "")
	seedWallet(t, m, account.ID, "correct-horse-battery", "abandon ability able about")

	newSalt := common.GenerateRandByteArray(cryptox.KDFSaltSize)
	require.NoError(t, svc.PutSeed(context.Background(), account.ID, "cmVzZWFsZWQ", newSalt))

	w := m.wallets.byAccountID[account.ID]
	assert.Equal(t, "cmVzZWFsZWQ", w.EncryptedSeed)
	assert.Equal(t, newSalt, w.KDFSalt)
}

func TestWalletPutSeed_Validation(t *testing.T) {
	svc, m := newTestWalletService(t)
	account := seedAccount(t, m, "correct-horse-battery", "")
	seedWallet(t, m, account.ID, "correct-horse-battery", "abandon ability able about")

	salt := common.GenerateRandByteArray(cryptox.KDFSaltSize)

	err := svc.PutSeed(context.Background(), account.ID, "", salt)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	err = svc.PutSeed(context.Background(), account.ID, "cmVzZWFsZWQ", []byte{1, 2, 3})
	assert.ErrorIs(t, err, common.ErrInvalidInput, "salt must be full length")

	err = svc.PutSeed(context.Background(), "no-such-account", "cmVzZWFsZWQ", salt)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
