package resetcodes

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/walletvault/internal/common"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^\s*INSERT\s+INTO\s+reset_codes\b`).
		WithArgs("a1", "123456", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), "a1", "123456", 10*time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFindLatestActive_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Now().Add(-time.Minute)
	expires := time.Now().Add(9 * time.Minute)
	rows := sqlmock.NewRows([]string{"id", "account_id", "code", "created_at", "expires_at"}).
		AddRow("c1", "a1", "123456", created, expires)

	mock.ExpectQuery(`(?s)FROM\s+reset_codes\s+WHERE\s+account_id\s*=\s*\$1\s+AND\s+expires_at\s*>\s*now\(\).*ORDER\s+BY\s+created_at\s+DESC`).
		WithArgs("a1").
		WillReturnRows(rows)

	got, err := repo.FindLatestActive(context.Background(), "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Code != "123456" || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected row: %+v", got)
	}
}

func TestFindByAccountAndCode_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)FROM\s+reset_codes\b`).
		WithArgs("a1", "000000").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByAccountAndCode(context.Background(), "a1", "000000")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected common.ErrNotFound, got %v", err)
	}
}

func TestConsumeTicket_ClaimsOnce(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*UPDATE\s+reset_codes\s+SET\s+ticket\s*=\s*''.*WHERE\s+ticket\s*=\s*\$1.*RETURNING\s+account_id`

	mock.ExpectQuery(q).
		WithArgs("ticket-abc").
		WillReturnRows(sqlmock.NewRows([]string{"account_id"}).AddRow("a1"))

	accountID, err := repo.ConsumeTicket(context.Background(), "ticket-abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if accountID != "a1" {
		t.Fatalf("unexpected account id %q", accountID)
	}

	// second claim: the row no longer matches
	mock.ExpectQuery(q).
		WithArgs("ticket-abc").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.ConsumeTicket(context.Background(), "ticket-abc"); !errors.Is(err, common.ErrResetCodeInvalid) {
		t.Fatalf("expected common.ErrResetCodeInvalid, got %v", err)
	}
}

func TestAttachTicket_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^\s*UPDATE\s+reset_codes\s+SET\s+ticket\s*=\s*\$2`).
		WithArgs("missing", "ticket-abc", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.AttachTicket(context.Background(), "missing", "ticket-abc", 10*time.Minute)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected common.ErrNotFound, got %v", err)
	}
}

func TestDeleteAllForAccount(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^\s*DELETE\s+FROM\s+reset_codes\s+WHERE\s+account_id\s*=\s*\$1\s*$`).
		WithArgs("a1").
		WillReturnResult(sqlmock.NewResult(0, 2))

	if err := repo.DeleteAllForAccount(context.Background(), "a1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
