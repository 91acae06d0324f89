package projects

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/surveyfield/fieldsync/internal/common"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const findQuery = `(?s)^\s*SELECT\s+id,\s*name,\s*code,\s*is_active\s+FROM\s+projects\s+WHERE\s+code\s*=\s*\$1\s+AND\s+is_active\s*=\s*TRUE\s*$`

func TestFindActiveByCode_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "name", "code", "is_active"}).
		AddRow("p-1", "Acme Census", "acme-01", true)
	mock.ExpectQuery(findQuery).
		WithArgs("acme-01").
		WillReturnRows(rows)

	got, err := repo.FindActiveByCode(context.Background(), "acme-01")
	if err != nil {
		t.Fatalf("FindActiveByCode error: %v", err)
	}
	if got.ID != "p-1" || got.Code != "acme-01" || !got.Active {
		t.Fatalf("unexpected project: %+v", got)
	}
}

func TestFindActiveByCode_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(findQuery).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindActiveByCode(context.Background(), "nope")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestFindActiveByCode_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(findQuery).
		WithArgs("acme-01").
		WillReturnError(errors.New("db down"))

	_, err := repo.FindActiveByCode(context.Background(), "acme-01")
	if err == nil || errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
