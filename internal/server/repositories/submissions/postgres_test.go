package submissions

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/surveyfield/fieldsync/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const upsertQuery = `(?s)^\s*INSERT\s+INTO\s+submissions\s*\(project_id,\s*survey_package_id,\s*table_name,.*ON\s+CONFLICT\s*\(project_id,\s*table_name,\s*local_unique_id\)\s*DO\s+UPDATE\s+SET.*updated_at\s*=\s*EXCLUDED\.updated_at\s*$`

func sampleSubmission() *models.Submission {
	collected := time.Date(2026, 7, 1, 9, 30, 0, 0, time.UTC)
	return &models.Submission{
		ProjectID:       "p-1",
		SurveyPackageID: "pkg-1",
		TableName:       "households",
		RecordID:        "r-1",
		LocalUniqueID:   "u1",
		Data:            []byte(`{"answer":42}`),
		Version:         1,
		DeviceID:        "dev-1",
		SurveyorID:      "surveyor1",
		AppVersion:      "1.4.0",
		CollectedAt:     &collected,
		UpdatedAt:       time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestUpsert_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	sub := sampleSubmission()
	mock.ExpectExec(upsertQuery).
		WithArgs("p-1", "pkg-1", "households", "r-1", "u1",
			[]byte(`{"answer":42}`), int64(1), "", "", "dev-1", "surveyor1", "1.4.0",
			*sub.CollectedAt, sub.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Upsert(context.Background(), sub); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}
}

func TestUpsert_EmptyPackageIDBecomesNull(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	sub := sampleSubmission()
	sub.SurveyPackageID = ""
	sub.CollectedAt = nil

	mock.ExpectExec(upsertQuery).
		WithArgs("p-1", nil, "households", "r-1", "u1",
			[]byte(`{"answer":42}`), int64(1), "", "", "dev-1", "surveyor1", "1.4.0",
			nil, sub.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Upsert(context.Background(), sub); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}
}

func TestUpsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(upsertQuery).
		WillReturnError(errors.New("malformed payload"))

	if err := repo.Upsert(context.Background(), sampleSubmission()); err == nil {
		t.Fatal("expected error")
	}
}

func TestUpsert_UnexpectedRowsAffected(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(upsertQuery).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.Upsert(context.Background(), sampleSubmission())
	if err == nil {
		t.Fatal("expected error for unexpected rows affected")
	}
}
