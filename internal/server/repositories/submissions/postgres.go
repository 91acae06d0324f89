// Package submissions provides the PostgreSQL-backed repository for the
// reconciliation engine's merge primitive.
package submissions

import (
	"context"
	"fmt"

	"github.com/surveyfield/fieldsync/internal/dbx"
	"github.com/surveyfield/fieldsync/internal/server/models"
)

// PostgresRepository implements submission storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert merges a submission by its natural key
// (project_id, table_name, local_unique_id). An existing row's mutable fields
// are overwritten; the incoming write always wins. The store's conflict
// resolution is the concurrency arbiter, so concurrent upserts for the same
// key serialize here without application-level locking.
func (r *PostgresRepository) Upsert(ctx context.Context, submission *models.Submission) error {
	query := `
		INSERT INTO submissions (project_id, survey_package_id, table_name, record_id, local_unique_id,
			data, version, parent_table, parent_record_id, device_id, surveyor_id, app_version,
			collected_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (project_id, table_name, local_unique_id)
		DO UPDATE SET
			survey_package_id = EXCLUDED.survey_package_id,
			record_id = EXCLUDED.record_id,
			data = EXCLUDED.data,
			version = EXCLUDED.version,
			parent_table = EXCLUDED.parent_table,
			parent_record_id = EXCLUDED.parent_record_id,
			device_id = EXCLUDED.device_id,
			surveyor_id = EXCLUDED.surveyor_id,
			app_version = EXCLUDED.app_version,
			collected_at = EXCLUDED.collected_at,
			updated_at = EXCLUDED.updated_at
	`

	res, err := r.db.ExecContext(ctx, query,
		submission.ProjectID, nullIfEmpty(submission.SurveyPackageID),
		submission.TableName, submission.RecordID, submission.LocalUniqueID,
		[]byte(submission.Data), submission.Version,
		submission.ParentTable, submission.ParentRecordID,
		submission.DeviceID, submission.SurveyorID, submission.AppVersion,
		submission.CollectedAt, submission.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}

// nullIfEmpty maps an optional string to SQL NULL. UUID columns reject the
// empty string, so an omitted survey_package_id must arrive as NULL.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
