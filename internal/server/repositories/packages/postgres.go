// Package packages provides the PostgreSQL-backed repository for survey
// package listings.
package packages

import (
	"context"
	"fmt"

	"github.com/surveyfield/fieldsync/internal/dbx"
	"github.com/surveyfield/fieldsync/internal/server/models"
)

// PostgresRepository implements package listing over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// SelectReady returns the project's ready packages, newest updated_at first.
// The ordering is part of the client contract.
func (r *PostgresRepository) SelectReady(ctx context.Context, projectID string) ([]*models.SurveyPackage, error) {
	query := `
		SELECT id, project_id, name, version, status, zip_file_path, manifest, updated_at
		FROM survey_packages
		WHERE project_id = $1 AND status = $2
		ORDER BY updated_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, projectID, models.PackageStatusReady)
	if err != nil {
		return nil, fmt.Errorf("failed to select packages: %w", err)
	}
	defer rows.Close()

	var result []*models.SurveyPackage
	for rows.Next() {
		var item models.SurveyPackage
		var manifest []byte
		if err := rows.Scan(
			&item.ID, &item.ProjectID, &item.Name, &item.Version, &item.Status,
			&item.ArtifactKey, &manifest, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		item.Manifest = manifest
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
