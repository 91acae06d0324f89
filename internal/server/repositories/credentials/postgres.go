// Package credentials provides the PostgreSQL-backed repository for
// project-scoped app credentials.
package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/surveyfield/fieldsync/internal/common"
	"github.com/surveyfield/fieldsync/internal/dbx"
	"github.com/surveyfield/fieldsync/internal/server/models"
)

// PostgresRepository implements credential storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindActive returns the active credential with the given username inside
// the project. Unknown or inactive credentials yield common.ErrorNotFound.
func (r *PostgresRepository) FindActive(ctx context.Context, projectID string, username string) (*models.Credential, error) {
	query := `
		SELECT id, project_id, username, password_hash, description, is_active, last_used_at
		FROM app_credentials
		WHERE project_id = $1 AND username = $2 AND is_active = TRUE
	`

	cred := &models.Credential{}
	var lastUsed sql.NullTime
	err := r.db.QueryRowContext(ctx, query, projectID, username).
		Scan(&cred.ID, &cred.ProjectID, &cred.Username, &cred.PasswordHash,
			&cred.Description, &cred.Active, &lastUsed)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if lastUsed.Valid {
		cred.LastUsedAt = &lastUsed.Time
	}

	return cred, nil
}

// TouchLastUsed records that the credential authenticated at the given time.
func (r *PostgresRepository) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE app_credentials SET last_used_at = $2 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, at); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
