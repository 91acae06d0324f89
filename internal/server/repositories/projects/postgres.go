// Package projects provides the PostgreSQL-backed repository for project
// lookup during login.
package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/surveyfield/fieldsync/internal/common"
	"github.com/surveyfield/fieldsync/internal/dbx"
	"github.com/surveyfield/fieldsync/internal/server/models"
)

// PostgresRepository implements project lookup over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindActiveByCode returns the active project with the given code. The code
// must already be normalized (trimmed, lowercase) by the caller. Inactive or
// unknown codes yield common.ErrorNotFound.
func (r *PostgresRepository) FindActiveByCode(ctx context.Context, code string) (*models.Project, error) {
	query := `
		SELECT id, name, code, is_active FROM projects
		WHERE code = $1 AND is_active = TRUE
	`

	project := &models.Project{}
	err := r.db.QueryRowContext(ctx, query, code).
		Scan(&project.ID, &project.Name, &project.Code, &project.Active)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return project, nil
}
