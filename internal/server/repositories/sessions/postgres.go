// Package sessions provides the PostgreSQL-backed repository for bearer
// session leases.
package sessions

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

// PostgresRepository implements session storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists a session row. The token is only handed to the client
// after this returns without error, so a returned session is always durable.
func (r *PostgresRepository) Create(ctx context.Context, session *models.Session) (*models.Session, error) {
	query := `
		INSERT INTO app_sessions (credential_id, project_id, token, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		session.CredentialID, session.ProjectID, session.Token,
		session.IssuedAt, session.ExpiresAt).Scan(&session.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return session, nil
}

// FindLiveByToken resolves a token to its non-expired session together with
// the owning credential and project. Unknown and expired tokens are both
// reported as common.ErrorNotFound so the caller cannot tell them apart.
func (r *PostgresRepository) FindLiveByToken(ctx context.Context, token string, now time.Time) (*models.AuthorizedSession, error) {
	query := `
		SELECT s.id, s.credential_id, s.project_id, s.token, s.issued_at, s.expires_at, s.last_activity_at,
		       c.id, c.project_id, c.username, c.password_hash, c.description, c.is_active, c.last_used_at,
		       p.id, p.name, p.code, p.is_active
		FROM app_sessions s
		JOIN app_credentials c ON c.id = s.credential_id
		JOIN projects p ON p.id = s.project_id
		WHERE s.token = $1 AND s.expires_at > $2
	`

	session := &models.Session{}
	cred := &models.Credential{}
	project := &models.Project{}
	var lastActivity, lastUsed sql.NullTime

	err := r.db.QueryRowContext(ctx, query, token, now).Scan(
		&session.ID, &session.CredentialID, &session.ProjectID, &session.Token,
		&session.IssuedAt, &session.ExpiresAt, &lastActivity,
		&cred.ID, &cred.ProjectID, &cred.Username, &cred.PasswordHash,
		&cred.Description, &cred.Active, &lastUsed,
		&project.ID, &project.Name, &project.Code, &project.Active,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if lastActivity.Valid {
		session.LastActivityAt = &lastActivity.Time
	}
	if lastUsed.Valid {
		cred.LastUsedAt = &lastUsed.Time
	}

	return &models.AuthorizedSession{Session: session, Credential: cred, Project: project}, nil
}

// TouchActivity records sync activity on the session.
func (r *PostgresRepository) TouchActivity(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE app_sessions SET last_activity_at = $2 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, at); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
