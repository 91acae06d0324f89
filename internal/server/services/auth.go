// Package services contains server-side business logic. This file implements
// AuthService, which authenticates project-scoped credentials and issues
// bearer session tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/surveyfield/fieldsync/internal/common"
	"github.com/surveyfield/fieldsync/internal/logging"
	"github.com/surveyfield/fieldsync/internal/server/config"
	"github.com/surveyfield/fieldsync/internal/server/models"
	"github.com/surveyfield/fieldsync/internal/server/repositories/repomanager"
)

// verifyPassword is a seam for bcrypt.CompareHashAndPassword.
// In tests you can replace it with a stub to avoid the hashing cost.
var verifyPassword = func(hash string, password []byte) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), password)
}

// sessionTokenBytes is the number of random bytes per session token; the
// hex-encoded token carries 256 bits of entropy.
const sessionTokenBytes = 32

// AuthService authenticates field-worker credentials against their project
// and mints session leases for subsequent sync calls.
type AuthService struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	logger          logging.Logger
	sessionValidity time.Duration
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *AuthService {
	return &AuthService{
		db:              db,
		repomanager:     m,
		logger:          logger.With("module", "auth_service"),
		sessionValidity: cfg.SessionValidityDuration,
	}
}

// Authenticate resolves a project by its human-entered code, finds the named
// active credential inside it, and verifies the password.
//
// An unknown or inactive project yields ErrorProjectNotFound. A missing
// username and a wrong password both yield ErrorUnauthorized, so a caller
// cannot probe which usernames exist within a project.
//
// On success the credential's last_used_at is updated before returning;
// a failed update is logged and swallowed, it never fails the login.
func (s *AuthService) Authenticate(ctx context.Context, projectCode, username, password string) (*models.Project, *models.Credential, error) {
	code := strings.ToLower(strings.TrimSpace(projectCode))

	project, err := s.repomanager.Projects(s.db).FindActiveByCode(ctx, code)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorProjectNotFound
		}
		s.logger.Error(ctx, "project lookup failed", "error", err.Error())
		return nil, nil, common.ErrorInternal
	}

	credRepo := s.repomanager.Credentials(s.db)
	cred, err := credRepo.FindActive(ctx, project.ID, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "credential lookup failed", "error", err.Error())
		return nil, nil, common.ErrorInternal
	}

	if err := verifyPassword(cred.PasswordHash, []byte(password)); err != nil {
		return nil, nil, common.ErrorUnauthorized
	}

	if err := credRepo.TouchLastUsed(ctx, cred.ID, time.Now()); err != nil {
		s.logger.Warn(ctx, "failed to update credential last_used_at",
			"credential_id", cred.ID, "error", err.Error())
	}

	return project, cred, nil
}

// IssueSession mints an unguessable token and durably stores the session
// lease before the token is returned. If the insert fails, no token escapes,
// so a client can never hold a token the validator will not recognize.
func (s *AuthService) IssueSession(ctx context.Context, cred *models.Credential, project *models.Project) (*models.Session, error) {
	token, err := common.MakeRandHexString(sessionTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("error generating session token: %w", err)
	}

	now := time.Now()
	session := &models.Session{
		CredentialID: cred.ID,
		ProjectID:    project.ID,
		Token:        token,
		IssuedAt:     now,
		ExpiresAt:    now.Add(s.sessionValidity),
	}

	session, err = s.repomanager.Sessions(s.db).Create(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("error creating session: %w", err)
	}

	return session, nil
}
