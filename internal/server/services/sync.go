package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-retry"

	"github.com/surveyfield/fieldsync/internal/common"
	"github.com/surveyfield/fieldsync/internal/dbx"
	"github.com/surveyfield/fieldsync/internal/logging"
	"github.com/surveyfield/fieldsync/internal/server/models"
	"github.com/surveyfield/fieldsync/internal/server/repositories/repomanager"
)

// withTx is a seam for dbx.WithTx.
// In tests you can replace it with a pass-through to skip real transactions.
var withTx = dbx.WithTx

// upsertMaxRetries bounds the retry-on-conflict loop around a single
// submission merge.
const upsertMaxRetries = 3

// SyncService validates session tokens and reconciles submission batches
// into the per-project dataset.
type SyncService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

// NewSyncService constructs a SyncService using repositories and server config.
func NewSyncService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *SyncService {
	return &SyncService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "sync_service"),
	}
}

// ValidateSession resolves a bearer token to its live session plus the
// credential and project it authorizes. Unknown and expired tokens are both
// reported as ErrorUnauthorized so callers cannot learn which tokens once
// existed.
//
// On success the session's last_activity_at is touched. The touch is
// telemetry only: its failure is logged and never fails the request.
func (s *SyncService) ValidateSession(ctx context.Context, token string) (*models.AuthorizedSession, error) {
	if token == "" {
		return nil, common.ErrorUnauthorized
	}

	repo := s.repomanager.Sessions(s.db)

	authorized, err := repo.FindLiveByToken(ctx, token, time.Now())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "session lookup failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	if err := repo.TouchActivity(ctx, authorized.Session.ID, time.Now()); err != nil {
		s.logger.Warn(ctx, "failed to update session activity",
			"session_id", authorized.Session.ID, "error", err.Error())
	}

	return authorized, nil
}

// Reconcile merges a batch of client submissions with per-record isolation:
// each record is upserted independently and a failure never blocks the
// records after it. The result partitions the batch by local_unique_id,
// len(Synced)+len(Failed) == len(subs).
//
// Records are processed in batch order, so when a client sends two entries
// with the same natural key in one batch the later entry wins. Re-submitting
// an already-merged record is a no-op apart from updated_at advancing; that
// is what lets clients replay their outbound queue after a dropped
// connection.
func (s *SyncService) Reconcile(ctx context.Context, authorized *models.AuthorizedSession, subs []*models.Submission) *models.SyncResult {
	result := &models.SyncResult{
		Synced: []string{},
		Failed: []models.SyncFailure{},
	}

	for _, sub := range subs {
		if err := s.mergeOne(ctx, authorized, sub); err != nil {
			s.logger.Warn(ctx, "submission rejected",
				"local_unique_id", sub.LocalUniqueID, "table", sub.TableName, "error", err.Error())
			result.Failed = append(result.Failed, models.SyncFailure{
				LocalUniqueID: sub.LocalUniqueID,
				Error:         err.Error(),
			})
			continue
		}
		result.Synced = append(result.Synced, sub.LocalUniqueID)
	}

	return result
}

// mergeOne stamps the server-controlled fields and performs the idempotent
// upsert for a single submission. project_id and surveyor_id always come
// from the authorized session, never from the client.
func (s *SyncService) mergeOne(ctx context.Context, authorized *models.AuthorizedSession, sub *models.Submission) error {
	if strings.TrimSpace(sub.TableName) == "" {
		return errors.New("missing table_name")
	}
	if strings.TrimSpace(sub.LocalUniqueID) == "" {
		return errors.New("missing local_unique_id")
	}
	if len(sub.Data) == 0 {
		return errors.New("missing data")
	}

	sub.ProjectID = authorized.Project.ID
	sub.SurveyorID = authorized.Credential.Username
	if sub.Version == 0 {
		sub.Version = 1
	}
	sub.UpdatedAt = time.Now()

	// A serialization failure aborts the whole transaction, so the
	// transaction is the retry unit: every attempt begins a fresh one.
	backoff := retry.WithMaxRetries(upsertMaxRetries, retry.NewFibonacci(50*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := withTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			return s.repomanager.Submissions(tx).Upsert(ctx, sub)
		})
		if err != nil && isRetryableConflict(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// isRetryableConflict reports whether the error is a transient store
// conflict that a replayed upsert can win: serialization failures and
// deadlocks, which Postgres asks the client to retry.
func isRetryableConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "40001", "40P01": // serialization_failure, deadlock_detected
		return true
	}
	return false
}
