package credentials

import (
	"context"
	"time"

	"github.com/surveyfield/fieldsync/internal/server/models"
)

type Repository interface {
	FindActive(ctx context.Context, projectID string, username string) (*models.Credential, error)
	TouchLastUsed(ctx context.Context, id string, at time.Time) error
}
