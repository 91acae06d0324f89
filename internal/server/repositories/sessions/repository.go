package sessions

import (
	"context"
	"time"

	"github.com/surveyfield/fieldsync/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, session *models.Session) (*models.Session, error)
	FindLiveByToken(ctx context.Context, token string, now time.Time) (*models.AuthorizedSession, error)
	TouchActivity(ctx context.Context, id string, at time.Time) error
}
