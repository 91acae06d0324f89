package submissions

import (
	"context"

	"github.com/surveyfield/fieldsync/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, submission *models.Submission) error
}
