package packages

import (
	"context"

	"github.com/surveyfield/fieldsync/internal/server/models"
)

type Repository interface {
	SelectReady(ctx context.Context, projectID string) ([]*models.SurveyPackage, error)
}
