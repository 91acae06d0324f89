package projects

import (
	"context"

	"github.com/surveyfield/fieldsync/internal/server/models"
)

type Repository interface {
	FindActiveByCode(ctx context.Context, code string) (*models.Project, error)
}
