package repomanager

import (
	"context"
	"database/sql"

	"github.com/surveyfield/fieldsync/internal/dbx"
	"github.com/surveyfield/fieldsync/internal/server/repositories/credentials"
	"github.com/surveyfield/fieldsync/internal/server/repositories/packages"
	"github.com/surveyfield/fieldsync/internal/server/repositories/projects"
	"github.com/surveyfield/fieldsync/internal/server/repositories/sessions"
	"github.com/surveyfield/fieldsync/internal/server/repositories/submissions"
)

// RepositoryManager vends repository implementations bound to a DBTX, so a
// service can run several repositories inside one transaction by passing the
// same handle to each factory.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Projects(db dbx.DBTX) projects.Repository
	Credentials(db dbx.DBTX) credentials.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Packages(db dbx.DBTX) packages.Repository
	Submissions(db dbx.DBTX) submissions.Repository
}
