package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/surveyfield/fieldsync/internal/dbx"
	"github.com/surveyfield/fieldsync/internal/server/models"
	credentialsrepo "github.com/surveyfield/fieldsync/internal/server/repositories/credentials"
	packagesrepo "github.com/surveyfield/fieldsync/internal/server/repositories/packages"
	projectsrepo "github.com/surveyfield/fieldsync/internal/server/repositories/projects"
	sessionsrepo "github.com/surveyfield/fieldsync/internal/server/repositories/sessions"
	submissionsrepo "github.com/surveyfield/fieldsync/internal/server/repositories/submissions"
)

type fakeProjectsRepo struct {
	out *models.Project
	err error
}

func (f *fakeProjectsRepo) FindActiveByCode(ctx context.Context, code string) (*models.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

type fakeCredentialsRepo struct {
	out *models.Credential
	err error

	touchErr    error
	touchCalled bool
}

func (f *fakeCredentialsRepo) FindActive(ctx context.Context, projectID, username string) (*models.Credential, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func (f *fakeCredentialsRepo) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	f.touchCalled = true
	return f.touchErr
}

type fakeSessionsRepo struct {
	created []*models.Session

	createErr error

	findOut *models.AuthorizedSession
	findErr error

	touchErr    error
	touchCalled bool
}

func (f *fakeSessionsRepo) Create(ctx context.Context, session *models.Session) (*models.Session, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	session.ID = fmt.Sprintf("s-%d", len(f.created)+1)
	f.created = append(f.created, session)
	return session, nil
}

func (f *fakeSessionsRepo) FindLiveByToken(ctx context.Context, token string, now time.Time) (*models.AuthorizedSession, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeSessionsRepo) TouchActivity(ctx context.Context, id string, at time.Time) error {
	f.touchCalled = true
	return f.touchErr
}

type fakePackagesRepo struct {
	out []*models.SurveyPackage
	err error
}

func (f *fakePackagesRepo) SelectReady(ctx context.Context, projectID string) ([]*models.SurveyPackage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

// fakeSubmissionsRepo keeps rows keyed by the natural key, mirroring the
// store's uniqueness constraint, so merge semantics are observable in tests.
type fakeSubmissionsRepo struct {
	rows map[string]*models.Submission

	// errByID injects a failure for specific local_unique_ids.
	errByID map[string]error
	// failuresByID injects N transient failures before success.
	failuresByID map[string]int

	calls int
}

func newFakeSubmissionsRepo() *fakeSubmissionsRepo {
	return &fakeSubmissionsRepo{
		rows:         map[string]*models.Submission{},
		errByID:      map[string]error{},
		failuresByID: map[string]int{},
	}
}

func (f *fakeSubmissionsRepo) Upsert(ctx context.Context, sub *models.Submission) error {
	f.calls++
	if err, ok := f.errByID[sub.LocalUniqueID]; ok {
		return err
	}
	if n := f.failuresByID[sub.LocalUniqueID]; n > 0 {
		f.failuresByID[sub.LocalUniqueID] = n - 1
		return transientConflictErr()
	}
	key := sub.ProjectID + "/" + sub.TableName + "/" + sub.LocalUniqueID
	cp := *sub
	f.rows[key] = &cp
	return nil
}

type fakeRepoManager struct {
	projects    *fakeProjectsRepo
	credentials *fakeCredentialsRepo
	sessions    *fakeSessionsRepo
	packages    *fakePackagesRepo
	submissions *fakeSubmissionsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeRepoManager) Projects(db dbx.DBTX) projectsrepo.Repository {
	return m.projects
}

func (m *fakeRepoManager) Credentials(db dbx.DBTX) credentialsrepo.Repository {
	return m.credentials
}

func (m *fakeRepoManager) Sessions(db dbx.DBTX) sessionsrepo.Repository {
	return m.sessions
}

func (m *fakeRepoManager) Packages(db dbx.DBTX) packagesrepo.Repository {
	return m.packages
}

func (m *fakeRepoManager) Submissions(db dbx.DBTX) submissionsrepo.Repository {
	return m.submissions
}
