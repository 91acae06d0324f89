// Package httpapi exposes the field-app endpoints over HTTP/JSON: login,
// submission sync and a health probe. Handlers translate between wire DTOs
// and the service layer; all business rules live in the services.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"

	"github.com/surveyfield/fieldsync/internal/logging"
	"github.com/surveyfield/fieldsync/internal/server/models"
)

// AuthService authenticates credentials and issues session leases.
type AuthService interface {
	Authenticate(ctx context.Context, projectCode, username, password string) (*models.Project, *models.Credential, error)
	IssueSession(ctx context.Context, cred *models.Credential, project *models.Project) (*models.Session, error)
}

// PackageService lists a project's downloadable survey packages.
type PackageService interface {
	ListReady(ctx context.Context, projectID string) ([]*models.PackageSummary, error)
}

// SyncService validates tokens and merges submission batches.
type SyncService interface {
	ValidateSession(ctx context.Context, token string) (*models.AuthorizedSession, error)
	Reconcile(ctx context.Context, authorized *models.AuthorizedSession, subs []*models.Submission) *models.SyncResult
}

// API bundles the handlers' dependencies.
type API struct {
	auth     AuthService
	packages PackageService
	sync     SyncService
	logger   logging.Logger
}

func NewAPI(auth AuthService, packages PackageService, sync SyncService, logger logging.Logger) *API {
	return &API{
		auth:     auth,
		packages: packages,
		sync:     sync,
		logger:   logger.With("module", "httpapi"),
	}
}

// Router wires the endpoint tree. CORS is permissive: the field app runs
// from arbitrary origins (webviews, local files) and the token lives in the
// request body, not in cookies.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type"},
	}))

	r.Get("/ping", a.ping)
	r.Post("/app/login", a.login)
	r.Post("/app/sync", a.syncSubmissions)

	return r
}

func (a *API) ping(w http.ResponseWriter, r *http.Request) {
	render.PlainText(w, r, "ok")
}
