package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/surveyfield/fieldsync/internal/common"
	"github.com/surveyfield/fieldsync/internal/server/models"
)

func (a *API) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: msg})
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		a.renderError(w, r, http.StatusBadRequest, msgMissingFields)
		return
	}
	if err := req.validate(); errors.Is(err, common.ErrorValidation) {
		a.renderError(w, r, http.StatusBadRequest, msgMissingFields)
		return
	}

	project, cred, err := a.auth.Authenticate(ctx, req.ProjectCode, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorProjectNotFound):
			a.renderError(w, r, http.StatusNotFound, msgProjectNotFound)
		case errors.Is(err, common.ErrorUnauthorized):
			a.renderError(w, r, http.StatusUnauthorized, msgInvalidCredentials)
		default:
			a.logger.Error(ctx, "login failed", "error", err.Error())
			a.renderError(w, r, http.StatusInternalServerError, msgInternalError)
		}
		return
	}

	// Listing failures must not block a login; the client can retry the
	// package list on its next connect.
	pkgs, err := a.packages.ListReady(ctx, project.ID)
	if err != nil {
		a.logger.Warn(ctx, "package listing failed during login",
			"project_id", project.ID, "error", err.Error())
		pkgs = nil
	}

	session, err := a.auth.IssueSession(ctx, cred, project)
	if err != nil {
		a.logger.Error(ctx, "session issue failed", "error", err.Error())
		a.renderError(w, r, http.StatusInternalServerError, msgInternalError)
		return
	}

	render.JSON(w, r, loginResponse{
		Success: true,
		Project: projectDTO{
			ID:   project.ID,
			Name: project.Name,
			Code: project.Code,
		},
		Credential: credentialDTO{
			ID:          cred.ID,
			Username:    cred.Username,
			Description: cred.Description,
		},
		Surveys:   toSurveyDTOs(pkgs),
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}

func (a *API) syncSubmissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req syncRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		a.renderError(w, r, http.StatusBadRequest, msgMissingFields)
		return
	}
	if err := req.validate(); errors.Is(err, common.ErrorValidation) {
		a.renderError(w, r, http.StatusBadRequest, msgMissingFields)
		return
	}

	authorized, err := a.sync.ValidateSession(ctx, req.Token)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			a.renderError(w, r, http.StatusUnauthorized, msgInvalidToken)
			return
		}
		a.logger.Error(ctx, "session validation failed", "error", err.Error())
		a.renderError(w, r, http.StatusInternalServerError, msgInternalError)
		return
	}

	subs := make([]*models.Submission, 0, len(req.Submissions))
	for _, dto := range req.Submissions {
		subs = append(subs, toSubmission(dto))
	}

	result := a.sync.Reconcile(ctx, authorized, subs)

	failed := make([]syncFailureDTO, 0, len(result.Failed))
	for _, f := range result.Failed {
		failed = append(failed, syncFailureDTO{ID: f.LocalUniqueID, Error: f.Error})
	}

	render.JSON(w, r, syncResponse{
		Success:     true,
		SyncedCount: len(result.Synced),
		FailedCount: len(result.Failed),
		Synced:      result.Synced,
		Failed:      failed,
	})
}
