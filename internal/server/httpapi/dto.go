package httpapi

import (
	"encoding/json"
	"time"

	"github.com/surveyfield/fieldsync/internal/common"
	"github.com/surveyfield/fieldsync/internal/server/models"
)

// Error body texts are fixed category strings; anything more specific goes
// to the structured log, never to the client.
const (
	msgMissingFields      = "Missing required fields"
	msgProjectNotFound    = "Project not found"
	msgInvalidCredentials = "Invalid username or password"
	msgInvalidToken       = "Invalid or expired token"
	msgInternalError      = "Internal server error"
)

type errorResponse struct {
	Error string `json:"error"`
}

type loginRequest struct {
	ProjectCode string `json:"project_code"`
	Username    string `json:"username"`
	Password    string `json:"password"`
}

func (r *loginRequest) validate() error {
	if r.ProjectCode == "" || r.Username == "" || r.Password == "" {
		return common.ErrorValidation
	}
	return nil
}

type projectDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type credentialDTO struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Description string `json:"description"`
}

type surveyDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Manifest    json.RawMessage `json:"manifest"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DownloadURL *string         `json:"download_url"`
}

type loginResponse struct {
	Success    bool          `json:"success"`
	Project    projectDTO    `json:"project"`
	Credential credentialDTO `json:"credential"`
	Surveys    []surveyDTO   `json:"surveys"`
	Token      string        `json:"token"`
	ExpiresAt  time.Time     `json:"expires_at"`
}

type submissionDTO struct {
	SurveyPackageID string          `json:"survey_package_id"`
	TableName       string          `json:"table_name"`
	RecordID        string          `json:"record_id"`
	LocalUniqueID   string          `json:"local_unique_id"`
	Data            json.RawMessage `json:"data"`
	Version         int64           `json:"version"`
	ParentTable     string          `json:"parent_table"`
	ParentRecordID  string          `json:"parent_record_id"`
	DeviceID        string          `json:"device_id"`
	AppVersion      string          `json:"app_version"`
	CollectedAt     *time.Time      `json:"collected_at"`
}

type syncRequest struct {
	Token       string          `json:"token"`
	Submissions []submissionDTO `json:"submissions"`
}

func (r *syncRequest) validate() error {
	// submissions must be present and an array; an empty batch is valid.
	if r.Token == "" || r.Submissions == nil {
		return common.ErrorValidation
	}
	return nil
}

type syncFailureDTO struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

type syncResponse struct {
	Success     bool             `json:"success"`
	SyncedCount int              `json:"synced_count"`
	FailedCount int              `json:"failed_count"`
	Synced      []string         `json:"synced"`
	Failed      []syncFailureDTO `json:"failed"`
}

func toSurveyDTOs(pkgs []*models.PackageSummary) []surveyDTO {
	surveys := make([]surveyDTO, 0, len(pkgs))
	for _, p := range pkgs {
		surveys = append(surveys, surveyDTO{
			ID:          p.ID,
			Name:        p.Name,
			Version:     p.Version,
			Manifest:    p.Manifest,
			UpdatedAt:   p.UpdatedAt,
			DownloadURL: p.DownloadURL,
		})
	}
	return surveys
}

func toSubmission(dto submissionDTO) *models.Submission {
	return &models.Submission{
		SurveyPackageID: dto.SurveyPackageID,
		TableName:       dto.TableName,
		RecordID:        dto.RecordID,
		LocalUniqueID:   dto.LocalUniqueID,
		Data:            dto.Data,
		Version:         dto.Version,
		ParentTable:     dto.ParentTable,
		ParentRecordID:  dto.ParentRecordID,
		DeviceID:        dto.DeviceID,
		AppVersion:      dto.AppVersion,
		CollectedAt:     dto.CollectedAt,
	}
}
