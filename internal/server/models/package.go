package models

import (
	"encoding/json"
	"time"
)

// PackageStatusReady marks a survey package whose artifact is complete and
// safe to hand to clients. Only ready packages are ever listed.
const PackageStatusReady = "ready"

// SurveyPackage is a versioned, downloadable artifact defining a
// data-collection instrument. Read-only from the sync core's perspective.
type SurveyPackage struct {
	ID        string
	ProjectID string
	Name      string
	Version   string
	Status    string
	// ArtifactKey is the object-storage key of the package zip. Empty when
	// the package exists as metadata only, before its binary is uploaded.
	ArtifactKey string
	// Manifest is opaque structured metadata passed through to clients
	// verbatim.
	Manifest  json.RawMessage
	UpdatedAt time.Time
}

// PackageSummary is the client-facing view of a ready package, including a
// time-bounded signed download location. DownloadURL is nil when the package
// has no artifact yet or signing failed.
type PackageSummary struct {
	ID          string
	Name        string
	Version     string
	Manifest    json.RawMessage
	UpdatedAt   time.Time
	DownloadURL *string
}
