package models

import (
	"encoding/json"
	"time"
)

// Submission is one client-captured record destined for the shared dataset.
// The natural key (ProjectID, TableName, LocalUniqueID) is the sole
// deduplication axis: two submissions with the same key are the same logical
// record and the later write overwrites the stored payload.
type Submission struct {
	ID              string
	ProjectID       string
	SurveyPackageID string
	TableName       string
	// RecordID is the client's logical row identity, independent of the
	// sync key.
	RecordID string
	// LocalUniqueID is client-generated, typically a UUID, and must stay
	// unique within its table and project for the life of the record.
	LocalUniqueID string
	// Data is the opaque answer set; its schema is owned by the client.
	Data json.RawMessage
	// Version is a client-declared monotonic counter, informational only.
	// Defaults to 1 when the client omits it.
	Version int64
	// ParentTable / ParentRecordID link repeat-group rows to their parent.
	ParentTable    string
	ParentRecordID string
	DeviceID       string
	// SurveyorID is stamped server-side from the authenticated credential's
	// username, never taken from the client.
	SurveyorID string
	AppVersion string
	// CollectedAt is the client-declared capture time.
	CollectedAt *time.Time
	// UpdatedAt is server-assigned on each merge.
	UpdatedAt time.Time
}

// SyncFailure reports one submission that could not be merged.
type SyncFailure struct {
	// LocalUniqueID identifies the failed record in the client's queue.
	LocalUniqueID string
	// Error is a human-readable reason safe to return to the client.
	Error string
}

// SyncResult partitions a batch by LocalUniqueID: every input record lands
// in exactly one of Synced or Failed.
type SyncResult struct {
	Synced []string
	Failed []SyncFailure
}
