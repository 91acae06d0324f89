package models

import "time"

// Credential is a username/password pair granting a field worker access to
// one project. Usernames are unique within their project.
type Credential struct {
	ID        string
	ProjectID string
	Username  string
	// PasswordHash is a bcrypt hash; the plaintext never reaches storage.
	PasswordHash string
	Description  string
	Active       bool
	LastUsedAt   *time.Time
}
