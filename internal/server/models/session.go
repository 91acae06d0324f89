package models

import "time"

// Session is a time-bounded authorization lease identified by an opaque
// token. Sessions are never deleted; expiry is checked at validation time.
type Session struct {
	ID           string
	CredentialID string
	ProjectID    string
	Token        string
	IssuedAt     time.Time
	ExpiresAt    time.Time
	// LastActivityAt is telemetry only; updating it is best-effort.
	LastActivityAt *time.Time
}

// AuthorizedSession is the result of validating a token: the live session
// plus the credential and project it authorizes, so callers can stamp
// server-controlled submission fields without re-querying.
type AuthorizedSession struct {
	Session    *Session
	Credential *Credential
	Project    *Project
}
