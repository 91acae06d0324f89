// Package common defines shared constants and sentinel errors used across
// fieldsync components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrorProjectNotFound is distinct from ErrorUnauthorized: an unknown
	// project code maps to 404, while a bad username or password maps to 401
	// without revealing which of the two was wrong.
	ErrorProjectNotFound = errors.New("project not found")

	// ErrorValidation marks malformed or missing request input that is
	// rejected before anything reaches storage.
	ErrorValidation = errors.New("validation error")
)
