// Package models defines server-side data models persisted in the database.
package models

// Project is the top-level tenant scope. All credentials, packages, and
// submissions belong to exactly one project.
type Project struct {
	ID string
	// Name is the display name shown to field workers after login.
	Name string
	// Code is the unique, case-insensitive code entered on the login screen.
	// It is stored lowercase.
	Code string
	// Active gates all access; an inactive project behaves as if it does
	// not exist.
	Active bool
}
