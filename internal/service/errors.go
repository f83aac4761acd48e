package service

import "errors"

var (
	// ErrNotFound covers absent, foreign, deleted and (for share links) non-public resumes alike.
	ErrNotFound = errors.New("resume not found")
	// ErrExpired is returned for a public resume whose share link has lapsed.
	ErrExpired = errors.New("this resume link has expired")
	// ErrPasswordRequired is returned when a protected share link is opened without the right password.
	ErrPasswordRequired = errors.New("resume password required")
	// ErrDownloadDisabled is returned for public downloads when the owner turned them off.
	ErrDownloadDisabled = errors.New("downloads are disabled for this resume")
	// ErrVersionConflict is returned when the stored version moved since it was read.
	ErrVersionConflict = errors.New("resume was modified concurrently")
	// ErrOwnerNotFound is returned when the creating user does not exist.
	ErrOwnerNotFound = errors.New("user not found")
	// ErrUserNotFound is returned by account operations.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidPlan rejects unknown subscription plans.
	ErrInvalidPlan = errors.New("invalid subscription plan")

	errShareTokenExhausted = errors.New("could not allocate a unique share token")
)
