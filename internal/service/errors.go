package service

import "errors"

// Service errors
var (
	// ErrUnregistered means the actor has no identity record yet; the caller
	// should prompt a one-time registration and retry.
	ErrUnregistered = errors.New("user is not registered")
	// ErrForbidden means the actor's role lacks the required privilege.
	ErrForbidden = errors.New("operation requires a higher role")
	// ErrUserNotFound means the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrEventNotFound means the referenced event does not exist.
	ErrEventNotFound = errors.New("event not found")
	// ErrEventNotActive means the event is not open for registration.
	ErrEventNotActive = errors.New("event is not active")
	// ErrCapacityExceeded means the event is full; terminal for the
	// registration attempt, not retryable.
	ErrCapacityExceeded = errors.New("event capacity exceeded")
	// ErrAlreadyAdmin means an admin-access request from someone who already
	// holds the role.
	ErrAlreadyAdmin = errors.New("user is already an admin")
	// ErrAlreadyDecided means the decision race was lost: another reviewer
	// decided the request first. A race outcome, not a domain failure.
	ErrAlreadyDecided = errors.New("request already decided")
	// ErrRequestNotFound means the referenced admin request does not exist.
	ErrRequestNotFound = errors.New("request not found")
	// ErrInvalidRole means the supplied role name is not one of the known roles.
	ErrInvalidRole = errors.New("invalid role")
	// ErrExportNotConfigured means no spreadsheet destination is configured;
	// the export surface stays visible but every run reports this.
	ErrExportNotConfigured = errors.New("spreadsheet export is not configured")
)
