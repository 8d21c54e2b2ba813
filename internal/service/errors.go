package service

import "errors"

var (
	// ErrSessionActionForbidden means the transition's precondition already
	// holds: acquiring an account while a session exists, binding a lobby
	// twice, and so on. Terminal for the call, never retried.
	ErrSessionActionForbidden = errors.New("session action forbidden")

	ErrIncorrectPassword = errors.New("incorrect password")
	ErrAccessDenied      = errors.New("access denied")
	ErrInvalidToken      = errors.New("invalid token")

	// ErrLauncherArchiveNotFound means a version is published but its zip
	// is absent from the launcher directory.
	ErrLauncherArchiveNotFound = errors.New("launcher archive not found")
)
