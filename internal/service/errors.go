package service

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCapacityReached    = errors.New("request capacity reached")
	ErrSubmitInProgress   = errors.New("submission already in progress")
	ErrCollaborator       = errors.New("data store call failed")
)
