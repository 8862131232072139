package services

import "errors"

// Sentinel errors the handlers translate into HTTP statuses.
var (
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrProjectNotFound    = errors.New("project not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrAlreadyAssigned    = errors.New("user is already assigned to this project")
)
