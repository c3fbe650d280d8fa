package service

import "errors"

// Sentinel errors returned by the services. Handlers map them onto HTTP
// status codes; anything else is treated as an internal failure.
var (
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotFound           = errors.New("resource not found")
	ErrForbidden          = errors.New("not allowed")
	ErrInvalidStatus      = errors.New("invalid status value")
)
