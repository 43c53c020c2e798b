// Package common holds the error values shared between services and handlers.
package common

import "errors"

var (
	// repository specific errors
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// auth-specific errors
	ErrorInvalidCredentials = errors.New("invalid credentials")
	ErrorUnauthenticated    = errors.New("unauthenticated")
	ErrorForbidden          = errors.New("forbidden")

	ErrorValidation = errors.New("validation error")

	// optimistic concurrency on the hoot aggregate
	ErrorConcurrentModification = errors.New("concurrent modification")
)
