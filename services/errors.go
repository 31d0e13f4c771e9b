package services

import "errors"

var (
	// ErrValidation marks requests rejected before any collaborator is called.
	ErrValidation = errors.New("validation failed")
	// ErrProfileNotFound means the requesting user has no profile record.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrUpstream wraps failures of the semantic index or the generation service.
	ErrUpstream = errors.New("upstream failure")
	// ErrEmbedding is returned by an index when the query text could not be embedded.
	ErrEmbedding = errors.New("embedding failed")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrFoodNotFound       = errors.New("food not found")
	ErrMealNotFound       = errors.New("meal not found")
	ErrPreferenceNotFound = errors.New("preference not found")
)
