package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrMissingMaskImage  = errors.New("IMAGE mask type selected but no mask image provided")
	ErrProviderFailure   = errors.New("provider failure")
	ErrSignUpNotAllowed  = errors.New("sign up not allowed")
	ErrInvalidEmail      = errors.New("invalid email format")
	ErrMissingPrompt     = errors.New("prompt is required")
	ErrUnknownEventShape = errors.New("no recognized parameter type found in event")
)
