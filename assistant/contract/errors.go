package contract

import "errors"

var (
	ErrValidation   = errors.New("validation failed")
	ErrCollaborator = errors.New("collaborator call failed")
	ErrBackend      = errors.New("generative backend failed")
)
