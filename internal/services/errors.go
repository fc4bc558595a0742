package services

import "errors"

var (
	ErrForbidden              = errors.New("forbidden")
	ErrConflict               = errors.New("conflict")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInvalidInput           = errors.New("invalid input")
	ErrNotFound               = errors.New("not found")
	ErrProfessionalNotFound   = errors.New("professional not found")
	ErrNotAssociated          = errors.New("professional is not associated with the user")
	ErrProfileIncomplete      = errors.New("profile is incomplete")
	ErrStorageUnavailable     = errors.New("storage service is not configured")
)
