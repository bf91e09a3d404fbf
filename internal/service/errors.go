package service

import "errors"

var (
	ErrMeetingNotFound     = errors.New("meeting not found")
	ErrForbidden           = errors.New("invalid admin secret")
	ErrMeetingNotActive    = errors.New("meeting is not accepting attendance")
	ErrAlreadyCheckedIn    = errors.New("already checked in")
	ErrValidationFailed    = errors.New("validation failed")
	ErrInvalidStatus       = errors.New("invalid meeting status")
	ErrInvalidTransition   = errors.New("illegal status transition")
	ErrInvalidExportFormat = errors.New("unsupported export format")
	ErrInternalServer      = errors.New("internal server error")
)
