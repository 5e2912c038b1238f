package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserInactive        = errors.New("user is inactive")
	ErrDuplicateEmail      = errors.New("email already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrNoCompany           = errors.New("no company selected")
	ErrInvalidOrgNumber    = errors.New("invalid organisation number")
	ErrInvalidVATNumber    = errors.New("invalid VAT registration number")
	ErrNoRetainedFile      = errors.New("no file retained from a previous analysis")
	ErrAnalysisInFlight    = errors.New("an analysis is already in flight")
	ErrAnalysisFailed      = errors.New("analysis failed")
	ErrConversationTimeout = errors.New("conversation load timed out")
	ErrStreamInterrupted   = errors.New("analysis stream interrupted")
)
