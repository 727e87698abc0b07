// Package server provides the HTTP API of the resume screener.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/ingestion"
	"github.com/jonathan/resume-screener/internal/storage"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// ErrNotFound indicates a missing record
type ErrNotFound struct {
	Kind string
	ID   string
}

func (e *ErrNotFound) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Kind)
	}
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ErrForbidden indicates the caller may not act on a record it does not own
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("not allowed to %s", e.Action)
}

// ErrDuplicateApplication indicates the user already applied to the job
type ErrDuplicateApplication struct {
	JobID uuid.UUID
}

func (e *ErrDuplicateApplication) Error() string {
	return fmt.Sprintf("already applied to job %s", e.JobID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		emailExists    *ErrEmailAlreadyExists
		badCredentials *ErrInvalidCredentials
		mismatch       *ErrPasswordMismatch
		userNotFound   *ErrUserNotFound
		notFound       *ErrNotFound
		forbidden      *ErrForbidden
		duplicate      *ErrDuplicateApplication
		validation     *ErrValidation
		unsupported    *ingestion.UnsupportedFormatError
		extraction     *ingestion.ExtractionError
		archive        *ingestion.ArchiveError
		blobMissing    *storage.NotFoundError
	)

	switch {
	case errors.As(err, &emailExists), errors.As(err, &duplicate), errors.Is(err, db.ErrDuplicate):
		return http.StatusConflict
	case errors.As(err, &badCredentials), errors.As(err, &mismatch):
		return http.StatusUnauthorized
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.As(err, &userNotFound), errors.As(err, &notFound), errors.As(err, &blobMissing), errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &archive):
		return http.StatusBadRequest
	case errors.As(err, &unsupported), errors.As(err, &extraction):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ingestion.ErrHTTPRequestFailed), errors.Is(err, ingestion.ErrContentExtractionFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
