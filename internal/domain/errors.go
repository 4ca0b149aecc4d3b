package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

// Is allows errors.Is() to match against the corresponding sentinels.
func (e *NotFoundError) Is(target error) bool  { return target == ErrNotFound }
func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrValidation      = errors.New("validation failed")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotDecidable    = errors.New("request is not decidable")
	ErrDuplicate       = errors.New("pending request already exists")
	ErrInvalidApprover = errors.New("invalid approver")
)

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (file, folder, request)
	ResourceID   string // ID of the existing/conflicting resource
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NotDecidableError indicates an operation on a file-action request whose
// status is no longer PENDING, either observed in memory or detected as a
// conditional-write conflict by the storage layer. Operation names which
// decision was attempted (cancel, approve, reject).
type NotDecidableError struct {
	RequestID string
	Operation string
	Status    string // current status, for diagnostics
}

func (e *NotDecidableError) Error() string {
	return fmt.Sprintf("request %s is not eligible for %s: status is %s", e.RequestID, e.Operation, e.Status)
}

func (e *NotDecidableError) StatusCode() int {
	return http.StatusConflict
}

func (e *NotDecidableError) Is(target error) bool {
	return target == ErrNotDecidable
}

// DuplicateRequestError is returned when a PENDING file-action request already
// references the same file. Carries the existing request's context so clients
// can point the user at it.
type DuplicateRequestError struct {
	ExistingRequestID    string
	RequesterID          string
	RequestType          string
	DesignatedApproverID string
	FileName             string
	TargetFolderID       *string // set when the existing request is a move
}

func (e *DuplicateRequestError) Error() string {
	return fmt.Sprintf("a pending %s request (%s) already exists for file '%s'", e.RequestType, e.ExistingRequestID, e.FileName)
}

func (e *DuplicateRequestError) StatusCode() int {
	return http.StatusConflict
}

func (e *DuplicateRequestError) Is(target error) bool {
	return target == ErrDuplicate
}

// InvalidApproverError indicates the designated approver cannot decide the
// requested action: inactive account, no authorization profile, or missing
// the permission the action type requires.
type InvalidApproverError struct {
	ApproverID         string
	RequiredPermission string
	Reason             string
}

func (e *InvalidApproverError) Error() string {
	return fmt.Sprintf("approver %s cannot be designated: %s", e.ApproverID, e.Reason)
}

func (e *InvalidApproverError) StatusCode() int {
	return http.StatusUnprocessableEntity
}

func (e *InvalidApproverError) Is(target error) bool {
	return target == ErrInvalidApprover
}
