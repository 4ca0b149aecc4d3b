package filerequest

import (
	"fmt"
	"time"

	"depot/internal/domain"
	"depot/internal/domain/models/docsystem"
)

// RequestType is the privileged file operation being requested.
type RequestType string

const (
	TypeMove   RequestType = "MOVE"
	TypeDelete RequestType = "DELETE"
)

// RequestStatus is the lifecycle status of a file-action request.
//
// PENDING is the only decidable status. APPROVED is a short-lived claim: it
// is written by the approve orchestration to take exclusive ownership of the
// row before the file operation runs, and is never the final status -
// approval always lands on EXECUTED, FAILED, or INVALIDATED within the same
// operation.
type RequestStatus string

const (
	StatusPending     RequestStatus = "PENDING"
	StatusApproved    RequestStatus = "APPROVED"
	StatusRejected    RequestStatus = "REJECTED"
	StatusCanceled    RequestStatus = "CANCELED"
	StatusExecuted    RequestStatus = "EXECUTED"
	StatusFailed      RequestStatus = "FAILED"
	StatusInvalidated RequestStatus = "INVALIDATED"
)

// IsTerminal reports whether no further transition is permitted.
func (s RequestStatus) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusCanceled, StatusExecuted, StatusFailed, StatusInvalidated:
		return true
	}
	return false
}

// Request is the aggregate for one file-action approval record. It is a
// durable record of a decision and is never physically deleted.
//
// SnapshotFolderID and SnapshotFileState capture the file as observed at
// creation and never mutate afterwards; they are the baseline the approve
// path compares against the live file before executing anything.
type Request struct {
	ID                   string              `json:"id" db:"id"`
	Type                 RequestType         `json:"type" db:"request_type"`
	Status               RequestStatus       `json:"status" db:"status"`
	FileID               string              `json:"file_id" db:"file_id"`
	FileName             string              `json:"file_name" db:"file_name"`
	SourceFolderID       string              `json:"source_folder_id" db:"source_folder_id"`
	TargetFolderID       *string             `json:"target_folder_id,omitempty" db:"target_folder_id"`
	RequesterID          string              `json:"requester_id" db:"requester_id"`
	DesignatedApproverID string              `json:"designated_approver_id" db:"designated_approver_id"`
	ApproverID           *string             `json:"approver_id,omitempty" db:"approver_id"`
	Reason               string              `json:"reason" db:"reason"`
	DecisionComment      *string             `json:"decision_comment,omitempty" db:"decision_comment"`
	ExecutionNote        *string             `json:"execution_note,omitempty" db:"execution_note"`
	SnapshotFolderID     string              `json:"snapshot_folder_id" db:"snapshot_folder_id"`
	SnapshotFileState    docsystem.FileState `json:"snapshot_file_state" db:"snapshot_file_state"`
	RequestedAt          time.Time           `json:"requested_at" db:"requested_at"`
	DecidedAt            *time.Time          `json:"decided_at,omitempty" db:"decided_at"`
	ExecutedAt           *time.Time          `json:"executed_at,omitempty" db:"executed_at"`
	UpdatedAt            time.Time           `json:"updated_at" db:"updated_at"`
}

// Snapshot is the file state observed at request-creation time.
type Snapshot struct {
	FolderID string
	State    docsystem.FileState
}

// NewMoveRequest constructs a PENDING move request with the given snapshot.
func NewMoveRequest(id, fileID, fileName, targetFolderID, requesterID, approverID, reason string, snap Snapshot) *Request {
	r := newRequest(id, TypeMove, fileID, fileName, requesterID, approverID, reason, snap)
	r.TargetFolderID = &targetFolderID
	return r
}

// NewDeleteRequest constructs a PENDING delete request with the given snapshot.
func NewDeleteRequest(id, fileID, fileName, requesterID, approverID, reason string, snap Snapshot) *Request {
	return newRequest(id, TypeDelete, fileID, fileName, requesterID, approverID, reason, snap)
}

func newRequest(id string, t RequestType, fileID, fileName, requesterID, approverID, reason string, snap Snapshot) *Request {
	now := time.Now().UTC()
	return &Request{
		ID:                   id,
		Type:                 t,
		Status:               StatusPending,
		FileID:               fileID,
		FileName:             fileName,
		SourceFolderID:       snap.FolderID,
		RequesterID:          requesterID,
		DesignatedApproverID: approverID,
		Reason:               reason,
		SnapshotFolderID:     snap.FolderID,
		SnapshotFileState:    snap.State,
		RequestedAt:          now,
		UpdatedAt:            now,
	}
}

// IsDecidable reports whether the request can still be canceled, approved, or
// rejected. True iff the status is PENDING.
func (r *Request) IsDecidable() bool {
	return r.Status == StatusPending
}

func (r *Request) notDecidable(operation string) error {
	return &domain.NotDecidableError{
		RequestID: r.ID,
		Operation: operation,
		Status:    string(r.Status),
	}
}

// Cancel transitions the request to CANCELED. Only the original requester may
// cancel.
func (r *Request) Cancel(userID string) error {
	if r.RequesterID != userID {
		return &domain.ForbiddenError{
			Message: fmt.Sprintf("request %s can only be canceled by its requester", r.ID),
		}
	}
	if !r.IsDecidable() {
		return r.notDecidable("cancel")
	}
	r.Status = StatusCanceled
	r.touch()
	return nil
}

// Approve records the decision intent: approver identity, optional comment,
// and decision time. It is not a terminal transition - the caller must
// follow up with ValidateStateForExecution and MarkExecuted/MarkFailed
// before persisting.
func (r *Request) Approve(approverID string, comment *string) error {
	if !r.IsDecidable() {
		return r.notDecidable("approve")
	}
	now := time.Now().UTC()
	r.Status = StatusApproved
	r.ApproverID = &approverID
	r.DecisionComment = comment
	r.DecidedAt = &now
	r.touch()
	return nil
}

// Reject transitions the request to REJECTED. The mandatory-comment rule is
// enforced by the command service, not here.
func (r *Request) Reject(approverID string, comment *string) error {
	if !r.IsDecidable() {
		return r.notDecidable("reject")
	}
	now := time.Now().UTC()
	r.Status = StatusRejected
	r.ApproverID = &approverID
	r.DecisionComment = comment
	r.DecidedAt = &now
	r.touch()
	return nil
}

// ValidateStateForExecution compares the live file state against the snapshot
// taken at creation. Returns true when the file is still where (and how) it
// was observed. On mismatch the request transitions to INVALIDATED with a
// descriptive execution note, and false is returned - the caller must not
// execute the operation.
func (r *Request) ValidateStateForExecution(liveFolderID string, liveState docsystem.FileState) bool {
	if liveFolderID == r.SnapshotFolderID && liveState == r.SnapshotFileState {
		return true
	}
	var note string
	switch {
	case liveFolderID != r.SnapshotFolderID && liveState != r.SnapshotFileState:
		note = fmt.Sprintf("file moved from folder %s to %s and state changed from %s to %s since the request was made",
			r.SnapshotFolderID, liveFolderID, r.SnapshotFileState, liveState)
	case liveFolderID != r.SnapshotFolderID:
		note = fmt.Sprintf("file moved from folder %s to %s since the request was made", r.SnapshotFolderID, liveFolderID)
	default:
		note = fmt.Sprintf("file state changed from %s to %s since the request was made", r.SnapshotFileState, liveState)
	}
	r.invalidate(note)
	return false
}

// Invalidate transitions the request to INVALIDATED with a system-generated
// note. Used when the file vanished entirely between request and decision.
func (r *Request) Invalidate(note string) {
	r.invalidate(note)
}

func (r *Request) invalidate(note string) {
	r.Status = StatusInvalidated
	r.ExecutionNote = &note
	r.touch()
}

// MarkExecuted records a successful execution of the requested operation.
func (r *Request) MarkExecuted() {
	now := time.Now().UTC()
	r.Status = StatusExecuted
	r.ExecutedAt = &now
	r.touch()
}

// MarkFailed records a failed execution attempt. The failure becomes queryable
// state rather than an error surfaced to the approver.
func (r *Request) MarkFailed(note string) {
	r.Status = StatusFailed
	r.ExecutionNote = &note
	r.touch()
}

func (r *Request) touch() {
	r.UpdatedAt = time.Now().UTC()
}
