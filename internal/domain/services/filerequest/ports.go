package filerequest

import (
	"context"
	"time"

	"depot/internal/domain/models/docsystem"
	"depot/internal/domain/models/filerequest"
)

// FileInfo is the slice of file state the workflow needs: identity, display
// name, and the two fields compared against the request snapshot.
type FileInfo struct {
	ID       string
	FolderID string
	Name     string
	State    docsystem.FileState
}

// FolderInfo is the slice of folder state the workflow needs.
type FolderInfo struct {
	ID       string
	Name     string
	IsActive bool
}

// DirectoryUser is a user resolved together with their authorization profile.
type DirectoryUser struct {
	ID          string
	DisplayName string
	Role        string
	IsActive    bool
	Permissions []string
}

// HasPermission reports whether the user's profile grants perm.
func (u *DirectoryUser) HasPermission(perm string) bool {
	for _, p := range u.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// FileManager is the file lookup/execution collaborator. FindFile returns
// domain.ErrNotFound when the file does not exist or is hard-deleted; the
// approve path treats that as grounds for invalidation, not an error.
type FileManager interface {
	FindFile(ctx context.Context, fileID string) (*FileInfo, error)
	MoveFile(ctx context.Context, fileID, targetFolderID, actorID string) error
	DeleteFile(ctx context.Context, fileID, actorID string) error
}

// FolderLookup resolves folders for move-target validation.
type FolderLookup interface {
	FindFolder(ctx context.Context, folderID string) (*FolderInfo, error)
}

// ApproverDirectory resolves a user together with their authorization profile.
type ApproverDirectory interface {
	FindUserWithPermissions(ctx context.Context, userID string) (*DirectoryUser, error)
	ListUsersWithPermission(ctx context.Context, perm string) ([]*DirectoryUser, error)
}

// NewRequestNotice tells the designated approver a request awaits them.
type NewRequestNotice struct {
	RequestID   string                  `json:"request_id"`
	RequesterID string                  `json:"requester_id"`
	ApproverID  string                  `json:"approver_id"`
	ActionType  filerequest.RequestType `json:"action_type"`
	FileName    string                  `json:"file_name"`
}

// DecisionNotice tells the requester how their request ended. Decision is the
// final status: EXECUTED, FAILED, INVALIDATED, REJECTED, or CANCELED.
type DecisionNotice struct {
	RequestID   string                    `json:"request_id"`
	RequesterID string                    `json:"requester_id"`
	ActionType  filerequest.RequestType   `json:"action_type"`
	Decision    filerequest.RequestStatus `json:"decision"`
	Comment     *string                   `json:"comment,omitempty"`
}

// ReminderNotice nudges an approver about a request still pending.
type ReminderNotice struct {
	RequestID    string                  `json:"request_id"`
	ApproverID   string                  `json:"approver_id"`
	ActionType   filerequest.RequestType `json:"action_type"`
	FileName     string                  `json:"file_name"`
	PendingSince time.Time               `json:"pending_since"`
}

// Notifier delivers workflow notifications. Delivery is best-effort:
// implementations log failures and never surface them, so a lost
// notification cannot affect a command's outcome.
type Notifier interface {
	NotifyNewRequest(ctx context.Context, n NewRequestNotice)
	NotifyDecision(ctx context.Context, n DecisionNotice)
	NotifyReminder(ctx context.Context, n ReminderNotice)
}
