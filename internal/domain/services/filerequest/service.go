package filerequest

import (
	"context"

	"depot/internal/domain/models/filerequest"
	filerequestRepo "depot/internal/domain/repositories/filerequest"
)

// CreateMoveRequestInput is the payload for requesting a file move.
type CreateMoveRequestInput struct {
	FileID         string `json:"file_id"`
	TargetFolderID string `json:"target_folder_id"`
	ApproverID     string `json:"approver_id"`
	Reason         string `json:"reason"`
}

// CreateDeleteRequestInput is the payload for requesting a file deletion.
type CreateDeleteRequestInput struct {
	FileID     string `json:"file_id"`
	ApproverID string `json:"approver_id"`
	Reason     string `json:"reason"`
}

// BulkItemResult is the outcome of one item in a bulk decision. Exactly one
// of Request and Err is set. Items are independent: an error on one never
// prevents the remaining ids from being processed.
type BulkItemResult struct {
	RequestID string
	Request   *filerequest.Request
	Err       error
}

// CommandService orchestrates the file-action request workflow: it is the
// only component that sequences validation, entity transitions, the
// live-state re-check, execution delegation, persistence, and notification.
type CommandService interface {
	CreateMoveRequest(ctx context.Context, requesterID string, in *CreateMoveRequestInput) (*filerequest.Request, error)
	CreateDeleteRequest(ctx context.Context, requesterID string, in *CreateDeleteRequestInput) (*filerequest.Request, error)
	CancelRequest(ctx context.Context, requestID, userID string) (*filerequest.Request, error)
	ApproveRequest(ctx context.Context, requestID, approverID string, comment *string) (*filerequest.Request, error)
	RejectRequest(ctx context.Context, requestID, approverID string, comment string) (*filerequest.Request, error)
	BulkApprove(ctx context.Context, requestIDs []string, approverID string, comment *string) []BulkItemResult
	BulkReject(ctx context.Context, requestIDs []string, approverID string, comment string) []BulkItemResult
}

// QueryService is the read surface over stored requests.
type QueryService interface {
	GetByID(ctx context.Context, requestID string) (*filerequest.Request, error)
	ListMyRequests(ctx context.Context, requesterID string, filter filerequestRepo.Filter, page filerequestRepo.Pagination) (*filerequestRepo.Page, error)
	ListPendingApprovals(ctx context.Context, approverID string, page filerequestRepo.Pagination) (*filerequestRepo.Page, error)
	StatusSummary(ctx context.Context) (map[filerequest.RequestStatus]int, error)
	EligibleApprovers(ctx context.Context, actionType filerequest.RequestType) ([]*DirectoryUser, error)
}
