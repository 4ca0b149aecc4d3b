package filerequest

import (
	"context"

	"depot/internal/domain/models/filerequest"
)

// Filter narrows a request listing. Zero values mean "no constraint".
type Filter struct {
	RequesterID          string
	DesignatedApproverID string
	FileID               string
	Status               filerequest.RequestStatus
	Type                 filerequest.RequestType
}

// SortOrder is the direction of a sorted listing.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Pagination describes a 1-based page of a sorted listing.
type Pagination struct {
	Page     int
	PageSize int
	SortBy   string // column key, validated against a whitelist by the repository
	Order    SortOrder
}

// Page is one page of requests plus the total match count.
type Page struct {
	Items    []*filerequest.Request
	Total    int
	Page     int
	PageSize int
}

// RequestRepository persists file-action requests.
//
// Three methods carry the concurrency contract of the workflow:
//
//   - Create relies on a storage-level uniqueness constraint ("at most one
//     PENDING request per file") and reports its violation as
//     domain.DuplicateRequestError, closing the race the advisory duplicate
//     pre-check cannot.
//
//   - UpdateFromPending is a conditional write: it commits the request's
//     decided fields only where the stored status is still PENDING. When the
//     row exists but is no longer PENDING it returns
//     domain.NotDecidableError, so two concurrent decisions can never both
//     take effect. Cancel and reject commit through it directly.
//
//   - ClaimForDecision is the approve path's conditional write. It moves the
//     row from PENDING to APPROVED before any file operation runs, so of two
//     concurrent approvals exactly one reaches the execution port; the loser
//     gets domain.NotDecidableError here, before executing anything.
//     CommitDecision then lands the terminal status on the claimed row.
type RequestRepository interface {
	Create(ctx context.Context, req *filerequest.Request) error
	GetByID(ctx context.Context, id string) (*filerequest.Request, error)
	FindPendingByFileID(ctx context.Context, fileID string) (*filerequest.Request, error)
	UpdateFromPending(ctx context.Context, req *filerequest.Request) error
	ClaimForDecision(ctx context.Context, req *filerequest.Request) error
	CommitDecision(ctx context.Context, req *filerequest.Request) error
	FindByFilter(ctx context.Context, filter Filter, page Pagination) (*Page, error)
	CountByStatus(ctx context.Context) (map[filerequest.RequestStatus]int, error)
}
