package filerequest

import (
	"context"
	"log/slog"

	models "depot/internal/domain/models/filerequest"
	frRepo "depot/internal/domain/repositories/filerequest"
	frSvc "depot/internal/domain/services/filerequest"
)

// queryService implements the QueryService interface.
type queryService struct {
	requests  frRepo.RequestRepository
	directory frSvc.ApproverDirectory
	logger    *slog.Logger
}

// NewQueryService creates a new query service.
func NewQueryService(
	requests frRepo.RequestRepository,
	directory frSvc.ApproverDirectory,
	logger *slog.Logger,
) frSvc.QueryService {
	return &queryService{
		requests:  requests,
		directory: directory,
		logger:    logger,
	}
}

// GetByID retrieves a single request.
func (s *queryService) GetByID(ctx context.Context, requestID string) (*models.Request, error) {
	return s.requests.GetByID(ctx, requestID)
}

// ListMyRequests lists the caller's own requests. The requester constraint is
// forced; the rest of the filter is the caller's choice.
func (s *queryService) ListMyRequests(ctx context.Context, requesterID string, filter frRepo.Filter, page frRepo.Pagination) (*frRepo.Page, error) {
	filter.RequesterID = requesterID
	return s.requests.FindByFilter(ctx, filter, page)
}

// ListPendingApprovals lists the PENDING requests waiting on an approver.
func (s *queryService) ListPendingApprovals(ctx context.Context, approverID string, page frRepo.Pagination) (*frRepo.Page, error) {
	filter := frRepo.Filter{
		DesignatedApproverID: approverID,
		Status:               models.StatusPending,
	}
	return s.requests.FindByFilter(ctx, filter, page)
}

// StatusSummary returns the request count per status.
func (s *queryService) StatusSummary(ctx context.Context) (map[models.RequestStatus]int, error) {
	return s.requests.CountByStatus(ctx)
}

// EligibleApprovers lists the active users who may be designated to approve
// the given action type.
func (s *queryService) EligibleApprovers(ctx context.Context, actionType models.RequestType) ([]*frSvc.DirectoryUser, error) {
	return s.directory.ListUsersWithPermission(ctx, requiredPermission(actionType))
}
