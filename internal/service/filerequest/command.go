package filerequest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"depot/internal/config"
	"depot/internal/domain"
	models "depot/internal/domain/models/filerequest"
	frRepo "depot/internal/domain/repositories/filerequest"
	frSvc "depot/internal/domain/services/filerequest"
)

// noteFileDeleted is recorded when the target file vanished between request
// and decision.
const noteFileDeleted = "file was deleted"

// commandService orchestrates the file-action request workflow. It is the
// only writer of request state: every mutation flows through the entity's
// transition methods and is committed with the repository's conditional
// write, so concurrent decisions resolve to exactly one winner.
type commandService struct {
	requests  frRepo.RequestRepository
	validator *ValidationService
	files     frSvc.FileManager
	notifier  frSvc.Notifier
	logger    *slog.Logger
}

// NewCommandService creates a new command service.
func NewCommandService(
	requests frRepo.RequestRepository,
	validator *ValidationService,
	files frSvc.FileManager,
	notifier frSvc.Notifier,
	logger *slog.Logger,
) frSvc.CommandService {
	return &commandService{
		requests:  requests,
		validator: validator,
		files:     files,
		notifier:  notifier,
		logger:    logger,
	}
}

// CreateMoveRequest validates and records a request to move a file.
func (s *commandService) CreateMoveRequest(ctx context.Context, requesterID string, in *frSvc.CreateMoveRequestInput) (*models.Request, error) {
	if err := validation.ValidateStruct(in,
		validation.Field(&in.FileID, validation.Required),
		validation.Field(&in.TargetFolderID, validation.Required),
		validation.Field(&in.ApproverID, validation.Required),
		validation.Field(&in.Reason, validation.Required, validation.Length(1, config.MaxReasonLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	file, err := s.validator.ValidateFile(ctx, in.FileID)
	if err != nil {
		return nil, err
	}
	if _, err := s.validator.ValidateTargetFolder(ctx, in.TargetFolderID); err != nil {
		return nil, err
	}
	if file.FolderID == in.TargetFolderID {
		return nil, fmt.Errorf("%w: file already resides in the target folder", domain.ErrValidation)
	}
	if err := s.validator.CheckDuplicate(ctx, in.FileID); err != nil {
		return nil, err
	}
	if _, err := s.validator.ValidateApprover(ctx, in.ApproverID, models.TypeMove); err != nil {
		return nil, err
	}

	req := models.NewMoveRequest(
		uuid.NewString(),
		file.ID,
		file.Name,
		in.TargetFolderID,
		requesterID,
		in.ApproverID,
		strings.TrimSpace(in.Reason),
		models.Snapshot{FolderID: file.FolderID, State: file.State},
	)

	return s.finishCreate(ctx, req)
}

// CreateDeleteRequest validates and records a request to delete a file.
func (s *commandService) CreateDeleteRequest(ctx context.Context, requesterID string, in *frSvc.CreateDeleteRequestInput) (*models.Request, error) {
	if err := validation.ValidateStruct(in,
		validation.Field(&in.FileID, validation.Required),
		validation.Field(&in.ApproverID, validation.Required),
		validation.Field(&in.Reason, validation.Required, validation.Length(1, config.MaxReasonLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	file, err := s.validator.ValidateFile(ctx, in.FileID)
	if err != nil {
		return nil, err
	}
	if err := s.validator.CheckDuplicate(ctx, in.FileID); err != nil {
		return nil, err
	}
	if _, err := s.validator.ValidateApprover(ctx, in.ApproverID, models.TypeDelete); err != nil {
		return nil, err
	}

	req := models.NewDeleteRequest(
		uuid.NewString(),
		file.ID,
		file.Name,
		requesterID,
		in.ApproverID,
		strings.TrimSpace(in.Reason),
		models.Snapshot{FolderID: file.FolderID, State: file.State},
	)

	return s.finishCreate(ctx, req)
}

// finishCreate persists a new request and notifies the designated approver.
// Notification failure never affects the returned request.
func (s *commandService) finishCreate(ctx context.Context, req *models.Request) (*models.Request, error) {
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("file action request created",
		"id", req.ID,
		"type", req.Type,
		"file_id", req.FileID,
		"requester", req.RequesterID,
		"approver", req.DesignatedApproverID,
	)

	s.notifier.NotifyNewRequest(ctx, frSvc.NewRequestNotice{
		RequestID:   req.ID,
		RequesterID: req.RequesterID,
		ApproverID:  req.DesignatedApproverID,
		ActionType:  req.Type,
		FileName:    req.FileName,
	})

	return req, nil
}

// CancelRequest withdraws a PENDING request. Only the original requester may
// cancel.
func (s *commandService) CancelRequest(ctx context.Context, requestID, userID string) (*models.Request, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if err := req.Cancel(userID); err != nil {
		return nil, err
	}

	if err := s.requests.UpdateFromPending(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("file action request canceled", "id", req.ID, "requester", userID)
	s.notifyDecision(ctx, req)
	return req, nil
}

// ApproveRequest decides a PENDING request in the approver's favor and
// carries the decision through to exactly one terminal state:
//
//	EXECUTED    - live state matched the snapshot and the operation succeeded
//	FAILED      - live state matched but the operation itself failed; the
//	              error is absorbed into the request, never returned
//	INVALIDATED - the file vanished or diverged from the snapshot; the
//	              operation is never attempted
//
// The row is claimed with a conditional PENDING-to-APPROVED write before the
// execution port is touched, so of two concurrent approvals exactly one
// executes; the other surfaces NotDecidableError without a second move or
// delete ever running.
func (s *commandService) ApproveRequest(ctx context.Context, requestID, approverID string, comment *string) (*models.Request, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.DesignatedApproverID != approverID {
		return nil, &domain.ForbiddenError{
			Message: fmt.Sprintf("request %s can only be decided by its designated approver", req.ID),
		}
	}

	live, liveErr := s.files.FindFile(ctx, req.FileID)
	if liveErr != nil && !errors.Is(liveErr, domain.ErrNotFound) {
		return nil, liveErr
	}

	if err := req.Approve(approverID, comment); err != nil {
		return nil, err
	}
	if err := s.requests.ClaimForDecision(ctx, req); err != nil {
		return nil, err
	}

	switch {
	case liveErr != nil:
		req.Invalidate(noteFileDeleted)
	case !req.ValidateStateForExecution(live.FolderID, live.State):
		// Entity already transitioned to INVALIDATED with a note.
	default:
		s.execute(ctx, req, approverID)
	}

	if err := s.requests.CommitDecision(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("file action request decided",
		"id", req.ID,
		"status", req.Status,
		"approver", approverID,
	)
	s.notifyDecision(ctx, req)
	return req, nil
}

// execute performs the approved operation. Failure is absorbed into the
// FAILED state; the approver always receives a saved, terminal request.
func (s *commandService) execute(ctx context.Context, req *models.Request, approverID string) {
	var err error
	switch req.Type {
	case models.TypeMove:
		err = s.files.MoveFile(ctx, req.FileID, *req.TargetFolderID, approverID)
	case models.TypeDelete:
		err = s.files.DeleteFile(ctx, req.FileID, approverID)
	default:
		err = fmt.Errorf("unknown request type %q", req.Type)
	}

	if err != nil {
		note := err.Error()
		if note == "" {
			note = "execution failed"
		}
		s.logger.Warn("file action execution failed",
			"id", req.ID,
			"type", req.Type,
			"error", err,
		)
		req.MarkFailed(note)
		return
	}
	req.MarkExecuted()
}

// RejectRequest decides a PENDING request against the requester. A comment
// is mandatory.
func (s *commandService) RejectRequest(ctx context.Context, requestID, approverID string, comment string) (*models.Request, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, fmt.Errorf("%w: a comment is required to reject a request", domain.ErrValidation)
	}

	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.DesignatedApproverID != approverID {
		return nil, &domain.ForbiddenError{
			Message: fmt.Sprintf("request %s can only be decided by its designated approver", req.ID),
		}
	}

	if err := req.Reject(approverID, &comment); err != nil {
		return nil, err
	}

	if err := s.requests.UpdateFromPending(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("file action request rejected", "id", req.ID, "approver", approverID)
	s.notifyDecision(ctx, req)
	return req, nil
}

// BulkApprove approves each request independently. One item's failure never
// prevents the remaining ids from being processed; the caller receives a
// per-item outcome in input order.
func (s *commandService) BulkApprove(ctx context.Context, requestIDs []string, approverID string, comment *string) []frSvc.BulkItemResult {
	results := make([]frSvc.BulkItemResult, 0, len(requestIDs))
	for _, id := range requestIDs {
		req, err := s.ApproveRequest(ctx, id, approverID, comment)
		results = append(results, frSvc.BulkItemResult{RequestID: id, Request: req, Err: err})
	}
	return results
}

// BulkReject rejects each request independently, with the same per-item
// semantics as BulkApprove.
func (s *commandService) BulkReject(ctx context.Context, requestIDs []string, approverID string, comment string) []frSvc.BulkItemResult {
	results := make([]frSvc.BulkItemResult, 0, len(requestIDs))
	for _, id := range requestIDs {
		req, err := s.RejectRequest(ctx, id, approverID, comment)
		results = append(results, frSvc.BulkItemResult{RequestID: id, Request: req, Err: err})
	}
	return results
}

func (s *commandService) notifyDecision(ctx context.Context, req *models.Request) {
	s.notifier.NotifyDecision(ctx, frSvc.DecisionNotice{
		RequestID:   req.ID,
		RequesterID: req.RequesterID,
		ActionType:  req.Type,
		Decision:    req.Status,
		Comment:     req.DecisionComment,
	})
}
