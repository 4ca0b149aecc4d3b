package filerequest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"depot/internal/domain"
	models "depot/internal/domain/models/filerequest"
	frRepo "depot/internal/domain/repositories/filerequest"
	frSvc "depot/internal/domain/services/filerequest"
	"depot/internal/permissions"
)

// requiredPermission maps an action type to the permission an approver must
// hold. Move and delete are distinct grants.
func requiredPermission(t models.RequestType) string {
	if t == models.TypeDelete {
		return permissions.ApproveDelete
	}
	return permissions.ApproveMove
}

// ValidationService runs the stateless pre-creation checks of the request
// workflow. Each method either returns the looked-up entity or fails with a
// typed domain error.
type ValidationService struct {
	files     frSvc.FileManager
	folders   frSvc.FolderLookup
	directory frSvc.ApproverDirectory
	requests  frRepo.RequestRepository
	logger    *slog.Logger
}

// NewValidationService creates a new validation service.
func NewValidationService(
	files frSvc.FileManager,
	folders frSvc.FolderLookup,
	directory frSvc.ApproverDirectory,
	requests frRepo.RequestRepository,
	logger *slog.Logger,
) *ValidationService {
	return &ValidationService{
		files:     files,
		folders:   folders,
		directory: directory,
		requests:  requests,
		logger:    logger,
	}
}

// ValidateFile ensures the file exists and is in an active lifecycle state.
func (v *ValidationService) ValidateFile(ctx context.Context, fileID string) (*frSvc.FileInfo, error) {
	file, err := v.files.FindFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !file.State.IsActive() {
		return nil, fmt.Errorf("file %s is in state %s: %w", fileID, file.State, domain.ErrNotFound)
	}
	return file, nil
}

// ValidateTargetFolder ensures the move destination exists and is active.
func (v *ValidationService) ValidateTargetFolder(ctx context.Context, folderID string) (*frSvc.FolderInfo, error) {
	folder, err := v.folders.FindFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if !folder.IsActive {
		return nil, fmt.Errorf("target folder %s is deleted: %w", folderID, domain.ErrNotFound)
	}
	return folder, nil
}

// CheckDuplicate fails when a PENDING request already references the file.
// This check is advisory - the storage-level partial unique index is the
// guarantee under concurrent creation - but it produces the same error with
// full context about the existing request.
func (v *ValidationService) CheckDuplicate(ctx context.Context, fileID string) error {
	existing, err := v.requests.FindPendingByFileID(ctx, fileID)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	return &domain.DuplicateRequestError{
		ExistingRequestID:    existing.ID,
		RequesterID:          existing.RequesterID,
		RequestType:          string(existing.Type),
		DesignatedApproverID: existing.DesignatedApproverID,
		FileName:             existing.FileName,
		TargetFolderID:       existing.TargetFolderID,
	}
}

// ValidateApprover resolves the designated approver and checks their
// authorization profile grants the permission the action type requires.
func (v *ValidationService) ValidateApprover(ctx context.Context, approverID string, actionType models.RequestType) (*frSvc.DirectoryUser, error) {
	perm := requiredPermission(actionType)

	user, err := v.directory.FindUserWithPermissions(ctx, approverID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.InvalidApproverError{
				ApproverID:         approverID,
				RequiredPermission: perm,
				Reason:             "user does not exist",
			}
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, &domain.InvalidApproverError{
			ApproverID:         approverID,
			RequiredPermission: perm,
			Reason:             "account is inactive",
		}
	}
	if len(user.Permissions) == 0 {
		return nil, &domain.InvalidApproverError{
			ApproverID:         approverID,
			RequiredPermission: perm,
			Reason:             "user has no authorization profile",
		}
	}
	if !user.HasPermission(perm) {
		return nil, &domain.InvalidApproverError{
			ApproverID:         approverID,
			RequiredPermission: perm,
			Reason:             fmt.Sprintf("role %q lacks permission %q", user.Role, perm),
		}
	}

	return user, nil
}
