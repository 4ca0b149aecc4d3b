package docsystem

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"depot/internal/config"
	"depot/internal/domain"
	models "depot/internal/domain/models/docsystem"
	"depot/internal/domain/repositories"
	docsysRepo "depot/internal/domain/repositories/docsystem"
	docsysSvc "depot/internal/domain/services/docsystem"
	frSvc "depot/internal/domain/services/filerequest"
)

// folderService implements the FolderService interface and the FolderLookup
// collaborator used for move-target validation.
type folderService struct {
	folderRepo docsysRepo.FolderRepository
	fileRepo   docsysRepo.FileRepository
	txManager  repositories.TransactionManager
	logger     *slog.Logger
}

// NewFolderService creates a new folder service.
func NewFolderService(
	folderRepo docsysRepo.FolderRepository,
	fileRepo docsysRepo.FileRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) docsysSvc.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		txManager:  txManager,
		logger:     logger,
	}
}

// NewFolderLookup creates the folder lookup collaborator for the request
// workflow.
func NewFolderLookup(folderRepo docsysRepo.FolderRepository, logger *slog.Logger) frSvc.FolderLookup {
	return &folderService{folderRepo: folderRepo, logger: logger}
}

// CreateFolder creates a new folder.
func (s *folderService) CreateFolder(ctx context.Context, req *docsysSvc.CreateFolderRequest) (*models.Folder, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxFolderNameLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if req.ParentID != nil {
		parent, err := s.folderRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, err
		}
		if !parent.IsActive() {
			return nil, fmt.Errorf("parent folder %s is deleted: %w", parent.ID, domain.ErrNotFound)
		}
	}

	now := time.Now().UTC()
	folder := &models.Folder{
		ParentID:  req.ParentID,
		OwnerID:   req.OwnerID,
		Name:      strings.TrimSpace(req.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created", "id", folder.ID, "name", folder.Name)
	return folder, nil
}

// GetFolder retrieves a folder by ID.
func (s *folderService) GetFolder(ctx context.Context, folderID string) (*models.Folder, error) {
	return s.folderRepo.GetByID(ctx, folderID)
}

// ListChildFolders lists the live folders under a parent. nil = root level.
func (s *folderService) ListChildFolders(ctx context.Context, parentID *string) ([]*models.Folder, error) {
	return s.folderRepo.ListChildren(ctx, parentID)
}

// DeleteFolder soft-deletes an empty folder. The empty check and the delete
// run in one transaction so a concurrent file creation cannot slip between
// them.
func (s *folderService) DeleteFolder(ctx context.Context, folderID, actorID string) error {
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		files, err := s.fileRepo.ListByFolder(txCtx, folderID)
		if err != nil {
			return err
		}
		if len(files) > 0 {
			return fmt.Errorf("%w: folder still contains %d files", domain.ErrValidation, len(files))
		}

		return s.folderRepo.SoftDelete(txCtx, folderID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("folder deleted", "id", folderID, "actor", actorID)
	return nil
}

// FindFolder implements the FolderLookup port.
func (s *folderService) FindFolder(ctx context.Context, folderID string) (*frSvc.FolderInfo, error) {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}
	return &frSvc.FolderInfo{
		ID:       folder.ID,
		Name:     folder.Name,
		IsActive: folder.IsActive(),
	}, nil
}
