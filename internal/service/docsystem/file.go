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
	docsysRepo "depot/internal/domain/repositories/docsystem"
	docsysSvc "depot/internal/domain/services/docsystem"
	frSvc "depot/internal/domain/services/filerequest"
)

// fileService implements the FileService interface and doubles as the
// FileManager collaborator the approval workflow executes through.
type fileService struct {
	fileRepo   docsysRepo.FileRepository
	folderRepo docsysRepo.FolderRepository
	logger     *slog.Logger
}

// NewFileService creates a new file service.
func NewFileService(
	fileRepo docsysRepo.FileRepository,
	folderRepo docsysRepo.FolderRepository,
	logger *slog.Logger,
) docsysSvc.FileService {
	return &fileService{
		fileRepo:   fileRepo,
		folderRepo: folderRepo,
		logger:     logger,
	}
}

// NewFileManager creates the file lookup/execution collaborator consumed by
// the file-action request workflow. It shares its implementation with the
// file service so executed moves and deletes follow the same rules as any
// other mutation.
func NewFileManager(
	fileRepo docsysRepo.FileRepository,
	folderRepo docsysRepo.FolderRepository,
	logger *slog.Logger,
) frSvc.FileManager {
	return &fileService{
		fileRepo:   fileRepo,
		folderRepo: folderRepo,
		logger:     logger,
	}
}

// CreateFile creates a new ACTIVE file record.
func (s *fileService) CreateFile(ctx context.Context, req *docsysSvc.CreateFileRequest) (*models.File, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.FolderID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxFileNameLength)),
		validation.Field(&req.Size, validation.Min(int64(0))),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	folder, err := s.folderRepo.GetByID(ctx, req.FolderID)
	if err != nil {
		return nil, err
	}
	if !folder.IsActive() {
		return nil, fmt.Errorf("folder %s is deleted: %w", folder.ID, domain.ErrNotFound)
	}

	now := time.Now().UTC()
	file := &models.File{
		FolderID:  req.FolderID,
		OwnerID:   req.OwnerID,
		Name:      strings.TrimSpace(req.Name),
		Size:      req.Size,
		State:     models.FileStateActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		return nil, err
	}

	s.logger.Info("file created", "id", file.ID, "folder_id", file.FolderID, "name", file.Name)
	return file, nil
}

// GetFile retrieves a file by ID.
func (s *fileService) GetFile(ctx context.Context, fileID string) (*models.File, error) {
	return s.fileRepo.GetByID(ctx, fileID)
}

// ListFolderFiles lists the active files in a folder.
func (s *fileService) ListFolderFiles(ctx context.Context, folderID string) ([]*models.File, error) {
	return s.fileRepo.ListByFolder(ctx, folderID)
}

// RenameFile changes a file's display name.
func (s *fileService) RenameFile(ctx context.Context, fileID, name string) (*models.File, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: file name is required", domain.ErrValidation)
	}
	if err := s.fileRepo.Rename(ctx, fileID, name); err != nil {
		return nil, err
	}
	return s.fileRepo.GetByID(ctx, fileID)
}

// TrashFile moves a file to the trash.
func (s *fileService) TrashFile(ctx context.Context, fileID, actorID string) error {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return err
	}
	if file.State != models.FileStateActive {
		return fmt.Errorf("file %s is not active: %w", fileID, domain.ErrValidation)
	}

	if err := s.fileRepo.SetState(ctx, fileID, models.FileStateTrashed); err != nil {
		return err
	}
	s.logger.Info("file trashed", "id", fileID, "actor", actorID)
	return nil
}

// RestoreFile brings a trashed file back to ACTIVE.
func (s *fileService) RestoreFile(ctx context.Context, fileID, actorID string) error {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return err
	}
	if file.State != models.FileStateTrashed {
		return fmt.Errorf("file %s is not in the trash: %w", fileID, domain.ErrValidation)
	}

	if err := s.fileRepo.SetState(ctx, fileID, models.FileStateActive); err != nil {
		return err
	}
	s.logger.Info("file restored", "id", fileID, "actor", actorID)
	return nil
}

// FindFile implements the FileManager port. DELETED files report ErrNotFound:
// from the workflow's perspective the file no longer exists.
func (s *fileService) FindFile(ctx context.Context, fileID string) (*frSvc.FileInfo, error) {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.State == models.FileStateDeleted {
		return nil, fmt.Errorf("file %s: %w", fileID, domain.ErrNotFound)
	}
	return &frSvc.FileInfo{
		ID:       file.ID,
		FolderID: file.FolderID,
		Name:     file.Name,
		State:    file.State,
	}, nil
}

// MoveFile implements the FileManager port: the executed move behind an
// approved MOVE request.
func (s *fileService) MoveFile(ctx context.Context, fileID, targetFolderID, actorID string) error {
	folder, err := s.folderRepo.GetByID(ctx, targetFolderID)
	if err != nil {
		return err
	}
	if !folder.IsActive() {
		return fmt.Errorf("target folder %s is deleted: %w", targetFolderID, domain.ErrNotFound)
	}

	if err := s.fileRepo.Move(ctx, fileID, targetFolderID); err != nil {
		return err
	}
	s.logger.Info("file moved", "id", fileID, "target_folder", targetFolderID, "actor", actorID)
	return nil
}

// DeleteFile implements the FileManager port: the executed deletion behind an
// approved DELETE request. Deletion is a soft state transition; the record
// remains for audit.
func (s *fileService) DeleteFile(ctx context.Context, fileID, actorID string) error {
	if err := s.fileRepo.SetState(ctx, fileID, models.FileStateDeleted); err != nil {
		return err
	}
	s.logger.Info("file deleted", "id", fileID, "actor", actorID)
	return nil
}
