package docsystem

import (
	"context"

	"depot/internal/domain/models/docsystem"
)

// FileService handles file business logic, including the trash lifecycle.
// Move and delete here are the executed operations the approval workflow
// delegates to; user-facing move/delete of privileged files goes through the
// request workflow instead.
type FileService interface {
	CreateFile(ctx context.Context, req *CreateFileRequest) (*docsystem.File, error)
	GetFile(ctx context.Context, fileID string) (*docsystem.File, error)
	ListFolderFiles(ctx context.Context, folderID string) ([]*docsystem.File, error)
	RenameFile(ctx context.Context, fileID, name string) (*docsystem.File, error)
	TrashFile(ctx context.Context, fileID, actorID string) error
	RestoreFile(ctx context.Context, fileID, actorID string) error
}

// CreateFileRequest represents a file creation request.
type CreateFileRequest struct {
	FolderID string `json:"folder_id"`
	OwnerID  string `json:"-"` // Set by handler from auth context
	Name     string `json:"name"`
	Size     int64  `json:"size"`
}
