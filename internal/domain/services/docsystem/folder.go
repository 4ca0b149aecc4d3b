package docsystem

import (
	"context"

	"depot/internal/domain/models/docsystem"
)

// FolderService handles folder business logic.
type FolderService interface {
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*docsystem.Folder, error)
	GetFolder(ctx context.Context, folderID string) (*docsystem.Folder, error)
	ListChildFolders(ctx context.Context, parentID *string) ([]*docsystem.Folder, error)
	DeleteFolder(ctx context.Context, folderID, actorID string) error
}

// CreateFolderRequest represents a folder creation request.
type CreateFolderRequest struct {
	ParentID *string `json:"parent_id,omitempty"` // nil = root level
	OwnerID  string  `json:"-"`                   // Set by handler from auth context
	Name     string  `json:"name"`
}
