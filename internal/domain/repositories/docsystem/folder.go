package docsystem

import (
	"context"

	"depot/internal/domain/models/docsystem"
)

// FolderRepository persists folders. Folders soft-delete; a deleted folder is
// not a valid move target.
type FolderRepository interface {
	Create(ctx context.Context, folder *docsystem.Folder) error
	GetByID(ctx context.Context, id string) (*docsystem.Folder, error)
	ListChildren(ctx context.Context, parentID *string) ([]*docsystem.Folder, error)
	SoftDelete(ctx context.Context, id string) error
}
