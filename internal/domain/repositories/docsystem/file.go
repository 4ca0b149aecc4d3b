package docsystem

import (
	"context"

	"depot/internal/domain/models/docsystem"
)

// FileRepository persists stored files.
type FileRepository interface {
	Create(ctx context.Context, file *docsystem.File) error
	GetByID(ctx context.Context, id string) (*docsystem.File, error)
	ListByFolder(ctx context.Context, folderID string) ([]*docsystem.File, error)

	// Move relocates the file to targetFolderID. Only ACTIVE files move.
	Move(ctx context.Context, id, targetFolderID string) error

	// SetState transitions the file's lifecycle state (trash, restore,
	// delete). TrashedAt is maintained alongside the state.
	SetState(ctx context.Context, id string, state docsystem.FileState) error

	Rename(ctx context.Context, id, name string) error
}
