package docsystem

import (
	"time"
)

// FileState is the lifecycle state of a stored file.
type FileState string

const (
	FileStateActive  FileState = "ACTIVE"
	FileStateTrashed FileState = "TRASHED"
	FileStateDeleted FileState = "DELETED"
)

// IsActive reports whether the file can be the target of new operations.
func (s FileState) IsActive() bool {
	return s == FileStateActive
}

type File struct {
	ID        string     `json:"id" db:"id"`
	FolderID  string     `json:"folder_id" db:"folder_id"`
	OwnerID   string     `json:"owner_id" db:"owner_id"`
	Name      string     `json:"name" db:"name"`
	Size      int64      `json:"size" db:"size"`
	State     FileState  `json:"state" db:"state"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	TrashedAt *time.Time `json:"trashed_at,omitempty" db:"trashed_at"`
}
