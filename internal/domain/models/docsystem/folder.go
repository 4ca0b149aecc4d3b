package docsystem

import (
	"time"
)

type Folder struct {
	ID        string     `json:"id" db:"id"`
	ParentID  *string    `json:"parent_id,omitempty" db:"parent_id"` // NULL = root level
	OwnerID   string     `json:"owner_id" db:"owner_id"`
	Name      string     `json:"name" db:"name"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// IsActive reports whether the folder can hold files or receive moves.
func (f *Folder) IsActive() bool {
	return f.DeletedAt == nil
}
