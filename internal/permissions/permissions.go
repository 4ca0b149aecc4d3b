package permissions

// Permission keys checked by the file-action request workflow. Move and
// delete approvals are distinct grants.
const (
	ApproveMove   = "file:move:approve"
	ApproveDelete = "file:delete:approve"

	FileRead   = "file:read"
	FileWrite  = "file:write"
	FileTrash  = "file:trash"
	FolderRead = "folder:read"
)
