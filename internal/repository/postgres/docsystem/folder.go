package docsystem

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"depot/internal/domain"
	models "depot/internal/domain/models/docsystem"
	docsysRepo "depot/internal/domain/repositories/docsystem"
	"depot/internal/repository/postgres"
)

// PostgresFolderRepository implements the FolderRepository interface.
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewFolderRepository creates a new folder repository.
func NewFolderRepository(config *postgres.RepositoryConfig) docsysRepo.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new folder.
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (parent_id, owner_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		folder.ParentID,
		folder.OwnerID,
		folder.Name,
		folder.CreatedAt,
		folder.UpdatedAt,
	).Scan(&folder.ID)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("folder '%s' already exists in this location", folder.Name),
				ResourceType: "folder",
			}
		}
		return fmt.Errorf("create folder: %w", err)
	}
	return nil
}

// GetByID retrieves a folder by ID, including soft-deleted folders. Callers
// decide whether a deleted folder is acceptable via IsActive.
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, parent_id, owner_id, name, created_at, updated_at, deleted_at
		FROM %s
		WHERE id = $1
	`, r.tables.Folders)

	var f models.Folder
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&f.ID,
		&f.ParentID,
		&f.OwnerID,
		&f.Name,
		&f.CreatedAt,
		&f.UpdatedAt,
		&f.DeletedAt,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}
	return &f, nil
}

// ListChildren lists the live folders under a parent. nil parent = root.
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, parentID *string) ([]*models.Folder, error) {
	var query string
	var args []interface{}
	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT id, parent_id, owner_id, name, created_at, updated_at, deleted_at
			FROM %s
			WHERE parent_id IS NULL AND deleted_at IS NULL
			ORDER BY name
		`, r.tables.Folders)
	} else {
		query = fmt.Sprintf(`
			SELECT id, parent_id, owner_id, name, created_at, updated_at, deleted_at
			FROM %s
			WHERE parent_id = $1 AND deleted_at IS NULL
			ORDER BY name
		`, r.tables.Folders)
		args = append(args, *parentID)
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []*models.Folder
	for rows.Next() {
		var f models.Folder
		if err := rows.Scan(&f.ID, &f.ParentID, &f.OwnerID, &f.Name,
			&f.CreatedAt, &f.UpdatedAt, &f.DeletedAt); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	return folders, nil
}

// SoftDelete marks a folder deleted. Files inside it are untouched; moving
// them out remains possible only through the approval workflow.
func (r *PostgresFolderRepository) SoftDelete(ctx context.Context, id string) error {
	now := time.Now().UTC()
	query := fmt.Sprintf(`
		UPDATE %s SET deleted_at = $2, updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, now)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
