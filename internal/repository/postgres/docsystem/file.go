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

// PostgresFileRepository implements the FileRepository interface.
type PostgresFileRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewFileRepository creates a new file repository.
func NewFileRepository(config *postgres.RepositoryConfig) docsysRepo.FileRepository {
	return &PostgresFileRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new file record.
func (r *PostgresFileRepository) Create(ctx context.Context, file *models.File) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (folder_id, owner_id, name, size, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		file.FolderID,
		file.OwnerID,
		file.Name,
		file.Size,
		file.State,
		file.CreatedAt,
		file.UpdatedAt,
	).Scan(&file.ID)

	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	return nil
}

// GetByID retrieves a file by ID. DELETED files still resolve: the request
// workflow needs to observe them to report invalidation reasons.
func (r *PostgresFileRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	query := fmt.Sprintf(`
		SELECT id, folder_id, owner_id, name, size, state, created_at, updated_at, trashed_at
		FROM %s
		WHERE id = $1
	`, r.tables.Files)

	var f models.File
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&f.ID,
		&f.FolderID,
		&f.OwnerID,
		&f.Name,
		&f.Size,
		&f.State,
		&f.CreatedAt,
		&f.UpdatedAt,
		&f.TrashedAt,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}
	return &f, nil
}

// ListByFolder lists the ACTIVE files in a folder.
func (r *PostgresFileRepository) ListByFolder(ctx context.Context, folderID string) ([]*models.File, error) {
	query := fmt.Sprintf(`
		SELECT id, folder_id, owner_id, name, size, state, created_at, updated_at, trashed_at
		FROM %s
		WHERE folder_id = $1 AND state = 'ACTIVE'
		ORDER BY name
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, folderID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []*models.File
	for rows.Next() {
		var f models.File
		if err := rows.Scan(&f.ID, &f.FolderID, &f.OwnerID, &f.Name, &f.Size, &f.State,
			&f.CreatedAt, &f.UpdatedAt, &f.TrashedAt); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

// Move relocates an ACTIVE file to a different folder.
func (r *PostgresFileRepository) Move(ctx context.Context, id, targetFolderID string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET folder_id = $2, updated_at = $3
		WHERE id = $1 AND state = 'ACTIVE'
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, targetFolderID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("move file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("file %s is not active: %w", id, domain.ErrNotFound)
	}
	return nil
}

// SetState transitions the file's lifecycle state and maintains trashed_at.
func (r *PostgresFileRepository) SetState(ctx context.Context, id string, state models.FileState) error {
	var trashedAt *time.Time
	if state == models.FileStateTrashed {
		now := time.Now().UTC()
		trashedAt = &now
	}

	query := fmt.Sprintf(`
		UPDATE %s SET state = $2, trashed_at = $3, updated_at = $4
		WHERE id = $1
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, state, trashedAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set file state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Rename changes a file's display name.
func (r *PostgresFileRepository) Rename(ctx context.Context, id, name string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET name = $2, updated_at = $3
		WHERE id = $1 AND state = 'ACTIVE'
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, name, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("rename file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("file %s is not active: %w", id, domain.ErrNotFound)
	}
	return nil
}
