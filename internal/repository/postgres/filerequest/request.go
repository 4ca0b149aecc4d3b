package filerequest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"depot/internal/domain"
	models "depot/internal/domain/models/filerequest"
	frRepo "depot/internal/domain/repositories/filerequest"
	"depot/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// pendingFileIndex is the partial unique index enforcing "at most one PENDING
// request per file". Its violation is the duplicate signal under concurrency.
const pendingFileIndex = "file_action_requests_pending_file_idx"

const requestColumns = `id, request_type, status, file_id, file_name, source_folder_id,
		target_folder_id, requester_id, designated_approver_id, approver_id, reason,
		decision_comment, execution_note, snapshot_folder_id, snapshot_file_state,
		requested_at, decided_at, executed_at, updated_at`

// sortColumns whitelists the fields a caller may sort by. Anything else
// falls back to requested_at.
var sortColumns = map[string]string{
	"requested_at": "requested_at",
	"updated_at":   "updated_at",
	"status":       "status",
	"file_name":    "file_name",
}

// PostgresRequestRepository implements the RequestRepository interface.
type PostgresRequestRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewRequestRepository creates a new file-action request repository.
func NewRequestRepository(config *postgres.RepositoryConfig) frRepo.RequestRepository {
	return &PostgresRequestRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a new PENDING request. The partial unique index on
// (file_id) WHERE status = 'PENDING' is the hard duplicate guarantee: a
// violation is translated into the same DuplicateRequestError the advisory
// pre-check produces, referencing the request that won the race.
func (r *PostgresRequestRepository) Create(ctx context.Context, req *models.Request) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`, r.tables.Requests, requestColumns)

	executor := postgres.GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		req.ID,
		req.Type,
		req.Status,
		req.FileID,
		req.FileName,
		req.SourceFolderID,
		req.TargetFolderID,
		req.RequesterID,
		req.DesignatedApproverID,
		req.ApproverID,
		req.Reason,
		req.DecisionComment,
		req.ExecutionNote,
		req.SnapshotFolderID,
		req.SnapshotFileState,
		req.RequestedAt,
		req.DecidedAt,
		req.ExecutedAt,
		req.UpdatedAt,
	)

	if err != nil {
		if postgres.IsPgDuplicateOn(err, pendingFileIndex) || postgres.IsPgDuplicateError(err) {
			existing, lookupErr := r.FindPendingByFileID(ctx, req.FileID)
			if lookupErr != nil || existing == nil {
				return &domain.ConflictError{
					Message:      fmt.Sprintf("a pending request already exists for file %s", req.FileID),
					ResourceType: "file_action_request",
				}
			}
			return duplicateError(existing)
		}
		return fmt.Errorf("create file action request: %w", err)
	}

	return nil
}

// GetByID retrieves a request by ID.
func (r *PostgresRequestRepository) GetByID(ctx context.Context, id string) (*models.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, requestColumns, r.tables.Requests)

	executor := postgres.GetExecutor(ctx, r.pool)
	req, err := scanRequest(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("file action request %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file action request: %w", err)
	}
	return req, nil
}

// FindPendingByFileID returns the PENDING request referencing a file, or nil
// when none exists.
func (r *PostgresRequestRepository) FindPendingByFileID(ctx context.Context, fileID string) (*models.Request, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE file_id = $1 AND status = 'PENDING'
	`, requestColumns, r.tables.Requests)

	executor := postgres.GetExecutor(ctx, r.pool)
	req, err := scanRequest(executor.QueryRow(ctx, query, fileID))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find pending request for file: %w", err)
	}
	return req, nil
}

// UpdateFromPending commits a decided request's fields with a conditional
// write: the row is updated only where its stored status is still PENDING.
// Zero affected rows means either the request vanished (ErrNotFound) or a
// concurrent decision already landed (NotDecidableError with the status that
// won). This compare-and-set is what makes double decisions impossible; it
// must never be weakened to a plain save.
func (r *PostgresRequestRepository) UpdateFromPending(ctx context.Context, req *models.Request) error {
	if !req.Status.IsTerminal() {
		return fmt.Errorf("refusing to persist non-terminal status %s for request %s", req.Status, req.ID)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $2,
		    approver_id = $3,
		    decision_comment = $4,
		    execution_note = $5,
		    decided_at = $6,
		    executed_at = $7,
		    updated_at = $8
		WHERE id = $1 AND status = 'PENDING'
	`, r.tables.Requests)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query,
		req.ID,
		req.Status,
		req.ApproverID,
		req.DecisionComment,
		req.ExecutionNote,
		req.DecidedAt,
		req.ExecutedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update file action request: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return r.conflictFor(ctx, req)
	}
	return nil
}

// ClaimForDecision moves a request from PENDING to APPROVED, recording the
// approver's identity, comment, and decision time. The WHERE clause is the
// exclusivity guarantee for approvals: of any number of concurrent claims on
// the same row exactly one matches, and only the winner may go on to call the
// execution port. Losers receive NotDecidableError before anything runs.
func (r *PostgresRequestRepository) ClaimForDecision(ctx context.Context, req *models.Request) error {
	if req.Status != models.StatusApproved {
		return fmt.Errorf("refusing to claim request %s with status %s", req.ID, req.Status)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $2,
		    approver_id = $3,
		    decision_comment = $4,
		    decided_at = $5,
		    updated_at = $6
		WHERE id = $1 AND status = 'PENDING'
	`, r.tables.Requests)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query,
		req.ID,
		req.Status,
		req.ApproverID,
		req.DecisionComment,
		req.DecidedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("claim file action request: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return r.conflictFor(ctx, req)
	}
	return nil
}

// CommitDecision lands the terminal outcome of an approval on the row claimed
// by ClaimForDecision. Conditioning on APPROVED keeps the claim and the commit
// a single handoff; zero affected rows means the claim was lost, which only
// happens if the row was mutated outside the workflow.
func (r *PostgresRequestRepository) CommitDecision(ctx context.Context, req *models.Request) error {
	if !req.Status.IsTerminal() {
		return fmt.Errorf("refusing to persist non-terminal status %s for request %s", req.Status, req.ID)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $2,
		    execution_note = $3,
		    executed_at = $4,
		    updated_at = $5
		WHERE id = $1 AND status = 'APPROVED'
	`, r.tables.Requests)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query,
		req.ID,
		req.Status,
		req.ExecutionNote,
		req.ExecutedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("commit file action request decision: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return r.conflictFor(ctx, req)
	}
	return nil
}

// conflictFor distinguishes "row gone" from "row already decided" after a
// conditional write matched nothing.
func (r *PostgresRequestRepository) conflictFor(ctx context.Context, req *models.Request) error {
	query := fmt.Sprintf(`SELECT status FROM %s WHERE id = $1`, r.tables.Requests)

	var current string
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, req.ID).Scan(&current)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return fmt.Errorf("file action request %s: %w", req.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("read file action request status: %w", err)
	}

	return &domain.NotDecidableError{
		RequestID: req.ID,
		Operation: operationFor(req.Status),
		Status:    current,
	}
}

// operationFor names the attempted decision from the status it was trying to
// commit, for conflict diagnostics.
func operationFor(attempted models.RequestStatus) string {
	switch attempted {
	case models.StatusCanceled:
		return "cancel"
	case models.StatusRejected:
		return "reject"
	default:
		return "approve"
	}
}

// FindByFilter returns one page of requests matching the filter.
func (r *PostgresRequestRepository) FindByFilter(ctx context.Context, filter frRepo.Filter, page frRepo.Pagination) (*frRepo.Page, error) {
	where, args := buildFilter(filter)

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s %s`, r.tables.Requests, where)

	executor := postgres.GetExecutor(ctx, r.pool)
	var total int
	if err := executor.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count file action requests: %w", err)
	}

	pageNum, pageSize := normalizePage(page)
	sortCol, ok := sortColumns[page.SortBy]
	if !ok {
		sortCol = "requested_at"
	}
	direction := "DESC"
	if page.Order == frRepo.SortAsc {
		direction = "ASC"
	}

	listQuery := fmt.Sprintf(`
		SELECT %s FROM %s %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, requestColumns, r.tables.Requests, where, sortCol, direction, len(args)+1, len(args)+2)
	args = append(args, pageSize, (pageNum-1)*pageSize)

	rows, err := executor.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("list file action requests: %w", err)
	}
	defer rows.Close()

	items := make([]*models.Request, 0, pageSize)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file action request: %w", err)
		}
		items = append(items, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list file action requests: %w", err)
	}

	return &frRepo.Page{
		Items:    items,
		Total:    total,
		Page:     pageNum,
		PageSize: pageSize,
	}, nil
}

// CountByStatus returns how many requests are in each status.
func (r *PostgresRequestRepository) CountByStatus(ctx context.Context) (map[models.RequestStatus]int, error) {
	query := fmt.Sprintf(`SELECT status, COUNT(*) FROM %s GROUP BY status`, r.tables.Requests)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count requests by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.RequestStatus]int)
	for rows.Next() {
		var status models.RequestStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count requests by status: %w", err)
	}

	return counts, nil
}

func buildFilter(filter frRepo.Filter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if filter.RequesterID != "" {
		add("requester_id", filter.RequesterID)
	}
	if filter.DesignatedApproverID != "" {
		add("designated_approver_id", filter.DesignatedApproverID)
	}
	if filter.FileID != "" {
		add("file_id", filter.FileID)
	}
	if filter.Status != "" {
		add("status", filter.Status)
	}
	if filter.Type != "" {
		add("request_type", filter.Type)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func normalizePage(page frRepo.Pagination) (int, int) {
	pageNum := page.Page
	if pageNum < 1 {
		pageNum = 1
	}
	pageSize := page.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return pageNum, pageSize
}

func scanRequest(row pgx.Row) (*models.Request, error) {
	var req models.Request
	err := row.Scan(
		&req.ID,
		&req.Type,
		&req.Status,
		&req.FileID,
		&req.FileName,
		&req.SourceFolderID,
		&req.TargetFolderID,
		&req.RequesterID,
		&req.DesignatedApproverID,
		&req.ApproverID,
		&req.Reason,
		&req.DecisionComment,
		&req.ExecutionNote,
		&req.SnapshotFolderID,
		&req.SnapshotFileState,
		&req.RequestedAt,
		&req.DecidedAt,
		&req.ExecutedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func duplicateError(existing *models.Request) *domain.DuplicateRequestError {
	return &domain.DuplicateRequestError{
		ExistingRequestID:    existing.ID,
		RequesterID:          existing.RequesterID,
		RequestType:          string(existing.Type),
		DesignatedApproverID: existing.DesignatedApproverID,
		FileName:             existing.FileName,
		TargetFolderID:       existing.TargetFolderID,
	}
}
