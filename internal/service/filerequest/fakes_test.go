package filerequest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"depot/internal/domain"
	docsysModels "depot/internal/domain/models/docsystem"
	models "depot/internal/domain/models/filerequest"
	frRepo "depot/internal/domain/repositories/filerequest"
	frSvc "depot/internal/domain/services/filerequest"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRequestRepo is an in-memory RequestRepository. The conditional writes
// honor their storage contract: UpdateFromPending and ClaimForDecision only
// commit when the stored row is still PENDING, and CommitDecision only when
// it holds the APPROVED claim. The mutex makes each write atomic so tests
// can race decisions the way concurrent callers would.
type fakeRequestRepo struct {
	mu        sync.Mutex
	store     map[string]*models.Request
	createErr error
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{store: make(map[string]*models.Request)}
}

func (f *fakeRequestRepo) clone(r *models.Request) *models.Request {
	cp := *r
	return &cp
}

func (f *fakeRequestRepo) Create(ctx context.Context, req *models.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.store {
		if existing.FileID == req.FileID && existing.Status == models.StatusPending {
			return &domain.DuplicateRequestError{
				ExistingRequestID:    existing.ID,
				RequesterID:          existing.RequesterID,
				RequestType:          string(existing.Type),
				DesignatedApproverID: existing.DesignatedApproverID,
				FileName:             existing.FileName,
				TargetFolderID:       existing.TargetFolderID,
			}
		}
	}
	f.store[req.ID] = f.clone(req)
	return nil
}

func (f *fakeRequestRepo) GetByID(ctx context.Context, id string) (*models.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.store[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("request %s not found", id)}
	}
	return f.clone(req), nil
}

func (f *fakeRequestRepo) FindPendingByFileID(ctx context.Context, fileID string) (*models.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, req := range f.store {
		if req.FileID == fileID && req.Status == models.StatusPending {
			return f.clone(req), nil
		}
	}
	return nil, nil
}

func (f *fakeRequestRepo) UpdateFromPending(ctx context.Context, req *models.Request) error {
	if !req.Status.IsTerminal() {
		return fmt.Errorf("refusing to persist non-terminal status %s", req.Status)
	}
	return f.writeWhereStatus(req, models.StatusPending)
}

func (f *fakeRequestRepo) ClaimForDecision(ctx context.Context, req *models.Request) error {
	if req.Status != models.StatusApproved {
		return fmt.Errorf("refusing to claim request %s with status %s", req.ID, req.Status)
	}
	return f.writeWhereStatus(req, models.StatusPending)
}

func (f *fakeRequestRepo) CommitDecision(ctx context.Context, req *models.Request) error {
	if !req.Status.IsTerminal() {
		return fmt.Errorf("refusing to persist non-terminal status %s", req.Status)
	}
	return f.writeWhereStatus(req, models.StatusApproved)
}

func (f *fakeRequestRepo) writeWhereStatus(req *models.Request, expected models.RequestStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.store[req.ID]
	if !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("request %s not found", req.ID)}
	}
	if stored.Status != expected {
		return &domain.NotDecidableError{
			RequestID: req.ID,
			Operation: "decide",
			Status:    string(stored.Status),
		}
	}
	f.store[req.ID] = f.clone(req)
	return nil
}

func (f *fakeRequestRepo) FindByFilter(ctx context.Context, filter frRepo.Filter, page frRepo.Pagination) (*frRepo.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var items []*models.Request
	for _, req := range f.store {
		if filter.RequesterID != "" && req.RequesterID != filter.RequesterID {
			continue
		}
		if filter.DesignatedApproverID != "" && req.DesignatedApproverID != filter.DesignatedApproverID {
			continue
		}
		if filter.FileID != "" && req.FileID != filter.FileID {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		if filter.Type != "" && req.Type != filter.Type {
			continue
		}
		items = append(items, f.clone(req))
	}
	return &frRepo.Page{Items: items, Total: len(items), Page: 1, PageSize: len(items)}, nil
}

func (f *fakeRequestRepo) CountByStatus(ctx context.Context) (map[models.RequestStatus]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[models.RequestStatus]int)
	for _, req := range f.store {
		counts[req.Status]++
	}
	return counts, nil
}

// fakeFileManager serves file lookups from a map and records executed
// operations. moveErr/deleteErr simulate execution failure.
type fakeFileManager struct {
	mu        sync.Mutex
	files     map[string]*frSvc.FileInfo
	moveErr   error
	deleteErr error
	moves     []string
	deletes   []string
}

func newFakeFileManager() *fakeFileManager {
	return &fakeFileManager{files: make(map[string]*frSvc.FileInfo)}
}

func (f *fakeFileManager) addFile(id, folderID, name string) {
	f.files[id] = &frSvc.FileInfo{
		ID:       id,
		FolderID: folderID,
		Name:     name,
		State:    docsysModels.FileStateActive,
	}
}

func (f *fakeFileManager) FindFile(ctx context.Context, fileID string) (*frSvc.FileInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[fileID]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", fileID, domain.ErrNotFound)
	}
	cp := *file
	return &cp, nil
}

func (f *fakeFileManager) MoveFile(ctx context.Context, fileID, targetFolderID, actorID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.moveErr != nil {
		return f.moveErr
	}
	f.moves = append(f.moves, fileID)
	if file, ok := f.files[fileID]; ok {
		file.FolderID = targetFolderID
	}
	return nil
}

func (f *fakeFileManager) DeleteFile(ctx context.Context, fileID, actorID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes = append(f.deletes, fileID)
	delete(f.files, fileID)
	return nil
}

// fakeFolderLookup serves folder lookups from a map.
type fakeFolderLookup struct {
	folders map[string]*frSvc.FolderInfo
}

func newFakeFolderLookup() *fakeFolderLookup {
	return &fakeFolderLookup{folders: make(map[string]*frSvc.FolderInfo)}
}

func (f *fakeFolderLookup) addFolder(id, name string, active bool) {
	f.folders[id] = &frSvc.FolderInfo{ID: id, Name: name, IsActive: active}
}

func (f *fakeFolderLookup) FindFolder(ctx context.Context, folderID string) (*frSvc.FolderInfo, error) {
	folder, ok := f.folders[folderID]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", folderID, domain.ErrNotFound)
	}
	return folder, nil
}

// fakeDirectory serves users with canned authorization profiles.
type fakeDirectory struct {
	users map[string]*frSvc.DirectoryUser
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{users: make(map[string]*frSvc.DirectoryUser)}
}

func (f *fakeDirectory) addUser(id, role string, active bool, perms ...string) {
	f.users[id] = &frSvc.DirectoryUser{
		ID:          id,
		DisplayName: id,
		Role:        role,
		IsActive:    active,
		Permissions: perms,
	}
}

func (f *fakeDirectory) FindUserWithPermissions(ctx context.Context, userID string) (*frSvc.DirectoryUser, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	return user, nil
}

func (f *fakeDirectory) ListUsersWithPermission(ctx context.Context, perm string) ([]*frSvc.DirectoryUser, error) {
	var result []*frSvc.DirectoryUser
	for _, user := range f.users {
		if user.IsActive && user.HasPermission(perm) {
			result = append(result, user)
		}
	}
	return result, nil
}

// fakeNotifier records notices without delivering anything.
type fakeNotifier struct {
	newRequests []frSvc.NewRequestNotice
	decisions   []frSvc.DecisionNotice
	reminders   []frSvc.ReminderNotice
}

func (f *fakeNotifier) NotifyNewRequest(ctx context.Context, n frSvc.NewRequestNotice) {
	f.newRequests = append(f.newRequests, n)
}

func (f *fakeNotifier) NotifyDecision(ctx context.Context, n frSvc.DecisionNotice) {
	f.decisions = append(f.decisions, n)
}

func (f *fakeNotifier) NotifyReminder(ctx context.Context, n frSvc.ReminderNotice) {
	f.reminders = append(f.reminders, n)
}

// workflowFixture wires a command service against the in-memory fakes.
type workflowFixture struct {
	repo      *fakeRequestRepo
	files     *fakeFileManager
	folders   *fakeFolderLookup
	directory *fakeDirectory
	notifier  *fakeNotifier
	commands  frSvc.CommandService
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()

	fx := &workflowFixture{
		repo:      newFakeRequestRepo(),
		files:     newFakeFileManager(),
		folders:   newFakeFolderLookup(),
		directory: newFakeDirectory(),
		notifier:  &fakeNotifier{},
	}

	logger := testLogger()
	validator := NewValidationService(fx.files, fx.folders, fx.directory, fx.repo, logger)
	fx.commands = NewCommandService(fx.repo, validator, fx.files, fx.notifier, logger)
	return fx
}

// seedStandard populates the fixture with one active file, two folders, and
// an admin approver.
func (fx *workflowFixture) seedStandard() {
	fx.files.addFile("file-1", "folder-a", "report.pdf")
	fx.folders.addFolder("folder-a", "Archive A", true)
	fx.folders.addFolder("folder-b", "Archive B", true)
	fx.directory.addUser("approver-1", "admin", true,
		"file:read", "file:write", "file:move:approve", "file:delete:approve")
	fx.directory.addUser("requester-1", "member", true, "file:read", "file:write")
}

func (fx *workflowFixture) moveInput() *frSvc.CreateMoveRequestInput {
	return &frSvc.CreateMoveRequestInput{
		FileID:         "file-1",
		TargetFolderID: "folder-b",
		ApproverID:     "approver-1",
		Reason:         "belongs with the archive",
	}
}

func (fx *workflowFixture) deleteInput() *frSvc.CreateDeleteRequestInput {
	return &frSvc.CreateDeleteRequestInput{
		FileID:     "file-1",
		ApproverID: "approver-1",
		Reason:     "obsolete copy",
	}
}
