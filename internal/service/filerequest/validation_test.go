package filerequest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"depot/internal/domain"
	docsysModels "depot/internal/domain/models/docsystem"
	models "depot/internal/domain/models/filerequest"
)

func newValidationFixture(t *testing.T) (*ValidationService, *workflowFixture) {
	t.Helper()
	fx := newWorkflowFixture(t)
	fx.seedStandard()
	v := NewValidationService(fx.files, fx.folders, fx.directory, fx.repo, testLogger())
	return v, fx
}

func TestValidateFile(t *testing.T) {
	t.Run("active file passes", func(t *testing.T) {
		v, _ := newValidationFixture(t)

		file, err := v.ValidateFile(context.Background(), "file-1")
		if err != nil {
			t.Fatalf("ValidateFile() error = %v", err)
		}
		if file.FolderID != "folder-a" || file.Name != "report.pdf" {
			t.Errorf("file = %+v", file)
		}
	})

	t.Run("unknown file is not found", func(t *testing.T) {
		v, _ := newValidationFixture(t)

		if _, err := v.ValidateFile(context.Background(), "no-such-file"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("trashed file is not found", func(t *testing.T) {
		v, fx := newValidationFixture(t)
		fx.files.files["file-1"].State = docsysModels.FileStateTrashed

		_, err := v.ValidateFile(context.Background(), "file-1")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("error = %v, want ErrNotFound", err)
		}
		if !strings.Contains(err.Error(), "TRASHED") {
			t.Errorf("error = %v, want the lifecycle state named", err)
		}
	})
}

func TestValidateTargetFolder(t *testing.T) {
	t.Run("active folder passes", func(t *testing.T) {
		v, _ := newValidationFixture(t)

		folder, err := v.ValidateTargetFolder(context.Background(), "folder-b")
		if err != nil {
			t.Fatalf("ValidateTargetFolder() error = %v", err)
		}
		if !folder.IsActive {
			t.Errorf("folder = %+v", folder)
		}
	})

	t.Run("deleted folder is not found", func(t *testing.T) {
		v, fx := newValidationFixture(t)
		fx.folders.addFolder("folder-gone", "Old Archive", false)

		if _, err := v.ValidateTargetFolder(context.Background(), "folder-gone"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})
}

func TestCheckDuplicate(t *testing.T) {
	t.Run("no pending request passes", func(t *testing.T) {
		v, _ := newValidationFixture(t)

		if err := v.CheckDuplicate(context.Background(), "file-1"); err != nil {
			t.Errorf("CheckDuplicate() error = %v", err)
		}
	})

	t.Run("pending request fails with the existing request's context", func(t *testing.T) {
		v, fx := newValidationFixture(t)

		created, err := fx.commands.CreateMoveRequest(context.Background(), "requester-1", fx.moveInput())
		if err != nil {
			t.Fatalf("CreateMoveRequest() error = %v", err)
		}

		err = v.CheckDuplicate(context.Background(), "file-1")
		var dupErr *domain.DuplicateRequestError
		if !errors.As(err, &dupErr) {
			t.Fatalf("error = %v, want DuplicateRequestError", err)
		}
		if dupErr.ExistingRequestID != created.ID {
			t.Errorf("existing id = %s, want %s", dupErr.ExistingRequestID, created.ID)
		}
		if dupErr.RequesterID != "requester-1" {
			t.Errorf("requester = %s, want requester-1", dupErr.RequesterID)
		}
		if dupErr.RequestType != string(models.TypeMove) {
			t.Errorf("type = %s, want %s", dupErr.RequestType, models.TypeMove)
		}
		if dupErr.FileName != "report.pdf" {
			t.Errorf("file name = %s, want report.pdf", dupErr.FileName)
		}
		if dupErr.TargetFolderID == nil || *dupErr.TargetFolderID != "folder-b" {
			t.Errorf("target folder = %v, want folder-b", dupErr.TargetFolderID)
		}
	})

	t.Run("decided request no longer blocks", func(t *testing.T) {
		v, fx := newValidationFixture(t)

		created, _ := fx.commands.CreateMoveRequest(context.Background(), "requester-1", fx.moveInput())
		if _, err := fx.commands.CancelRequest(context.Background(), created.ID, "requester-1"); err != nil {
			t.Fatalf("CancelRequest() error = %v", err)
		}

		if err := v.CheckDuplicate(context.Background(), "file-1"); err != nil {
			t.Errorf("CheckDuplicate() after cancel error = %v", err)
		}
	})
}

func TestValidateApprover(t *testing.T) {
	t.Run("admin may approve either action", func(t *testing.T) {
		v, _ := newValidationFixture(t)

		for _, actionType := range []models.RequestType{models.TypeMove, models.TypeDelete} {
			if _, err := v.ValidateApprover(context.Background(), "approver-1", actionType); err != nil {
				t.Errorf("ValidateApprover(%s) error = %v", actionType, err)
			}
		}
	})

	reasons := []struct {
		name       string
		setup      func(fx *workflowFixture)
		approverID string
		actionType models.RequestType
		wantReason string
		wantPerm   string
	}{
		{
			name:       "unknown user",
			setup:      func(fx *workflowFixture) {},
			approverID: "ghost",
			actionType: models.TypeMove,
			wantReason: "user does not exist",
			wantPerm:   "file:move:approve",
		},
		{
			name: "inactive account",
			setup: func(fx *workflowFixture) {
				fx.directory.addUser("suspended", "admin", false,
					"file:move:approve", "file:delete:approve")
			},
			approverID: "suspended",
			actionType: models.TypeMove,
			wantReason: "account is inactive",
			wantPerm:   "file:move:approve",
		},
		{
			name: "no authorization profile",
			setup: func(fx *workflowFixture) {
				fx.directory.addUser("bare", "member", true)
			},
			approverID: "bare",
			actionType: models.TypeDelete,
			wantReason: "no authorization profile",
			wantPerm:   "file:delete:approve",
		},
		{
			name: "role lacks the delete grant",
			setup: func(fx *workflowFixture) {
				fx.directory.addUser("manager-1", "manager", true,
					"file:read", "file:move:approve")
			},
			approverID: "manager-1",
			actionType: models.TypeDelete,
			wantReason: "lacks permission",
			wantPerm:   "file:delete:approve",
		},
	}

	for _, tc := range reasons {
		t.Run(tc.name, func(t *testing.T) {
			v, fx := newValidationFixture(t)
			tc.setup(fx)

			_, err := v.ValidateApprover(context.Background(), tc.approverID, tc.actionType)
			var invErr *domain.InvalidApproverError
			if !errors.As(err, &invErr) {
				t.Fatalf("error = %v, want InvalidApproverError", err)
			}
			if invErr.RequiredPermission != tc.wantPerm {
				t.Errorf("required permission = %s, want %s", invErr.RequiredPermission, tc.wantPerm)
			}
			if !strings.Contains(invErr.Reason, tc.wantReason) {
				t.Errorf("reason = %q, want it to mention %q", invErr.Reason, tc.wantReason)
			}
		})
	}
}
