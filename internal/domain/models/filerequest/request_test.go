package filerequest

import (
	"errors"
	"strings"
	"testing"

	"depot/internal/domain"
	"depot/internal/domain/models/docsystem"
)

func newTestMoveRequest() *Request {
	return NewMoveRequest(
		"req-1",
		"file-1",
		"report.pdf",
		"folder-target",
		"user-requester",
		"user-approver",
		"needs to live with the Q3 material",
		Snapshot{FolderID: "folder-source", State: docsystem.FileStateActive},
	)
}

func newTestDeleteRequest() *Request {
	return NewDeleteRequest(
		"req-2",
		"file-2",
		"obsolete.xlsx",
		"user-requester",
		"user-approver",
		"superseded by the new template",
		Snapshot{FolderID: "folder-source", State: docsystem.FileStateActive},
	)
}

func TestNewRequest(t *testing.T) {
	req := newTestMoveRequest()

	if req.Status != StatusPending {
		t.Errorf("new request status = %s, want %s", req.Status, StatusPending)
	}
	if req.TargetFolderID == nil || *req.TargetFolderID != "folder-target" {
		t.Errorf("move request target folder not recorded")
	}
	if req.SnapshotFolderID != "folder-source" {
		t.Errorf("snapshot folder = %s, want folder-source", req.SnapshotFolderID)
	}
	if req.SnapshotFileState != docsystem.FileStateActive {
		t.Errorf("snapshot state = %s, want %s", req.SnapshotFileState, docsystem.FileStateActive)
	}
	if !req.IsDecidable() {
		t.Error("new request should be decidable")
	}

	del := newTestDeleteRequest()
	if del.TargetFolderID != nil {
		t.Error("delete request should have no target folder")
	}
	if del.Type != TypeDelete {
		t.Errorf("delete request type = %s, want %s", del.Type, TypeDelete)
	}
}

func TestStatusIsTerminal(t *testing.T) {
	tests := []struct {
		status RequestStatus
		want   bool
	}{
		{StatusPending, false},
		{StatusApproved, false},
		{StatusRejected, true},
		{StatusCanceled, true},
		{StatusExecuted, true},
		{StatusFailed, true},
		{StatusInvalidated, true},
	}

	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.want {
			t.Errorf("%s.IsTerminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestCancel(t *testing.T) {
	t.Run("requester cancels pending request", func(t *testing.T) {
		req := newTestMoveRequest()
		if err := req.Cancel("user-requester"); err != nil {
			t.Fatalf("Cancel() error = %v", err)
		}
		if req.Status != StatusCanceled {
			t.Errorf("status = %s, want %s", req.Status, StatusCanceled)
		}
	})

	t.Run("non-requester cannot cancel", func(t *testing.T) {
		req := newTestMoveRequest()
		err := req.Cancel("user-other")
		var forbidden *domain.ForbiddenError
		if !errors.As(err, &forbidden) {
			t.Fatalf("Cancel() error = %v, want ForbiddenError", err)
		}
		if req.Status != StatusPending {
			t.Errorf("failed cancel must not change status, got %s", req.Status)
		}
	})

	t.Run("cancel after decision fails", func(t *testing.T) {
		req := newTestMoveRequest()
		comment := "fine by me"
		if err := req.Reject("user-approver", &comment); err != nil {
			t.Fatalf("Reject() error = %v", err)
		}
		err := req.Cancel("user-requester")
		if !errors.Is(err, domain.ErrNotDecidable) {
			t.Fatalf("Cancel() error = %v, want ErrNotDecidable", err)
		}
		var nd *domain.NotDecidableError
		if !errors.As(err, &nd) {
			t.Fatalf("Cancel() error = %v, want NotDecidableError", err)
		}
		if nd.Operation != "cancel" {
			t.Errorf("operation = %s, want cancel", nd.Operation)
		}
		if nd.Status != string(StatusRejected) {
			t.Errorf("reported status = %s, want %s", nd.Status, StatusRejected)
		}
	})
}

func TestApprove(t *testing.T) {
	t.Run("pending request records decision intent", func(t *testing.T) {
		req := newTestMoveRequest()
		comment := "approved, go ahead"
		if err := req.Approve("user-approver", &comment); err != nil {
			t.Fatalf("Approve() error = %v", err)
		}
		if req.Status != StatusApproved {
			t.Errorf("status = %s, want %s", req.Status, StatusApproved)
		}
		if req.ApproverID == nil || *req.ApproverID != "user-approver" {
			t.Error("approver identity not recorded")
		}
		if req.DecidedAt == nil {
			t.Error("decision time not recorded")
		}
		if req.DecisionComment == nil || *req.DecisionComment != comment {
			t.Error("decision comment not recorded")
		}
	})

	t.Run("terminal request cannot be approved", func(t *testing.T) {
		req := newTestMoveRequest()
		if err := req.Cancel("user-requester"); err != nil {
			t.Fatalf("Cancel() error = %v", err)
		}
		if err := req.Approve("user-approver", nil); !errors.Is(err, domain.ErrNotDecidable) {
			t.Fatalf("Approve() error = %v, want ErrNotDecidable", err)
		}
	})
}

func TestReject(t *testing.T) {
	req := newTestDeleteRequest()
	comment := "file is still referenced by the audit"
	if err := req.Reject("user-approver", &comment); err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if req.Status != StatusRejected {
		t.Errorf("status = %s, want %s", req.Status, StatusRejected)
	}
	if req.DecisionComment == nil || *req.DecisionComment != comment {
		t.Error("rejection comment not recorded")
	}
	if req.DecidedAt == nil {
		t.Error("decision time not recorded")
	}
}

func TestValidateStateForExecution(t *testing.T) {
	tests := []struct {
		name         string
		liveFolderID string
		liveState    docsystem.FileState
		want         bool
		noteContains string
	}{
		{
			name:         "live state matches snapshot",
			liveFolderID: "folder-source",
			liveState:    docsystem.FileStateActive,
			want:         true,
		},
		{
			name:         "file moved since request",
			liveFolderID: "folder-elsewhere",
			liveState:    docsystem.FileStateActive,
			want:         false,
			noteContains: "moved from folder folder-source to folder-elsewhere",
		},
		{
			name:         "file state changed since request",
			liveFolderID: "folder-source",
			liveState:    docsystem.FileStateTrashed,
			want:         false,
			noteContains: "state changed from ACTIVE to TRASHED",
		},
		{
			name:         "both folder and state changed",
			liveFolderID: "folder-elsewhere",
			liveState:    docsystem.FileStateTrashed,
			want:         false,
			noteContains: "and state changed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newTestMoveRequest()
			if err := req.Approve("user-approver", nil); err != nil {
				t.Fatalf("Approve() error = %v", err)
			}

			got := req.ValidateStateForExecution(tt.liveFolderID, tt.liveState)
			if got != tt.want {
				t.Fatalf("ValidateStateForExecution() = %v, want %v", got, tt.want)
			}

			if tt.want {
				if req.Status != StatusApproved {
					t.Errorf("matching state must not change status, got %s", req.Status)
				}
				return
			}

			if req.Status != StatusInvalidated {
				t.Errorf("status = %s, want %s", req.Status, StatusInvalidated)
			}
			if req.ExecutionNote == nil || !strings.Contains(*req.ExecutionNote, tt.noteContains) {
				t.Errorf("execution note = %v, want substring %q", req.ExecutionNote, tt.noteContains)
			}
		})
	}
}

func TestSnapshotImmutableThroughTransitions(t *testing.T) {
	req := newTestMoveRequest()
	if err := req.Approve("user-approver", nil); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	req.ValidateStateForExecution("folder-elsewhere", docsystem.FileStateTrashed)

	if req.SnapshotFolderID != "folder-source" {
		t.Errorf("snapshot folder mutated to %s", req.SnapshotFolderID)
	}
	if req.SnapshotFileState != docsystem.FileStateActive {
		t.Errorf("snapshot state mutated to %s", req.SnapshotFileState)
	}
}

func TestMarkExecutedAndFailed(t *testing.T) {
	req := newTestMoveRequest()
	if err := req.Approve("user-approver", nil); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	req.MarkExecuted()
	if req.Status != StatusExecuted {
		t.Errorf("status = %s, want %s", req.Status, StatusExecuted)
	}
	if req.ExecutedAt == nil {
		t.Error("execution time not recorded")
	}

	failed := newTestDeleteRequest()
	if err := failed.Approve("user-approver", nil); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	failed.MarkFailed("target folder is gone")
	if failed.Status != StatusFailed {
		t.Errorf("status = %s, want %s", failed.Status, StatusFailed)
	}
	if failed.ExecutionNote == nil || *failed.ExecutionNote != "target folder is gone" {
		t.Errorf("execution note = %v, want failure note", failed.ExecutionNote)
	}
	if failed.ExecutedAt != nil {
		t.Error("failed execution must not record an execution time")
	}
}
