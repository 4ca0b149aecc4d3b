package filerequest

import (
	"context"
	"testing"

	models "depot/internal/domain/models/filerequest"
	frRepo "depot/internal/domain/repositories/filerequest"
	frSvc "depot/internal/domain/services/filerequest"
)

func newQueryFixture(t *testing.T) (*workflowFixture, frSvc.QueryService) {
	t.Helper()
	fx := newWorkflowFixture(t)
	queries := NewQueryService(fx.repo, fx.directory, testLogger())
	return fx, queries
}

func TestListMyRequests(t *testing.T) {
	fx, queries := newQueryFixture(t)
	fx.seedStandard()
	fx.files.addFile("file-2", "folder-a", "other.pdf")

	mine, err := fx.commands.CreateMoveRequest(context.Background(), "requester-1", fx.moveInput())
	if err != nil {
		t.Fatalf("seed error = %v", err)
	}
	other := fx.deleteInput()
	other.FileID = "file-2"
	if _, err := fx.commands.CreateDeleteRequest(context.Background(), "requester-2", other); err != nil {
		t.Fatalf("seed error = %v", err)
	}

	t.Run("only the caller's requests are returned", func(t *testing.T) {
		page, err := queries.ListMyRequests(context.Background(), "requester-1", frRepo.Filter{}, frRepo.Pagination{})
		if err != nil {
			t.Fatalf("ListMyRequests() error = %v", err)
		}
		if len(page.Items) != 1 || page.Items[0].ID != mine.ID {
			t.Errorf("items = %d, want exactly the caller's request", len(page.Items))
		}
	})

	t.Run("caller cannot widen the filter to other requesters", func(t *testing.T) {
		filter := frRepo.Filter{RequesterID: "requester-2"}
		page, err := queries.ListMyRequests(context.Background(), "requester-1", filter, frRepo.Pagination{})
		if err != nil {
			t.Fatalf("ListMyRequests() error = %v", err)
		}
		for _, item := range page.Items {
			if item.RequesterID != "requester-1" {
				t.Errorf("leaked request of %s", item.RequesterID)
			}
		}
	})

	t.Run("type filter applies", func(t *testing.T) {
		filter := frRepo.Filter{Type: models.TypeDelete}
		page, err := queries.ListMyRequests(context.Background(), "requester-1", filter, frRepo.Pagination{})
		if err != nil {
			t.Fatalf("ListMyRequests() error = %v", err)
		}
		if len(page.Items) != 0 {
			t.Errorf("items = %d, want 0 delete requests for requester-1", len(page.Items))
		}
	})
}

func TestListPendingApprovals(t *testing.T) {
	fx, queries := newQueryFixture(t)
	fx.seedStandard()
	fx.files.addFile("file-2", "folder-a", "other.pdf")

	pending, err := fx.commands.CreateMoveRequest(context.Background(), "requester-1", fx.moveInput())
	if err != nil {
		t.Fatalf("seed error = %v", err)
	}
	decided := fx.deleteInput()
	decided.FileID = "file-2"
	req, err := fx.commands.CreateDeleteRequest(context.Background(), "requester-1", decided)
	if err != nil {
		t.Fatalf("seed error = %v", err)
	}
	if _, err := fx.commands.RejectRequest(context.Background(), req.ID, "approver-1", "no"); err != nil {
		t.Fatalf("seed error = %v", err)
	}

	page, err := queries.ListPendingApprovals(context.Background(), "approver-1", frRepo.Pagination{})
	if err != nil {
		t.Fatalf("ListPendingApprovals() error = %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != pending.ID {
		t.Errorf("items = %d, want only the still-pending request", len(page.Items))
	}
}

func TestStatusSummary(t *testing.T) {
	fx, queries := newQueryFixture(t)
	fx.seedStandard()
	fx.files.addFile("file-2", "folder-a", "other.pdf")

	first, _ := fx.commands.CreateMoveRequest(context.Background(), "requester-1", fx.moveInput())
	second := fx.deleteInput()
	second.FileID = "file-2"
	if _, err := fx.commands.CreateDeleteRequest(context.Background(), "requester-1", second); err != nil {
		t.Fatalf("seed error = %v", err)
	}
	if _, err := fx.commands.ApproveRequest(context.Background(), first.ID, "approver-1", nil); err != nil {
		t.Fatalf("seed error = %v", err)
	}

	summary, err := queries.StatusSummary(context.Background())
	if err != nil {
		t.Fatalf("StatusSummary() error = %v", err)
	}
	if summary[models.StatusExecuted] != 1 {
		t.Errorf("executed = %d, want 1", summary[models.StatusExecuted])
	}
	if summary[models.StatusPending] != 1 {
		t.Errorf("pending = %d, want 1", summary[models.StatusPending])
	}
}

func TestEligibleApprovers(t *testing.T) {
	fx, queries := newQueryFixture(t)
	fx.seedStandard()
	fx.directory.addUser("manager-1", "manager", true, "file:move:approve")
	fx.directory.addUser("inactive-1", "admin", false, "file:move:approve", "file:delete:approve")

	moveApprovers, err := queries.EligibleApprovers(context.Background(), models.TypeMove)
	if err != nil {
		t.Fatalf("EligibleApprovers() error = %v", err)
	}
	if len(moveApprovers) != 2 {
		t.Errorf("move approvers = %d, want admin and manager", len(moveApprovers))
	}

	deleteApprovers, err := queries.EligibleApprovers(context.Background(), models.TypeDelete)
	if err != nil {
		t.Fatalf("EligibleApprovers() error = %v", err)
	}
	if len(deleteApprovers) != 1 || deleteApprovers[0].ID != "approver-1" {
		t.Errorf("delete approvers = %v, want only approver-1", deleteApprovers)
	}
}
