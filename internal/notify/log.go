package notify

import (
	"context"
	"log/slog"

	frSvc "depot/internal/domain/services/filerequest"
)

// LogNotifier records notifications in the application log. Used when no
// broker is configured (local development, small deployments).
type LogNotifier struct {
	logger *slog.Logger
}

var _ frSvc.Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyNewRequest(_ context.Context, notice frSvc.NewRequestNotice) {
	n.logger.Info("notify: new file action request",
		"request_id", notice.RequestID,
		"approver", notice.ApproverID,
		"action", notice.ActionType,
		"file", notice.FileName,
	)
}

func (n *LogNotifier) NotifyDecision(_ context.Context, notice frSvc.DecisionNotice) {
	n.logger.Info("notify: file action request decided",
		"request_id", notice.RequestID,
		"requester", notice.RequesterID,
		"action", notice.ActionType,
		"decision", notice.Decision,
	)
}

func (n *LogNotifier) NotifyReminder(_ context.Context, notice frSvc.ReminderNotice) {
	n.logger.Info("notify: file action request reminder",
		"request_id", notice.RequestID,
		"approver", notice.ApproverID,
		"pending_since", notice.PendingSince,
	)
}
