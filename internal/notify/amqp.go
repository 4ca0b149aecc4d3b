package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	frSvc "depot/internal/domain/services/filerequest"
)

// Queue names. One durable queue per notification kind; downstream delivery
// workers consume them.
const (
	QueueNewRequest = "file_request.new"
	QueueDecision   = "file_request.decision"
	QueueReminder   = "file_request.reminder"
)

// AMQPNotifier publishes workflow notifications to RabbitMQ as persistent
// JSON messages. Publish failures are logged and dropped: notification
// delivery must never affect a command's outcome.
type AMQPNotifier struct {
	conn   *amqp.Connection
	chn    *amqp.Channel
	logger *slog.Logger
}

var _ frSvc.Notifier = (*AMQPNotifier)(nil)

// NewAMQPNotifier dials the broker, opens a channel, and declares the three
// workflow queues.
func NewAMQPNotifier(url string, logger *slog.Logger) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	chn, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}

	for _, queue := range []string{QueueNewRequest, QueueDecision, QueueReminder} {
		if _, err := chn.QueueDeclare(
			queue,
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		); err != nil {
			chn.Close()
			conn.Close()
			return nil, fmt.Errorf("declare queue %s: %w", queue, err)
		}
	}

	return &AMQPNotifier{conn: conn, chn: chn, logger: logger}, nil
}

// Close releases the channel and connection.
func (n *AMQPNotifier) Close() error {
	if err := n.chn.Close(); err != nil {
		return err
	}
	return n.conn.Close()
}

func (n *AMQPNotifier) NotifyNewRequest(ctx context.Context, notice frSvc.NewRequestNotice) {
	n.publish(ctx, QueueNewRequest, notice)
}

func (n *AMQPNotifier) NotifyDecision(ctx context.Context, notice frSvc.DecisionNotice) {
	n.publish(ctx, QueueDecision, notice)
}

func (n *AMQPNotifier) NotifyReminder(ctx context.Context, notice frSvc.ReminderNotice) {
	n.publish(ctx, QueueReminder, notice)
}

func (n *AMQPNotifier) publish(ctx context.Context, queue string, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		n.logger.Error("notification encode failed", "queue", queue, "error", err)
		return
	}

	err = n.chn.PublishWithContext(
		ctx,
		"",    // default exchange
		queue, // routing key (queue name)
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		n.logger.Error("notification publish failed", "queue", queue, "error", err)
	}
}
