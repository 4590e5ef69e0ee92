package mail

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/go-arrower/bizadmin/alog"
)

// LogSender does not send anything but logs each message.
type LogSender struct {
	logger alog.Logger
	from   From
}

func NewLogSender(logger alog.Logger, from From) *LogSender {
	return &LogSender{logger: logger, from: from}
}

func (s *LogSender) Send(ctx context.Context, msg Message) (SendResult, error) {
	if err := msg.validate(); err != nil {
		return SendResult{}, err
	}

	id := uuid.NewString()

	s.logger.InfoContext(ctx, "email sent",
		slog.String("message_id", id),
		slog.String("from", s.from.String()),
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("text", msg.Text),
	)

	return SendResult{MessageID: id}, nil
}
