package notify

import (
	"context"

	"go.uber.org/zap"
)

// Message is one outgoing e-mail. Calendar is the rendered invite, if any.
type Message struct {
	To       []string
	Subject  string
	Body     string
	Calendar string
	Method   Method
}

// Sender is the mail transport.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("Outgoing e-mail",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
		zap.Bool("has_invite", msg.Calendar != ""),
		zap.String("invite_method", string(msg.Method)),
	)
	return nil
}
