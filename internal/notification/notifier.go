// Package notification delivers candidate notifications through a pluggable
// transport. Delivery is best effort: callers enqueue and move on.
package notification

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

var ErrRejected = errors.New("notification gateway reported failure")

// Message is the gateway contract: {to, templateType, data}.
type Message struct {
	To           string            `json:"to"`
	TemplateType string            `json:"templateType"`
	Data         map[string]string `json:"data"`
}

type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// LogNotifier only records what would have been sent.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(_ context.Context, msg Message) error {
	n.logger.Info("notification",
		zap.String("to", msg.To),
		zap.String("template", msg.TemplateType),
		zap.Any("data", msg.Data),
	)
	return nil
}
