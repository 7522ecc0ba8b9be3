package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/marketfront/cartstate/internal/domain"
)

// LogNotifier writes notifications to the structured log. Default for local runs.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLog(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, notification domain.Notification) {
	fields := []zap.Field{
		zap.String("title", notification.Title),
		zap.String("description", notification.Description),
		zap.String("kind", string(notification.Kind)),
	}

	if notification.Kind == domain.NotificationError {
		n.logger.Warn("notification", fields...)
		return
	}
	n.logger.Info("notification", fields...)
}
