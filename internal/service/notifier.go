package service

import (
	"context"

	"github.com/okulik/mealsync/internal/logger"
)

// Sync lifecycle events published through the Notifier.
const (
	EventSyncCompleted    = "sync.completed"
	EventSyncConflicted   = "sync.conflicted"
	EventConflictResolved = "conflict.resolved"
)

// logNotifier is the default Notifier: it records every event in the
// application log instead of pushing it anywhere. Deployments with a real
// push channel supply their own Notifier through NewServices.
type logNotifier struct {
	logger *logger.Logger
}

func NewLogNotifier(log *logger.Logger) Notifier {
	return &logNotifier{logger: log}
}

func (n *logNotifier) Notify(_ context.Context, userID int64, event string, payload any) error {
	n.logger.Info().
		Int64("user_id", userID).
		Str("event", event).
		Interface("payload", payload).
		Msg("sync event")

	return nil
}
