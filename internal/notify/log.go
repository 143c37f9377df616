package notify

import (
	"context"

	"stonk-trader/internal/interfaces"
	"stonk-trader/internal/logger"
)

// LogNotifier writes order outcomes to the structured log. It stands in
// for a chat-platform delivery channel; like any notifier it is
// fire-and-forget and never feeds errors back into order handling.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) Notify(ctx context.Context, userID uint64, kind interfaces.NotifyKind, message string) {
	logger.Info(ctx, "User notification",
		"user_id", userID,
		"kind", kind,
		"message", message,
	)
}
