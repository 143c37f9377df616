package interfaces

import "context"

type NotifyKind string

const (
	NotifySuccess NotifyKind = "SUCCESS"
	NotifyFailure NotifyKind = "FAILURE"
)

// Notifier delivers order outcomes to users. Delivery is fire-and-forget:
// implementations log failures and never surface them to order logic.
type Notifier interface {
	Notify(ctx context.Context, userID uint64, kind NotifyKind, message string)
}
