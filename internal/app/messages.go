package app

import (
	"time"

	"github.com/j-veylop/speed-dashboard/internal/models"
	"github.com/j-veylop/speed-dashboard/internal/services"
)

// TickMsg is sent periodically to expire notifications.
type TickMsg struct {
	Time time.Time
}

// RefreshMsg requests a reload of the data. Periodic refreshes set Scheduled.
type RefreshMsg struct {
	Scheduled bool
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// SnapshotLoadedMsg carries the result of a reload.
type SnapshotLoadedMsg struct {
	Snapshot *models.Snapshot
	Err      error
	Initial  bool
	Manual   bool
}

// DataChangedMsg tells tabs that the shared snapshot was replaced.
type DataChangedMsg struct {
	Snapshot *models.Snapshot
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg hands the subscription channel to the model.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}
