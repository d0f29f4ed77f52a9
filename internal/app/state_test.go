package app

import (
	"errors"
	"testing"
	"time"

	"github.com/j-veylop/speed-dashboard/internal/models"
)

func TestNewState(t *testing.T) {
	s := NewState()
	if s == nil {
		t.Fatal("NewState returned nil")
	}
	if !s.IsInitialLoading() {
		t.Error("Initial loading should be true")
	}
	if s.Snapshot() != nil {
		t.Error("Snapshot should be nil before the first load")
	}
}

func TestState_SetLoading(t *testing.T) {
	s := NewState()

	s.SetLoading("reload", true)
	if !s.AnyLoading() {
		t.Error("AnyLoading should be true")
	}

	s.SetLoading("reload", false)
	if !s.AnyLoading() {
		t.Error("AnyLoading should be true (Initial is true)")
	}

	s.SetLoading("initial", false)
	if s.AnyLoading() {
		t.Error("AnyLoading should be false")
	}

	s.SetLoading("unknown", true)
	if s.AnyLoading() {
		t.Error("unknown resources should be ignored")
	}
}

func TestState_Snapshot(t *testing.T) {
	s := NewState()
	s.SetError(errors.New("first load failed"))

	snap := &models.Snapshot{Readings: make([]models.Reading, 2)}
	s.SetSnapshot(snap)

	if s.Snapshot() != snap {
		t.Error("Snapshot should return the stored snapshot")
	}
	if s.LastError() != nil {
		t.Error("a successful load should clear the error")
	}
	if s.LastUpdated().IsZero() {
		t.Error("LastUpdated should be set")
	}
}

func TestState_Notifications(t *testing.T) {
	s := NewState()

	id := s.AddNotification(NotificationInfo, "hello", 0)
	if len(s.GetNotifications()) != 1 {
		t.Fatal("notification not added")
	}

	s.RemoveNotification(id)
	if len(s.GetNotifications()) != 0 {
		t.Error("notification not removed")
	}

	for range maxNotifications + 5 {
		s.AddNotification(NotificationInfo, "spam", 0)
	}
	if n := len(s.GetNotifications()); n != maxNotifications {
		t.Errorf("kept %d notifications, want %d", n, maxNotifications)
	}
}

func TestState_ExpiredNotifications(t *testing.T) {
	s := NewState()
	s.AddNotification(NotificationError, "old", time.Nanosecond)
	s.AddNotification(NotificationInfo, "sticky", 0)

	time.Sleep(time.Millisecond)

	if n := len(s.GetNotifications()); n != 1 {
		t.Errorf("GetNotifications returned %d, want 1", n)
	}
	s.ClearExpiredNotifications()
	if n := len(s.notifications); n != 1 {
		t.Errorf("%d notifications left after clearing, want 1", n)
	}
}

func TestState_LoadingNotification(t *testing.T) {
	s := NewState()

	s.SetLoadingNotification("Loading")
	s.SetLoadingNotification("Still loading")

	notifs := s.GetNotifications()
	if len(notifs) != 1 || notifs[0].Message != "Still loading" {
		t.Fatalf("notifications = %+v", notifs)
	}

	s.ClearLoadingNotification()
	if len(s.GetNotifications()) != 0 {
		t.Error("loading notification should be cleared")
	}
}

func TestNotificationType_String(t *testing.T) {
	tests := map[NotificationType]string{
		NotificationSuccess:  "success",
		NotificationError:    "error",
		NotificationWarning:  "warning",
		NotificationInfo:     "info",
		NotificationLoading:  "loading",
		NotificationType(42): "unknown",
	}
	for typ, want := range tests {
		if got := typ.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
