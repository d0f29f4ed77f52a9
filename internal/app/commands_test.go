package app

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestTickCmds(t *testing.T) {
	if tickCmd(time.Millisecond) == nil {
		t.Error("tickCmd returned nil")
	}
	if defaultTickCmd() == nil {
		t.Error("defaultTickCmd returned nil")
	}
	if refreshTickCmd(0) != nil {
		t.Error("refreshTickCmd should be disabled for a zero interval")
	}
	if refreshTickCmd(time.Minute) == nil {
		t.Error("refreshTickCmd returned nil")
	}
}

func TestNotifyCmds(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) tea.Cmd
		want NotificationType
	}{
		{"Success", notifySuccessCmd, NotificationSuccess},
		{"Error", notifyErrorCmd, NotificationError},
		{"Warning", notifyWarningCmd, NotificationWarning},
		{"Info", NotifyInfo, NotificationInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.fn("msg")()

			addMsg, ok := msg.(AddNotificationMsg)
			if !ok {
				t.Fatalf("Expected AddNotificationMsg, got %T", msg)
			}
			if addMsg.Type != tt.want {
				t.Errorf("Type = %v, want %v", addMsg.Type, tt.want)
			}
			if addMsg.Message != "msg" {
				t.Errorf("Message = %q, want msg", addMsg.Message)
			}
			if addMsg.Duration <= 0 {
				t.Error("notifications should expire")
			}
		})
	}
}

func TestReloadCmd(t *testing.T) {
	src := newFakeSource(testSnapshot(5))

	msg, ok := reloadCmd(src, true, false)().(SnapshotLoadedMsg)
	if !ok {
		t.Fatal("reloadCmd should produce SnapshotLoadedMsg")
	}
	if msg.Snapshot.Count() != 5 || !msg.Initial || msg.Manual || msg.Err != nil {
		t.Errorf("msg = %+v", msg)
	}

	src.err = errors.New("boom")
	msg = reloadCmd(src, false, true)().(SnapshotLoadedMsg)
	if msg.Err == nil || !msg.Manual {
		t.Errorf("msg = %+v", msg)
	}
}

func TestClearNotificationCmd(t *testing.T) {
	if clearNotificationCmd("id", time.Millisecond) == nil {
		t.Error("clearNotificationCmd returned nil")
	}
}
