package fcm

import (
	"errors"
	"testing"

	"firebase.google.com/go/v4/messaging"
)

func TestCollectFailuresKeepsTransientErrors(t *testing.T) {
	errGone := errors.New("unregistered")
	errBusy := errors.New("unavailable")
	responses := []*messaging.SendResponse{
		{Success: true, MessageID: "m1"},
		{Error: errGone},
		{Error: errBusy},
	}

	failures := collectFailures([]string{"ok", "gone", "busy"}, responses, func(err error) bool {
		return errors.Is(err, errGone)
	})
	if len(failures) != 2 {
		t.Fatalf("expected 2 failures, got %+v", failures)
	}
	if f := failures[0]; f.Token != "gone" || !f.Stale {
		t.Errorf("unexpected failure %+v", f)
	}
	if f := failures[1]; f.Token != "busy" || f.Stale {
		t.Errorf("transient failure marked stale: %+v", f)
	}
}

func TestIsStaleTokenErrorIgnoresPlainErrors(t *testing.T) {
	if isStaleTokenError(errors.New("deadline exceeded")) {
		t.Fatal("a plain transport error must not mark the token stale")
	}
}

func TestRedact(t *testing.T) {
	if got := Redact("short"); got != "short" {
		t.Errorf("Redact(short)=%q", got)
	}
	if got := Redact("abcdefghijklmnopqrstuvwxyz"); got != "abcdefghijkl..." {
		t.Errorf("Redact(long)=%q", got)
	}
}
