package guard

import (
	"errors"
	"testing"
)

var errKind = errors.New("conflict")

func TestResult_Error(t *testing.T) {
	t.Run("allowed result returns nil error", func(t *testing.T) {
		if err := Allow().Error(); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})

	t.Run("denied result wraps its kind", func(t *testing.T) {
		err := Deny(errKind, "claim %d already decided", 4).Error()
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !errors.Is(err, errKind) {
			t.Errorf("expected error to wrap kind, got %v", err)
		}
		if err.Error() != "conflict: claim 4 already decided" {
			t.Errorf("error = %q", err.Error())
		}
	})

	t.Run("denied result without kind keeps reason", func(t *testing.T) {
		err := Result{Reason: "test reason"}.Error()
		if err == nil || err.Error() != "test reason" {
			t.Errorf("error = %v, want %q", err, "test reason")
		}
	})
}

func TestFirst(t *testing.T) {
	first := Deny(errKind, "first")
	got := First(Allow(), first, Deny(errKind, "second"))
	if got.Allowed || got.Reason != "first" {
		t.Errorf("First() = %+v, want first denial", got)
	}
	if !First(Allow(), Allow()).Allowed {
		t.Error("First() of passing results should allow")
	}
}
