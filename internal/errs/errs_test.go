package errs

import (
	"errors"
	"testing"
)

func TestError(t *testing.T) {
	err := New(KindNotFound, "port 8080 not found")
	if err.Error() != "port 8080 not found" {
		t.Errorf("unexpected message: %q", err.Error())
	}

	wrapped := Wrap(err, KindCollectionFailed, "rebuild failed")
	if wrapped.Error() != "rebuild failed: port 8080 not found" {
		t.Errorf("unexpected wrapped message: %q", wrapped.Error())
	}
}

func TestGetKind(t *testing.T) {
	err := Errorf(KindProtectedTarget, "pid %d is protected", 1)
	if GetKind(err) != KindProtectedTarget {
		t.Errorf("expected KindProtectedTarget, got %v", GetKind(err))
	}

	wrapped := Wrap(err, KindSignalDeliveryFailed, "kill failed")
	if GetKind(wrapped) != KindSignalDeliveryFailed {
		t.Errorf("expected KindSignalDeliveryFailed, got %v", GetKind(wrapped))
	}

	if GetKind(errors.New("plain")) != KindUnknown {
		t.Errorf("expected KindUnknown for plain error")
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, KindCollectionFailed, "x") != nil {
		t.Error("Wrap(nil) should be nil")
	}
	if Wrapf(nil, KindCollectionFailed, "x %d", 1) != nil {
		t.Error("Wrapf(nil) should be nil")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("eperm")
	err := Wrap(cause, KindPermissionDenied, "signal rejected")
	if !errors.Is(err, cause) {
		t.Error("wrapped error should match its cause with errors.Is")
	}
	if !IsKind(err, KindPermissionDenied) {
		t.Error("IsKind mismatch")
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindCollectionFailed, "collection_failed"},
		{KindNotFound, "not_found"},
		{KindPermissionDenied, "permission_denied"},
		{KindProcessVanished, "process_vanished"},
		{KindSignalDeliveryFailed, "signal_delivery_failed"},
		{KindProtectedTarget, "protected_target"},
		{KindConfirmationRequired, "confirmation_required"},
		{KindUnknown, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
