package services_test

import (
	"errors"
	"strings"
	"testing"

	"tagdeck/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternal, "fetch", "query", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternal) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"fetch", "query", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestRecoverable(t *testing.T) {
	validationErr := services.Wrap(services.ErrValidation, "naming", "synthesize", "bad tag", nil)
	if !services.Recoverable(validationErr) {
		t.Fatal("expected validation error to be recoverable")
	}
	ioErr := services.Wrap(services.ErrTransient, "rename", "commit", "device gone", errors.New("eio"))
	if services.Recoverable(ioErr) {
		t.Fatal("expected transient error to be unrecoverable")
	}
	if !services.Recoverable(nil) {
		t.Fatal("nil error should be recoverable")
	}
}
