package app

import (
	"errors"
	"fmt"
	"testing"
)

type detailErr struct{ detail string }

func (e detailErr) Error() string      { return "api: " + e.detail }
func (e detailErr) UserDetail() string { return e.detail }

func TestUserMessage(t *testing.T) {
	if got := UserMessage(fmt.Errorf("wrap: %w", detailErr{"Subscription not found"}), "generic"); got != "Subscription not found" {
		t.Fatalf("detail: got %q", got)
	}
	if got := UserMessage(errors.New("socket hang up"), "Failed to load"); got != "Failed to load" {
		t.Fatalf("fallback: got %q", got)
	}
	if got := UserMessage(&CodedError{Code: "x", Message: "coded"}, "generic"); got != "coded" {
		t.Fatalf("coded: got %q", got)
	}
	if UserMessage(nil, "x") != "" {
		t.Fatalf("nil error should give empty message")
	}
}

func TestCodedError_Unwrap(t *testing.T) {
	err := fmt.Errorf("outer: %w", &CodedError{Code: "refresh_timeout", Err: ErrRefreshTimeout})
	if !errors.Is(err, ErrRefreshTimeout) {
		t.Fatalf("errors.Is should see the wrapped sentinel")
	}
	if ErrorCode(err) != "refresh_timeout" {
		t.Fatalf("code: got %q", ErrorCode(err))
	}
	if ErrorCode(errors.New("plain")) != "" {
		t.Fatalf("plain error has no code")
	}
}
