package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"animeapi/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrUpstream, "load", "arm", "decode failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"load", "arm", "decode failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestFailureStageSurvivesWrapping(t *testing.T) {
	err := services.Wrap(services.ErrPersistence, "persist", "apply", "rollback", errors.New("disk"))
	outer := fmt.Errorf("run failed: %w", err)
	stage, ok := services.FailureStage(outer)
	if !ok || stage != "persist" {
		t.Fatalf("unexpected stage %q ok=%v", stage, ok)
	}
	if _, ok := services.FailureStage(errors.New("plain")); ok {
		t.Fatal("expected no stage for plain error")
	}
}

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{services.Wrap(services.ErrConfiguration, "config", "load", "bad", nil), services.ExitConfig},
		{services.Wrap(services.ErrValidation, "load", "aod", "bad", nil), services.ExitDataErr},
		{services.Wrap(services.ErrNotFound, "load", "kaize", "missing", nil), services.ExitNoInput},
		{services.Wrap(nil, "persist", "apply", "locked", nil), services.ExitFailure},
	}
	for _, tc := range cases {
		if got := services.ExitCode(tc.err); got != tc.want {
			t.Fatalf("ExitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
