package apierr

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewFormatsAndTagsKind(t *testing.T) {
	err := New(Configuration, "unknown agent type %q", "frobnicator")
	if !Is(err, Configuration) {
		t.Fatalf("expected Configuration kind, got %v", err)
	}
	want := `configuration: unknown agent type "frobnicator"`
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapNilReturnsNil(t *testing.T) {
	if Wrap(Spawn, nil) != nil {
		t.Fatal("Wrap(kind, nil) should return nil")
	}
}

func TestWrapPreservesUnderlyingError(t *testing.T) {
	underlying := errors.New("boom")
	err := Wrap(Transport, underlying)
	if !Is(err, Transport) {
		t.Fatalf("expected Transport kind, got %v", err)
	}
	if !errors.Is(err, underlying) {
		t.Fatalf("expected Unwrap chain to reach underlying error")
	}
}

func TestIsFollowsMultipleWrapLayers(t *testing.T) {
	inner := New(State, "bad transition")
	outer := fmt.Errorf("dispatch failed: %w", inner)
	if !Is(outer, State) {
		t.Fatal("Is should unwrap through a plain fmt.Errorf wrapper")
	}
	if Is(outer, ACP) {
		t.Fatal("Is should not match an unrelated kind")
	}
}

func TestIsReturnsFalseForPlainError(t *testing.T) {
	if Is(errors.New("plain"), Connection) {
		t.Fatal("Is should return false for an error with no Kind anywhere in its chain")
	}
}
