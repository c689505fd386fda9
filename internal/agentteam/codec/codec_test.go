package codec

import (
	"bytes"
	"strings"
	"testing"
)

type sample struct {
	Type string `json:"type"`
	N    int    `json:"n"`
}

func TestWriteThenReadRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteMessage(sample{Type: "Ok", N: 1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.WriteMessage(sample{Type: "Ok", N: 2}); err != nil {
		t.Fatalf("write: %v", err)
	}

	if !strings.HasSuffix(buf.String(), "\n") {
		t.Fatalf("expected trailing newline, got %q", buf.String())
	}
	if strings.Count(buf.String(), "\n") != 2 {
		t.Fatalf("expected exactly two lines, got %q", buf.String())
	}

	r := NewReader(&buf)
	var got sample
	ok, err := r.ReadMessage(&got)
	if err != nil || !ok {
		t.Fatalf("read 1: ok=%v err=%v", ok, err)
	}
	if got.N != 1 {
		t.Fatalf("expected N=1, got %d", got.N)
	}

	ok, err = r.ReadMessage(&got)
	if err != nil || !ok {
		t.Fatalf("read 2: ok=%v err=%v", ok, err)
	}
	if got.N != 2 {
		t.Fatalf("expected N=2, got %d", got.N)
	}

	ok, err = r.ReadMessage(&got)
	if err != nil {
		t.Fatalf("expected clean EOF, got err=%v", err)
	}
	if ok {
		t.Fatalf("expected no message on EOF")
	}
}

func TestReadMessageRejectsInvalidJSON(t *testing.T) {
	r := NewReader(strings.NewReader("not json\n"))
	var got sample
	_, err := r.ReadMessage(&got)
	if err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestEmbeddedNewlineNeverSplitsAFrame(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteMessage(sample{Type: "line1\nline2", N: 3}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Fatalf("expected exactly one newline (the frame terminator), got %q", buf.String())
	}

	r := NewReader(&buf)
	var got sample
	ok, err := r.ReadMessage(&got)
	if err != nil || !ok {
		t.Fatalf("read: ok=%v err=%v", ok, err)
	}
	if got.Type != "line1\nline2" {
		t.Fatalf("round trip mangled embedded newline: %q", got.Type)
	}
}
