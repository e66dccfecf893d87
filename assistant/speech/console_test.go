package speech

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestConsoleListenOnce(t *testing.T) {
	t.Parallel()

	var out strings.Builder
	console := NewConsoleWith(strings.NewReader("  hello world  \n"), &out)

	got, err := console.ListenOnce(context.Background())
	if err != nil {
		t.Fatalf("ListenOnce() error = %v", err)
	}
	if got != "hello world" {
		t.Fatalf("ListenOnce() = %q, want hello world", got)
	}
	if !strings.Contains(out.String(), "You: ") {
		t.Fatalf("expected input prompt, got %q", out.String())
	}
}

func TestConsoleListenOnceEOF(t *testing.T) {
	t.Parallel()

	console := NewConsoleWith(strings.NewReader(""), io.Discard)

	_, err := console.ListenOnce(context.Background())
	if !errors.Is(err, io.EOF) {
		t.Fatalf("ListenOnce() error = %v, want io.EOF", err)
	}
}

func TestConsoleSpeak(t *testing.T) {
	t.Parallel()

	var out strings.Builder
	console := NewConsoleWith(strings.NewReader(""), &out)

	if err := console.Speak(context.Background(), "Hello."); err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	if out.String() != "Assistant: Hello.\n" {
		t.Fatalf("Speak() wrote %q", out.String())
	}
}
