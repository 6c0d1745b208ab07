package utils

import (
	"context"
	"testing"
	"time"
)

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{
			name:   "returns empty when limit non-positive",
			input:  "hello world",
			limit:  0,
			expect: "",
		},
		{
			name:   "shorter than limit",
			input:  "hello",
			limit:  10,
			expect: "hello",
		},
		{
			name:   "truncates multibyte runes and adds ellipsis",
			input:  "héllo wörld",
			limit:  5,
			expect: "héllo...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestBackoff(t *testing.T) {
	if got := Backoff(time.Second, 0, 0); got != time.Second {
		t.Fatalf("expected 1s, got %s", got)
	}
	if got := Backoff(time.Second, 3, 0); got != 8*time.Second {
		t.Fatalf("expected 8s, got %s", got)
	}
	if got := Backoff(time.Second, 10, 5*time.Second); got != 5*time.Second {
		t.Fatalf("expected cap of 5s, got %s", got)
	}
}

func TestWaitForCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitFor(ctx, time.Minute); err == nil {
		t.Fatal("expected context error")
	}
}

func TestDedupe(t *testing.T) {
	got := Dedupe([]string{"go", "", "sql", "go"})
	if len(got) != 2 || got[0] != "go" || got[1] != "sql" {
		t.Fatalf("unexpected result: %v", got)
	}
}
