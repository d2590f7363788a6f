package cache

import (
	"errors"
	"testing"
	"time"
)

func TestNew_InvalidSize(t *testing.T) {
	if _, err := New(0, time.Minute); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}
}

func TestKey(t *testing.T) {
	base := Key("gemini", "low", "hello")

	if len(base) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(base))
	}
	if Key("gemini", "low", "hello") != base {
		t.Error("expected key to be deterministic")
	}

	tests := []struct {
		name                   string
		model, effort, message string
	}{
		{"different model", "gpt-4o", "low", "hello"},
		{"different effort", "gemini", "high", "hello"},
		{"different message", "gemini", "low", "hello!"},
		{"shifted boundary", "geminil", "ow", "hello"},
		{"empty message", "gemini", "low", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Key(tt.model, tt.effort, tt.message) == base {
				t.Error("expected a different key")
			}
		})
	}
}

func TestReplyCache_SetGet(t *testing.T) {
	c, err := New(1<<20, time.Minute)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer c.Close()

	key := Key("m", "low", "hello")
	if _, ok := c.Get(key); ok {
		t.Fatal("expected miss on empty cache")
	}

	if !c.Set(key, "Hi there!") {
		t.Fatal("Set was dropped")
	}
	c.Wait()

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if got != "Hi there!" {
		t.Errorf("expected %q, got %q", "Hi there!", got)
	}
}

func TestReplyCache_EmptyReply(t *testing.T) {
	c, err := New(1<<20, 0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer c.Close()

	key := Key("m", "low", "")
	c.Set(key, "")
	c.Wait()

	got, ok := c.Get(key)
	if !ok || got != "" {
		t.Errorf("expected cached empty reply, got %q (hit=%v)", got, ok)
	}
}
