package command

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestScriptStore_EmptyOnFirstBoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script_id")

	store, err := NewScriptStore(path)
	if err != nil {
		t.Fatalf("NewScriptStore failed: %v", err)
	}
	if got := store.ScriptID(); got != "" {
		t.Errorf("ScriptID() = %q, want empty on first boot", got)
	}
}

func TestScriptStore_SetAndGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script_id")

	store, err := NewScriptStore(path)
	if err != nil {
		t.Fatalf("NewScriptStore failed: %v", err)
	}

	if err := store.SetScriptID("abc123"); err != nil {
		t.Fatalf("SetScriptID failed: %v", err)
	}
	if got := store.ScriptID(); got != "abc123" {
		t.Errorf("ScriptID() = %q, want abc123", got)
	}

	// Replacing works
	if err := store.SetScriptID("xyz789"); err != nil {
		t.Fatalf("SetScriptID failed: %v", err)
	}
	if got := store.ScriptID(); got != "xyz789" {
		t.Errorf("ScriptID() = %q, want xyz789", got)
	}
}

func TestScriptStore_SurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script_id")

	store, err := NewScriptStore(path)
	if err != nil {
		t.Fatalf("NewScriptStore failed: %v", err)
	}
	if err := store.SetScriptID("abc123"); err != nil {
		t.Fatalf("SetScriptID failed: %v", err)
	}

	// Simulated restart: new store over the same file
	reopened, err := NewScriptStore(path)
	if err != nil {
		t.Fatalf("NewScriptStore after restart failed: %v", err)
	}
	if got := reopened.ScriptID(); got != "abc123" {
		t.Errorf("ScriptID() after restart = %q, want abc123", got)
	}
}

func TestScriptStore_FixedSlotLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script_id")

	store, err := NewScriptStore(path)
	if err != nil {
		t.Fatalf("NewScriptStore failed: %v", err)
	}
	if err := store.SetScriptID("abc"); err != nil {
		t.Fatalf("SetScriptID failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read store file: %v", err)
	}
	if len(data) != MaxScriptIDLength+1 {
		t.Errorf("slot size = %d, want %d", len(data), MaxScriptIDLength+1)
	}
	if data[3] != 0 {
		t.Error("value should be null-terminated")
	}
}

func TestScriptStore_RejectsOversizedID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script_id")

	store, err := NewScriptStore(path)
	if err != nil {
		t.Fatalf("NewScriptStore failed: %v", err)
	}

	long := strings.Repeat("x", MaxScriptIDLength+1)
	if err := store.SetScriptID(long); err == nil {
		t.Error("expected error for oversized script ID")
	}
	if err := store.SetScriptID(""); err == nil {
		t.Error("expected error for empty script ID")
	}
}
