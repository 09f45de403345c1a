package watcher

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestWatcher_DetectsChange(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "requirements.txt")
	if err := os.WriteFile(file, []byte("Django==1.4\n"), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	w, err := NewWatcher(50 * time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	if err := w.Add(file); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	w.Start()
	defer w.Stop()

	// Several writes in a burst should arrive as one batch.
	for _, content := range []string{"Django==1.5\n", "Django==1.6\n", "Django==1.7\n"} {
		if err := os.WriteFile(file, []byte(content), 0644); err != nil {
			t.Fatalf("failed to update file: %v", err)
		}
	}

	select {
	case batch := <-w.Changes:
		if want := []string{file}; !reflect.DeepEqual(batch, want) {
			t.Errorf("batch = %v, want %v", batch, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
	}

	select {
	case batch := <-w.Changes:
		t.Errorf("unexpected second batch: %v", batch)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "requirements.txt")
	if err := os.WriteFile(file, []byte("Django\n"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(50 * time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	if err := w.Add(file); err != nil {
		t.Fatal(err)
	}
	w.Start()
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	select {
	case change := <-w.Changes:
		t.Errorf("unexpected change event: %v", change)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_AddMissingDir(t *testing.T) {
	w, err := NewWatcher(0)
	if err != nil {
		t.Fatal(err)
	}
	w.Start()
	defer w.Stop()

	if err := w.Add(filepath.Join(t.TempDir(), "missing", "requirements.txt")); err == nil {
		t.Error("Add() error = nil for a file in a missing directory")
	}
}

func TestWatcher_TinyDebounce(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "requirements.txt")
	if err := os.WriteFile(file, []byte("Django\n"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(time.Nanosecond)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	if err := w.Add(file); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	w.Start()
	defer w.Stop()

	if err := os.WriteFile(file, []byte("Django==1.8\n"), 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-w.Changes:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
	}
}

func TestTickInterval(t *testing.T) {
	tests := []struct {
		debounce time.Duration
		want     time.Duration
	}{
		{time.Nanosecond, time.Millisecond},
		{time.Millisecond, time.Millisecond},
		{200 * time.Millisecond, 100 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := tickInterval(tt.debounce); got != tt.want {
			t.Errorf("tickInterval(%v) = %v, want %v", tt.debounce, got, tt.want)
		}
	}
}
