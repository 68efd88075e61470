package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitSignal(t *testing.T, w *Watcher) bool {
	t.Helper()
	select {
	case <-w.C:
		return true
	case <-time.After(2 * time.Second):
		return false
	}
}

func TestWatcherSignalsCreation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "glosco.db")

	w, err := WatchPath(path)
	if err != nil {
		t.Fatalf("WatchPath: %v", err)
	}
	defer w.Stop()

	// A sibling file in the same directory is not the database.
	if err := os.WriteFile(filepath.Join(dir, "other.db"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write sibling: %v", err)
	}
	time.Sleep(200 * time.Millisecond)
	select {
	case <-w.C:
		t.Fatal("signal for a sibling file")
	default:
	}

	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write watched file: %v", err)
	}
	if !waitSignal(t, w) {
		t.Fatal("no signal after the watched file appeared")
	}

	// Notifications are coalesced onto a single-slot channel; after one
	// receive nothing further is pending for one creation.
	select {
	case <-w.C:
		t.Error("extra signal pending after a single creation")
	default:
	}
}

func TestWatcherStop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "glosco.db")

	w, err := WatchPath(path)
	if err != nil {
		t.Fatalf("WatchPath: %v", err)
	}
	w.Stop()

	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write watched file: %v", err)
	}
	time.Sleep(200 * time.Millisecond)
	select {
	case <-w.C:
		t.Error("signal delivered after Stop")
	default:
	}
}
