package filelock

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunLockAcquireRelease(t *testing.T) {
	dest := t.TempDir()
	rl := NewRunLock(dest)

	acquired, err := rl.TryAcquire()
	if err != nil {
		t.Fatalf("TryAcquire() error = %v", err)
	}
	if !acquired {
		t.Fatal("TryAcquire() = false on fresh lock, want true")
	}
	if err := rl.Release(); err != nil {
		t.Errorf("Release() error = %v", err)
	}
}

func TestRunLockExcludesSecondHolder(t *testing.T) {
	dest := t.TempDir()

	first := NewRunLock(dest)
	acquired, err := first.TryAcquire()
	if err != nil || !acquired {
		t.Fatalf("first TryAcquire() = (%v, %v), want (true, nil)", acquired, err)
	}
	defer first.Release()

	second := NewRunLock(dest)
	acquired, err = second.TryAcquire()
	if err != nil {
		t.Fatalf("second TryAcquire() error = %v", err)
	}
	if acquired {
		t.Error("second TryAcquire() = true while first holds the lock")
	}
}

func TestRunLockReacquireAfterRelease(t *testing.T) {
	dest := t.TempDir()

	first := NewRunLock(dest)
	if acquired, _ := first.TryAcquire(); !acquired {
		t.Fatal("first acquire failed")
	}
	if err := first.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}

	second := NewRunLock(dest)
	acquired, err := second.TryAcquire()
	if err != nil || !acquired {
		t.Errorf("reacquire = (%v, %v), want (true, nil)", acquired, err)
	}
	second.Release()
}

func TestAtomicWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "export.json")

	if err := AtomicWrite(path, []byte(`{"runs":[]}`), 0644); err != nil {
		t.Fatalf("AtomicWrite() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != `{"runs":[]}` {
		t.Errorf("content = %q", data)
	}

	// Overwrite must replace content completely.
	if err := AtomicWrite(path, []byte("v2"), 0644); err != nil {
		t.Fatalf("AtomicWrite() overwrite error = %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "v2" {
		t.Errorf("content after overwrite = %q", data)
	}

	// No temp files left behind.
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1 (temp file left behind?)", len(entries))
	}
}
