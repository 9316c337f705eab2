package pidfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteReadRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "arbbot.pid")

	f, err := Write(path)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	pid, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if pid != os.Getpid() {
		t.Errorf("expected pid %d, got %d", os.Getpid(), pid)
	}

	if err := f.Remove(); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := Read(path); err == nil {
		t.Error("expected Read to fail after Remove")
	}
}

func TestWriteRejectsLiveProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arbbot.pid")

	f, err := Write(path)
	if err != nil {
		t.Fatalf("first Write failed: %v", err)
	}
	defer f.Remove()

	if _, err := Write(path); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestWriteClearsStaleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arbbot.pid")

	// A PID that cannot belong to a live process.
	if err := os.WriteFile(path, []byte("4194304999\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := Write(path)
	if err != nil {
		t.Fatalf("Write over stale file failed: %v", err)
	}
	defer f.Remove()

	pid, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if pid != os.Getpid() {
		t.Errorf("expected own pid, got %d", pid)
	}
}
