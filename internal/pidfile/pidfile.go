// Package pidfile manages the daemon's PID file so operator tooling can
// find, signal, and clean up the running process.
package pidfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// ErrAlreadyRunning indicates another live process owns the PID file.
var ErrAlreadyRunning = errors.New("pidfile: process already running")

// File is a written PID file. Remove it on shutdown.
type File struct {
	path string
}

// Write creates the PID file for the current process. A stale file left by
// a dead process is removed; a file owned by a live process is an error.
func Write(path string) (*File, error) {
	if pid, err := Read(path); err == nil {
		if processAlive(pid) {
			return nil, fmt.Errorf("%w: pid %d", ErrAlreadyRunning, pid)
		}
		// Stale file from an ungraceful exit.
		_ = os.Remove(path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("pidfile: create dir: %w", err)
	}

	data := []byte(strconv.Itoa(os.Getpid()) + "\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("pidfile: write: %w", err)
	}

	return &File{path: path}, nil
}

// Read returns the PID recorded at path.
func Read(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("pidfile: invalid contents %q: %w", string(data), err)
	}
	return pid, nil
}

// Running reports whether the PID file points at a live process.
func Running(path string) (int, bool) {
	pid, err := Read(path)
	if err != nil {
		return 0, false
	}
	return pid, processAlive(pid)
}

// Remove deletes the PID file.
func (f *File) Remove() error {
	if f == nil {
		return nil
	}
	return os.Remove(f.path)
}

// processAlive reports whether a process with the given pid exists.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	// Signal 0 performs permission and existence checks only.
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}
