package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/angelmondragon/sourcing-engine/pkg/logger"
)

// Lock coordinates exclusive batch runs for one run key.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// FileLock implements Lock with a PID file next to the run's working data.
// A crashed run leaves its file behind; the next run verifies the recorded
// owner process is gone and reclaims the lock instead of failing.
type FileLock struct {
	path  string
	logg  *logger.Logger
	pid   func() int
	alive func(pid int) bool
}

// FileLockParams configure NewFileLock. PID and Alive are test seams.
type FileLockParams struct {
	Dir    string
	RunKey string
	Logger *logger.Logger
	PID    func() int
	Alive  func(pid int) bool
}

// NewFileLock builds a file lock keyed by the run key.
func NewFileLock(params FileLockParams) (*FileLock, error) {
	if params.RunKey == "" {
		return nil, errors.New("run key is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	dir := params.Dir
	if dir == "" {
		dir = "."
	}
	pid := params.PID
	if pid == nil {
		pid = os.Getpid
	}
	alive := params.Alive
	if alive == nil {
		alive = processAlive
	}
	return &FileLock{
		path:  filepath.Join(dir, fmt.Sprintf("sourcing_%s.lock", params.RunKey)),
		logg:  params.Logger,
		pid:   pid,
		alive: alive,
	}, nil
}

// Path returns the lock file location, for operator-facing errors.
func (l *FileLock) Path() string {
	return l.path
}

// Acquire creates the lock file atomically. Returns false when another live
// process owns it. A lock whose owner no longer exists is reclaimed and
// logged as a recovery event.
func (l *FileLock) Acquire(ctx context.Context) (bool, error) {
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			fmt.Fprintf(f, "%d\nStarted: %s\n", l.pid(), time.Now().Format(time.RFC3339))
			if closeErr := f.Close(); closeErr != nil {
				return false, fmt.Errorf("writing lock file: %w", closeErr)
			}
			return true, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return false, fmt.Errorf("creating lock file %q: %w", l.path, err)
		}

		ownerPID, readErr := readLockPID(l.path)
		if readErr == nil && l.alive(ownerPID) {
			return false, nil
		}

		// owner gone or file unreadable: stale, reclaim
		staleCtx := l.logg.WithField(ctx, "lock_path", l.path)
		if readErr == nil {
			staleCtx = l.logg.WithField(staleCtx, "stale_pid", ownerPID)
		}
		l.logg.Warn(staleCtx, "stale run lock reclaimed")
		if removeErr := os.Remove(l.path); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			return false, fmt.Errorf("removing stale lock %q: %w", l.path, removeErr)
		}
	}
	return false, fmt.Errorf("could not reclaim lock %q", l.path)
}

// Release removes the lock file. Missing files are fine: a reclaimed stale
// lock was already deleted by the new owner.
func (l *FileLock) Release(context.Context) error {
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing lock file %q: %w", l.path, err)
	}
	return nil
}

func readLockPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	first, _, _ := strings.Cut(strings.TrimSpace(string(data)), "\n")
	pid, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return 0, fmt.Errorf("lock file %q has no pid: %w", path, err)
	}
	return pid, nil
}

// processAlive probes the pid with signal 0. EPERM still means the process
// exists, just owned by someone else.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	return errors.Is(err, syscall.EPERM)
}
