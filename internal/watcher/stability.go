package watcher

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/spf13/afero"
)

// ErrFileNotFound is returned when the file disappears while waiting.
var ErrFileNotFound = errors.New("file not found")

// ErrFileUnstable is returned when the file does not stabilize within the timeout.
var ErrFileUnstable = errors.New("file did not stabilize within timeout")

// StabilityChecker waits until a file's size and modification time stop
// changing, which is how a finished download is recognized.
type StabilityChecker struct {
	fsys      afero.Fs
	threshold time.Duration // how long the file must stay unchanged
	timeout   time.Duration
	interval  time.Duration
}

// NewStabilityChecker creates a checker on fsys. The poll interval is a
// quarter of threshold, at least 50ms, and the wait gives up after 30s.
func NewStabilityChecker(fsys afero.Fs, threshold time.Duration) *StabilityChecker {
	interval := threshold / 4
	if interval < 50*time.Millisecond {
		interval = 50 * time.Millisecond
	}
	return &StabilityChecker{
		fsys:      fsys,
		threshold: threshold,
		timeout:   30 * time.Second,
		interval:  interval,
	}
}

// WithTimeout returns a copy of s that gives up after timeout.
func (s *StabilityChecker) WithTimeout(timeout time.Duration) *StabilityChecker {
	c := *s
	c.timeout = timeout
	return &c
}

type snapshot struct {
	size    int64
	modTime time.Time
}

// WaitForStable blocks until path has been unchanged for the threshold.
// It returns ErrFileNotFound if the file goes away, ErrFileUnstable on
// timeout and ctx.Err() when ctx is cancelled first.
func (s *StabilityChecker) WaitForStable(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	last, err := s.snapshot(path)
	if err != nil {
		return err
	}
	lastChange := time.Now()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return ErrFileUnstable
			}
			return ctx.Err()
		case <-ticker.C:
			current, err := s.snapshot(path)
			if err != nil {
				return err
			}
			if current.size != last.size || !current.modTime.Equal(last.modTime) {
				last = current
				lastChange = time.Now()
			} else if time.Since(lastChange) >= s.threshold {
				return nil
			}
		}
	}
}

func (s *StabilityChecker) snapshot(path string) (snapshot, error) {
	info, err := s.fsys.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return snapshot{}, ErrFileNotFound
		}
		return snapshot{}, err
	}
	return snapshot{size: info.Size(), modTime: info.ModTime()}, nil
}

// Threshold returns the configured stability threshold.
func (s *StabilityChecker) Threshold() time.Duration {
	return s.threshold
}
