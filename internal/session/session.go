package session

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"reelsmith/internal/logging"
)

// Session is the scope of a single generation run.
type Session struct {
	ID  string
	Dir string

	logger *slog.Logger
	remove func(string) error

	mu       sync.Mutex
	paths    []string
	released bool
}

type options struct {
	now    func() time.Time
	newID  func() string
	remove func(string) error
}

// Option customizes session creation.
type Option func(*options)

// WithClock overrides the time source used for run identifiers.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithRandomSuffix overrides the random component of run identifiers.
func WithRandomSuffix(next func() string) Option {
	return func(o *options) {
		if next != nil {
			o.newID = next
		}
	}
}

// WithRemover overrides how registered paths are deleted (useful for tests).
func WithRemover(remove func(string) error) Option {
	return func(o *options) {
		if remove != nil {
			o.remove = remove
		}
	}
}

// NewID returns a run identifier of the form <unix-millis>-<8 hex chars>.
func NewID(now time.Time, suffix string) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), suffix)
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Open creates a run directory under workDir and returns its session.
func Open(workDir string, logger *slog.Logger, opts ...Option) (*Session, error) {
	workDir = strings.TrimSpace(workDir)
	if workDir == "" {
		return nil, errors.New("session: work directory required")
	}
	o := options{now: time.Now, newID: randomSuffix, remove: os.RemoveAll}
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("session: create work dir: %w", err)
	}

	id := NewID(o.now(), o.newID())
	dir := filepath.Join(workDir, id)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, fmt.Errorf("session: create run dir: %w", err)
	}

	s := &Session{
		ID:     id,
		Dir:    dir,
		logger: logging.NewComponentLogger(logger, "session").With(logging.String(logging.FieldRunID, id)),
		remove: o.remove,
		paths:  []string{dir},
	}
	return s, nil
}

// Path registers and returns a file path inside the run directory.
func (s *Session) Path(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("session: invalid file name %q", name)
	}
	path := filepath.Join(s.Dir, name)
	if err := s.Register(path); err != nil {
		return "", err
	}
	return path, nil
}

// Register adds an externally created path to the cleanup set.
func (s *Session) Register(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return errors.New("session: already released")
	}
	if !slices.Contains(s.paths, path) {
		s.paths = append(s.paths, path)
	}
	return nil
}

// Paths returns a copy of the registered paths in registration order.
func (s *Session) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.paths)
}

// Release removes every registered path, newest first. Failures are logged
// and swallowed.
func (s *Session) Release() {
	if s == nil {
		return
	}
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.released = true
	paths := s.paths
	s.paths = nil
	s.mu.Unlock()

	removed := 0
	for i := len(paths) - 1; i >= 0; i-- {
		if err := s.remove(paths[i]); err != nil {
			s.logger.Debug("session cleanup failed",
				logging.String("path", paths[i]),
				logging.Error(err),
				logging.String(logging.FieldEventType, "session_cleanup_failed"),
			)
			continue
		}
		removed++
	}
	s.logger.Debug("session released",
		logging.Int("removed", removed),
		logging.Int("registered", len(paths)),
		logging.String(logging.FieldEventType, "session_released"),
	)
}
