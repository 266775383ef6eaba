// Package store persists project planning state as a JSON file. It is a
// thin collaborator: the engine only ever sees plain Project values, and
// every read hands out a deep copy so callers cannot mutate stored state
// in place.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/reclaimops/wasteplan/internal/engine"
)

// ErrStoreCorrupted indicates the project file exists but contains invalid
// data. Callers should abort rather than silently start from an empty store.
var ErrStoreCorrupted = errors.New("project store file corrupted")

// ErrUnsupportedVersion indicates the project file was written by an
// incompatible schema version.
var ErrUnsupportedVersion = errors.New("unsupported project store version")

// StoreVersion is the schema version written to new project files. Files
// are accepted when their version satisfies storeVersionConstraint.
const StoreVersion = "1.0.0"

const storeVersionConstraint = ">= 1.0.0, < 2.0.0"

// storeData is the serialized form of the project store.
type storeData struct {
	Version  string                     `json:"version"`
	Projects map[string]*engine.Project `json:"projects"`
}

// Store manages projects persisted as a single JSON file. A cross-process
// advisory lockfile guards Load and Save; in-process access is guarded by
// an RWMutex.
type Store struct {
	mu       sync.RWMutex
	filePath string
	projects map[string]*engine.Project
}

// New creates a Store backed by the given file path. If filePath is empty,
// it defaults to ~/.wasteplan/projects.json. The file is not read until
// Load is called.
func New(filePath string) (*Store, error) {
	if filePath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("determining home directory: %w", err)
		}
		filePath = filepath.Join(homeDir, ".wasteplan", "projects.json")
	}

	return &Store{
		filePath: filePath,
		projects: make(map[string]*engine.Project),
	}, nil
}

// FilePath returns the path of the backing file.
func (s *Store) FilePath() string {
	return s.filePath
}

func (s *Store) lockFilePath() string {
	return s.filePath + ".lock"
}

// acquireFileLock takes the cross-process advisory lockfile, retrying with
// stale-lock detection. The returned function releases the lock.
func (s *Store) acquireFileLock() (func(), error) {
	lockPath := s.lockFilePath()

	if err := os.MkdirAll(filepath.Dir(lockPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	const maxRetries = 10
	const retryDelay = 100 * time.Millisecond
	const staleLockAge = 30 * time.Second

	for i := 0; i < maxRetries; i++ {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			// PID lets a later process decide whether the lock is stale.
			_, _ = fmt.Fprintf(f, "%d", os.Getpid())
			_ = f.Close()
			return func() { _ = os.Remove(lockPath) }, nil
		}

		if reclaimStaleLock(lockPath, staleLockAge) {
			continue
		}
		time.Sleep(retryDelay)
	}

	return nil, fmt.Errorf("could not acquire lock on %s after retries", lockPath)
}

// reclaimStaleLock removes the lockfile when it is old enough and its
// owning process is gone. Returns true when the caller should retry.
func reclaimStaleLock(lockPath string, staleLockAge time.Duration) bool {
	info, err := os.Stat(lockPath)
	if err != nil || time.Since(info.ModTime()) <= staleLockAge {
		return false
	}

	pidData, err := os.ReadFile(lockPath)
	if err == nil && len(pidData) > 0 {
		var pid int
		if _, scanErr := fmt.Sscanf(string(pidData), "%d", &pid); scanErr == nil && pid > 0 {
			if processExists(pid) == nil {
				// Owner is still alive; the lock is slow, not stale.
				return false
			}
		}
	}

	_ = os.Remove(lockPath)
	return true
}

// processExists reports whether a process with the given PID is alive.
// Signal 0 tests existence without delivering anything.
func processExists(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Signal(syscall.Signal(0))
}

// Load reads the project file. A missing file leaves the store empty; a
// corrupted file returns ErrStoreCorrupted and an incompatible schema
// version returns ErrUnsupportedVersion.
func (s *Store) Load() error {
	unlock, lockErr := s.acquireFileLock()
	if lockErr != nil {
		return fmt.Errorf("acquiring file lock: %w", lockErr)
	}
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.projects = make(map[string]*engine.Project)
			return nil
		}
		return fmt.Errorf("reading project file: %w", err)
	}

	var sd storeData
	if unmarshalErr := json.Unmarshal(data, &sd); unmarshalErr != nil {
		s.projects = make(map[string]*engine.Project)
		return fmt.Errorf("%w: %w", ErrStoreCorrupted, unmarshalErr)
	}

	if err := checkStoreVersion(sd.Version); err != nil {
		s.projects = make(map[string]*engine.Project)
		return err
	}

	if sd.Projects == nil {
		sd.Projects = make(map[string]*engine.Project)
	}
	s.projects = sd.Projects

	return nil
}

func checkStoreVersion(version string) error {
	if version == "" {
		return fmt.Errorf("%w: missing version", ErrStoreCorrupted)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w: invalid version %q: %w", ErrStoreCorrupted, version, err)
	}
	constraint, err := semver.NewConstraint(storeVersionConstraint)
	if err != nil {
		return fmt.Errorf("parsing store version constraint: %w", err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("%w: version %s does not satisfy %s",
			ErrUnsupportedVersion, version, storeVersionConstraint)
	}
	return nil
}

// Save writes the project file atomically via a temp file rename.
func (s *Store) Save() error {
	unlock, lockErr := s.acquireFileLock()
	if lockErr != nil {
		return fmt.Errorf("acquiring file lock: %w", lockErr)
	}
	defer unlock()

	s.mu.RLock()
	sd := storeData{
		Version:  StoreVersion,
		Projects: s.projects,
	}
	data, err := json.MarshalIndent(sd, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshaling project store: %w", err)
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(s.filePath), 0o750); mkdirErr != nil {
		return fmt.Errorf("creating store directory: %w", mkdirErr)
	}

	tmpPath := s.filePath + ".tmp"
	if writeErr := os.WriteFile(tmpPath, data, 0o600); writeErr != nil {
		return fmt.Errorf("writing project store temp file: %w", writeErr)
	}
	if renameErr := os.Rename(tmpPath, s.filePath); renameErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming project store temp file: %w", renameErr)
	}

	return nil
}

// Get returns a deep copy of the project with the given ID, or false when
// it does not exist.
func (s *Store) Get(projectID string) (*engine.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	proj, ok := s.projects[projectID]
	if !ok {
		return nil, false
	}
	return proj.Clone(), true
}

// Put adds or replaces a project. The stored copy is detached from the
// caller's value.
func (s *Store) Put(proj *engine.Project) error {
	if proj == nil {
		return errors.New("project cannot be nil")
	}
	if strings.TrimSpace(proj.ID) == "" {
		return errors.New("project ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.projects[proj.ID] = proj.Clone()
	return nil
}

// Delete removes a project by ID. Deleting an absent ID is a no-op.
func (s *Store) Delete(projectID string) error {
	if projectID == "" {
		return errors.New("project ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.projects, projectID)
	return nil
}

// IDs returns all project IDs in ascending order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.projects))
	for id := range s.projects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Projects returns deep copies of all projects, ordered by ID.
func (s *Store) Projects() []*engine.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.projects))
	for id := range s.projects {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]*engine.Project, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.projects[id].Clone())
	}
	return out
}

// Count returns the number of stored projects.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.projects)
}
