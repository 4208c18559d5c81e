// Package ucistore manages UCI packages on disk: a caller-owned cache
// of parsed packages keyed by package name, with atomic persistence
// back to the config directory.
package ucistore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ucikit/uci/pkg/uci"
)

// DefaultDir is the conventional UCI config directory on device.
const DefaultDir = "/etc/config"

// Store caches loaded packages and persists them. The parsing engine
// itself is lock-free; the store provides the synchronization callers
// need when sharing packages across goroutines.
type Store struct {
	mu       sync.RWMutex
	dir      string
	packages map[string]*uci.Uci
}

// New creates a store over the given config directory. An empty dir
// selects DefaultDir.
func New(dir string) *Store {
	if dir == "" {
		dir = DefaultDir
	}
	return &Store{
		dir:      dir,
		packages: make(map[string]*uci.Uci),
	}
}

// Dir returns the config directory.
func (s *Store) Dir() string {
	return s.dir
}

// Load reads <dir>/<name>, parses it and caches the result, replacing
// any previously loaded copy. File-system errors pass through
// unwrapped so callers can test os.IsNotExist.
func (s *Store) Load(name string) (*uci.Uci, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, err
	}
	u, err := uci.ParseModel(name, string(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	s.mu.Lock()
	s.packages[name] = u
	s.mu.Unlock()

	slog.Debug("loaded package", "package", name, "dir", s.dir)
	return u, nil
}

// Get returns the cached package, loading it on first use.
func (s *Store) Get(name string) (*uci.Uci, error) {
	s.mu.RLock()
	u, ok := s.packages[name]
	s.mu.RUnlock()
	if ok {
		return u, nil
	}
	return s.Load(name)
}

// Unload drops the cached package without saving it.
func (s *Store) Unload(name string) {
	s.mu.Lock()
	delete(s.packages, name)
	s.mu.Unlock()
}

// Loaded returns the names of currently cached packages, sorted.
func (s *Store) Loaded() []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.packages))
	for name := range s.packages {
		names = append(names, name)
	}
	s.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Packages lists the package files present in the config directory.
func (s *Store) Packages() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Save persists a package atomically: serialize to a temp file in the
// config directory, fsync, then rename over the target.
func (s *Store) Save(u *uci.Uci) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	name := u.Package()
	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(u.Format()); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("persist %s: %w", name, err)
	}

	u.ClearModified()
	slog.Debug("saved package", "package", name, "dir", s.dir)
	return nil
}

// Commit saves the named package if it has pending modifications.
func (s *Store) Commit(name string) error {
	s.mu.RLock()
	u, ok := s.packages[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("package %q not loaded: %w", name, uci.ErrNotFound)
	}
	if !u.Modified() {
		return nil
	}
	return s.Save(u)
}

// CommitAll saves every cached package with pending modifications.
func (s *Store) CommitAll() error {
	for _, name := range s.Loaded() {
		if err := s.Commit(name); err != nil {
			return err
		}
	}
	return nil
}

// Revert discards cached mutations by re-loading the package from
// disk.
func (s *Store) Revert(name string) (*uci.Uci, error) {
	return s.Load(name)
}

// GetValue resolves pkg.section.option to the option's last value,
// loading the package if needed.
func (s *Store) GetValue(pkg, section, option string) (string, error) {
	u, err := s.Get(pkg)
	if err != nil {
		return "", err
	}
	return u.GetOptionLast(section, option)
}

// Set sets pkg.section.option, loading the package if needed. The
// section must already exist.
func (s *Store) Set(pkg, section, option string, values ...string) error {
	u, err := s.Get(pkg)
	if err != nil {
		return err
	}
	if _, _, err := u.GetSection(section); err != nil {
		return err
	}
	return u.SetOption(section, option, values...)
}

// Del removes pkg.section.option, or the whole section when option is
// empty.
func (s *Store) Del(pkg, section, option string) error {
	u, err := s.Get(pkg)
	if err != nil {
		return err
	}
	if option == "" {
		u.DelSection(section)
		return nil
	}
	return u.DelOption(section, option)
}
