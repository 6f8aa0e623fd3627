// Package roles persists the user-editable list of roles that the
// partitioner rotates through. The list survives between sessions in a YAML
// file inside the project's .divider directory.
package roles

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/class-divider/internal/partition"
)

var (
	ErrEmptyName = errors.New("roles: role name is required")
	ErrDuplicate = errors.New("roles: role already exists")
	ErrNotFound  = errors.New("roles: role not found")
)

// DefaultNames seeds the store the first time it is opened.
var DefaultNames = []string{"Leader", "Speaker", "Secretary", "Timekeeper"}

type fileFormat struct {
	Version int              `yaml:"version"`
	Roles   []partition.Role `yaml:"roles"`
}

// Store is a role list backed by a YAML file. Every mutation is written
// through to disk before it returns.
type Store struct {
	path  string
	mu    sync.Mutex
	roles []partition.Role
	newID func() string
}

// Option customizes a Store during construction.
type Option func(*Store)

// WithIDGenerator overrides how role identifiers are minted.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// Open loads the store at path, seeding DefaultNames when the file does not
// exist yet.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{path: path, newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("roles: read %s: %w", path, err)
		}
		s.roles = s.defaults()
		if err := s.save(); err != nil {
			return nil, err
		}
		return s, nil
	}
	var parsed fileFormat
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("roles: parse %s: %w", path, err)
	}
	s.roles = s.normalize(parsed.Roles)
	return s, nil
}

// Path returns the file backing this store.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// List returns a copy of the current roles in display order.
func (s *Store) List() []partition.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]partition.Role(nil), s.roles...)
}

// Add appends a role named name. Names are trimmed and must be unique.
func (s *Store) Add(name string) (partition.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return partition.Role{}, ErrEmptyName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.roles {
		if r.Name == name {
			return partition.Role{}, fmt.Errorf("%w: %s", ErrDuplicate, name)
		}
	}
	role := partition.Role{ID: s.newID(), Name: name}
	s.roles = append(s.roles, role)
	if err := s.save(); err != nil {
		s.roles = s.roles[:len(s.roles)-1]
		return partition.Role{}, err
	}
	return role, nil
}

// Remove deletes the role with the given id.
func (s *Store) Remove(id string) (partition.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.roles {
		if r.ID != id {
			continue
		}
		prev := s.roles
		s.roles = append(append([]partition.Role(nil), prev[:i]...), prev[i+1:]...)
		if err := s.save(); err != nil {
			s.roles = prev
			return partition.Role{}, err
		}
		return r, nil
	}
	return partition.Role{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Find resolves a role by id or, failing that, by exact name.
func (s *Store) Find(key string) (partition.Role, bool) {
	key = strings.TrimSpace(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.roles {
		if r.ID == key {
			return r, true
		}
	}
	for _, r := range s.roles {
		if r.Name == key {
			return r, true
		}
	}
	return partition.Role{}, false
}

// Reset replaces the list with the default roles.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.roles
	s.roles = s.defaults()
	if err := s.save(); err != nil {
		s.roles = prev
		return err
	}
	return nil
}

func (s *Store) defaults() []partition.Role {
	out := make([]partition.Role, len(DefaultNames))
	for i, name := range DefaultNames {
		out[i] = partition.Role{ID: s.newID(), Name: name}
	}
	return out
}

// normalize trims names, drops blanks and duplicates, and fills missing ids.
func (s *Store) normalize(in []partition.Role) []partition.Role {
	seen := map[string]struct{}{}
	out := make([]partition.Role, 0, len(in))
	for _, r := range in {
		r.Name = strings.TrimSpace(r.Name)
		if r.Name == "" {
			continue
		}
		if _, ok := seen[r.Name]; ok {
			continue
		}
		seen[r.Name] = struct{}{}
		if strings.TrimSpace(r.ID) == "" {
			r.ID = s.newID()
		}
		out = append(out, r)
	}
	return out
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("roles: ensure dir: %w", err)
	}
	data, err := yaml.Marshal(fileFormat{Version: 1, Roles: s.roles})
	if err != nil {
		return fmt.Errorf("roles: encode: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("roles: write %s: %w", s.path, err)
	}
	return nil
}
