// Package session keeps a history of VM launches at ~/.qvm/launches/.
// The history is informational only; running state always comes from the
// process table.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/go-homedir"
)

// Store manages launch records
type Store struct {
	dir string
}

// NewStore creates a store at ~/.qvm/launches
func NewStore() (*Store, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewStoreAt(filepath.Join(home, ".qvm", "launches"))
}

// NewStoreAt creates a store rooted at dir
func NewStoreAt(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create launches directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// NewLaunch returns a record with a fresh ID and the current time
func NewLaunch(name, profile, workDir string, args []string) *Launch {
	return &Launch{
		ID:        uuid.New().String()[:8],
		Name:      name,
		Profile:   profile,
		WorkDir:   workDir,
		Args:      args,
		StartedAt: time.Now(),
	}
}

// Save persists a launch to disk
func (s *Store) Save(l *Launch) error {
	path := filepath.Join(s.dir, l.ID+".json")

	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal launch: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write launch file: %w", err)
	}

	return nil
}

// Load reads a launch from disk by ID
func (s *Store) Load(id string) (*Launch, error) {
	path := filepath.Join(s.dir, id+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("launch not found: %s", id)
		}
		return nil, fmt.Errorf("failed to read launch file: %w", err)
	}

	var l Launch
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to unmarshal launch: %w", err)
	}

	return &l, nil
}

// List returns all saved launches, newest first
func (s *Store) List() ([]*Launch, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*Launch{}, nil
		}
		return nil, fmt.Errorf("failed to read launches directory: %w", err)
	}

	launches := []*Launch{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		l, err := s.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue // Skip unreadable records
		}
		launches = append(launches, l)
	}

	sort.SliceStable(launches, func(i, j int) bool {
		return launches[i].StartedAt.After(launches[j].StartedAt)
	})
	return launches, nil
}

// Delete removes a launch file
func (s *Store) Delete(id string) error {
	path := filepath.Join(s.dir, id+".json")

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete launch file: %w", err)
	}

	return nil
}

// Prune deletes launches of vmName, or all launches when vmName is empty,
// and returns how many were removed
func (s *Store) Prune(vmName string) (int, error) {
	launches, err := s.List()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, l := range launches {
		if vmName != "" && l.Name != vmName {
			continue
		}
		if err := s.Delete(l.ID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Dir returns the launch storage directory
func (s *Store) Dir() string {
	return s.dir
}
