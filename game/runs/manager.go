package runs

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wricardo/mcp-training/knightmover/game/service"
)

var (
	ErrRunNotFound      = fmt.Errorf("run %w", service.ErrNotFound)
	ErrRunAlreadyExists = errors.New("run already exists")
	ErrInvalidRunID     = errors.New("invalid run ID")
)

// Run is the stored form of an executed command list
type Run = service.Run

// Manager handles run storage
type Manager struct {
	runs        map[string]*Run
	persistence Persistence
	mu          sync.RWMutex
}

// NewManager creates a new in-memory run manager
func NewManager() *Manager {
	return &Manager{
		runs: make(map[string]*Run),
	}
}

// NewManagerWithPersistence creates a new run manager with persistence
func NewManagerWithPersistence(persistence Persistence) *Manager {
	return &Manager{
		runs:        make(map[string]*Run),
		persistence: persistence,
	}
}

// Create stores a run, assigning an ID and timestamps when missing
func (m *Manager) Create(run *Run) (*Run, error) {
	if run == nil {
		return nil, fmt.Errorf("run cannot be nil")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if !validID(run.ID) {
		return nil, ErrInvalidRunID
	}

	now := time.Now()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	if run.LastAccessedAt.IsZero() {
		run.LastAccessedAt = now
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(run.ID)
	if _, exists := m.runs[key]; exists {
		return nil, ErrRunAlreadyExists
	}
	m.runs[key] = run

	// Auto-save if persistence is enabled
	if m.persistence != nil {
		if err := m.persistence.Save(run); err != nil {
			log.Printf("Warning: Failed to persist run %s: %v", run.ID, err)
		}
	}

	return run, nil
}

// Get retrieves a run by ID (case-insensitive), falling back to persistence
func (m *Manager) Get(id string) (*Run, error) {
	m.mu.RLock()
	run, exists := m.runs[strings.ToLower(id)]
	m.mu.RUnlock()

	if exists {
		return run, nil
	}

	if m.persistence != nil && m.persistence.Exists(id) {
		run, err := m.persistence.Load(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load persisted run: %w", err)
		}

		m.mu.Lock()
		m.runs[strings.ToLower(id)] = run
		m.mu.Unlock()

		return run, nil
	}

	return nil, ErrRunNotFound
}

// List returns all runs in memory
func (m *Manager) List() []*Run {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Run, 0, len(m.runs))
	for _, run := range m.runs {
		result = append(result, run)
	}

	return result
}

// Delete removes a run from memory and persistence
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	_, inMemory := m.runs[key]
	delete(m.runs, key)

	if m.persistence != nil && m.persistence.Exists(id) {
		if err := m.persistence.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted run: %w", err)
		}
		return nil
	}

	if !inMemory {
		return ErrRunNotFound
	}

	return nil
}

// DeleteFromMemory removes a run from memory only (not from persistence)
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	if _, exists := m.runs[key]; !exists {
		return ErrRunNotFound
	}
	delete(m.runs, key)
	return nil
}

// UpdateLastAccessed updates the last accessed time for a run
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, exists := m.runs[strings.ToLower(id)]
	if !exists {
		return ErrRunNotFound
	}

	run.LastAccessedAt = time.Now()

	if m.persistence != nil {
		if err := m.persistence.Save(run); err != nil {
			log.Printf("Warning: Failed to persist run %s after access update: %v", id, err)
		}
	}

	return nil
}

// CleanupExpired removes runs from memory that haven't been accessed in maxAge
func (m *Manager) CleanupExpired(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for id, run := range m.runs {
		if run.LastAccessedAt.Before(cutoff) {
			delete(m.runs, id)
			removed++
		}
	}

	return removed
}

// Count returns the number of runs in memory
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.runs)
}

// LoadPersisted loads all persisted runs into memory
func (m *Manager) LoadPersisted() error {
	if m.persistence == nil {
		return nil
	}

	ids, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted runs: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loaded := 0
	for _, id := range ids {
		if _, exists := m.runs[strings.ToLower(id)]; exists {
			continue
		}

		run, err := m.persistence.Load(id)
		if err != nil {
			log.Printf("Warning: Failed to load persisted run %s: %v", id, err)
			continue
		}

		m.runs[strings.ToLower(id)] = run
		loaded++
	}

	if loaded > 0 {
		log.Printf("Loaded %d persisted runs from storage", loaded)
	}

	return nil
}
