package runs

import (
	"time"

	"github.com/wricardo/mcp-training/knightmover/game/engine"
)

// Persistence defines the interface for persisting runs
type Persistence interface {
	// Save persists a run to storage
	Save(run *Run) error

	// Load retrieves a run from storage by ID
	Load(id string) (*Run, error)

	// Delete removes a run from storage
	Delete(id string) error

	// ListAll returns all persisted run IDs
	ListAll() ([]string, error)

	// Exists checks if a run exists in storage
	Exists(id string) bool
}

// PersistedRunData represents the JSON structure for persisted runs
type PersistedRunData struct {
	ID             string         `json:"id"`
	BoardID        string         `json:"board_id,omitempty"`
	Board          *engine.Board  `json:"board,omitempty"`
	Commands       []string       `json:"commands"`
	Result         *engine.Result `json:"result"`
	Steps          []engine.Step  `json:"steps,omitempty"`
	Error          string         `json:"error,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	LastAccessedAt time.Time      `json:"last_accessed_at"`
}
