package service

import (
	"time"

	"github.com/wricardo/mcp-training/knightmover/game/engine"
)

// RunOptions toggles the optional engine checks
type RunOptions struct {
	StrictDirections    bool `json:"strict_directions,omitempty"`
	RejectObstacleStart bool `json:"reject_obstacle_start,omitempty"`
}

// EngineOptions converts the request flags into engine options
func (o RunOptions) EngineOptions() []engine.Option {
	var opts []engine.Option
	if o.StrictDirections {
		opts = append(opts, engine.WithStrictDirections())
	}
	if o.RejectObstacleStart {
		opts = append(opts, engine.WithStartObstacleCheck())
	}
	return opts
}

// ExecuteRequest replays commands on a catalog board or an inline board.
// Board takes precedence over BoardID.
type ExecuteRequest struct {
	BoardID  string        `json:"board_id,omitempty"`
	Board    *engine.Board `json:"board,omitempty"`
	Commands []string      `json:"commands"`
	RunOptions
}

// FetchRequest replays remote board and command documents
type FetchRequest struct {
	BoardURL    string `json:"board_url"`
	CommandsURL string `json:"commands_url"`
	RunOptions
}

// RunInfo provides information about an executed run
type RunInfo struct {
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

// BoardInfo provides information about a catalog board
type BoardInfo struct {
	Filename  string `json:"filename"`
	BoardID   string `json:"board_id"` // The identifier to use for runs
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Obstacles int    `json:"obstacles"`
	FreeCells int    `json:"free_cells"`
}

// NewRunInfo builds the API view of a run
func NewRunInfo(run *Run) *RunInfo {
	return &RunInfo{
		ID:             run.ID,
		BoardID:        run.BoardID,
		Board:          run.Board,
		Commands:       run.Commands,
		Result:         run.Result,
		Steps:          run.Steps,
		Error:          run.Error,
		CreatedAt:      run.CreatedAt,
		LastAccessedAt: run.LastAccessedAt,
	}
}
