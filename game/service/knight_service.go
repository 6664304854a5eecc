package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/mcp-training/knightmover/game/engine"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("not found")
)

// KnightService defines all knight-related operations
type KnightService interface {
	// Runs
	Execute(ctx context.Context, req *ExecuteRequest) (*RunInfo, error)
	Replay(ctx context.Context, req *FetchRequest) (*RunInfo, error)
	GetRun(ctx context.Context, runID string) (*RunInfo, error)
	ListRuns(ctx context.Context) ([]*RunInfo, error)
	DeleteRun(ctx context.Context, runID string) error

	// Boards
	ListBoards(ctx context.Context) ([]*BoardInfo, error)
	LoadBoard(ctx context.Context, boardID string) (*engine.Board, error)
	SaveBoard(ctx context.Context, boardID string, board *engine.Board) error
}

// RunStore defines run storage operations
type RunStore interface {
	Create(run *Run) (*Run, error)
	Get(id string) (*Run, error)
	List() []*Run
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// BoardCatalog handles named board loading
type BoardCatalog interface {
	LoadBoard(id string) (*engine.Board, error)
	ListBoards() ([]*BoardInfo, error)
	SaveBoard(id string, board *engine.Board) error
}

// DocumentFetcher retrieves board and command documents
type DocumentFetcher interface {
	FetchBoard(ctx context.Context, source string) (*engine.Board, error)
	FetchCommands(ctx context.Context, source string) ([]string, error)
}

// Run is a single executed command list and its outcome
type Run struct {
	ID             string
	BoardID        string
	Board          *engine.Board
	Commands       []string
	Result         *engine.Result
	Steps          []engine.Step
	Error          string
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
