package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/wricardo/mcp-training/knightmover/game/engine"
)

// knightServiceImpl implements the KnightService interface
type knightServiceImpl struct {
	runs    RunStore
	boards  BoardCatalog
	fetcher DocumentFetcher
	mu      sync.RWMutex
}

// NewKnightService creates a new knight service instance
func NewKnightService(runs RunStore, boards BoardCatalog, fetcher DocumentFetcher) KnightService {
	return &knightServiceImpl{
		runs:    runs,
		boards:  boards,
		fetcher: fetcher,
	}
}

// Execute replays the request's commands and stores the run
func (s *knightServiceImpl) Execute(ctx context.Context, req *ExecuteRequest) (*RunInfo, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request body is required", ErrInvalidRequest)
	}

	board := req.Board
	boardID := req.BoardID
	switch {
	case board != nil:
		if err := engine.ValidateBoard(board); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		boardID = ""
	case boardID != "":
		loaded, err := s.boards.LoadBoard(boardID)
		if err != nil {
			return nil, fmt.Errorf("failed to load board %s: %w", boardID, err)
		}
		board = loaded
	default:
		return nil, fmt.Errorf("%w: either board or board_id is required", ErrInvalidRequest)
	}

	commands := req.Commands
	if commands == nil {
		commands = []string{}
	}

	run := s.replay(boardID, board, commands, req.RunOptions)

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.runs.Create(run)
	if err != nil {
		return nil, fmt.Errorf("failed to store run: %w", err)
	}
	return NewRunInfo(stored), nil
}

// Replay fetches both documents and replays them. Retrieval failures are
// stored as GENERIC_ERROR runs rather than returned as errors.
func (s *knightServiceImpl) Replay(ctx context.Context, req *FetchRequest) (*RunInfo, error) {
	if req == nil || req.BoardURL == "" || req.CommandsURL == "" {
		return nil, fmt.Errorf("%w: board_url and commands_url are required", ErrInvalidRequest)
	}

	var run *Run
	board, err := s.fetcher.FetchBoard(ctx, req.BoardURL)
	if err == nil {
		var commands []string
		commands, err = s.fetcher.FetchCommands(ctx, req.CommandsURL)
		if err == nil {
			run = s.replay(req.BoardURL, board, commands, req.RunOptions)
		}
	}
	if err != nil {
		log.Printf("Replay of %s / %s failed: %v", req.BoardURL, req.CommandsURL, err)
		run = &Run{
			BoardID: req.BoardURL,
			Board:   board,
			Result:  engine.NewErrorResult(engine.StatusGenericError),
			Error:   err.Error(),
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.runs.Create(run)
	if err != nil {
		return nil, fmt.Errorf("failed to store run: %w", err)
	}
	return NewRunInfo(stored), nil
}

// GetRun retrieves a stored run and touches its access time.
// The write lock covers both the update and the read in NewRunInfo.
func (s *knightServiceImpl) GetRun(ctx context.Context, runID string) (*RunInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, err := s.runs.Get(runID)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	s.runs.UpdateLastAccessed(runID)
	return NewRunInfo(run), nil
}

// ListRuns returns all stored runs
func (s *knightServiceImpl) ListRuns(ctx context.Context) ([]*RunInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := s.runs.List()
	result := make([]*RunInfo, 0, len(runs))
	for _, run := range runs {
		result = append(result, NewRunInfo(run))
	}
	return result, nil
}

// DeleteRun removes a stored run
func (s *knightServiceImpl) DeleteRun(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.runs.Delete(runID)
}

// ListBoards returns the catalog boards
func (s *knightServiceImpl) ListBoards(ctx context.Context) ([]*BoardInfo, error) {
	return s.boards.ListBoards()
}

// LoadBoard returns a catalog board by id
func (s *knightServiceImpl) LoadBoard(ctx context.Context, boardID string) (*engine.Board, error) {
	return s.boards.LoadBoard(boardID)
}

// SaveBoard validates and stores a catalog board
func (s *knightServiceImpl) SaveBoard(ctx context.Context, boardID string, board *engine.Board) error {
	if boardID == "" {
		return fmt.Errorf("%w: board id is required", ErrInvalidRequest)
	}
	if err := engine.ValidateBoard(board); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return s.boards.SaveBoard(boardID, board)
}

// replay runs commands on a fresh engine and captures the trace
func (s *knightServiceImpl) replay(boardID string, board *engine.Board, commands []string, opts RunOptions) *Run {
	eng := engine.NewEngine(board, opts.EngineOptions()...)
	result := eng.RunRaw(commands)

	return &Run{
		BoardID:  boardID,
		Board:    board,
		Commands: commands,
		Result:   result,
		Steps:    eng.History(),
	}
}
