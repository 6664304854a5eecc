package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/knightmover/game/engine"
	"github.com/wricardo/mcp-training/knightmover/game/service"
	"gopkg.in/yaml.v3"
)

var (
	ErrBoardNotFound = fmt.Errorf("board %w", service.ErrNotFound)
	ErrInvalidBoard  = errors.New("invalid board")
	ErrInvalidID     = errors.New("invalid board id")
)

// boardExtensions are tried in order when resolving a board id
var boardExtensions = []string{".json", ".yaml", ".yml"}

// Manager handles board loading and caching
type Manager struct {
	boardsDir string
	boards    map[string]*engine.Board
	mu        sync.RWMutex
}

// NewManager creates a new board catalog rooted at boardsDir
func NewManager(boardsDir string) (*Manager, error) {
	if _, err := os.Stat(boardsDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("boards directory does not exist: %s", boardsDir)
	}

	return &Manager{
		boardsDir: boardsDir,
		boards:    make(map[string]*engine.Board),
	}, nil
}

// LoadBoard loads a board by id
func (m *Manager) LoadBoard(id string) (*engine.Board, error) {
	id = trimExtension(id)
	if !validBoardID(id) {
		return nil, ErrInvalidID
	}

	m.mu.RLock()
	if board, exists := m.boards[id]; exists {
		m.mu.RUnlock()
		return board, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if board, exists := m.boards[id]; exists {
		return board, nil
	}

	board, err := m.readBoard(id)
	if err != nil {
		return nil, err
	}

	m.boards[id] = board
	return board, nil
}

// ListBoards returns information about all valid boards in the directory
func (m *Manager) ListBoards() ([]*service.BoardInfo, error) {
	entries, err := os.ReadDir(m.boardsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read boards directory: %w", err)
	}

	seen := make(map[string]bool)
	var boards []*service.BoardInfo

	for _, entry := range entries {
		if entry.IsDir() || !hasBoardExtension(entry.Name()) {
			continue
		}

		id := trimExtension(entry.Name())
		if seen[id] {
			continue
		}
		seen[id] = true

		board, err := m.LoadBoard(id)
		if err != nil {
			// Skip invalid boards
			continue
		}

		boards = append(boards, &service.BoardInfo{
			Filename:  entry.Name(),
			BoardID:   id,
			Width:     board.Width,
			Height:    board.Height,
			Obstacles: len(board.Obstacles),
			FreeCells: engine.FreeCells(board),
		})
	}

	sort.Slice(boards, func(i, j int) bool { return boards[i].BoardID < boards[j].BoardID })
	return boards, nil
}

// SaveBoard writes a board as <id>.json and caches it
func (m *Manager) SaveBoard(id string, board *engine.Board) error {
	id = trimExtension(id)
	if !validBoardID(id) {
		return ErrInvalidID
	}
	if err := engine.ValidateBoard(board); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBoard, err)
	}

	data, err := json.MarshalIndent(board, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal board: %w", err)
	}

	path := filepath.Join(m.boardsDir, id+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write board file: %w", err)
	}

	m.mu.Lock()
	m.boards[id] = board
	m.mu.Unlock()

	return nil
}

// RefreshCache drops all cached boards so they are re-read from disk
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.boards = make(map[string]*engine.Board)
}

// readBoard finds, decodes and validates the file for id
func (m *Manager) readBoard(id string) (*engine.Board, error) {
	for _, ext := range boardExtensions {
		path := filepath.Join(m.boardsDir, id+ext)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read board file: %w", err)
		}

		board, err := DecodeBoard(path, data)
		if err != nil {
			return nil, err
		}
		return board, nil
	}

	return nil, ErrBoardNotFound
}

// DecodeBoard parses board data using the file extension of name to choose
// between YAML and JSON, then validates it
func DecodeBoard(name string, data []byte) (*engine.Board, error) {
	var board engine.Board
	var err error

	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &board)
	default:
		err = json.Unmarshal(data, &board)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse board %s: %w", filepath.Base(name), err)
	}

	if err := engine.ValidateBoard(&board); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBoard, err)
	}

	return &board, nil
}

func hasBoardExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range boardExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func trimExtension(name string) string {
	if hasBoardExtension(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}

func validBoardID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\`) && id != "." && id != ".."
}
