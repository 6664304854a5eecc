// Package validate checks board and command documents before they are run.
//
// Board files are checked for:
//   - Decodable JSON or YAML with width, height and obstacles
//   - Dimensions within the supported range
//   - Obstacles inside the board
//   - Duplicate obstacles (reported as warnings)
//   - At least one free cell, and whether all free cells form one region
//
// Command files ({"commands": [...]}) are checked for:
//   - Every entry parsing to a START, MOVE or ROTATE command
//   - Exactly one START, placed first
//   - Non-canonical directions (reported as warnings)
package validate

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/mcp-training/knightmover/game/engine"
	"gopkg.in/yaml.v3"
)

// Kind identifies the type of document that was validated
type Kind string

const (
	KindBoard    Kind = "board"
	KindCommands Kind = "commands"
)

// ValidationResult captures the outcome of validating a single file.
// Errors make the file invalid; Warnings and Info never do.
type ValidationResult struct {
	File     string
	Kind     Kind
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Info = append(r.Info, fmt.Sprintf(format, args...))
}

func newResult(path string, kind Kind) ValidationResult {
	return ValidationResult{
		File:  filepath.Base(path),
		Kind:  kind,
		Valid: true,
	}
}

// ValidateBoardFile loads and validates a single board file
func ValidateBoardFile(path string) ValidationResult {
	result := newResult(path, KindBoard)

	data, err := os.ReadFile(path)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var board engine.Board
	if err := unmarshal(path, data, &board); err != nil {
		result.fail("Invalid document: %v", err)
		return result
	}

	checkBoard(&board, &result)
	return result
}

// ValidateBoard validates an already decoded board
func ValidateBoard(name string, board *engine.Board) ValidationResult {
	result := newResult(name, KindBoard)
	checkBoard(board, &result)
	return result
}

func checkBoard(board *engine.Board, result *ValidationResult) {
	if board.Width < engine.MinBoardSize || board.Width > engine.MaxBoardSize {
		result.fail("width must be between %d and %d, got %d", engine.MinBoardSize, engine.MaxBoardSize, board.Width)
	}
	if board.Height < engine.MinBoardSize || board.Height > engine.MaxBoardSize {
		result.fail("height must be between %d and %d, got %d", engine.MinBoardSize, engine.MaxBoardSize, board.Height)
	}
	if !result.Valid {
		return
	}

	seen := make(map[engine.Obstacle]int, len(board.Obstacles))
	for i, o := range board.Obstacles {
		if !board.InBounds(o.X, o.Y) {
			result.fail("Obstacle %d at (%d,%d) is outside the %dx%d board", i, o.X, o.Y, board.Width, board.Height)
			continue
		}
		if first, dup := seen[o]; dup {
			result.warn("Obstacle %d at (%d,%d) duplicates obstacle %d", i, o.X, o.Y, first)
			continue
		}
		seen[o] = i
	}
	if !result.Valid {
		return
	}

	free := engine.FreeCells(board)
	if free == 0 {
		result.fail("Board has no free cell to start on")
		return
	}

	regions := countRegions(board)
	if regions > 1 {
		result.warn("Free cells form %d disconnected regions", regions)
	}

	result.info("Grid: %dx%d", board.Width, board.Height)
	result.info("Obstacles: %d", len(seen))
	result.info("Free cells: %d", free)
	if regions == 1 {
		result.info("Connectivity: all free cells reachable")
	}
}

// countRegions flood-fills free cells with 4-directional movement and
// returns the number of connected regions
func countRegions(board *engine.Board) int {
	blocked := make(map[engine.Obstacle]bool, len(board.Obstacles))
	for _, o := range board.Obstacles {
		blocked[o] = true
	}

	visited := make([]bool, board.Width*board.Height)
	index := func(x, y int) int { return y*board.Width + x }

	regions := 0
	for y := 0; y < board.Height; y++ {
		for x := 0; x < board.Width; x++ {
			if visited[index(x, y)] || blocked[engine.Obstacle{X: x, Y: y}] {
				continue
			}
			regions++

			queue := []engine.Obstacle{{X: x, Y: y}}
			visited[index(x, y)] = true
			for len(queue) > 0 {
				current := queue[0]
				queue = queue[1:]

				for _, d := range engine.Directions {
					dx, dy := d.Delta()
					nx, ny := current.X+dx, current.Y+dy
					if !board.InBounds(nx, ny) || visited[index(nx, ny)] || blocked[engine.Obstacle{X: nx, Y: ny}] {
						continue
					}
					visited[index(nx, ny)] = true
					queue = append(queue, engine.Obstacle{X: nx, Y: ny})
				}
			}
		}
	}
	return regions
}

// ValidateCommandsFile loads and validates a single commands file
func ValidateCommandsFile(path string) ValidationResult {
	result := newResult(path, KindCommands)

	data, err := os.ReadFile(path)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var doc struct {
		Commands []string `json:"commands" yaml:"commands"`
	}
	if err := unmarshal(path, data, &doc); err != nil {
		result.fail("Invalid document: %v", err)
		return result
	}
	if doc.Commands == nil {
		result.fail("Missing commands array")
		return result
	}

	checkCommands(doc.Commands, &result)
	return result
}

// ValidateCommands validates an already decoded command list
func ValidateCommands(name string, commands []string) ValidationResult {
	result := newResult(name, KindCommands)
	checkCommands(commands, &result)
	return result
}

func checkCommands(commands []string, result *ValidationResult) {
	counts := make(map[string]int)
	starts := 0

	for i, raw := range commands {
		switch cmd := engine.ParseCommand(raw).(type) {
		case engine.StartCommand:
			starts++
			counts[engine.KeywordStart]++
			if i != 0 {
				result.fail("Command %d %q: START must be the first command", i+1, raw)
			}
			if !cmd.Direction.Valid() {
				result.warn("Command %d %q: non-canonical direction %q", i+1, raw, cmd.Direction)
			}
		case engine.MoveCommand:
			counts[engine.KeywordMove]++
			if cmd.Steps <= 0 {
				result.warn("Command %d %q: does not move", i+1, raw)
			}
		case engine.RotateCommand:
			counts[engine.KeywordRotate]++
			if !cmd.Direction.Valid() {
				result.warn("Command %d %q: non-canonical direction %q", i+1, raw, cmd.Direction)
			}
		case engine.UnknownCommand:
			result.fail("Command %d %q: unknown keyword %q", i+1, raw, cmd.Keyword)
		case engine.MalformedCommand:
			result.fail("Command %d %q: %v", i+1, raw, cmd.Err)
		}
	}

	switch {
	case len(commands) == 0:
		result.fail("Command list is empty")
	case starts == 0:
		result.fail("Command list has no START")
	case starts > 1:
		result.fail("Command list has %d START commands", starts)
	}

	if result.Valid {
		result.info("Commands: %d", len(commands))
		result.info("MOVE: %d, ROTATE: %d", counts[engine.KeywordMove], counts[engine.KeywordRotate])
	}
}

// ValidateDir validates every .json, .yaml and .yml file in dir. A file with a
// top-level "commands" key is a command list; anything else is a board.
func ValidateDir(dir string) ([]ValidationResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var results []ValidationResult
	for _, entry := range entries {
		if entry.IsDir() || !isDocument(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		results = append(results, ValidateFile(path))
	}

	sort.Slice(results, func(i, j int) bool { return results[i].File < results[j].File })
	return results, nil
}

// ValidateFile detects the document kind of path and validates it
func ValidateFile(path string) ValidationResult {
	data, err := os.ReadFile(path)
	if err != nil {
		result := newResult(path, KindBoard)
		result.fail("Failed to read file: %v", err)
		return result
	}

	var keys map[string]interface{}
	if err := unmarshal(path, data, &keys); err == nil {
		if _, ok := keys["commands"]; ok {
			return ValidateCommandsFile(path)
		}
	}
	return ValidateBoardFile(path)
}

// Report writes a human-readable summary of results and reports whether all
// of them are valid
func Report(w io.Writer, results []ValidationResult) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s (%s)\n", strings.Repeat("=", 20), result.File, result.Kind)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Info {
				fmt.Fprintln(w, "  ✓ "+info)
			}
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Fprintln(w, "  ❌ "+err)
			}
		}
		for _, warning := range result.Warnings {
			fmt.Fprintln(w, "  ⚠ "+warning)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	switch {
	case len(results) == 0:
		fmt.Fprintln(w, "No documents found")
	case allValid:
		fmt.Fprintln(w, "✅ All documents are valid!")
	default:
		fmt.Fprintln(w, "❌ Some documents have errors")
	}
	return allValid
}

func unmarshal(path string, data []byte, v interface{}) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v)
	default:
		return json.Unmarshal(data, v)
	}
}

func isDocument(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
