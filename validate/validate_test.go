package validate

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/knightmover/game/engine"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func hasMessage(messages []string, substr string) bool {
	for _, m := range messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func TestValidateBoardFile_Valid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "classic.json", `{
		"width": 5,
		"height": 5,
		"obstacles": [{"x": 2, "y": 2}, {"x": 2, "y": 2}]
	}`)

	result := ValidateBoardFile(path)
	if !result.Valid {
		t.Fatalf("Expected valid board, got errors: %v", result.Errors)
	}
	if result.Kind != KindBoard {
		t.Errorf("Expected board kind, got %s", result.Kind)
	}
	if !hasMessage(result.Warnings, "duplicates obstacle 0") {
		t.Errorf("Expected duplicate warning, got %v", result.Warnings)
	}
	if !hasMessage(result.Info, "Free cells: 24") {
		t.Errorf("Expected free cell info, got %v", result.Info)
	}
	if !hasMessage(result.Info, "all free cells reachable") {
		t.Errorf("Expected connectivity info, got %v", result.Info)
	}
}

func TestValidateBoardFile_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tall.yml", "width: 1\nheight: 3\nobstacles:\n  - x: 0\n    y: 1\n")

	result := ValidateBoardFile(path)
	if !result.Valid {
		t.Fatalf("Expected valid board, got errors: %v", result.Errors)
	}
	if !hasMessage(result.Warnings, "2 disconnected regions") {
		t.Errorf("Expected disconnected warning, got %v", result.Warnings)
	}
}

func TestValidateBoardFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{name: "bad json", file: "a.json", content: "{", want: "Invalid document"},
		{name: "zero width", file: "b.json", content: `{"width": 0, "height": 2}`, want: "width must be between"},
		{name: "huge height", file: "c.json", content: `{"width": 2, "height": 20000}`, want: "height must be between"},
		{name: "obstacle outside", file: "d.json", content: `{"width": 2, "height": 2, "obstacles": [{"x": -1, "y": 0}]}`, want: "outside the 2x2 board"},
		{name: "fully blocked", file: "e.json", content: `{"width": 1, "height": 1, "obstacles": [{"x": 0, "y": 0}]}`, want: "no free cell"},
	}

	dir := t.TempDir()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateBoardFile(writeFile(t, dir, tt.file, tt.content))
			if result.Valid {
				t.Fatal("Expected invalid board")
			}
			if !hasMessage(result.Errors, tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, result.Errors)
			}
		})
	}
}

func TestValidateBoardFile_Missing(t *testing.T) {
	result := ValidateBoardFile(filepath.Join(t.TempDir(), "missing.json"))
	if result.Valid || !hasMessage(result.Errors, "Failed to read file") {
		t.Errorf("Expected read failure, got %+v", result)
	}
}

func TestCountRegions(t *testing.T) {
	tests := []struct {
		name  string
		board *engine.Board
		want  int
	}{
		{name: "empty board", board: &engine.Board{Width: 3, Height: 3}, want: 1},
		{
			name: "wall splits board",
			board: &engine.Board{Width: 3, Height: 3, Obstacles: []engine.Obstacle{
				{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 2},
			}},
			want: 2,
		},
		{
			name: "diagonal does not connect",
			board: &engine.Board{Width: 2, Height: 2, Obstacles: []engine.Obstacle{
				{X: 1, Y: 0}, {X: 0, Y: 1},
			}},
			want: 2,
		},
		{name: "all blocked", board: &engine.Board{Width: 1, Height: 1, Obstacles: []engine.Obstacle{{X: 0, Y: 0}}}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := countRegions(tt.board); got != tt.want {
				t.Errorf("Expected %d regions, got %d", tt.want, got)
			}
		})
	}
}

func TestValidateCommandsFile(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		valid       bool
		wantError   string
		wantWarning string
	}{
		{
			name:    "valid list",
			content: `{"commands": ["START 0,0,NORTH", "MOVE 3", "ROTATE EAST", "MOVE 2"]}`,
			valid:   true,
		},
		{
			name:        "non-canonical direction",
			content:     `{"commands": ["START 0,0,NORTH", "ROTATE UP"]}`,
			valid:       true,
			wantWarning: `non-canonical direction "UP"`,
		},
		{
			name:        "zero move",
			content:     `{"commands": ["START 0,0,NORTH", "MOVE 0"]}`,
			valid:       true,
			wantWarning: "does not move",
		},
		{
			name:      "unknown keyword",
			content:   `{"commands": ["START 0,0,NORTH", "JUMP 2"]}`,
			wantError: `unknown keyword "JUMP"`,
		},
		{
			name:      "malformed move",
			content:   `{"commands": ["START 0,0,NORTH", "MOVE EAST"]}`,
			wantError: `Command 2 "MOVE EAST"`,
		},
		{
			name:      "missing start",
			content:   `{"commands": ["MOVE 1"]}`,
			wantError: "no START",
		},
		{
			name:      "start not first",
			content:   `{"commands": ["ROTATE EAST", "START 0,0,NORTH"]}`,
			wantError: "START must be the first command",
		},
		{
			name:      "two starts",
			content:   `{"commands": ["START 0,0,NORTH", "START 1,1,EAST"]}`,
			wantError: "2 START commands",
		},
		{
			name:      "empty list",
			content:   `{"commands": []}`,
			wantError: "empty",
		},
		{
			name:      "missing array",
			content:   `{"moves": []}`,
			wantError: "Missing commands array",
		},
	}

	dir := t.TempDir()
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, "commands"+string(rune('a'+i))+".json", tt.content)
			result := ValidateCommandsFile(path)

			if result.Valid != tt.valid {
				t.Fatalf("Expected valid=%v, got %v (errors: %v)", tt.valid, result.Valid, result.Errors)
			}
			if tt.wantError != "" && !hasMessage(result.Errors, tt.wantError) {
				t.Errorf("Expected error containing %q, got %v", tt.wantError, result.Errors)
			}
			if tt.wantWarning != "" && !hasMessage(result.Warnings, tt.wantWarning) {
				t.Errorf("Expected warning containing %q, got %v", tt.wantWarning, result.Warnings)
			}
		})
	}
}

func TestValidateDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "board.json", `{"width": 5, "height": 5, "obstacles": []}`)
	writeFile(t, dir, "commands.yaml", "commands:\n  - START 0,0,NORTH\n  - MOVE 1\n")
	writeFile(t, dir, "broken.json", `{"width": -1, "height": 5}`)
	writeFile(t, dir, "README.md", "# not a document")
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}

	results, err := ValidateDir(dir)
	if err != nil {
		t.Fatalf("ValidateDir failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}

	byFile := make(map[string]ValidationResult)
	for _, r := range results {
		byFile[r.File] = r
	}

	if r := byFile["board.json"]; !r.Valid || r.Kind != KindBoard {
		t.Errorf("Unexpected board.json result: %+v", r)
	}
	if r := byFile["commands.yaml"]; !r.Valid || r.Kind != KindCommands {
		t.Errorf("Unexpected commands.yaml result: %+v", r)
	}
	if r := byFile["broken.json"]; r.Valid {
		t.Errorf("Expected broken.json to be invalid")
	}

	var out bytes.Buffer
	if Report(&out, results) {
		t.Error("Expected Report to flag invalid documents")
	}
	if !strings.Contains(out.String(), "Some documents have errors") {
		t.Errorf("Unexpected report:\n%s", out.String())
	}
}

func TestValidateDir_Missing(t *testing.T) {
	if _, err := ValidateDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("Expected error for missing directory")
	}
}

func TestReport_AllValid(t *testing.T) {
	results := []ValidationResult{
		ValidateBoard("inline", &engine.Board{Width: 2, Height: 2}),
		ValidateCommands("inline-commands", []string{"START 0,0,NORTH"}),
	}

	var out bytes.Buffer
	if !Report(&out, results) {
		t.Errorf("Expected all valid, got:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "All documents are valid") {
		t.Errorf("Unexpected report:\n%s", out.String())
	}
}
