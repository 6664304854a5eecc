package engine

// Direction is the facing direction of the knight
type Direction string

const (
	North Direction = "NORTH"
	South Direction = "SOUTH"
	East  Direction = "EAST"
	West  Direction = "WEST"
)

// Directions lists the canonical directions in a stable order
var Directions = []Direction{North, East, South, West}

// Delta returns the unit displacement for the direction.
// Non-canonical directions have no displacement.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case North:
		return 0, 1
	case South:
		return 0, -1
	case East:
		return 1, 0
	case West:
		return -1, 0
	}
	return 0, 0
}

// Valid reports whether d is one of the four canonical directions
func (d Direction) Valid() bool {
	switch d {
	case North, South, East, West:
		return true
	}
	return false
}

// Status is the terminal outcome of a run
type Status string

const (
	StatusSuccess              Status = "SUCCESS"
	StatusInvalidStartPosition Status = "INVALID_START_POSITION"
	StatusOutOfTheBoard        Status = "OUT_OF_THE_BOARD"
	StatusGenericError         Status = "GENERIC_ERROR"

	// Validation constants
	MinBoardSize = 1
	MaxBoardSize = 10000
)

// Obstacle is a single impassable cell
type Obstacle struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Board represents the grid and its obstacles
type Board struct {
	Width     int        `json:"width" yaml:"width"`
	Height    int        `json:"height" yaml:"height"`
	Obstacles []Obstacle `json:"obstacles" yaml:"obstacles"`
}

// InBounds reports whether (x, y) lies on the board
func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && x < b.Width && y >= 0 && y < b.Height
}

// Position is the knight's location and facing direction
type Position struct {
	X         int       `json:"x"`
	Y         int       `json:"y"`
	Direction Direction `json:"direction"`
}

// Result is the outcome of replaying a command list.
// Position is only set when Status is StatusSuccess.
type Result struct {
	Status   Status    `json:"status"`
	Position *Position `json:"position,omitempty"`
}

// NewErrorResult returns a result with the given failure status and no position
func NewErrorResult(status Status) *Result {
	return &Result{Status: status}
}

// Step records what happened to a single command during a run
type Step struct {
	Index   int       `json:"index"`
	Command string    `json:"command"`
	From    *Position `json:"from,omitempty"`
	To      *Position `json:"to,omitempty"`
	Blocked bool      `json:"blocked,omitempty"`
	Status  Status    `json:"status,omitempty"`
}
