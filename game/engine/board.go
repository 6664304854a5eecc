package engine

import "fmt"

// ValidateBoard checks that a board has usable dimensions and that every
// obstacle lies on it. Duplicate obstacles are allowed.
func ValidateBoard(board *Board) error {
	if board == nil {
		return fmt.Errorf("board validation: board is required")
	}
	if board.Width < MinBoardSize || board.Width > MaxBoardSize {
		return fmt.Errorf("board validation: width must be between %d and %d, got %d", MinBoardSize, MaxBoardSize, board.Width)
	}
	if board.Height < MinBoardSize || board.Height > MaxBoardSize {
		return fmt.Errorf("board validation: height must be between %d and %d, got %d", MinBoardSize, MaxBoardSize, board.Height)
	}
	for i, o := range board.Obstacles {
		if !board.InBounds(o.X, o.Y) {
			return fmt.Errorf("board validation: obstacle %d at (%d,%d) is outside the %dx%d board", i, o.X, o.Y, board.Width, board.Height)
		}
	}
	return nil
}

// FreeCells returns the number of cells without an obstacle
func FreeCells(board *Board) int {
	seen := make(map[Obstacle]struct{}, len(board.Obstacles))
	for _, o := range board.Obstacles {
		if board.InBounds(o.X, o.Y) {
			seen[o] = struct{}{}
		}
	}
	return board.Width*board.Height - len(seen)
}
