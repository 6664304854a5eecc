// Package engine provides the core logic for the knight mover.
//
// The engine package implements:
//   - Parsing of raw command entries ("START 0,0,NORTH", "MOVE 3", "ROTATE EAST")
//   - A state machine that replays commands on a bounded board with obstacles
//   - Classification of the outcome into a Result status
//   - Board validation used by loaders and the board catalog
//
// Core Types:
//
// Board describes the grid and its obstacles. Command is a closed set of
// variants (StartCommand, MoveCommand, RotateCommand, UnknownCommand and
// MalformedCommand) produced by ParseCommand. Engine replays a command list
// against a board and returns a Result.
//
// Usage:
//
//	board := &engine.Board{Width: 5, Height: 5}
//	commands := engine.ParseCommands([]string{"START 0,0,NORTH", "MOVE 4"})
//
//	result := engine.NewEngine(board).Run(commands)
//	fmt.Println(result.Status, result.Position)
//
// Rules:
//
// A run must begin with exactly one START inside the board. MOVE advances the
// knight one cell at a time in its facing direction: leaving the board fails
// the whole run with OUT_OF_THE_BOARD, while hitting an obstacle only ends the
// current MOVE. ROTATE changes the facing direction in place. Anything else,
// including entries that could not be parsed, ends the run with GENERIC_ERROR.
package engine
