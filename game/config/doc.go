// Package config provides board catalog and settings management for the
// knight mover.
//
// The config package handles:
//   - Loading named boards from JSON or YAML files
//   - Board validation and caching
//   - Board discovery and listing
//   - Process settings read from the environment
//
// Board Format:
//
// Boards are stored in the boards directory as <id>.json, <id>.yaml or
// <id>.yml. Each board defines:
//   - width and height of the grid (zero-based coordinates)
//   - a list of obstacle cells
//
//	{"width": 5, "height": 5, "obstacles": [{"x": 0, "y": 2}]}
//
// Usage:
//
//	manager, err := config.NewManager("boards")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	board, err := manager.LoadBoard("classic")
//	boards, err := manager.ListBoards()
//
// Settings:
//
// LoadSettings reads KNIGHT_BOARD_URL, KNIGHT_COMMANDS_URL, BOARDS_DIR,
// RUNS_DIR, FETCH_TIMEOUT, HOST, PORT and the NGROK_* variables. Values from a
// .env file are visible when the caller loads it first.
package config
