// Package api provides HTTP REST API handlers for the knight mover.
//
// The api package implements:
//   - Run execution on catalog or inline boards
//   - Remote document replay (board and commands URLs)
//   - Run listing, lookup and deletion
//   - Board catalog listing, lookup and upload
//   - WebSocket upgrade for live run results
//
// Endpoints:
//
// Runs:
//   - POST /api/runs - Execute commands, returns 201 with the stored run
//   - POST /api/runs/fetch - Fetch board and commands documents and execute
//   - GET /api/runs - List runs (?sort=created|accessed&order=asc|desc&limit=N&board=id)
//   - GET /api/runs/{id} - Get a run with its result and step trace
//   - DELETE /api/runs/{id} - Delete a run
//
// Boards:
//   - GET /api/boards - List catalog boards
//   - POST /api/boards - Save a board ({"id": "name", "width": 5, "height": 5, "obstacles": [...]})
//   - GET /api/boards/{id} - Get a board
//
// Live updates:
//   - GET /ws?board={id} - Subscribe to runs on a board; omit board for all runs
//
// Request/Response Format:
//
// All endpoints accept and return JSON. An execute request looks like:
//
//	{
//	  "board_id": "classic",
//	  "commands": ["START 0,0,NORTH", "MOVE 3", "ROTATE EAST", "MOVE 2"],
//	  "strict_directions": false,
//	  "reject_obstacle_start": false
//	}
//
// The run outcome is always reported inside the run's "result" field, so a
// command list that ends in OUT_OF_THE_BOARD is still a 201 response.
//
// Error Handling:
//
// Request errors are returned as JSON with an HTTP status code: 400 for
// malformed or invalid requests, 404 for unknown runs or boards, 500 otherwise.
//
//	{"error": "error message"}
package api
