package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/knightmover/game/engine"
	"github.com/wricardo/mcp-training/knightmover/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Knight Mover",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Knight Mover - MCP Interface

This is a thin client that proxies all requests to the REST API server.

A knight moves on a bounded grid with obstacles. Send it a list of commands
and get back its final position or a failure status.

AVAILABLE TOOLS:
- execute_commands: Run a command list on a catalog board or an inline board
- fetch_and_run: Fetch board and commands documents by URL and run them
- get_run: Get a stored run with its step trace
- list_runs: List stored runs
- list_boards: List catalog boards
- describe_board: Render a board as a grid with obstacles marked
- knight_instructions: Command syntax and rules`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "execute_commands",
		Description: "Run a knight command list on a board and store the run",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"board_id": map[string]interface{}{
					"type":        "string",
					"description": "Catalog board to run on (see list_boards)",
				},
				"board": map[string]interface{}{
					"type":        "object",
					"description": "Inline board {width, height, obstacles: [{x, y}]}; takes precedence over board_id",
				},
				"commands": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
					},
					"description": "Commands such as \"START 0,0,NORTH\", \"MOVE 3\", \"ROTATE EAST\"",
				},
				"strict_directions": map[string]interface{}{
					"type":        "boolean",
					"description": "Fail with GENERIC_ERROR on directions other than NORTH/SOUTH/EAST/WEST",
				},
				"reject_obstacle_start": map[string]interface{}{
					"type":        "boolean",
					"description": "Fail with INVALID_START_POSITION when starting on an obstacle",
				},
			},
			Required: []string{"commands"},
		},
	}, c.handleExecuteCommands)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "fetch_and_run",
		Description: "Fetch a board document and a commands document by URL and run them",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"board_url": map[string]interface{}{
					"type":        "string",
					"description": "URL of the board JSON document",
				},
				"commands_url": map[string]interface{}{
					"type":        "string",
					"description": "URL of the commands JSON document ({\"commands\": [...]})",
				},
			},
			Required: []string{"board_url", "commands_url"},
		},
	}, c.handleFetchAndRun)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_run",
		Description: "Get a stored run including its step-by-step trace",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run ID to retrieve",
				},
			},
			Required: []string{"run_id"},
		},
	}, c.handleGetRun)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_runs",
		Description: "List stored runs, most recently accessed first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"board_id": map[string]interface{}{
					"type":        "string",
					"description": "Only list runs on this board (optional)",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of runs to list (optional)",
				},
			},
		},
	}, c.handleListRuns)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_boards",
		Description: "List boards available in the catalog",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListBoards)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_board",
		Description: "Render a catalog board as a character grid (north at the top)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"board_id": map[string]interface{}{
					"type":        "string",
					"description": "Board to describe",
				},
			},
			Required: []string{"board_id"},
		},
	}, c.handleDescribeBoard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "knight_instructions",
		Description: "Get the command syntax, movement rules and result statuses",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleKnightInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	return args
}

// Tool handlers

func (c *Client) handleExecuteCommands(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	rawCommands, ok := args["commands"].([]interface{})
	if !ok {
		return mcp.NewToolResultError("commands must be an array of strings"), nil
	}
	commands := make([]string, 0, len(rawCommands))
	for i, raw := range rawCommands {
		cmd, ok := raw.(string)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("command %d is not a string", i)), nil
		}
		commands = append(commands, cmd)
	}

	body := map[string]interface{}{
		"commands": commands,
	}
	if boardID, _ := args["board_id"].(string); boardID != "" {
		body["board_id"] = boardID
	}
	if board, ok := args["board"].(map[string]interface{}); ok {
		body["board"] = board
	}
	if strict, _ := args["strict_directions"].(bool); strict {
		body["strict_directions"] = true
	}
	if reject, _ := args["reject_obstacle_start"].(bool); reject {
		body["reject_obstacle_start"] = true
	}

	var run service.RunInfo
	if err := c.apiCall(ctx, "POST", "/api/runs", body, &run); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRun(&run, false)), nil
}

func (c *Client) handleFetchAndRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	boardURL, _ := args["board_url"].(string)
	commandsURL, _ := args["commands_url"].(string)

	body := map[string]string{
		"board_url":    boardURL,
		"commands_url": commandsURL,
	}

	var run service.RunInfo
	if err := c.apiCall(ctx, "POST", "/api/runs/fetch", body, &run); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRun(&run, false)), nil
}

func (c *Client) handleGetRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID, _ := arguments(request)["run_id"].(string)
	if runID == "" {
		return mcp.NewToolResultError("run_id is required"), nil
	}

	var run service.RunInfo
	if err := c.apiCall(ctx, "GET", "/api/runs/"+url.PathEscape(runID), nil, &run); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRun(&run, true)), nil
}

func (c *Client) handleListRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	query := url.Values{}
	if boardID, _ := args["board_id"].(string); boardID != "" {
		query.Set("board", boardID)
	}
	if limit, ok := args["limit"].(float64); ok && limit > 0 {
		query.Set("limit", fmt.Sprintf("%d", int(limit)))
	}

	path := "/api/runs"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var response struct {
		Count int                `json:"count"`
		Total int                `json:"total"`
		Runs  []*service.RunInfo `json:"runs"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Runs (%d of %d):\n\n", response.Count, response.Total)
	for _, run := range response.Runs {
		board := run.BoardID
		if board == "" {
			board = "inline"
		}
		fmt.Fprintf(&b, "- %s (Board: %s, Commands: %d, %s, Created: %s)\n",
			run.ID, board, len(run.Commands), formatResult(run.Result), run.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleListBoards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var boards []service.BoardInfo
	if err := c.apiCall(ctx, "GET", "/api/boards", nil, &boards); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Available Boards (%d):\n\n", len(boards))
	for _, board := range boards {
		fmt.Fprintf(&b, "- %s: %dx%d, %d obstacles, %d free cells\n",
			board.BoardID, board.Width, board.Height, board.Obstacles, board.FreeCells)
		fmt.Fprintf(&b, "  File: %s\n", board.Filename)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleDescribeBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boardID, _ := arguments(request)["board_id"].(string)
	if boardID == "" {
		return mcp.NewToolResultError("board_id is required"), nil
	}

	var board engine.Board
	if err := c.apiCall(ctx, "GET", "/api/boards/"+url.PathEscape(boardID), nil, &board); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBoard(boardID, &board)), nil
}

func (c *Client) handleKnightInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Knight Mover - Complete Instructions

BOARD:
- A grid of width x height cells with zero-based coordinates (x, y)
- x grows to the EAST, y grows to the NORTH
- Obstacle cells cannot be entered

COMMANDS (one string per entry, keywords are case-sensitive):
- START x,y,DIRECTION   Place the knight. Must be the first command and appear once.
- MOVE n                Step n cells in the facing direction, one cell at a time.
- ROTATE DIRECTION      Face a new direction without moving.
Directions: NORTH (0,+1), SOUTH (0,-1), EAST (+1,0), WEST (-1,0)

MOVEMENT RULES:
- A move stops early, without error, in front of an obstacle
- Stepping off the board fails the whole run with OUT_OF_THE_BOARD
- MOVE 0 and negative counts do nothing

RESULT STATUSES:
- SUCCESS: final position and direction are returned
- INVALID_START_POSITION: START is outside the board
- OUT_OF_THE_BOARD: a MOVE left the board
- GENERIC_ERROR: malformed or unknown command, a second START, a command
  before START, or no START at all

Execution stops at the first failure. Only SUCCESS carries a position.

EXAMPLE:
  ["START 0,0,NORTH", "MOVE 3", "ROTATE EAST", "MOVE 2"]
  on an empty 5x5 board ends at {"x": 2, "y": 3, "direction": "EAST"}`

	return mcp.NewToolResultText(instructions), nil
}

func formatResult(result *engine.Result) string {
	if result == nil {
		return "no result"
	}
	if result.Position == nil {
		return string(result.Status)
	}
	p := result.Position
	return fmt.Sprintf("%s at (%d,%d) facing %s", result.Status, p.X, p.Y, p.Direction)
}

func formatRun(run *service.RunInfo, withSteps bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run: %s\n", run.ID)
	if run.BoardID != "" {
		fmt.Fprintf(&b, "Board: %s\n", run.BoardID)
	} else if run.Board != nil {
		fmt.Fprintf(&b, "Board: inline %dx%d\n", run.Board.Width, run.Board.Height)
	}
	fmt.Fprintf(&b, "Commands: %d\n", len(run.Commands))
	fmt.Fprintf(&b, "Result: %s\n", formatResult(run.Result))
	if run.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", run.Error)
	}

	if !withSteps || len(run.Steps) == 0 {
		return b.String()
	}

	b.WriteString("\nSteps:\n")
	for _, step := range run.Steps {
		fmt.Fprintf(&b, "%3d. %-20s", step.Index+1, step.Command)
		if step.To != nil {
			fmt.Fprintf(&b, " -> (%d,%d,%s)", step.To.X, step.To.Y, step.To.Direction)
		}
		if step.Blocked {
			b.WriteString(" blocked")
		}
		if step.Status != "" {
			fmt.Fprintf(&b, " %s", step.Status)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// formatBoard draws the board with the highest row first so north is up
func formatBoard(boardID string, board *engine.Board) string {
	blocked := make(map[engine.Obstacle]bool, len(board.Obstacles))
	for _, o := range board.Obstacles {
		blocked[o] = true
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Board: %s (%dx%d, %d free cells)\n", boardID, board.Width, board.Height, engine.FreeCells(board))
	b.WriteString("Legend: . free, # obstacle\n\n")

	for y := board.Height - 1; y >= 0; y-- {
		fmt.Fprintf(&b, "%3d ", y)
		for x := 0; x < board.Width; x++ {
			if blocked[engine.Obstacle{X: x, Y: y}] {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
