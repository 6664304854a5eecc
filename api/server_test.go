package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/wricardo/mcp-training/knightmover/game/engine"
	"github.com/wricardo/mcp-training/knightmover/game/service"
	"github.com/wricardo/mcp-training/knightmover/transport/websocket"
)

// MockKnightService implements service.KnightService for testing
type MockKnightService struct {
	ExecuteFunc    func(ctx context.Context, req *service.ExecuteRequest) (*service.RunInfo, error)
	ReplayFunc     func(ctx context.Context, req *service.FetchRequest) (*service.RunInfo, error)
	GetRunFunc     func(ctx context.Context, runID string) (*service.RunInfo, error)
	ListRunsFunc   func(ctx context.Context) ([]*service.RunInfo, error)
	DeleteRunFunc  func(ctx context.Context, runID string) error
	ListBoardsFunc func(ctx context.Context) ([]*service.BoardInfo, error)
	LoadBoardFunc  func(ctx context.Context, boardID string) (*engine.Board, error)
	SaveBoardFunc  func(ctx context.Context, boardID string, board *engine.Board) error
}

func (m *MockKnightService) Execute(ctx context.Context, req *service.ExecuteRequest) (*service.RunInfo, error) {
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, req)
	}
	return &service.RunInfo{
		ID:       "test-run",
		BoardID:  req.BoardID,
		Commands: req.Commands,
		Result:   engine.NewErrorResult(engine.StatusGenericError),
	}, nil
}

func (m *MockKnightService) Replay(ctx context.Context, req *service.FetchRequest) (*service.RunInfo, error) {
	if m.ReplayFunc != nil {
		return m.ReplayFunc(ctx, req)
	}
	return &service.RunInfo{ID: "fetched-run", BoardID: req.BoardURL, Result: engine.NewErrorResult(engine.StatusGenericError)}, nil
}

func (m *MockKnightService) GetRun(ctx context.Context, runID string) (*service.RunInfo, error) {
	if m.GetRunFunc != nil {
		return m.GetRunFunc(ctx, runID)
	}
	return &service.RunInfo{ID: runID, CreatedAt: time.Now()}, nil
}

func (m *MockKnightService) ListRuns(ctx context.Context) ([]*service.RunInfo, error) {
	if m.ListRunsFunc != nil {
		return m.ListRunsFunc(ctx)
	}
	return []*service.RunInfo{}, nil
}

func (m *MockKnightService) DeleteRun(ctx context.Context, runID string) error {
	if m.DeleteRunFunc != nil {
		return m.DeleteRunFunc(ctx, runID)
	}
	return nil
}

func (m *MockKnightService) ListBoards(ctx context.Context) ([]*service.BoardInfo, error) {
	if m.ListBoardsFunc != nil {
		return m.ListBoardsFunc(ctx)
	}
	return []*service.BoardInfo{}, nil
}

func (m *MockKnightService) LoadBoard(ctx context.Context, boardID string) (*engine.Board, error) {
	if m.LoadBoardFunc != nil {
		return m.LoadBoardFunc(ctx, boardID)
	}
	return &engine.Board{Width: 5, Height: 5}, nil
}

func (m *MockKnightService) SaveBoard(ctx context.Context, boardID string, board *engine.Board) error {
	if m.SaveBoardFunc != nil {
		return m.SaveBoardFunc(ctx, boardID, board)
	}
	return nil
}

func setupTestServer(mockService *MockKnightService) *Server {
	return NewServer(mockService, websocket.NewHub())
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response %q: %v", w.Body.String(), err)
	}
}

func TestExecuteRun(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		mockFunc       func(ctx context.Context, req *service.ExecuteRequest) (*service.RunInfo, error)
		expectedStatus int
		checkResponse  func(t *testing.T, w *httptest.ResponseRecorder)
	}{
		{
			name: "successful run",
			body: map[string]interface{}{
				"board_id": "classic",
				"commands": []string{"START 0,0,NORTH", "MOVE 1"},
			},
			mockFunc: func(ctx context.Context, req *service.ExecuteRequest) (*service.RunInfo, error) {
				if req.BoardID != "classic" || len(req.Commands) != 2 {
					return nil, fmt.Errorf("unexpected request %+v", req)
				}
				return &service.RunInfo{
					ID:       "run-1",
					BoardID:  req.BoardID,
					Commands: req.Commands,
					Result: &engine.Result{
						Status:   engine.StatusSuccess,
						Position: &engine.Position{X: 0, Y: 1, Direction: engine.North},
					},
				}, nil
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var run service.RunInfo
				parseResponse(t, w, &run)
				if run.ID != "run-1" {
					t.Errorf("Expected run-1, got %s", run.ID)
				}
				if run.Result.Status != engine.StatusSuccess || run.Result.Position.Y != 1 {
					t.Errorf("Unexpected result %+v", run.Result)
				}
			},
		},
		{
			name: "options are decoded",
			body: `{"board": {"width": 2, "height": 2}, "commands": [], "strict_directions": true, "reject_obstacle_start": true}`,
			mockFunc: func(ctx context.Context, req *service.ExecuteRequest) (*service.RunInfo, error) {
				if !req.StrictDirections || !req.RejectObstacleStart {
					return nil, fmt.Errorf("options not decoded: %+v", req.RunOptions)
				}
				if req.Board == nil || req.Board.Width != 2 {
					return nil, fmt.Errorf("board not decoded")
				}
				return &service.RunInfo{ID: "run-2", Result: engine.NewErrorResult(engine.StatusGenericError)}, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid body",
			body:           "{not json",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "invalid request",
			body: map[string]interface{}{"commands": []string{}},
			mockFunc: func(ctx context.Context, req *service.ExecuteRequest) (*service.RunInfo, error) {
				return nil, fmt.Errorf("%w: either board or board_id is required", service.ErrInvalidRequest)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown board",
			body: map[string]interface{}{"board_id": "missing"},
			mockFunc: func(ctx context.Context, req *service.ExecuteRequest) (*service.RunInfo, error) {
				return nil, fmt.Errorf("failed to load board missing: board %w", service.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "store failure",
			body: map[string]interface{}{"board_id": "classic"},
			mockFunc: func(ctx context.Context, req *service.ExecuteRequest) (*service.RunInfo, error) {
				return nil, errors.New("disk full")
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := setupTestServer(&MockKnightService{ExecuteFunc: tt.mockFunc})

			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/runs", tt.body))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, w)
			}
		})
	}
}

func TestExecuteRunBroadcasts(t *testing.T) {
	hub := websocket.NewHub()
	server := NewServer(&MockKnightService{
		ExecuteFunc: func(ctx context.Context, req *service.ExecuteRequest) (*service.RunInfo, error) {
			return &service.RunInfo{ID: "run-ws", BoardID: "classic", Result: engine.NewErrorResult(engine.StatusOutOfTheBoard)}, nil
		},
	}, hub)
	go hub.Run()

	httpServer := httptest.NewServer(server)
	defer httpServer.Close()

	wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws?board=classic"
	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount("classic") == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	resp, err := http.Post(httpServer.URL+"/api/runs", "application/json", strings.NewReader(`{"board_id":"classic","commands":[]}`))
	if err != nil {
		t.Fatalf("Failed to post run: %v", err)
	}
	resp.Body.Close()

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}

	var message websocket.Message
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	if message.RunID != "run-ws" || message.Result.Status != engine.StatusOutOfTheBoard {
		t.Errorf("Unexpected message %+v", message)
	}
}

func TestFetchRun(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		mockFunc       func(ctx context.Context, req *service.FetchRequest) (*service.RunInfo, error)
		expectedStatus int
	}{
		{
			name: "fetched",
			body: map[string]string{"board_url": "http://x/board.json", "commands_url": "http://x/commands.json"},
			mockFunc: func(ctx context.Context, req *service.FetchRequest) (*service.RunInfo, error) {
				if req.CommandsURL != "http://x/commands.json" {
					return nil, fmt.Errorf("unexpected request %+v", req)
				}
				return &service.RunInfo{ID: "run-f", Result: engine.NewErrorResult(engine.StatusGenericError), Error: "fetch failed"}, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "missing urls",
			body: map[string]string{},
			mockFunc: func(ctx context.Context, req *service.FetchRequest) (*service.RunInfo, error) {
				return nil, fmt.Errorf("%w: board_url and commands_url are required", service.ErrInvalidRequest)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid body",
			body:           "[",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := setupTestServer(&MockKnightService{ReplayFunc: tt.mockFunc})

			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/runs/fetch", tt.body))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestListRuns(t *testing.T) {
	now := time.Now()
	runs := func() []*service.RunInfo {
		return []*service.RunInfo{
			{ID: "a", BoardID: "classic", CreatedAt: now.Add(-3 * time.Hour), LastAccessedAt: now.Add(-1 * time.Hour)},
			{ID: "b", BoardID: "other", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now.Add(-3 * time.Hour)},
			{ID: "c", BoardID: "classic", CreatedAt: now.Add(-1 * time.Hour), LastAccessedAt: now.Add(-2 * time.Hour)},
		}
	}

	tests := []struct {
		name          string
		query         string
		expectedIDs   []string
		expectedTotal int
	}{
		{name: "default accessed desc", query: "", expectedIDs: []string{"a", "c", "b"}, expectedTotal: 3},
		{name: "created asc", query: "?sort=created&order=asc", expectedIDs: []string{"a", "b", "c"}, expectedTotal: 3},
		{name: "limit", query: "?sort=created&limit=1", expectedIDs: []string{"c"}, expectedTotal: 3},
		{name: "invalid limit ignored", query: "?limit=zero", expectedIDs: []string{"a", "c", "b"}, expectedTotal: 3},
		{name: "board filter", query: "?board=classic&sort=created", expectedIDs: []string{"c", "a"}, expectedTotal: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := setupTestServer(&MockKnightService{
				ListRunsFunc: func(ctx context.Context) ([]*service.RunInfo, error) { return runs(), nil },
			})

			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/runs"+tt.query, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}

			var resp struct {
				Count int                `json:"count"`
				Total int                `json:"total"`
				Runs  []*service.RunInfo `json:"runs"`
			}
			parseResponse(t, w, &resp)

			if resp.Total != tt.expectedTotal {
				t.Errorf("Expected total %d, got %d", tt.expectedTotal, resp.Total)
			}
			if resp.Count != len(tt.expectedIDs) {
				t.Fatalf("Expected %d runs, got %d", len(tt.expectedIDs), resp.Count)
			}
			for i, id := range tt.expectedIDs {
				if resp.Runs[i].ID != id {
					t.Errorf("Position %d: expected %s, got %s", i, id, resp.Runs[i].ID)
				}
			}
		})
	}
}

func TestGetRun(t *testing.T) {
	tests := []struct {
		name           string
		runID          string
		mockFunc       func(ctx context.Context, runID string) (*service.RunInfo, error)
		expectedStatus int
	}{
		{
			name:  "existing run",
			runID: "run-1",
			mockFunc: func(ctx context.Context, runID string) (*service.RunInfo, error) {
				return &service.RunInfo{
					ID: runID,
					Steps: []engine.Step{
						{Index: 0, Command: "START 0,0,NORTH", Status: engine.StatusSuccess},
					},
				}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "missing run",
			runID: "nope",
			mockFunc: func(ctx context.Context, runID string) (*service.RunInfo, error) {
				return nil, fmt.Errorf("run %s: run %w", runID, service.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := setupTestServer(&MockKnightService{GetRunFunc: tt.mockFunc})

			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/runs/"+tt.runID, nil))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestDeleteRun(t *testing.T) {
	var deleted string
	server := setupTestServer(&MockKnightService{
		DeleteRunFunc: func(ctx context.Context, runID string) error {
			if runID == "missing" {
				return fmt.Errorf("run %w", service.ErrNotFound)
			}
			deleted = runID
			return nil
		},
	})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("DELETE", "/api/runs/run-9", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if deleted != "run-9" {
		t.Errorf("Expected run-9 to be deleted, got %q", deleted)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("DELETE", "/api/runs/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestListBoards(t *testing.T) {
	server := setupTestServer(&MockKnightService{
		ListBoardsFunc: func(ctx context.Context) ([]*service.BoardInfo, error) {
			return nil, nil
		},
	})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/boards", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("Expected empty JSON array, got %s", w.Body.String())
	}
}

func TestGetBoard(t *testing.T) {
	server := setupTestServer(&MockKnightService{
		LoadBoardFunc: func(ctx context.Context, boardID string) (*engine.Board, error) {
			if boardID != "classic" {
				return nil, fmt.Errorf("board %w", service.ErrNotFound)
			}
			return &engine.Board{Width: 5, Height: 4, Obstacles: []engine.Obstacle{{X: 1, Y: 1}}}, nil
		},
	})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/boards/classic", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var board engine.Board
	parseResponse(t, w, &board)
	if board.Height != 4 || len(board.Obstacles) != 1 {
		t.Errorf("Unexpected board %+v", board)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/boards/other", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestSaveBoard(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		mockErr        error
		expectedStatus int
	}{
		{
			name:           "valid board",
			body:           `{"id": "arena", "width": 3, "height": 3, "obstacles": [{"x": 1, "y": 1}]}`,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing id",
			body:           `{"width": 3, "height": 3}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid board",
			body:           `{"id": "arena", "width": 0, "height": 3}`,
			mockErr:        fmt.Errorf("%w: width must be positive", service.ErrInvalidRequest),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid body",
			body:           "nope",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var saved *engine.Board
			server := setupTestServer(&MockKnightService{
				SaveBoardFunc: func(ctx context.Context, boardID string, board *engine.Board) error {
					if tt.mockErr != nil {
						return tt.mockErr
					}
					if boardID != "arena" {
						return fmt.Errorf("unexpected id %s", boardID)
					}
					saved = board
					return nil
				},
			})

			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/boards", tt.body))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedStatus == http.StatusCreated {
				if saved == nil || saved.Width != 3 || len(saved.Obstacles) != 1 {
					t.Errorf("Board not passed to service: %+v", saved)
				}
			}
		})
	}
}

func TestWebSocketUnknownBoard(t *testing.T) {
	server := setupTestServer(&MockKnightService{
		LoadBoardFunc: func(ctx context.Context, boardID string) (*engine.Board, error) {
			return nil, fmt.Errorf("board %w", service.ErrNotFound)
		},
	})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/ws?board=missing", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	server := setupTestServer(&MockKnightService{})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}
