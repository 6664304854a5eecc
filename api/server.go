package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/wricardo/mcp-training/knightmover/game/engine"
	"github.com/wricardo/mcp-training/knightmover/game/service"
	"github.com/wricardo/mcp-training/knightmover/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.KnightService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server
func NewServer(knightService service.KnightService, hub *websocket.Hub) *Server {
	s := &Server{
		service: knightService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Runs (fetch must be registered before the {id} pattern)
	api.HandleFunc("/runs", s.handleExecute).Methods("POST")
	api.HandleFunc("/runs/fetch", s.handleFetch).Methods("POST")
	api.HandleFunc("/runs", s.handleListRuns).Methods("GET")
	api.HandleFunc("/runs/{id}", s.handleGetRun).Methods("GET")
	api.HandleFunc("/runs/{id}", s.handleDeleteRun).Methods("DELETE")

	// Boards
	api.HandleFunc("/boards", s.handleListBoards).Methods("GET")
	api.HandleFunc("/boards", s.handleSaveBoard).Methods("POST")
	api.HandleFunc("/boards/{id}", s.handleGetBoard).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// errorStatus maps service errors onto HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Run Handlers

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req service.ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	run, err := s.service.Execute(r.Context(), &req)
	if err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	s.publish(run)
	respondJSON(w, http.StatusCreated, run)
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	var req service.FetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	run, err := s.service.Replay(r.Context(), &req)
	if err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	s.publish(run)
	respondJSON(w, http.StatusCreated, run)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.service.ListRuns(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Parse query parameters
	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of runs to return
	boardID := query.Get("board")  // only runs on this board

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	if boardID != "" {
		filtered := make([]*service.RunInfo, 0, len(runs))
		for _, run := range runs {
			if run.BoardID == boardID {
				filtered = append(filtered, run)
			}
		}
		runs = filtered
	}
	total := len(runs)

	sort.Slice(runs, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = runs[i].CreatedAt, runs[j].CreatedAt
		} else {
			ti, tj = runs[i].LastAccessedAt, runs[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	limit := len(runs)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(runs) {
			limit = l
		}
	}
	runs = runs[:limit]

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(runs),
		"total": total,
		"runs":  runs,
		"sort":  sortBy,
		"order": order,
	})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]

	run, err := s.service.GetRun(r.Context(), runID)
	if err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, run)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]

	if err := s.service.DeleteRun(r.Context(), runID); err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Run %s deleted", runID),
	})
}

// Board Handlers

func (s *Server) handleListBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := s.service.ListBoards(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if boards == nil {
		boards = []*service.BoardInfo{}
	}

	respondJSON(w, http.StatusOK, boards)
}

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	boardID := mux.Vars(r)["id"]

	board, err := s.service.LoadBoard(r.Context(), boardID)
	if err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, board)
}

func (s *Server) handleSaveBoard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
		engine.Board
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	boardID := strings.TrimSpace(req.ID)
	if boardID == "" {
		respondError(w, http.StatusBadRequest, "Board id is required")
		return
	}

	if err := s.service.SaveBoard(r.Context(), boardID, &req.Board); err != nil {
		respondError(w, errorStatus(err), fmt.Sprintf("Failed to save board: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Board saved successfully",
		"board_id": boardID,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "live updates are disabled", http.StatusServiceUnavailable)
		return
	}

	topic := r.URL.Query().Get("board")
	if topic != "" && topic != websocket.AllTopics {
		if _, err := s.service.LoadBoard(r.Context(), topic); err != nil {
			http.Error(w, "Unknown board", http.StatusNotFound)
			return
		}
	}

	s.hub.ServeWS(w, r, topic)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// publish logs a compact run line and pushes the result to subscribers
func (s *Server) publish(run *service.RunInfo) {
	status := engine.Status("")
	if run.Result != nil {
		status = run.Result.Status
	}
	if run.Result != nil && run.Result.Position != nil {
		p := run.Result.Position
		log.Printf("[RUN] id=%s board=%s commands=%d status=%s end=(%d,%d,%s)",
			run.ID, run.BoardID, len(run.Commands), status, p.X, p.Y, p.Direction)
	} else {
		log.Printf("[RUN] id=%s board=%s commands=%d status=%s", run.ID, run.BoardID, len(run.Commands), status)
	}

	if s.hub != nil {
		s.hub.BroadcastRun(run.BoardID, run.ID, run.Result)
	}
}
