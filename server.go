package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/knightmover/api"
	"github.com/wricardo/mcp-training/knightmover/game/config"
	"github.com/wricardo/mcp-training/knightmover/game/loader"
	"github.com/wricardo/mcp-training/knightmover/game/runs"
	"github.com/wricardo/mcp-training/knightmover/game/service"
	"github.com/wricardo/mcp-training/knightmover/transport/mcp"
	"github.com/wricardo/mcp-training/knightmover/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

const (
	// runRetention is how long an unaccessed run stays in memory
	runRetention = 24 * time.Hour

	cleanupInterval = 1 * time.Hour
	syncInterval    = 5 * time.Second
)

// services bundles the wired service and the stores behind it
type services struct {
	knight      service.KnightService
	runs        *runs.Manager
	persistence runs.Persistence
}

// initializeServices wires the board catalog, run store and knight service.
func initializeServices(boardsDir, runsDir string, fetchTimeout time.Duration) (*services, error) {
	if err := os.MkdirAll(boardsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create boards directory: %w", err)
	}

	boardManager, err := config.NewManager(boardsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create board manager: %w", err)
	}

	persistence, err := runs.NewFilePersistence(runsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create run persistence: %w", err)
	}

	runManager := runs.NewManagerWithPersistence(persistence)

	// Load persisted runs on startup
	if err := runManager.LoadPersisted(); err != nil {
		log.Printf("Warning: Failed to load persisted runs: %v", err)
	}

	return &services{
		knight:      service.NewKnightService(runManager, boardManager, loader.NewFetcher(fetchTimeout)),
		runs:        runManager,
		persistence: persistence,
	}, nil
}

// newHandler combines the API server with the /mcp proxy endpoint
func newHandler(apiServer http.Handler, mcpClient *mcp.Client) http.Handler {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	return mainRouter
}

// serveAction starts the HTTP server with REST API, WebSocket hub, and an /mcp
// proxy endpoint. If ngrok is enabled it also provisions a public tunnel.
func serveAction(ctx context.Context, cmd *cli.Command) error {
	svc, err := initializeServices(cmd.String("boards-dir"), cmd.String("runs-dir"), cmd.Duration("fetch-timeout"))
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	log.Printf("Starting %s v%s (mode: serve)", AppName, Version)

	hub := websocket.NewHub()
	go hub.Run()

	apiServer := api.NewServer(svc.knight, hub)
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	handler := newHandler(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		runCleanupRoutine(ctx, svc.runs)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		filesystemSyncRoutine(ctx, svc.runs, svc.persistence)
	}()

	serveErr := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?board=<board_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), handler)
		}()
	}

	var runErr error
	select {
	case sig := <-stop:
		log.Printf("Received signal: %v. Shutting down...", sig)
	case runErr = <-serveErr:
		log.Printf("HTTP server failed: %v", runErr)
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
	return runErr
}

// runNgrokTunnel serves handler through an ngrok endpoint until ctx is done
func runNgrokTunnel(ctx context.Context, authToken, domain string, handler http.Handler) {
	if authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Printf("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?board=<board_id>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// runCleanupRoutine periodically drops runs that have not been accessed
// within the retention window.
func runCleanupRoutine(ctx context.Context, manager *runs.Manager) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpired(runRetention); removed > 0 {
				log.Printf("Cleaned up %d expired runs", removed)
			}
		}
	}
}

// filesystemSyncRoutine periodically removes runs from memory whose files
// were deleted.
func filesystemSyncRoutine(ctx context.Context, manager *runs.Manager, persistence runs.Persistence) {
	if persistence == nil {
		return
	}

	ticker := time.NewTicker(syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := syncWithFilesystem(manager, persistence); pruned > 0 {
				log.Printf("Filesystem sync: pruned %d orphaned runs from memory", pruned)
			}
		}
	}
}

// syncWithFilesystem prunes in-memory runs without a backing file
func syncWithFilesystem(manager *runs.Manager, persistence runs.Persistence) int {
	pruned := 0
	for _, run := range manager.List() {
		if persistence.Exists(run.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(run.ID); err == nil {
			pruned++
			log.Printf("Pruned run %s from memory (file deleted)", run.ID)
		}
	}
	return pruned
}

// apiReachable reports whether a healthy API answers at baseURL
func apiReachable(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode < 500
}

// mcpAction runs an MCP stdio server. It reuses the external API when it is
// reachable; otherwise it starts an internal HTTP API on a random loopback
// port and targets that.
func mcpAction(ctx context.Context, cmd *cli.Command) error {
	externalURL := cmd.String("api-url")
	baseURL := externalURL

	log.Printf("Checking for external API server at %s...", externalURL)
	if apiReachable(&http.Client{Timeout: 2 * time.Second}, externalURL) {
		log.Printf("External API server found at %s, using it for MCP", externalURL)
	} else {
		log.Printf("No external API server found, starting internal HTTP server")

		svc, err := initializeServices(cmd.String("boards-dir"), cmd.String("runs-dir"), cmd.Duration("fetch-timeout"))
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		internalAddr := listener.Addr().String()
		log.Printf("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		hub := websocket.NewHub()
		go hub.Run()

		httpServer := &http.Server{Handler: api.NewServer(svc.knight, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()
		defer httpServer.Close()

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Printf("MCP stdio server ready (API: %s)", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
