// Command knightmover replays knight commands on a grid board.
//
// It supports four commands:
//  1. "run" (default) – fetches a board and a command list, replays them and
//     prints the result JSON on stdout
//  2. "serve" – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  3. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  4. "validate" – checks board and command documents in a directory
//
// Defaults come from the environment (and a .env file when present); flags
// override them.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/knightmover/game/config"
	"github.com/wricardo/mcp-training/knightmover/game/engine"
	"github.com/wricardo/mcp-training/knightmover/game/loader"
	"github.com/wricardo/mcp-training/knightmover/game/service"
	"github.com/wricardo/mcp-training/knightmover/validate"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Knight Mover"
)

// main loads settings, builds the command tree and runs it.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}

	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	if err := newApp(settings).Run(context.Background(), os.Args); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// newApp builds the root command with flag defaults taken from settings.
func newApp(settings *config.Settings) *cli.Command {
	runFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  "board-url",
			Usage: "board document URL or file path",
			Value: settings.BoardURL,
		},
		&cli.StringFlag{
			Name:  "commands-url",
			Usage: "commands document URL or file path",
			Value: settings.CommandsURL,
		},
		&cli.BoolFlag{
			Name:  "strict-directions",
			Usage: "fail with GENERIC_ERROR on non-canonical directions",
		},
		&cli.BoolFlag{
			Name:  "reject-obstacle-start",
			Usage: "fail with INVALID_START_POSITION when START is on an obstacle",
		},
	}

	return &cli.Command{
		Name:    "knightmover",
		Usage:   "replay knight commands on a grid board",
		Version: Version,
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
			&cli.StringFlag{
				Name:  "boards-dir",
				Usage: "directory containing catalog boards",
				Value: settings.BoardsDir,
			},
			&cli.StringFlag{
				Name:  "runs-dir",
				Usage: "directory where runs are persisted",
				Value: settings.RunsDir,
			},
			&cli.DurationFlag{
				Name:  "fetch-timeout",
				Usage: "timeout for fetching remote documents",
				Value: settings.FetchTimeout,
			},
		}, runFlags...),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			} else {
				log.SetFlags(log.LstdFlags)
			}
			return ctx, nil
		},
		Action: runAction,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "fetch a board and commands, replay them and print the result (default)",
				Action: runAction,
			},
			{
				Name:  "serve",
				Usage: "run the HTTP server with REST API, WebSocket and MCP endpoint",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "host",
						Usage: "HTTP server host",
						Value: settings.Host,
					},
					&cli.IntFlag{
						Name:  "port",
						Usage: "HTTP server port",
						Value: settings.Port,
					},
					&cli.BoolFlag{
						Name:  "ngrok",
						Usage: "enable ngrok tunnel",
						Value: settings.NgrokEnabled,
					},
					&cli.StringFlag{
						Name:  "ngrok-auth",
						Usage: "ngrok auth token",
						Value: settings.NgrokAuthToken,
					},
					&cli.StringFlag{
						Name:  "ngrok-domain",
						Usage: "custom ngrok domain (optional)",
						Value: settings.NgrokDomain,
					},
				},
				Action: serveAction,
			},
			{
				Name:  "mcp",
				Usage: "run an MCP stdio server backed by an external or internal HTTP API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "api-url",
						Usage: "external API to proxy when it is reachable",
						Value: fmt.Sprintf("http://localhost:%d", settings.Port),
					},
				},
				Action: mcpAction,
			},
			{
				Name:      "validate",
				Usage:     "validate board and command documents in a directory",
				ArgsUsage: "[dir]",
				Action:    validateAction,
			},
		},
	}
}

// runOptions reads the engine option flags
func runOptions(cmd *cli.Command) service.RunOptions {
	return service.RunOptions{
		StrictDirections:    cmd.Bool("strict-directions"),
		RejectObstacleStart: cmd.Bool("reject-obstacle-start"),
	}
}

// runAction replays the configured documents and prints the result JSON.
// Retrieval failures print GENERIC_ERROR rather than failing the command.
func runAction(ctx context.Context, cmd *cli.Command) error {
	fetcher := loader.NewFetcher(cmd.Duration("fetch-timeout"))

	result, err := loader.Replay(ctx, fetcher,
		cmd.String("board-url"), cmd.String("commands-url"),
		runOptions(cmd).EngineOptions()...)
	if err != nil {
		log.Printf("Replay failed: %v", err)
	}

	return writeResult(cmd.Root().Writer, result)
}

// writeResult prints a result as a single JSON line
func writeResult(w io.Writer, result *engine.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// validateAction validates every document in the given directory (default:
// the boards directory) and fails when any is invalid.
func validateAction(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.Args().First()
	if dir == "" {
		dir = cmd.String("boards-dir")
	}

	results, err := validate.ValidateDir(dir)
	if err != nil {
		return err
	}

	if !validate.Report(cmd.Root().Writer, results) {
		return fmt.Errorf("validation failed for documents in %s", dir)
	}
	return nil
}
