// Package service provides the business logic layer for the knight mover.
//
// The service package implements:
//   - Command replay against catalog boards or inline boards
//   - Replay of remote board/command documents
//   - Run history storage and retrieval
//   - Board catalog access
//
// Core Interfaces:
//
// KnightService is the main service interface used by the REST API and, through
// it, by the MCP tools. RunStore keeps executed runs. BoardCatalog loads and
// saves named boards. DocumentFetcher retrieves remote documents.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the engine. Each call builds a fresh engine, so runs never share state; the
// service only serializes access to the stores.
//
// Usage:
//
//	runStore := runs.NewManager()
//	boards, _ := config.NewManager("boards")
//	svc := service.NewKnightService(runStore, boards, loader.NewFetcher(0))
//
//	info, err := svc.Execute(ctx, &service.ExecuteRequest{
//		BoardID:  "classic",
//		Commands: []string{"START 0,0,NORTH", "MOVE 4"},
//	})
//
// Failures of the knight itself (INVALID_START_POSITION, OUT_OF_THE_BOARD,
// GENERIC_ERROR) are results, not errors: they are stored like any other run.
// Errors are reserved for bad requests and storage problems.
package service
