// Package websocket provides live run notifications over WebSocket.
//
// The websocket package implements:
//   - Topic subscriptions keyed by board id
//   - A wildcard topic ("*") that receives every run
//   - Broadcast of run results after they are stored
//   - Connection lifecycle management with ping/pong keepalive
//
// Architecture:
//
// A central Hub owns all subscriptions. Each client connection runs a read
// goroutine (keepalive only) and a write goroutine fed by a buffered channel.
// Broadcasts are queued on the hub and fanned out by Hub.Run.
//
// Message Protocol:
//
// Outgoing messages are JSON objects:
//
//	{"event": "run_completed", "run_id": "...", "board_id": "classic",
//	 "result": {"status": "SUCCESS", "position": {"x": 1, "y": 2, "direction": "EAST"}}}
//
// Runs on inline boards have no board id and only reach wildcard subscribers.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("board"))
//	})
//
//	hub.BroadcastRun("classic", run.ID, run.Result)
package websocket
