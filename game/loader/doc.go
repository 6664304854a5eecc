// Package loader retrieves the board and command documents the engine replays.
//
// A source is either an http(s) URL or a local file path. Boards are JSON
// documents of the form
//
//	{"width": 5, "height": 5, "obstacles": [{"x": 0, "y": 2}]}
//
// (local .yaml/.yml files are accepted too) and command documents are
//
//	{"commands": ["START 0,0,NORTH", "MOVE 4"]}
//
// Replay ties fetching and execution together and reports every retrieval or
// decoding failure as GENERIC_ERROR, so callers always get a Result.
package loader
