// Package runs stores executed knight runs.
//
// The runs package implements:
//   - Thread-safe run storage and retrieval
//   - Run ID generation (UUIDs)
//   - Optional JSON file persistence, one file per run
//   - Expiration of runs that have not been accessed for a while
//
// Usage:
//
//	persistence, err := runs.NewFilePersistence("runs")
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := runs.NewManagerWithPersistence(persistence)
//	if err := manager.LoadPersisted(); err != nil {
//		log.Printf("Warning: %v", err)
//	}
//
// A run file holds the board, the raw commands, the result and the step trace,
// so a persisted run can be reloaded without the board catalog.
package runs
