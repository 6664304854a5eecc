package runs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilePersistence implements Persistence using file system storage
type FilePersistence struct {
	runsDir string
}

// NewFilePersistence creates a new file-based run persistence layer
func NewFilePersistence(runsDir string) (*FilePersistence, error) {
	if err := os.MkdirAll(runsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runs directory: %w", err)
	}

	return &FilePersistence{
		runsDir: runsDir,
	}, nil
}

// Save persists a run to a JSON file
func (fp *FilePersistence) Save(run *Run) error {
	if run == nil {
		return fmt.Errorf("run cannot be nil")
	}
	if !validID(run.ID) {
		return ErrInvalidRunID
	}

	data := PersistedRunData{
		ID:             run.ID,
		BoardID:        run.BoardID,
		Board:          run.Board,
		Commands:       run.Commands,
		Result:         run.Result,
		Steps:          run.Steps,
		Error:          run.Error,
		CreatedAt:      run.CreatedAt,
		LastAccessedAt: run.LastAccessedAt,
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run data: %w", err)
	}

	if err := os.WriteFile(fp.getFilePath(run.ID), jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write run file: %w", err)
	}

	return nil
}

// Load retrieves a run from a JSON file
func (fp *FilePersistence) Load(id string) (*Run, error) {
	if !validID(id) {
		return nil, ErrInvalidRunID
	}

	jsonData, err := os.ReadFile(fp.getFilePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}

	var data PersistedRunData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run data: %w", err)
	}

	return &Run{
		ID:             data.ID,
		BoardID:        data.BoardID,
		Board:          data.Board,
		Commands:       data.Commands,
		Result:         data.Result,
		Steps:          data.Steps,
		Error:          data.Error,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}

// Delete removes a run file
func (fp *FilePersistence) Delete(id string) error {
	if !fp.Exists(id) {
		return ErrRunNotFound
	}

	if err := os.Remove(fp.getFilePath(id)); err != nil {
		return fmt.Errorf("failed to remove run file: %w", err)
	}

	return nil
}

// ListAll returns all persisted run IDs
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.runsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasSuffix(name, ".json") {
			ids = append(ids, strings.TrimSuffix(name, ".json"))
		}
	}

	return ids, nil
}

// Exists checks if a run file exists
func (fp *FilePersistence) Exists(id string) bool {
	if !validID(id) {
		return false
	}
	_, err := os.Stat(fp.getFilePath(id))
	return err == nil
}

// getFilePath returns the full file path for a run ID
func (fp *FilePersistence) getFilePath(id string) string {
	return filepath.Join(fp.runsDir, fmt.Sprintf("%s.json", id))
}

// validID rejects IDs that could escape the runs directory
func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\`) && id != "." && id != ".."
}
