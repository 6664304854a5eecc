package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wricardo/mcp-training/knightmover/game/engine"
	"gopkg.in/yaml.v3"
)

var (
	ErrFetchFailed  = errors.New("fetch failed")
	ErrDecodeFailed = errors.New("decode failed")
	ErrInvalidBoard = errors.New("invalid board")
)

// DefaultTimeout bounds a single document fetch
const DefaultTimeout = 10 * time.Second

// maxDocumentSize caps the bytes read from a single source
const maxDocumentSize = 4 << 20

// CommandsDocument is the wire shape of a command list
type CommandsDocument struct {
	Commands []string `json:"commands" yaml:"commands"`
}

// Fetcher loads board and command documents from URLs or files
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher creates a fetcher whose HTTP requests time out after timeout.
// A non-positive timeout uses DefaultTimeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchBoard retrieves and validates a board document
func (f *Fetcher) FetchBoard(ctx context.Context, source string) (*engine.Board, error) {
	data, err := f.read(ctx, source)
	if err != nil {
		return nil, err
	}

	var board engine.Board
	if err := decode(source, data, &board); err != nil {
		return nil, err
	}

	if err := engine.ValidateBoard(&board); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBoard, err)
	}

	return &board, nil
}

// FetchCommands retrieves the raw command entries of a commands document
func (f *Fetcher) FetchCommands(ctx context.Context, source string) ([]string, error) {
	data, err := f.read(ctx, source)
	if err != nil {
		return nil, err
	}

	var doc CommandsDocument
	if err := decode(source, data, &doc); err != nil {
		return nil, err
	}
	if doc.Commands == nil {
		return nil, fmt.Errorf("%w: %s has no commands array", ErrDecodeFailed, source)
	}

	return doc.Commands, nil
}

// Replay fetches both documents and runs them. Any retrieval failure yields a
// GENERIC_ERROR result; the error is returned alongside for logging.
func Replay(ctx context.Context, f *Fetcher, boardSource, commandsSource string, opts ...engine.Option) (*engine.Result, error) {
	board, err := f.FetchBoard(ctx, boardSource)
	if err != nil {
		return engine.NewErrorResult(engine.StatusGenericError), err
	}

	commands, err := f.FetchCommands(ctx, commandsSource)
	if err != nil {
		return engine.NewErrorResult(engine.StatusGenericError), err
	}

	return engine.NewEngine(board, opts...).RunRaw(commands), nil
}

// read returns the raw bytes of a URL or file source
func (f *Fetcher) read(ctx context.Context, source string) ([]byte, error) {
	if source == "" {
		return nil, fmt.Errorf("%w: empty source", ErrFetchFailed)
	}
	if isHTTP(source) {
		return f.get(ctx, source)
	}

	path := strings.TrimPrefix(source, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	return data, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned %d", ErrFetchFailed, url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrFetchFailed, url, err)
	}
	return data, nil
}

func decode(source string, data []byte, v any) error {
	var err error
	if isYAML(source) {
		err = yaml.Unmarshal(data, v)
	} else {
		err = json.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecodeFailed, source, err)
	}
	return nil
}

func isHTTP(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func isYAML(source string) bool {
	if isHTTP(source) {
		return false
	}
	switch strings.ToLower(filepath.Ext(source)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
