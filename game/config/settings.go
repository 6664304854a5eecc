package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Default document locations used by the run command
const (
	DefaultBoardURL    = "https://storage.googleapis.com/jobrapido-backend-test/board.json"
	DefaultCommandsURL = "https://storage.googleapis.com/jobrapido-backend-test/commands.json"
)

// Settings holds process configuration read from the environment
type Settings struct {
	BoardURL     string        `env:"KNIGHT_BOARD_URL" envDefault:"https://storage.googleapis.com/jobrapido-backend-test/board.json"`
	CommandsURL  string        `env:"KNIGHT_COMMANDS_URL" envDefault:"https://storage.googleapis.com/jobrapido-backend-test/commands.json"`
	BoardsDir    string        `env:"BOARDS_DIR" envDefault:"boards"`
	RunsDir      string        `env:"RUNS_DIR" envDefault:"runs"`
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"10s"`
	Host         string        `env:"HOST" envDefault:"localhost"`
	Port         int           `env:"PORT" envDefault:"8080"`

	NgrokEnabled   bool   `env:"NGROK_ENABLED"`
	NgrokAuthToken string `env:"NGROK_AUTHTOKEN"`
	NgrokDomain    string `env:"NGROK_DOMAIN"`
}

// LoadSettings parses Settings from the environment
func LoadSettings() (*Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if s.Port <= 0 || s.Port > 65535 {
		return nil, fmt.Errorf("invalid PORT %d", s.Port)
	}
	return &s, nil
}
