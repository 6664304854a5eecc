package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	ErrEmptyCommand    = errors.New("empty command")
	ErrMissingArgument = errors.New("missing argument")
	ErrExtraArguments  = errors.New("unexpected extra arguments")
)

// startPayload is the "x,y,DIRECTION" argument of START
type startPayload struct {
	X         string `parser:"@Int ','"`
	Y         string `parser:"@Int ','"`
	Direction string `parser:"@Ident"`
}

var payloadLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[-+]?\d+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `,`},
})

var startParser = participle.MustBuild[startPayload](
	participle.Lexer(payloadLexer),
)

// ParseCommand converts a raw "<KEYWORD> <ARG>" entry into a Command.
// It never fails: unrecognized keywords become UnknownCommand and entries
// with an unusable argument become MalformedCommand.
func ParseCommand(raw string) Command {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return MalformedCommand{Raw: raw, Err: ErrEmptyCommand}
	}

	keyword := fields[0]
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch keyword {
	case KeywordStart, KeywordMove, KeywordRotate:
	default:
		return UnknownCommand{Keyword: keyword, Arg: strings.Join(fields[1:], " ")}
	}

	malformed := func(err error) Command {
		return MalformedCommand{Raw: raw, Keyword: keyword, Err: err}
	}
	if arg == "" {
		return malformed(ErrMissingArgument)
	}
	if len(fields) > 2 {
		return malformed(ErrExtraArguments)
	}

	switch keyword {
	case KeywordStart:
		payload, err := startParser.ParseString(raw, arg)
		if err != nil {
			return malformed(fmt.Errorf("start payload %q: %w", arg, err))
		}
		x, err := strconv.Atoi(payload.X)
		if err != nil {
			return malformed(fmt.Errorf("start x %q: %w", payload.X, err))
		}
		y, err := strconv.Atoi(payload.Y)
		if err != nil {
			return malformed(fmt.Errorf("start y %q: %w", payload.Y, err))
		}
		return StartCommand{X: x, Y: y, Direction: Direction(payload.Direction)}

	case KeywordMove:
		// direction and compound payloads carry no step count
		if Direction(arg).Valid() || strings.Contains(arg, ",") {
			return MoveCommand{Steps: 0}
		}
		steps, err := strconv.Atoi(arg)
		if err != nil {
			return malformed(fmt.Errorf("move steps %q: %w", arg, err))
		}
		return MoveCommand{Steps: steps}

	default:
		return RotateCommand{Direction: Direction(arg)}
	}
}

// ParseCommands parses every raw entry, preserving order
func ParseCommands(raw []string) []Command {
	commands := make([]Command, 0, len(raw))
	for _, entry := range raw {
		commands = append(commands, ParseCommand(entry))
	}
	return commands
}
