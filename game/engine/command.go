package engine

import "fmt"

// Command keywords
const (
	KeywordStart  = "START"
	KeywordMove   = "MOVE"
	KeywordRotate = "ROTATE"
)

// Command is a single parsed instruction. The set of implementations is
// closed: StartCommand, MoveCommand, RotateCommand, UnknownCommand and
// MalformedCommand.
type Command interface {
	fmt.Stringer
	command()
}

// StartCommand places the knight on the board
type StartCommand struct {
	X         int
	Y         int
	Direction Direction
}

// MoveCommand advances the knight up to Steps cells
type MoveCommand struct {
	Steps int
}

// RotateCommand changes the facing direction without moving
type RotateCommand struct {
	Direction Direction
}

// UnknownCommand carries an entry whose keyword is not recognized
type UnknownCommand struct {
	Keyword string
	Arg     string
}

// MalformedCommand carries an entry with a known keyword whose argument
// could not be parsed. It is rejected when executed.
type MalformedCommand struct {
	Raw     string
	Keyword string
	Err     error
}

func (StartCommand) command()     {}
func (MoveCommand) command()      {}
func (RotateCommand) command()    {}
func (UnknownCommand) command()   {}
func (MalformedCommand) command() {}

func (c StartCommand) String() string {
	return fmt.Sprintf("%s %d,%d,%s", KeywordStart, c.X, c.Y, c.Direction)
}

func (c MoveCommand) String() string {
	return fmt.Sprintf("%s %d", KeywordMove, c.Steps)
}

func (c RotateCommand) String() string {
	return fmt.Sprintf("%s %s", KeywordRotate, c.Direction)
}

func (c UnknownCommand) String() string {
	if c.Arg == "" {
		return c.Keyword
	}
	return c.Keyword + " " + c.Arg
}

func (c MalformedCommand) String() string {
	return c.Raw
}
