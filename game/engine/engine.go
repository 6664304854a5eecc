package engine

// Option configures optional rule checks of an Engine
type Option func(*options)

type options struct {
	strictDirections   bool
	startObstacleCheck bool
}

// WithStrictDirections rejects START and ROTATE commands whose direction is
// not one of NORTH, SOUTH, EAST or WEST. Without it such directions are stored
// as-is and make every later MOVE a no-op.
func WithStrictDirections() Option {
	return func(o *options) { o.strictDirections = true }
}

// WithStartObstacleCheck rejects a START on an obstacle cell with
// INVALID_START_POSITION. Without it the start cell is only bounds-checked.
func WithStartObstacleCheck() Option {
	return func(o *options) { o.startObstacleCheck = true }
}

// Engine replays command lists against a single board
type Engine struct {
	board     *Board
	obstacles map[Obstacle]struct{}
	opts      options
	history   []Step
}

// NewEngine creates an engine for the board. The board is not validated;
// use ValidateBoard when it comes from an untrusted source.
func NewEngine(board *Board, opts ...Option) *Engine {
	e := &Engine{
		board:     board,
		obstacles: make(map[Obstacle]struct{}, len(board.Obstacles)),
	}
	for _, o := range board.Obstacles {
		e.obstacles[o] = struct{}{}
	}
	for _, opt := range opts {
		opt(&e.opts)
	}
	return e
}

// Execute replays commands on board and returns the outcome
func Execute(board *Board, commands []Command, opts ...Option) *Result {
	return NewEngine(board, opts...).Run(commands)
}

// Board returns the board the engine plays on
func (e *Engine) Board() *Board {
	return e.board
}

// IsObstacle reports whether (x, y) holds an obstacle
func (e *Engine) IsObstacle(x, y int) bool {
	_, ok := e.obstacles[Obstacle{X: x, Y: y}]
	return ok
}

// RunRaw parses raw command entries and replays them
func (e *Engine) RunRaw(lines []string) *Result {
	return e.Run(ParseCommands(lines))
}

// Run replays commands from a fresh state and stops at the first failure.
// Running the same commands twice gives the same result.
func (e *Engine) Run(commands []Command) *Result {
	e.history = make([]Step, 0, len(commands))
	st := &runState{}

	for i, cmd := range commands {
		step := Step{Index: i, Command: cmd.String(), From: st.snapshot()}
		status := e.apply(st, cmd, &step)
		step.To = st.snapshot()

		if status != statusContinue {
			step.Status = status
			e.history = append(e.history, step)
			return NewErrorResult(status)
		}
		e.history = append(e.history, step)
	}

	// A run that never started is not a success
	if st.pos == nil {
		return NewErrorResult(StatusGenericError)
	}

	return &Result{Status: StatusSuccess, Position: st.snapshot()}
}

// History returns the per-command trace of the last run
func (e *Engine) History() []Step {
	return e.history
}

// LastStep returns the last recorded step, or nil if nothing ran
func (e *Engine) LastStep() *Step {
	if len(e.history) == 0 {
		return nil
	}
	return &e.history[len(e.history)-1]
}

// apply dispatches a single command
func (e *Engine) apply(st *runState, cmd Command, step *Step) Status {
	switch c := cmd.(type) {
	case StartCommand:
		return e.start(st, c)
	case MoveCommand:
		if st.pos == nil {
			return StatusGenericError
		}
		return e.move(st.pos, c.Steps, step)
	case RotateCommand:
		if st.pos == nil {
			return StatusGenericError
		}
		return e.rotate(st.pos, c.Direction)
	case UnknownCommand, MalformedCommand:
		return StatusGenericError
	}
	return StatusGenericError
}
