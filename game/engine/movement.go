package engine

// statusContinue means the command was applied and the run goes on
const statusContinue Status = ""

// runState holds the knight for a single run. pos is nil until START.
type runState struct {
	pos *Position
}

func (st *runState) snapshot() *Position {
	if st.pos == nil {
		return nil
	}
	p := *st.pos
	return &p
}

// start places the knight
func (e *Engine) start(st *runState, c StartCommand) Status {
	if st.pos != nil {
		return StatusGenericError
	}
	if e.opts.strictDirections && !c.Direction.Valid() {
		return StatusGenericError
	}
	if !e.board.InBounds(c.X, c.Y) {
		return StatusInvalidStartPosition
	}
	if e.opts.startObstacleCheck && e.IsObstacle(c.X, c.Y) {
		return StatusInvalidStartPosition
	}

	st.pos = &Position{X: c.X, Y: c.Y, Direction: c.Direction}
	return statusContinue
}

// move advances pos one cell at a time. Leaving the board fails the run
// without committing any step; an obstacle ends the move at the last free cell.
func (e *Engine) move(pos *Position, steps int, step *Step) Status {
	dx, dy := pos.Direction.Delta()
	if dx == 0 && dy == 0 {
		return statusContinue
	}
	x, y := pos.X, pos.Y

	for i := 0; i < steps; i++ {
		nextX, nextY := x+dx, y+dy

		if !e.board.InBounds(nextX, nextY) {
			return StatusOutOfTheBoard
		}
		if e.IsObstacle(nextX, nextY) {
			step.Blocked = true
			break
		}
		x, y = nextX, nextY
	}

	pos.X, pos.Y = x, y
	return statusContinue
}

// rotate sets the facing direction in place
func (e *Engine) rotate(pos *Position, direction Direction) Status {
	if e.opts.strictDirections && !direction.Valid() {
		return StatusGenericError
	}
	pos.Direction = direction
	return statusContinue
}
