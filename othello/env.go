package othello

import (
	"errors"
	"fmt"

	"github.com/zeu5/fights/ndarray"
	"github.com/zeu5/fights/types"
)

// Info is reported in every result
const Info = "Othello v0"

const (
	DefaultSize = 8
	MinSize     = 4
	MaxSize     = 64
)

// Action is the (r, c) cell to place a stone on, or Pass
type Action = [2]int

// Pass is the only legal action of a participant that cannot place a stone
var Pass = Action{-1, -1}

var (
	ErrInvalidConfig      = errors.New("othello: invalid configuration")
	ErrUnknownParticipant = errors.New("othello: unknown participant")
	ErrGameOver           = errors.New("othello: game is over")
	ErrNotYourTurn        = errors.New("othello: not your turn")
	ErrIllegalMove        = errors.New("othello: move flips no stones")
	ErrCannotPass         = errors.New("othello: pass while a move is available")
)

var directions = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Env is an Othello game between exactly two participants. Participants
// must alternate; a participant without a legal placement passes.
// It is not safe for concurrent use.
type Env struct {
	size         int
	participants [2]types.Participant

	state State
	turn  int
	moves int
}

var _ types.Gym[Action, State] = &Env{}
var _ types.Judge = &Env{}

// New creates a game on a size x size board, size must be even
func New(size int, participants [2]types.Participant) (*Env, error) {
	if size < MinSize || size > MaxSize || size%2 == 1 {
		return nil, fmt.Errorf("%w: board size %d must be even and within [%d, %d]", ErrInvalidConfig, size, MinSize, MaxSize)
	}
	if participants[0] == participants[1] {
		return nil, fmt.Errorf("%w: participants must be distinct, got %q twice", ErrInvalidConfig, participants[0].ID)
	}
	e := &Env{
		size:         size,
		participants: participants,
	}
	e.Reset()
	return e, nil
}

// InitialState is the opening position: two stones of each participant
// crossed in the center
func InitialState(size int) State {
	board := ndarray.Zeros[int](ndarray.Dims3{2, size, size})
	m := size / 2
	board.Set(ndarray.Dims3{0, m - 1, m}, 1)
	board.Set(ndarray.Dims3{0, m, m - 1}, 1)
	board.Set(ndarray.Dims3{1, m - 1, m - 1}, 1)
	board.Set(ndarray.Dims3{1, m, m}, 1)
	s := State{Board: board}
	s.LegalActions = legalMask(board)
	return s
}

func (e *Env) Size() int {
	return e.size
}

func (e *Env) Participants() [2]types.Participant {
	return e.participants
}

func (e *Env) index(p types.Participant) (int, bool) {
	for i, q := range e.participants {
		if q == p {
			return i, true
		}
	}
	return -1, false
}

// Turn is the participant expected to act next
func (e *Env) Turn() types.Participant {
	return e.participants[e.turn]
}

func (e *Env) Done() bool {
	return e.state.Done
}

// State returns a copy of the current state
func (e *Env) State() State {
	return e.state.Clone()
}

// Moves is the number of stones placed since the opening position
func (e *Env) Moves() int {
	return e.moves
}

func (e *Env) Reset() types.Result[State] {
	e.state = InitialState(e.size)
	e.turn = 0
	e.moves = 0
	return e.result(-1)
}

// Validate reports why Step would ignore the action, or nil if it is legal
func (e *Env) Validate(p types.Participant, a Action) error {
	k, ok := e.index(p)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParticipant, p.ID)
	}
	if e.state.Done {
		return ErrGameOver
	}
	if k != e.turn {
		return fmt.Errorf("%w: %q to move", ErrNotYourTurn, e.participants[e.turn].ID)
	}
	if a == Pass {
		if hasMove(e.state.LegalActions, k) {
			return ErrCannotPass
		}
		return nil
	}
	r, c := a[0], a[1]
	if r < 0 || r >= e.size || c < 0 || c >= e.size || e.state.LegalActions.At(ndarray.Dims3{k, r, c}) != 1 {
		return fmt.Errorf("%w: (%d, %d)", ErrIllegalMove, r, c)
	}
	return nil
}

// Step places the participant's stone and flips every enclosed line of
// opponent stones. Illegal actions leave the state untouched. The reward
// of the result is the acting participant's.
func (e *Env) Step(p types.Participant, a Action) types.Result[State] {
	k, _ := e.index(p)
	if err := e.Validate(p, a); err != nil {
		return e.result(k)
	}
	if a != Pass {
		for _, cell := range Flips(e.state.Board, k, a) {
			e.state.Board.Set(ndarray.Dims3{1 - k, cell[0], cell[1]}, 0)
			e.state.Board.Set(ndarray.Dims3{k, cell[0], cell[1]}, 1)
		}
		e.state.Board.Set(ndarray.Dims3{k, a[0], a[1]}, 1)
		e.moves += 1
	}
	e.state.LegalActions = legalMask(e.state.Board)
	e.turn = 1 - e.turn
	if !hasMove(e.state.LegalActions, 0) && !hasMove(e.state.LegalActions, 1) {
		e.state.Done = true
		e.state.Reward = scores(e.state)
	}
	return e.result(k)
}

func (e *Env) result(k int) types.Result[State] {
	reward := 0.0
	if k >= 0 {
		reward = float64(e.state.Reward[k])
	}
	return types.Result[State]{
		State:  e.state.Clone(),
		Reward: reward,
		Done:   e.state.Done,
		Info:   Info,
	}
}

// Winner returns the participant holding more stones once the game is over
func (e *Env) Winner() (types.Participant, bool) {
	if !e.state.Done {
		return types.Participant{}, false
	}
	for k, r := range e.state.Reward {
		if r > 0 {
			return e.participants[k], true
		}
	}
	return types.Participant{}, false
}

// LegalActions lists the placements of the participant to move in
// row-major order, Pass when it has none, or nothing once the game is over
func (e *Env) LegalActions() []Action {
	if e.state.Done {
		return []Action{}
	}
	actions := make([]Action, 0)
	for r := 0; r < e.size; r++ {
		for c := 0; c < e.size; c++ {
			if e.state.LegalActions.At(ndarray.Dims3{e.turn, r, c}) == 1 {
				actions = append(actions, Action{r, c})
			}
		}
	}
	if len(actions) == 0 {
		return []Action{Pass}
	}
	return actions
}

// Flips returns the opponent stones that turn over when the k-th
// participant plays a. It is empty for occupied cells.
func Flips(board Board, k int, a Action) []Action {
	size := board.Shape()[1]
	r, c := a[0], a[1]
	if board.At(ndarray.Dims3{0, r, c}) == 1 || board.At(ndarray.Dims3{1, r, c}) == 1 {
		return nil
	}
	inside := func(r, c int) bool {
		return r >= 0 && r < size && c >= 0 && c < size
	}
	flips := make([]Action, 0)
	for _, d := range directions {
		run := make([]Action, 0)
		rr, cc := r+d[0], c+d[1]
		for inside(rr, cc) && board.At(ndarray.Dims3{1 - k, rr, cc}) == 1 {
			run = append(run, Action{rr, cc})
			rr, cc = rr+d[0], cc+d[1]
		}
		if len(run) > 0 && inside(rr, cc) && board.At(ndarray.Dims3{k, rr, cc}) == 1 {
			flips = append(flips, run...)
		}
	}
	return flips
}

func legalMask(board Board) Board {
	size := board.Shape()[1]
	mask := ndarray.Zeros[int](board.Shape())
	for k := 0; k < 2; k++ {
		for r := 0; r < size; r++ {
			for c := 0; c < size; c++ {
				if len(Flips(board, k, Action{r, c})) > 0 {
					mask.Set(ndarray.Dims3{k, r, c}, 1)
				}
			}
		}
	}
	return mask
}

func hasMove(mask Board, k int) bool {
	size := mask.Shape()[1]
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			if mask.At(ndarray.Dims3{k, r, c}) == 1 {
				return true
			}
		}
	}
	return false
}

func scores(s State) [2]int {
	black, white := s.Count(0), s.Count(1)
	switch {
	case black > white:
		return [2]int{1, -1}
	case black < white:
		return [2]int{-1, 1}
	default:
		return [2]int{0, 0}
	}
}
