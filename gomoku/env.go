// Package gomoku is a two-player five-in-a-row environment.
//
// The board is a width x height matrix indexed board[x, y]. Empty cells hold
// 0; a cell taken by the k-th participant holds k. Wins are detected by
// convolving each participant's occupancy mask with four line kernels.
package gomoku

import (
	"errors"
	"fmt"

	"github.com/zeu5/fights/ndarray"
	"github.com/zeu5/fights/types"
)

// Info is reported in every result
const Info = "Gomoku v0"

// Empty marks a free cell
const Empty = 0

// MaxBoardSize bounds both sides of the board
const MaxBoardSize = 256

// Action is the (x, y) coordinate to place a stone on
type Action = [2]int

// Board is the state observed by participants
type Board = *ndarray.NDArray[int, ndarray.Dims2]

var (
	ErrOutOfBounds        = errors.New("gomoku: action out of bounds")
	ErrOccupied           = errors.New("gomoku: cell already occupied")
	ErrUnknownParticipant = errors.New("gomoku: unknown participant")
	ErrGameOver           = errors.New("gomoku: game is over")
	ErrInvalidConfig      = errors.New("gomoku: invalid configuration")
)

// Phase of the game
type Phase int

const (
	Fresh Phase = iota
	InProgress
	Terminal
)

func (p Phase) String() string {
	switch p {
	case Fresh:
		return "fresh"
	case InProgress:
		return "in_progress"
	case Terminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Env is a Gomoku game between exactly two participants.
// It is not safe for concurrent use.
type Env struct {
	width        int
	height       int
	winCondition int
	participants [2]types.Participant

	board   Board
	kernels []Board
	winner  int
	moves   int
}

var _ types.Gym[Action, Board] = &Env{}

// New creates a game on a width x height board where winCondition stones in
// a row win. participants[0] plays mark 1 and participants[1] mark 2.
func New(width, height, winCondition int, participants [2]types.Participant) (*Env, error) {
	if width <= 0 || height <= 0 || width > MaxBoardSize || height > MaxBoardSize {
		return nil, fmt.Errorf("%w: board %dx%d, sides must be within [1, %d]", ErrInvalidConfig, width, height, MaxBoardSize)
	}
	if winCondition <= 0 || winCondition > max(width, height) {
		return nil, fmt.Errorf("%w: win condition %d on a %dx%d board", ErrInvalidConfig, winCondition, width, height)
	}
	if participants[0] == participants[1] {
		return nil, fmt.Errorf("%w: participants must be distinct, got %q twice", ErrInvalidConfig, participants[0].ID)
	}
	e := &Env{
		width:        width,
		height:       height,
		winCondition: winCondition,
		participants: participants,
		kernels:      Kernels(winCondition, ndarray.Dims2{width, height}),
	}
	e.Reset()
	return e, nil
}

// Kernels returns the line kernels of length n that fit a board of the
// given shape: ones [1, n], ones [n, 1], the identity and its mirror.
// A kernel that does not fit stands for a direction where no run of n
// stones exists.
func Kernels(n int, board ndarray.Dims2) []Board {
	candidates := []Board{
		ndarray.Ones[int](ndarray.Dims2{1, n}),
		ndarray.Ones[int](ndarray.Dims2{n, 1}),
		ndarray.Identity[int](n),
		ndarray.FlipLR(ndarray.Identity[int](n)),
	}
	kernels := make([]Board, 0, len(candidates))
	for _, k := range candidates {
		if _, err := ndarray.ConvShape(board, k.Shape()); err == nil {
			kernels = append(kernels, k)
		}
	}
	return kernels
}

func (e *Env) Width() int {
	return e.width
}

func (e *Env) Height() int {
	return e.height
}

func (e *Env) WinCondition() int {
	return e.winCondition
}

func (e *Env) Participants() [2]types.Participant {
	return e.participants
}

// Mark returns the integer the participant's stones are recorded with
func (e *Env) Mark(p types.Participant) (int, bool) {
	for i, q := range e.participants {
		if q == p {
			return i + 1, true
		}
	}
	return Empty, false
}

// Reset clears the board and returns to the Fresh phase
func (e *Env) Reset() types.Result[Board] {
	e.board = ndarray.Zeros[int](ndarray.Dims2{e.width, e.height})
	e.winner = Empty
	e.moves = 0
	return e.result()
}

// Validate reports why an action would be ignored by Step, or nil if it is legal
func (e *Env) Validate(p types.Participant, a Action) error {
	if _, ok := e.Mark(p); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParticipant, p.ID)
	}
	if e.winner != Empty {
		return ErrGameOver
	}
	x, y := a[0], a[1]
	if x < 0 || x >= e.width || y < 0 || y >= e.height {
		return fmt.Errorf("%w: (%d, %d) on a %dx%d board", ErrOutOfBounds, x, y, e.width, e.height)
	}
	if e.board.At(a) != Empty {
		return fmt.Errorf("%w: (%d, %d)", ErrOccupied, x, y)
	}
	return nil
}

// Step places the participant's stone at a if the move is legal.
// Illegal moves, including any move after the game ended, leave the board
// untouched; the returned result then reflects the unchanged state.
func (e *Env) Step(p types.Participant, a Action) types.Result[Board] {
	if err := e.Validate(p, a); err == nil {
		mark, _ := e.Mark(p)
		e.board.Set(a, mark)
		e.moves += 1
		e.winner = e.checkWin()
	}
	return e.result()
}

func (e *Env) result() types.Result[Board] {
	return types.Result[Board]{
		State:  e.board.Clone(),
		Reward: 0,
		Done:   e.winner != Empty,
		Info:   Info,
	}
}

// checkWin returns the mark of a participant with a run of at least
// winCondition stones, or Empty. Every participant is checked against
// every kernel before concluding there is no winner.
func (e *Env) checkWin() int {
	for mark := 1; mark <= len(e.participants); mark++ {
		if WindowScore(e.board, mark, e.kernels) >= e.winCondition {
			return mark
		}
	}
	return Empty
}

// Mask returns a same-shape board holding 1 where board holds mark
func Mask(board Board, mark int) Board {
	return board.Map(func(v int) int {
		if v == mark {
			return 1
		}
		return 0
	})
}

// WindowScore is the largest number of mark stones found in any window
// covered by one of the kernels. A score equal to the kernel length is a
// complete run.
func WindowScore(board Board, mark int, kernels []Board) int {
	mask := Mask(board, mark)
	best := 0
	for _, k := range kernels {
		conv, err := ndarray.Conv2D(mask, k)
		if err != nil {
			continue
		}
		best = max(best, conv.Max())
	}
	return best
}

// Winner returns the participant that completed a run, if any
func (e *Env) Winner() (types.Participant, bool) {
	if e.winner == Empty {
		return types.Participant{}, false
	}
	return e.participants[e.winner-1], true
}

func (e *Env) Phase() Phase {
	switch {
	case e.winner != Empty:
		return Terminal
	case e.moves == 0:
		return Fresh
	default:
		return InProgress
	}
}

func (e *Env) Done() bool {
	return e.winner != Empty
}

// Moves is the number of stones on the board
func (e *Env) Moves() int {
	return e.moves
}

// Full reports a board without empty cells
func (e *Env) Full() bool {
	return e.moves == e.width*e.height
}

// Board returns a copy of the current board
func (e *Env) Board() Board {
	return e.board.Clone()
}

// LegalActions lists the empty cells in row-major order, or nothing once
// the game is over
func (e *Env) LegalActions() []Action {
	if e.winner != Empty {
		return []Action{}
	}
	actions := make([]Action, 0, e.width*e.height-e.moves)
	for idx, v := range e.board.All() {
		if v == Empty {
			actions = append(actions, idx)
		}
	}
	return actions
}
