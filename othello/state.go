// Package othello is a two-player Reversi environment.
//
// Coordinates are (r, c) with (0, 0) the top left corner. Boards are
// stacks of two planes of shape [2, size, size]: plane k is one-hot for
// the k-th participant, the first of which plays black and moves first.
package othello

import (
	"strings"

	"github.com/zeu5/fights/ndarray"
)

// Board holds one plane per participant
type Board = *ndarray.NDArray[int, ndarray.Dims3]

// State is the observation of both participants
type State struct {
	// Board plane k holds the stones of participant k
	Board Board `json:"board"`
	// LegalActions plane k marks the cells participant k may play
	LegalActions Board `json:"legal_actions"`
	// Reward is +1 for the winner and -1 for the loser once Done, 0 otherwise
	Reward [2]int `json:"reward"`
	Done   bool   `json:"done"`
}

func (s State) Clone() State {
	return State{
		Board:        s.Board.Clone(),
		LegalActions: s.LegalActions.Clone(),
		Reward:       s.Reward,
		Done:         s.Done,
	}
}

func (s State) Equal(other State) bool {
	return s.Board.Equal(other.Board) &&
		s.LegalActions.Equal(other.LegalActions) &&
		s.Reward == other.Reward &&
		s.Done == other.Done
}

// Size is the side of the board
func (s State) Size() int {
	return s.Board.Shape()[1]
}

// Count returns the number of stones of the k-th participant
func (s State) Count(k int) int {
	n := 0
	size := s.Size()
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			n += s.Board.At(ndarray.Dims3{k, r, c})
		}
	}
	return n
}

// Perspective returns the board as seen by the k-th participant: plane 0
// holds its own stones, plane 1 the opponent's. The second participant
// sees the board rotated by 180 degrees.
func (s State) Perspective(k int) Board {
	if k == 0 {
		return s.Board.Clone()
	}
	size := s.Size()
	out := ndarray.Zeros[int](s.Board.Shape())
	for ch := 0; ch < 2; ch++ {
		for r := 0; r < size; r++ {
			for c := 0; c < size; c++ {
				out.Set(ndarray.Dims3{ch, r, c}, s.Board.At(ndarray.Dims3{1 - ch, size - 1 - r, size - 1 - c}))
			}
		}
	}
	return out
}

// String draws the board with box drawing characters, □ for the first
// participant and ■ for the second
func (s State) String() string {
	size := s.Size()
	b := new(strings.Builder)
	b.WriteString("┌" + strings.Repeat("───┬", size-1) + "───┐\n")
	for r := 0; r < size; r++ {
		b.WriteString("│")
		for c := 0; c < size; c++ {
			switch {
			case s.Board.At(ndarray.Dims3{0, r, c}) == 1:
				b.WriteString(" □ ")
			case s.Board.At(ndarray.Dims3{1, r, c}) == 1:
				b.WriteString(" ■ ")
			default:
				b.WriteString("   ")
			}
			b.WriteString("│")
		}
		b.WriteString("\n")
		if r == size-1 {
			b.WriteString("└" + strings.Repeat("───┴", size-1) + "───┘\n")
		} else {
			b.WriteString("├" + strings.Repeat("───┼", size-1) + "───┤\n")
		}
	}
	return b.String()
}

// Hash encodes the stones with one character per cell: 0 empty, 1 for the
// first participant and 2 for the second
func Hash(s State) string {
	size := s.Size()
	out := make([]byte, 0, size*size)
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			v := byte('0')
			if s.Board.At(ndarray.Dims3{0, r, c}) == 1 {
				v = '1'
			} else if s.Board.At(ndarray.Dims3{1, r, c}) == 1 {
				v = '2'
			}
			out = append(out, v)
		}
	}
	return string(out)
}
