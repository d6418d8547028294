package gomoku

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/fights/ndarray"
	"github.com/zeu5/fights/types"
)

var (
	alice = types.Participant{ID: "0"}
	bob   = types.Participant{ID: "1"}
)

func newEnv(t *testing.T) *Env {
	t.Helper()
	env, err := New(10, 10, 5, [2]types.Participant{alice, bob})
	require.NoError(t, err)
	return env
}

func play(env *Env, p types.Participant, moves ...Action) types.Result[Board] {
	var res types.Result[Board]
	for _, m := range moves {
		res = env.Step(p, m)
	}
	return res
}

func TestNewValidation(t *testing.T) {
	_, err := New(0, 10, 5, [2]types.Participant{alice, bob})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = New(10, 10, 0, [2]types.Participant{alice, bob})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = New(3, 4, 5, [2]types.Participant{alice, bob})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = New(10, 10, 5, [2]types.Participant{alice, alice})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = New(1<<32, 1<<32, 5, [2]types.Participant{alice, bob})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = New(MaxBoardSize+1, 10, 5, [2]types.Participant{alice, bob})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = New(MaxBoardSize, MaxBoardSize, 5, [2]types.Participant{alice, bob})
	assert.NoError(t, err)

	// only one direction fits but the game is still winnable
	env, err := New(2, 6, 5, [2]types.Participant{alice, bob})
	require.NoError(t, err)
	assert.Len(t, Kernels(5, ndarray.Dims2{2, 6}), 1)
	res := play(env, alice, Action{1, 0}, Action{1, 1}, Action{1, 2}, Action{1, 3}, Action{1, 4})
	assert.True(t, res.Done)
}

func TestReset(t *testing.T) {
	env := newEnv(t)
	play(env, alice, Action{1, 1}, Action{2, 2})

	first := env.Reset()
	second := env.Reset()
	for _, res := range []types.Result[Board]{first, second} {
		assert.False(t, res.Done)
		assert.Equal(t, 0.0, res.Reward)
		assert.Equal(t, Info, res.Info)
		assert.Equal(t, ndarray.Dims2{10, 10}, res.State.Shape())
		assert.Equal(t, 0, res.State.Count(func(v int) bool { return v != Empty }))
	}
	assert.True(t, first.State.Equal(second.State))
	assert.Equal(t, Fresh, env.Phase())
}

func TestStepPlacesMark(t *testing.T) {
	env := newEnv(t)
	res := env.Step(alice, Action{3, 7})
	assert.Equal(t, 1, res.State.At(Action{3, 7}))
	res = env.Step(bob, Action{7, 3})
	assert.Equal(t, 2, res.State.At(Action{7, 3}))
	assert.Equal(t, 1, res.State.At(Action{3, 7}))
	assert.Equal(t, InProgress, env.Phase())
	assert.Equal(t, 2, env.Moves())

	// the result holds a copy of the board
	res.State.Set(Action{0, 0}, 2)
	assert.Equal(t, Empty, env.Board().At(Action{0, 0}))
}

func TestIllegalActionsAreNoOps(t *testing.T) {
	env := newEnv(t)
	env.Step(alice, Action{4, 4})
	before := env.Board()

	illegal := []struct {
		p   types.Participant
		a   Action
		err error
	}{
		{alice, Action{10, 0}, ErrOutOfBounds},
		{alice, Action{0, 10}, ErrOutOfBounds},
		{alice, Action{-1, 0}, ErrOutOfBounds},
		{bob, Action{4, 4}, ErrOccupied},
		{alice, Action{4, 4}, ErrOccupied},
		{types.Participant{ID: "mallory"}, Action{0, 0}, ErrUnknownParticipant},
	}
	for _, c := range illegal {
		assert.ErrorIs(t, env.Validate(c.p, c.a), c.err)
		res := env.Step(c.p, c.a)
		assert.False(t, res.Done)
		assert.True(t, before.Equal(res.State), "action %v changed the board", c.a)
	}
	assert.Equal(t, 1, env.Moves())
}

func TestWinHorizontal(t *testing.T) {
	env := newEnv(t)
	env.Reset()
	res := play(env, alice, Action{0, 0}, Action{1, 0}, Action{2, 0}, Action{3, 0}, Action{4, 0})
	assert.True(t, res.Done)
	winner, ok := env.Winner()
	assert.True(t, ok)
	assert.Equal(t, alice, winner)
}

func TestWinVertical(t *testing.T) {
	env := newEnv(t)
	env.Reset()
	res := play(env, alice, Action{0, 0}, Action{0, 1}, Action{0, 2}, Action{0, 3}, Action{0, 4})
	assert.True(t, res.Done)
}

func TestWinDescendingDiagonal(t *testing.T) {
	env := newEnv(t)
	res := play(env, alice, Action{0, 5}, Action{1, 4}, Action{2, 3}, Action{3, 2}, Action{4, 1})
	assert.True(t, res.Done)
}

func TestWinAscendingDiagonal(t *testing.T) {
	env := newEnv(t)
	res := play(env, alice, Action{4, 0}, Action{3, 1}, Action{2, 2}, Action{1, 3}, Action{0, 4})
	assert.True(t, res.Done)
}

func TestWinMainDiagonal(t *testing.T) {
	env := newEnv(t)
	res := play(env, alice, Action{5, 5}, Action{6, 6}, Action{7, 7}, Action{8, 8})
	assert.False(t, res.Done)
	res = env.Step(alice, Action{9, 9})
	assert.True(t, res.Done)
}

func TestNoFalsePositive(t *testing.T) {
	env := newEnv(t)
	res := play(env, alice, Action{0, 0}, Action{2, 0}, Action{4, 0}, Action{5, 0}, Action{6, 0})
	assert.False(t, res.Done)
	_, ok := env.Winner()
	assert.False(t, ok)
}

func TestFourIsNotEnough(t *testing.T) {
	env := newEnv(t)
	res := play(env, alice, Action{0, 0}, Action{1, 0}, Action{2, 0}, Action{3, 0})
	assert.False(t, res.Done)
	// a mixed run does not count for either player
	res = env.Step(bob, Action{4, 0})
	assert.False(t, res.Done)
}

func TestSecondParticipantWins(t *testing.T) {
	env := newEnv(t)
	for i := 0; i < 4; i++ {
		env.Step(alice, Action{i, 9})
		env.Step(bob, Action{i, 5})
	}
	res := env.Step(bob, Action{4, 5})
	assert.True(t, res.Done)
	winner, ok := env.Winner()
	assert.True(t, ok)
	assert.Equal(t, bob, winner)
}

func TestTerminalGuard(t *testing.T) {
	env := newEnv(t)
	res := play(env, alice, Action{0, 0}, Action{1, 0}, Action{2, 0}, Action{3, 0}, Action{4, 0})
	require.True(t, res.Done)
	assert.Equal(t, Terminal, env.Phase())
	assert.Empty(t, env.LegalActions())

	after := env.Step(bob, Action{9, 9})
	assert.True(t, after.Done)
	assert.Equal(t, Empty, after.State.At(Action{9, 9}))
	assert.True(t, res.State.Equal(after.State))
	assert.ErrorIs(t, env.Validate(bob, Action{9, 9}), ErrGameOver)

	env.Reset()
	assert.False(t, env.Done())
	assert.Len(t, env.LegalActions(), 100)
}

func TestLegalActions(t *testing.T) {
	env, err := New(3, 2, 2, [2]types.Participant{alice, bob})
	require.NoError(t, err)
	assert.Equal(t, []Action{{0, 0}, {0, 1}, {1, 0}, {1, 1}, {2, 0}, {2, 1}}, env.LegalActions())
	env.Step(alice, Action{1, 0})
	assert.Equal(t, []Action{{0, 0}, {0, 1}, {1, 1}, {2, 0}, {2, 1}}, env.LegalActions())
	assert.False(t, env.Full())
}

// longestRun scans in the four directions from every cell.
func longestRun(board Board, mark int) int {
	shape := board.Shape()
	dirs := []Action{{0, 1}, {1, 0}, {1, 1}, {1, -1}}
	best := 0
	for x := 0; x < shape[0]; x++ {
		for y := 0; y < shape[1]; y++ {
			for _, d := range dirs {
				n := 0
				for cx, cy := x, y; cx >= 0 && cx < shape[0] && cy >= 0 && cy < shape[1]; cx, cy = cx+d[0], cy+d[1] {
					if board.At(Action{cx, cy}) != mark {
						break
					}
					n++
				}
				best = max(best, n)
			}
		}
	}
	return best
}

func TestConvolutionMatchesDirectionalScan(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		width, height := 5+r.Intn(6), 5+r.Intn(6)
		win := 3 + r.Intn(3)
		env, err := New(width, height, win, [2]types.Participant{alice, bob})
		require.NoError(t, err)

		board := ndarray.Zeros[int](ndarray.Dims2{width, height})
		for i := 0; i < width*height/2; i++ {
			board.Set(Action{r.Intn(width), r.Intn(height)}, 1+r.Intn(2))
		}
		env.board = board
		got := env.checkWin()

		want := Empty
		for mark := 1; mark <= 2; mark++ {
			if longestRun(board, mark) >= win {
				want = mark
				break
			}
		}
		assert.Equal(t, want, got, "trial %d\n%s", trial, Render(board))
	}
}

func TestRender(t *testing.T) {
	env, err := New(2, 3, 2, [2]types.Participant{alice, bob})
	require.NoError(t, err)
	env.Step(alice, Action{0, 1})
	env.Step(bob, Action{1, 2})
	out := env.Render()
	assert.Contains(t, out, " 0  · ● ·\n")
	assert.Contains(t, out, " 1  · · ◯\n")
	assert.Contains(t, out, "● Player : 0")
	assert.Contains(t, out, "◯ Player : 1")
}
