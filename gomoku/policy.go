package gomoku

import (
	"fmt"
	"time"

	"github.com/zeu5/fights/types"
	"golang.org/x/exp/rand"
)

// GreedyPolicy plays the move that leaves the longest run in some window:
// it completes its own run when it can, blocks an opponent's winning move
// otherwise, and picks randomly among equally good moves.
type GreedyPolicy struct {
	mark         int
	opponent     int
	winCondition int
	kernels      []Board
	src          rand.Source
}

var _ types.Policy[Action, Board] = &GreedyPolicy{}

func NewGreedyPolicy(env *Env, p types.Participant) (*GreedyPolicy, error) {
	return NewSeededGreedyPolicy(env, p, uint64(time.Now().UnixNano()))
}

func NewSeededGreedyPolicy(env *Env, p types.Participant, seed uint64) (*GreedyPolicy, error) {
	mark, ok := env.Mark(p)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParticipant, p.ID)
	}
	return &GreedyPolicy{
		mark:         mark,
		opponent:     3 - mark,
		winCondition: env.WinCondition(),
		kernels:      Kernels(env.WinCondition(), env.board.Shape()),
		src:          rand.NewSource(seed),
	}, nil
}

func (g *GreedyPolicy) Reset() {

}

func (g *GreedyPolicy) UpdateIteration(_ int, _ *types.Trace[Action, Board]) {

}

func (g *GreedyPolicy) Update(_ int, _ Board, _ Action, _ types.Result[Board]) {

}

// score ranks a move: winning beats blocking, blocking beats building
func (g *GreedyPolicy) score(work Board, a Action) int {
	work.Set(a, g.mark)
	own := WindowScore(work, g.mark, g.kernels)
	work.Set(a, g.opponent)
	opp := WindowScore(work, g.opponent, g.kernels)
	work.Set(a, Empty)

	switch {
	case own >= g.winCondition:
		return 4 * g.winCondition
	case opp >= g.winCondition:
		return 3 * g.winCondition
	default:
		return 2*own + opp
	}
}

func (g *GreedyPolicy) NextAction(_ int, state Board, actions []Action) (Action, bool) {
	if len(actions) == 0 {
		return Action{}, false
	}
	work := state.Clone()
	best := -1
	ties := make([]Action, 0)
	for _, a := range actions {
		s := g.score(work, a)
		if s > best {
			best = s
			ties = ties[:0]
		}
		if s == best {
			ties = append(ties, a)
		}
	}
	i, ok := types.PickUniform(len(ties), g.src)
	if !ok {
		return Action{}, false
	}
	return ties[i], true
}
