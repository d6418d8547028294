package othello

import (
	"fmt"
	"time"

	"github.com/zeu5/fights/types"
	"golang.org/x/exp/rand"
)

// GreedyPolicy plays the move that flips the most stones, picking
// randomly among equally good moves
type GreedyPolicy struct {
	index int
	src   rand.Source
}

var _ types.Policy[Action, State] = &GreedyPolicy{}

func NewGreedyPolicy(env *Env, p types.Participant) (*GreedyPolicy, error) {
	return NewSeededGreedyPolicy(env, p, uint64(time.Now().UnixNano()))
}

func NewSeededGreedyPolicy(env *Env, p types.Participant, seed uint64) (*GreedyPolicy, error) {
	k, ok := env.index(p)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParticipant, p.ID)
	}
	return &GreedyPolicy{
		index: k,
		src:   rand.NewSource(seed),
	}, nil
}

func (g *GreedyPolicy) Reset() {

}

func (g *GreedyPolicy) UpdateIteration(_ int, _ *types.Trace[Action, State]) {

}

func (g *GreedyPolicy) Update(_ int, _ State, _ Action, _ types.Result[State]) {

}

func (g *GreedyPolicy) NextAction(_ int, state State, actions []Action) (Action, bool) {
	if len(actions) == 0 {
		return Action{}, false
	}
	best := -1
	ties := make([]Action, 0)
	for _, a := range actions {
		s := 0
		if a != Pass {
			s = len(Flips(state.Board, g.index, a))
		}
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
