package types

import (
	"time"

	"golang.org/x/exp/rand"
)

// BonusConfig parameters of the BonusPolicy
type BonusConfig struct {
	Alpha    float64
	Discount float64
	// Epsilon is the probability of a uniformly random action
	Epsilon float64
	// Max bootstraps with max(bonus, discounted next value) instead of
	// their sum
	Max  bool
	Seed uint64
}

// BonusPolicy explores: every (state, action) pair is rewarded with
// 1/visits so the policy is driven to states it has seen least. Values are
// learnt backwards over the participant's own steps at the end of every
// episode.
type BonusPolicy[A, S any] struct {
	participant Participant
	config      BonusConfig
	hashState   func(S) string
	hashAction  func(A) string

	qTable *QTable
	visits *QTable
	rand   *rand.Rand
}

var _ Policy[int, int] = &BonusPolicy[int, int]{}

func NewBonusPolicy[A, S any](p Participant, config BonusConfig, hashState func(S) string, hashAction func(A) string) *BonusPolicy[A, S] {
	seed := config.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &BonusPolicy[A, S]{
		participant: p,
		config:      config,
		hashState:   hashState,
		hashAction:  hashAction,
		qTable:      NewQTable(),
		visits:      NewQTable(),
		rand:        rand.New(rand.NewSource(seed)),
	}
}

func (b *BonusPolicy[A, S]) Reset() {
	b.qTable = NewQTable()
	b.visits = NewQTable()
}

// Visits of the action in the state
func (b *BonusPolicy[A, S]) Visits(state S, action A) int {
	return int(b.visits.Get(b.hashState(state), b.hashAction(action), 0))
}

func (b *BonusPolicy[A, S]) NextAction(_ int, state S, actions []A) (A, bool) {
	var zero A
	if len(actions) == 0 {
		return zero, false
	}
	if b.rand.Float64() < b.config.Epsilon {
		return actions[b.rand.Intn(len(actions))], true
	}

	actionsMap := make(map[string]A)
	availableActions := make([]string, len(actions))
	for i, a := range actions {
		aHash := b.hashAction(a)
		actionsMap[aHash] = a
		availableActions[i] = aHash
	}
	maxAction, _ := b.qTable.MaxAmong(b.hashState(state), availableActions, 1)
	return actionsMap[maxAction], true
}

func (b *BonusPolicy[A, S]) Update(_ int, _ S, _ A, _ Result[S]) {

}

func (b *BonusPolicy[A, S]) update(state, action, nextState string, last bool) {
	t := b.visits.Get(state, action, 0) + 1
	b.visits.Set(state, action, t)

	nextStateVal := 0.0
	// no bootstrapping past the participant's final move
	if !last {
		_, nextStateVal = b.qTable.Max(nextState, 1)
	}
	curVal := b.qTable.Get(state, action, 1)

	var newVal float64
	if b.config.Max {
		newVal = (1-b.config.Alpha)*curVal + b.config.Alpha*max(1/t, b.config.Discount*nextStateVal)
	} else {
		newVal = (1-b.config.Alpha)*curVal + b.config.Alpha*(1/t+b.config.Discount*nextStateVal)
	}
	b.qTable.Set(state, action, newVal)
}

// UpdateIteration walks the participant's own steps backwards. The next
// state of a step is the state at the participant's following turn.
func (b *BonusPolicy[A, S]) UpdateIteration(_ int, trace *Trace[A, S]) {
	own := make([]Step[A, S], 0, trace.Len())
	for _, step := range trace.Steps() {
		if step.Participant == b.participant {
			own = append(own, step)
		}
	}
	for i := len(own) - 1; i >= 0; i-- {
		last := i == len(own)-1
		next := ""
		if !last {
			next = b.hashState(own[i+1].State)
		}
		b.update(b.hashState(own[i].State), b.hashAction(own[i].Action), next, last)
	}
}
