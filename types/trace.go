package types

import "encoding/json"

// Step is one transition of an episode
type Step[A, S any] struct {
	Participant Participant `json:"participant"`
	// State observed before the action
	State  S         `json:"state"`
	Action A         `json:"action"`
	Result Result[S] `json:"result"`
}

// Trace of an episode as a sequence of steps
type Trace[A, S any] struct {
	steps []Step[A, S]
}

func NewTrace[A, S any]() *Trace[A, S] {
	return &Trace[A, S]{
		steps: make([]Step[A, S], 0),
	}
}

func (t *Trace[A, S]) Append(p Participant, state S, action A, result Result[S]) {
	t.steps = append(t.steps, Step[A, S]{
		Participant: p,
		State:       state,
		Action:      action,
		Result:      result,
	})
}

func (t *Trace[A, S]) Len() int {
	return len(t.steps)
}

func (t *Trace[A, S]) Get(i int) (Step[A, S], bool) {
	if i < 0 || i >= len(t.steps) {
		return Step[A, S]{}, false
	}
	return t.steps[i], true
}

func (t *Trace[A, S]) Last() (Step[A, S], bool) {
	return t.Get(len(t.steps) - 1)
}

func (t *Trace[A, S]) Slice(from, to int) *Trace[A, S] {
	slicedTrace := NewTrace[A, S]()
	for i := from; i < to && i < len(t.steps); i++ {
		slicedTrace.steps = append(slicedTrace.steps, t.steps[i])
	}
	return slicedTrace
}

func (t *Trace[A, S]) GetPrefix(i int) (*Trace[A, S], bool) {
	if i > len(t.steps) {
		return nil, false
	}
	return &Trace[A, S]{
		steps: t.steps[0:i],
	}, true
}

// Steps returns the recorded steps, the slice must not be modified
func (t *Trace[A, S]) Steps() []Step[A, S] {
	return t.steps
}

func (t *Trace[A, S]) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.steps)
}

func (t *Trace[A, S]) UnmarshalJSON(b []byte) error {
	steps := make([]Step[A, S], 0)
	if err := json.Unmarshal(b, &steps); err != nil {
		return err
	}
	t.steps = steps
	return nil
}
