package types

import (
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// Policy picks actions for one participant
type Policy[A, S any] interface {
	// called at the end of every episode with the complete trace
	UpdateIteration(int, *Trace[A, S])
	// NextAction picks one of the legal actions, false if none should be taken
	NextAction(int, S, []A) (A, bool)
	// Update is called after the chosen action was applied
	Update(int, S, A, Result[S])
	Reset()
}

// RandomPolicy picks uniformly among the legal actions
type RandomPolicy[A, S any] struct {
	src rand.Source
}

func NewRandomPolicy[A, S any]() *RandomPolicy[A, S] {
	return NewSeededRandomPolicy[A, S](uint64(time.Now().UnixNano()))
}

func NewSeededRandomPolicy[A, S any](seed uint64) *RandomPolicy[A, S] {
	return &RandomPolicy[A, S]{
		src: rand.NewSource(seed),
	}
}

func (r *RandomPolicy[A, S]) Reset() {

}

func (r *RandomPolicy[A, S]) UpdateIteration(_ int, _ *Trace[A, S]) {

}

func (r *RandomPolicy[A, S]) NextAction(_ int, _ S, actions []A) (A, bool) {
	var zero A
	if len(actions) == 0 {
		return zero, false
	}
	i, ok := PickUniform(len(actions), r.src)
	if !ok {
		return zero, false
	}
	return actions[i], true
}

func (r *RandomPolicy[A, S]) Update(_ int, _ S, _ A, _ Result[S]) {

}

// PickUniform samples an index in [0, n) with equal weights.
func PickUniform(n int, src rand.Source) (int, bool) {
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1
	}
	return sampleuv.NewWeighted(weights, src).Take()
}

// FixedPolicy replays a scripted list of actions, one per call.
// It stops once the script is exhausted.
type FixedPolicy[A, S any] struct {
	Script []A
	next   int
}

func NewFixedPolicy[A, S any](script ...A) *FixedPolicy[A, S] {
	return &FixedPolicy[A, S]{Script: script}
}

func (f *FixedPolicy[A, S]) Reset() {
	f.next = 0
}

func (f *FixedPolicy[A, S]) UpdateIteration(_ int, _ *Trace[A, S]) {
	f.next = 0
}

func (f *FixedPolicy[A, S]) NextAction(_ int, _ S, _ []A) (A, bool) {
	var zero A
	if f.next >= len(f.Script) {
		return zero, false
	}
	a := f.Script[f.next]
	f.next++
	return a, true
}

func (f *FixedPolicy[A, S]) Update(_ int, _ S, _ A, _ Result[S]) {

}

var _ Policy[int, int] = &RandomPolicy[int, int]{}
var _ Policy[int, int] = &FixedPolicy[int, int]{}
