package types

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQTable(t *testing.T) {
	q := NewQTable()
	assert.False(t, q.HasState("s"))
	a, v := q.Max("s", 7)
	assert.Equal(t, "", a)
	assert.Equal(t, 7.0, v)

	assert.Equal(t, 1.0, q.Get("s", "a", 1))
	q.Set("s", "a", 3)
	q.Set("s", "b", 5)
	assert.Equal(t, 3.0, q.Get("s", "a", 1))
	a, v = q.Max("s", 0)
	assert.Equal(t, "b", a)
	assert.Equal(t, 5.0, v)

	a, v = q.MaxAmong("s", []string{"a", "c"}, 4)
	assert.Equal(t, "c", a)
	assert.Equal(t, 4.0, v)
	assert.Equal(t, 1, q.States())
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

func TestBonusPolicyPrefersUnvisited(t *testing.T) {
	b := NewBonusPolicy[int, int](p0, BonusConfig{Alpha: 0.5, Discount: 0.9, Max: true, Seed: 1}, itoa, itoa)

	trace := NewTrace[int, int]()
	trace.Append(p0, 0, 1, Result[int]{State: 1})
	trace.Append(p1, 1, 1, Result[int]{State: 2})
	trace.Append(p0, 2, 1, Result[int]{State: 3})
	b.UpdateIteration(0, trace)
	b.UpdateIteration(1, trace)

	assert.Equal(t, 2, b.Visits(0, 1))
	assert.Equal(t, 2, b.Visits(2, 1))
	// the opponent's step is not learnt from
	assert.Equal(t, 0, b.Visits(1, 1))

	// (0, 1) was visited and its value dropped below the default of 1
	a, ok := b.NextAction(0, 0, []int{1, 2})
	require.True(t, ok)
	assert.Equal(t, 2, a)

	b.Reset()
	assert.Equal(t, 0, b.Visits(0, 1))
	_, ok = b.NextAction(0, 0, nil)
	assert.False(t, ok)
}

func TestBonusPolicyCoversMoreStates(t *testing.T) {
	run := func(first Policy[int, int]) []int {
		env := newRaceEnv(12)
		agent, err := NewAgent(raceConfig(env, 30, 20, first, NewFixedPolicy[int, int](1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1)))
		require.NoError(t, err)
		episodes, err := agent.Run(context.Background())
		require.NoError(t, err)
		coverage := CoverageAnalyzer[int, int](itoa)()
		for _, e := range episodes {
			coverage.Analyze(e)
		}
		return coverage.DataSet().([]int)
	}

	fixed := run(NewFixedPolicy[int, int](2, 2, 2, 2, 2, 2))
	bonus := run(NewBonusPolicy[int, int](p0, BonusConfig{Alpha: 0.3, Discount: 0.9, Seed: 3}, itoa, itoa))
	require.Len(t, fixed, 30)
	require.Len(t, bonus, 30)
	// a fixed script revisits the same states every episode
	assert.Equal(t, fixed[0], fixed[29])
	assert.Greater(t, bonus[29], fixed[29])
	for i := 1; i < len(bonus); i++ {
		assert.GreaterOrEqual(t, bonus[i], bonus[i-1])
	}
}
