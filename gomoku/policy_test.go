package gomoku

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/fights/ndarray"
	"github.com/zeu5/fights/types"
	"github.com/zeu5/fights/util"
)

func TestGreedyCompletesRun(t *testing.T) {
	env := newEnv(t)
	play(env, alice, Action{2, 0}, Action{2, 1}, Action{2, 2}, Action{2, 3})
	greedy, err := NewSeededGreedyPolicy(env, alice, 1)
	require.NoError(t, err)

	a, ok := greedy.NextAction(0, env.Board(), env.LegalActions())
	require.True(t, ok)
	assert.Equal(t, Action{2, 4}, a)
	assert.True(t, env.Step(alice, a).Done)
}

func TestGreedyBlocks(t *testing.T) {
	env := newEnv(t)
	play(env, bob, Action{0, 9}, Action{1, 9}, Action{2, 9}, Action{3, 9})
	env.Step(alice, Action{5, 5})
	greedy, err := NewSeededGreedyPolicy(env, alice, 1)
	require.NoError(t, err)

	a, ok := greedy.NextAction(0, env.Board(), env.LegalActions())
	require.True(t, ok)
	assert.Equal(t, Action{4, 9}, a)
}

func TestGreedyDoesNotMutateState(t *testing.T) {
	env := newEnv(t)
	env.Step(alice, Action{5, 5})
	greedy, err := NewSeededGreedyPolicy(env, bob, 1)
	require.NoError(t, err)
	state := env.Board()
	_, ok := greedy.NextAction(0, state, env.LegalActions())
	require.True(t, ok)
	assert.True(t, state.Equal(env.Board()))

	_, ok = greedy.NextAction(0, state, nil)
	assert.False(t, ok)

	_, err = NewGreedyPolicy(env, types.Participant{ID: "x"})
	assert.ErrorIs(t, err, ErrUnknownParticipant)
}

func agentConfig(env *Env, episodes int, policies ...types.Policy[Action, Board]) *types.AgentConfig[Action, Board] {
	participants := env.Participants()
	return &types.AgentConfig[Action, Board]{
		Episodes:     episodes,
		Horizon:      env.Width() * env.Height(),
		Participants: participants[:],
		Policies:     policies,
		Environment:  env,
	}
}

func TestAgentScriptedGame(t *testing.T) {
	env := newEnv(t)
	config := agentConfig(env, 1,
		types.NewFixedPolicy[Action, Board](Action{0, 0}, Action{0, 1}, Action{0, 2}, Action{0, 3}, Action{0, 4}),
		types.NewFixedPolicy[Action, Board](Action{0, 0}, Action{5, 1}, Action{5, 2}, Action{5, 3}, Action{5, 4}),
	)
	agent, err := types.NewAgent(config)
	require.NoError(t, err)

	episode := agent.RunEpisode(0)
	assert.Equal(t, types.OutcomeTerminal, episode.Outcome)
	require.NotNil(t, episode.Finisher)
	assert.Equal(t, alice, *episode.Finisher)
	assert.Equal(t, 9, episode.Steps())

	// bob's first move hit an occupied cell and was absorbed
	step, ok := episode.Trace.Get(1)
	require.True(t, ok)
	assert.Equal(t, bob, step.Participant)
	assert.True(t, step.State.Equal(step.Result.State))
}

func TestAgentRandomSelfPlayTerminates(t *testing.T) {
	env, err := New(5, 5, 4, [2]types.Participant{alice, bob})
	require.NoError(t, err)
	config := agentConfig(env, 20,
		types.NewSeededRandomPolicy[Action, Board](1),
		types.NewSeededRandomPolicy[Action, Board](2),
	)
	agent, err := types.NewAgent(config)
	require.NoError(t, err)

	episodes, err := agent.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, episodes, 20)
	for _, e := range episodes {
		assert.LessOrEqual(t, e.Steps(), 25)
		switch e.Outcome {
		case types.OutcomeTerminal:
			require.NotNil(t, e.Finisher)
			last, _ := e.Trace.Last()
			assert.True(t, last.Result.Done)
		case types.OutcomeExhausted:
			// only a full board leaves no legal moves
			last, _ := e.Trace.Last()
			assert.Equal(t, 0, last.Result.State.Count(func(v int) bool { return v == Empty }))
		default:
			t.Fatalf("unexpected outcome %v", e.Outcome)
		}
	}
}

func TestComparisonGreedyBeatsRandom(t *testing.T) {
	dir := t.TempDir()
	env, err := New(6, 6, 4, [2]types.Participant{alice, bob})
	require.NoError(t, err)
	greedy, err := NewSeededGreedyPolicy(env, alice, 3)
	require.NoError(t, err)

	c := types.NewComparison[Action, Board](1)
	c.AddExperiment(types.NewExperiment("greedy-random", agentConfig(env, 10, greedy, types.NewSeededRandomPolicy[Action, Board](4))))

	var outcomes []types.DataSet
	c.AddAnalysis("outcomes", types.OutcomeAnalyzer[Action, Board], func(_ int, _ []string, ds []types.DataSet) error {
		outcomes = ds
		return nil
	})
	c.AddAnalysis("heatmap", MoveHeatmapAnalyzer(6, 6), HeatmapPlotter(filepath.Join(dir, "plots")))

	rc := types.RunConfig{Context: context.Background(), RecordTraces: true, SavePath: dir}
	require.NoError(t, c.Run(rc))

	require.Len(t, outcomes, 1)
	data := outcomes[0].(*types.OutcomeDataSet)
	assert.Equal(t, 10, data.Episodes)
	assert.Greater(t, data.Wins[alice.ID], data.Wins[bob.ID])
	assert.FileExists(t, filepath.Join(dir, "plots", "0_greedy-random_moves.png"))
	assert.FileExists(t, filepath.Join(dir, "summary.txt"))

	// recorded traces decode back into boards
	traces := 0
	err = util.ReadJSONLZstd(filepath.Join(dir, "traces", "greedy-random_0.jsonl.zst"), func(line []byte) error {
		trace := types.NewTrace[Action, Board]()
		if err := trace.UnmarshalJSON(line); err != nil {
			return err
		}
		first, ok := trace.Get(0)
		require.True(t, ok)
		assert.Equal(t, ndarray.Dims2{6, 6}, first.State.Shape())
		traces++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 10, traces)
}
