package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeu5/fights/gomoku"
	"github.com/zeu5/fights/othello"
	"github.com/zeu5/fights/types"
	"github.com/zeu5/fights/util"
)

var players = [2]types.Participant{{ID: "0"}, {ID: "1"}}

func TestPlayUntilWin(t *testing.T) {
	env, err := gomoku.New(5, 5, 3, players)
	require.NoError(t, err)

	in := strings.NewReader(strings.Join([]string{
		"0 0",
		"0 0",   // occupied, asked again
		"9 9",   // out of bounds
		"one 2", // not a number
		"4 4",
		"0 1",
		"4 3",
		"0 2",
	}, "\n"))
	out := new(bytes.Buffer)
	winner, ok, err := Play(in, out, env)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, players[0], winner)

	text := out.String()
	assert.Contains(t, text, "Player 0 wins")
	assert.Equal(t, 3, strings.Count(text, "Invalid move"))
	assert.Contains(t, text, "occupied")
	assert.Contains(t, text, "out of bounds")
	assert.Contains(t, text, "not a number")
}

func TestPlayDrawAndEOF(t *testing.T) {
	env, err := gomoku.New(1, 2, 2, players)
	require.NoError(t, err)
	out := new(bytes.Buffer)
	_, ok, err := Play(strings.NewReader("0 0\n0 1\n"), out, env)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, out.String(), "Draw")

	out.Reset()
	_, ok, err = Play(strings.NewReader("0 0\n"), out, env)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseAction(t *testing.T) {
	a, err := parseAction("  3   7 ")
	require.NoError(t, err)
	assert.Equal(t, gomoku.Action{3, 7}, a)
	_, err = parseAction("3")
	assert.Error(t, err)
	_, err = parseAction("3 4 5")
	assert.Error(t, err)
}

func TestGomokuComparisonAndReplay(t *testing.T) {
	dir := t.TempDir()
	params := GomokuParams{
		Episodes:     3,
		Horizon:      36,
		Runs:         1,
		Parallel:     3,
		SavePath:     dir,
		Width:        6,
		Height:       6,
		WinCondition: 4,
		Participants: players,
		RecordTraces: true,
		Seed:         1,
	}
	require.NoError(t, Gomoku(context.Background(), params, util.NopLogger()))

	assert.FileExists(t, filepath.Join(dir, "config.txt"))
	assert.FileExists(t, filepath.Join(dir, "0_outcomes.txt"))
	assert.FileExists(t, filepath.Join(dir, "plots", "0_episode_length.png"))
	assert.FileExists(t, filepath.Join(dir, "plots", "0_coverage.png"))
	for _, name := range []string{"Random-Random", "Greedy-Random", "Random-Greedy", "Greedy-Greedy", "Bonus-Random"} {
		assert.FileExists(t, filepath.Join(dir, "traces", name+"_0.jsonl.zst"))
	}
	cfg, err := os.ReadFile(filepath.Join(dir, "config.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(cfg), "Board: 6x6, WinCondition: 4")

	out := new(bytes.Buffer)
	n, err := Replay(out, filepath.Join(dir, "traces", "Greedy-Random_0.jsonl.zst"), -1)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, strings.Count(out.String(), "Episode "))

	out.Reset()
	_, err = Replay(out, filepath.Join(dir, "traces", "Greedy-Random_0.jsonl.zst"), 1)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Episode 1:")
	assert.NotContains(t, out.String(), "Episode 0:")
}

func TestGomokuRejectsBadBoard(t *testing.T) {
	params := GomokuParams{Episodes: 1, Horizon: 1, Runs: 1, SavePath: t.TempDir(), Width: 3, Height: 3, WinCondition: 5, Participants: players}
	assert.ErrorIs(t, Gomoku(context.Background(), params, util.NopLogger()), gomoku.ErrInvalidConfig)
}

func TestOthelloComparison(t *testing.T) {
	dir := t.TempDir()
	params := OthelloParams{
		Episodes:     2,
		Horizon:      32,
		Runs:         1,
		Parallel:     2,
		SavePath:     dir,
		Size:         4,
		Participants: [2]types.Participant{{ID: "black"}, {ID: "white"}},
		RecordTraces: true,
		Seed:         1,
	}
	require.NoError(t, Othello(context.Background(), params, util.NopLogger()))

	assert.FileExists(t, filepath.Join(dir, "0_outcomes.txt"))
	assert.FileExists(t, filepath.Join(dir, "plots", "0_coverage.png"))
	for _, name := range []string{"Random-Random", "Greedy-Random", "Random-Greedy"} {
		assert.FileExists(t, filepath.Join(dir, "traces", name+"_0.jsonl.zst"))
	}
	cfg, err := os.ReadFile(filepath.Join(dir, "config.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(cfg), "Board: 4x4, Participants: black white")

	params.Size = 5
	assert.ErrorIs(t, Othello(context.Background(), params, util.NopLogger()), othello.ErrInvalidConfig)
}

func TestRootCommand(t *testing.T) {
	root := GetRootCommand()
	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "gomoku", "othello", "play", "replay"})

	root.SetArgs([]string{"play", "--width", "1", "--height", "2", "--win", "2"})
	root.SetIn(strings.NewReader("0 0\n0 1\n"))
	out := new(bytes.Buffer)
	root.SetOut(out)
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Draw")
}
