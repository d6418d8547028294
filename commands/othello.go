package commands

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
	"github.com/zeu5/fights/othello"
	"github.com/zeu5/fights/types"
	"github.com/zeu5/fights/util"
)

type OthelloParams struct {
	Episodes     int
	Horizon      int
	Runs         int
	Parallel     int
	SavePath     string
	Size         int
	Participants [2]types.Participant
	RecordTraces bool
	Progress     bool
	Seed         uint64
}

func (p OthelloParams) Printable() string {
	return fmt.Sprintf("Board: %dx%d, Participants: %s %s, Seed: %d",
		p.Size, p.Size, p.Participants[0], p.Participants[1], p.Seed)
}

type othelloPolicyMaker func(env *othello.Env, p types.Participant, seed uint64) (types.Policy[othello.Action, othello.State], error)

func othelloRandom(_ *othello.Env, _ types.Participant, seed uint64) (types.Policy[othello.Action, othello.State], error) {
	return types.NewSeededRandomPolicy[othello.Action, othello.State](seed), nil
}

func othelloGreedy(env *othello.Env, p types.Participant, seed uint64) (types.Policy[othello.Action, othello.State], error) {
	return othello.NewSeededGreedyPolicy(env, p, seed)
}

// Othello compares random and greedy othello players against each other
func Othello(ctx context.Context, params OthelloParams, logger log.Logger) error {
	c := types.NewComparison[othello.Action, othello.State](params.Runs)
	plots := path.Join(params.SavePath, "plots")
	c.AddAnalysis("Outcomes", types.OutcomeAnalyzer[othello.Action, othello.State], types.OutcomeTableComparator(os.Stdout, params.SavePath))
	c.AddAnalysis("WinRate", types.OutcomeAnalyzer[othello.Action, othello.State], types.WinRatePlotter(plots))
	c.AddAnalysis("EpisodeLength", types.EpisodeLengthAnalyzer[othello.Action, othello.State], types.EpisodeLengthPlotter(plots))
	c.AddAnalysis("Coverage", types.CoverageAnalyzer[othello.Action](othello.Hash), types.CoveragePlotter(plots))

	matchups := []struct {
		name   string
		first  othelloPolicyMaker
		second othelloPolicyMaker
	}{
		{"Random-Random", othelloRandom, othelloRandom},
		{"Greedy-Random", othelloGreedy, othelloRandom},
		{"Random-Greedy", othelloRandom, othelloGreedy},
	}
	for i, m := range matchups {
		env, err := othello.New(params.Size, params.Participants)
		if err != nil {
			return err
		}
		seed := params.Seed + uint64(2*i)
		first, err := m.first(env, params.Participants[0], seed)
		if err != nil {
			return err
		}
		second, err := m.second(env, params.Participants[1], seed+1)
		if err != nil {
			return err
		}
		c.AddExperiment(types.NewExperiment(m.name, &types.AgentConfig[othello.Action, othello.State]{
			Episodes:     params.Episodes,
			Horizon:      params.Horizon,
			Participants: params.Participants[:],
			Policies:     []types.Policy[othello.Action, othello.State]{first, second},
			Environment:  env,
		}))
	}

	if err := util.WriteToFile(path.Join(params.SavePath, "config.txt"), printParameters(params.Printable())...); err != nil {
		return err
	}
	level.Info(logger).Log("msg", "starting comparison", "game", othello.Info, "experiments", len(c.Experiments), "episodes", params.Episodes, "runs", params.Runs)
	return c.Run(types.RunConfig{
		Context:      ctx,
		RecordTraces: params.RecordTraces,
		SavePath:     params.SavePath,
		Progress:     params.Progress,
		Parallel:     params.Parallel,
		Logger:       logger,
	})
}

func OthelloCommand() *cobra.Command {
	var size int
	var recordTraces bool
	var seed uint64

	cmd := &cobra.Command{
		Use:   "othello",
		Short: "Compare random and greedy othello players",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := loadConfig()
			if err != nil {
				return err
			}
			params := OthelloParams{
				Episodes:     episodes,
				Horizon:      horizon,
				Runs:         runs,
				Parallel:     parallel,
				SavePath:     saveFile,
				Size:         size,
				Participants: [2]types.Participant{{ID: "black"}, {ID: "white"}},
				RecordTraces: recordTraces,
				Progress:     true,
				Seed:         seed,
			}
			// a game of passes and placements never runs longer than this
			if !cmd.Flags().Changed("horizon") {
				params.Horizon = 2 * size * size
			}

			ctx, cancel := interruptContext()
			defer cancel()
			return Othello(ctx, params, logger)
		},
	}
	cmd.PersistentFlags().IntVar(&size, "size", othello.DefaultSize, "Side of the board, even")
	cmd.PersistentFlags().BoolVar(&recordTraces, "traces", false, "Record every episode trace")
	cmd.PersistentFlags().Uint64Var(&seed, "seed", 1, "Seed of the players")
	return cmd
}
