package commands

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
	"github.com/zeu5/fights/gomoku"
	"github.com/zeu5/fights/types"
	"github.com/zeu5/fights/util"
)

type GomokuParams struct {
	Episodes     int
	Horizon      int
	Runs         int
	Parallel     int
	SavePath     string
	Width        int
	Height       int
	WinCondition int
	Participants [2]types.Participant
	RecordTraces bool
	Progress     bool
	Seed         uint64
}

func (p GomokuParams) Printable() string {
	return fmt.Sprintf("Board: %dx%d, WinCondition: %d, Participants: %s %s, Seed: %d",
		p.Width, p.Height, p.WinCondition, p.Participants[0], p.Participants[1], p.Seed)
}

type policyMaker func(env *gomoku.Env, p types.Participant, seed uint64) (types.Policy[gomoku.Action, gomoku.Board], error)

func randomPolicy(_ *gomoku.Env, _ types.Participant, seed uint64) (types.Policy[gomoku.Action, gomoku.Board], error) {
	return types.NewSeededRandomPolicy[gomoku.Action, gomoku.Board](seed), nil
}

func bonusPolicy(_ *gomoku.Env, p types.Participant, seed uint64) (types.Policy[gomoku.Action, gomoku.Board], error) {
	return gomoku.NewBonusPolicy(p, types.BonusConfig{Alpha: 0.1, Discount: 0.99, Epsilon: 0.05, Seed: seed}), nil
}

func greedyPolicy(env *gomoku.Env, p types.Participant, seed uint64) (types.Policy[gomoku.Action, gomoku.Board], error) {
	return gomoku.NewSeededGreedyPolicy(env, p, seed)
}

// Gomoku compares random, greedy and exploring players against each other
func Gomoku(ctx context.Context, params GomokuParams, logger log.Logger) error {
	c := types.NewComparison[gomoku.Action, gomoku.Board](params.Runs)
	plots := path.Join(params.SavePath, "plots")
	c.AddAnalysis("Outcomes", types.OutcomeAnalyzer[gomoku.Action, gomoku.Board], types.OutcomeTableComparator(os.Stdout, params.SavePath))
	c.AddAnalysis("WinRate", types.OutcomeAnalyzer[gomoku.Action, gomoku.Board], types.WinRatePlotter(plots))
	c.AddAnalysis("EpisodeLength", types.EpisodeLengthAnalyzer[gomoku.Action, gomoku.Board], types.EpisodeLengthPlotter(plots))
	c.AddAnalysis("Coverage", types.CoverageAnalyzer[gomoku.Action](gomoku.Hash), types.CoveragePlotter(plots))
	c.AddAnalysis("Moves", gomoku.MoveHeatmapAnalyzer(params.Width, params.Height), gomoku.HeatmapPlotter(plots))

	matchups := []struct {
		name   string
		first  policyMaker
		second policyMaker
	}{
		{"Random-Random", randomPolicy, randomPolicy},
		{"Greedy-Random", greedyPolicy, randomPolicy},
		{"Random-Greedy", randomPolicy, greedyPolicy},
		{"Greedy-Greedy", greedyPolicy, greedyPolicy},
		{"Bonus-Random", bonusPolicy, randomPolicy},
	}
	for i, m := range matchups {
		env, err := gomoku.New(params.Width, params.Height, params.WinCondition, params.Participants)
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
		c.AddExperiment(types.NewExperiment(m.name, &types.AgentConfig[gomoku.Action, gomoku.Board]{
			Episodes:     params.Episodes,
			Horizon:      params.Horizon,
			Participants: params.Participants[:],
			Policies:     []types.Policy[gomoku.Action, gomoku.Board]{first, second},
			Environment:  env,
		}))
	}

	if err := util.WriteToFile(path.Join(params.SavePath, "config.txt"), printParameters(params.Printable())...); err != nil {
		return err
	}
	level.Info(logger).Log("msg", "starting comparison", "experiments", len(c.Experiments), "episodes", params.Episodes, "runs", params.Runs)
	return c.Run(types.RunConfig{
		Context:      ctx,
		RecordTraces: params.RecordTraces,
		SavePath:     params.SavePath,
		Progress:     params.Progress,
		Parallel:     params.Parallel,
		Logger:       logger,
	})
}

func GomokuCommand() *cobra.Command {
	var width int
	var height int
	var winCondition int
	var recordTraces bool
	var seed uint64

	cmd := &cobra.Command{
		Use:   "gomoku",
		Short: "Compare random, greedy and exploring gomoku players",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			params := GomokuParams{
				Episodes:     episodes,
				Horizon:      horizon,
				Runs:         runs,
				Parallel:     parallel,
				SavePath:     saveFile,
				Width:        cfg.Gomoku.Width,
				Height:       cfg.Gomoku.Height,
				WinCondition: cfg.Gomoku.WinCondition,
				Participants: [2]types.Participant{{ID: cfg.Gomoku.Participants[0]}, {ID: cfg.Gomoku.Participants[1]}},
				RecordTraces: recordTraces,
				Progress:     true,
				Seed:         seed,
			}
			if cmd.Flags().Changed("width") {
				params.Width = width
			}
			if cmd.Flags().Changed("height") {
				params.Height = height
			}
			if cmd.Flags().Changed("win") {
				params.WinCondition = winCondition
			}

			ctx, cancel := interruptContext()
			defer cancel()
			return Gomoku(ctx, params, logger)
		},
	}
	cmd.PersistentFlags().IntVar(&width, "width", 10, "Width of the board")
	cmd.PersistentFlags().IntVar(&height, "height", 10, "Height of the board")
	cmd.PersistentFlags().IntVar(&winCondition, "win", 5, "Stones in a row needed to win")
	cmd.PersistentFlags().BoolVar(&recordTraces, "traces", false, "Record every episode trace")
	cmd.PersistentFlags().Uint64Var(&seed, "seed", 1, "Seed of the players")
	return cmd
}
