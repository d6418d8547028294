package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/go-kit/log"
	"github.com/spf13/cobra"
	"github.com/zeu5/fights/config"
	"github.com/zeu5/fights/util"
)

var (
	episodes   int
	horizon    int
	saveFile   string
	runs       int
	parallel   int
	configFile string
	logLevel   string
	logFormat  string
)

func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:          "fights",
		Short:        "Turn-based game environments and agents",
		SilenceUsage: true,
	}
	rootCommand.PersistentFlags().IntVarP(&episodes, "episodes", "e", 1000, "Number of episodes to run")
	rootCommand.PersistentFlags().IntVar(&horizon, "horizon", 100, "Horizon of each episode")
	rootCommand.PersistentFlags().StringVarP(&saveFile, "save", "s", "results", "Save the result data in the specified folder")
	rootCommand.PersistentFlags().IntVar(&runs, "runs", 1, "Number of experiment runs")
	rootCommand.PersistentFlags().IntVarP(&parallel, "parallel", "p", 1, "Number of experiments run at the same time")
	rootCommand.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to a yaml config file")
	rootCommand.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error), overrides the config file")
	rootCommand.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (logfmt, json), overrides the config file")
	// adding the subcommands here
	rootCommand.AddCommand(ServeCommand())
	rootCommand.AddCommand(GomokuCommand())
	rootCommand.AddCommand(OthelloCommand())
	rootCommand.AddCommand(PlayCommand())
	rootCommand.AddCommand(ReplayCommand())
	return rootCommand
}

// loadConfig reads the config file with the log flags applied on top
func loadConfig() (config.Config, log.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return cfg, nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}
	logger, err := util.NewLogger(os.Stderr, cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}

// interruptContext is cancelled on the first interrupt
func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func printParameters(lines ...string) []string {
	out := make([]string, 0, len(lines)+4)
	out = append(out,
		fmt.Sprintf("Episodes: %d", episodes),
		fmt.Sprintf("Horizon: %d", horizon),
		fmt.Sprintf("Runs: %d", runs),
		fmt.Sprintf("Parallel: %d", parallel),
	)
	return append(out, lines...)
}
