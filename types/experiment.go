package types

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/zeu5/fights/util"
)

// RunConfig configures how experiments are executed and what they record
type RunConfig struct {
	Context    context.Context
	CurrentRun int
	// record every episode trace as zstd compressed json lines
	RecordTraces bool
	SavePath     string
	// print a progress line while running
	Progress bool
	// ProgressOut receives the progress lines, stdout if nil
	ProgressOut io.Writer
	// Parallel is the number of experiments of a comparison run at the
	// same time. Values below 2 run them one after another.
	Parallel int
	Logger   log.Logger

	// set for experiments running in a parallel slot
	status *ParallelOutput
}

func (r *RunConfig) logger() log.Logger {
	if r.Logger == nil {
		return log.NewNopLogger()
	}
	return r.Logger
}

func (r *RunConfig) context() context.Context {
	if r.Context == nil {
		return context.Background()
	}
	return r.Context
}

func (r *RunConfig) progressOut() io.Writer {
	if r.ProgressOut == nil {
		return os.Stdout
	}
	return r.ProgressOut
}

// summaryLock serializes appends to summary.txt from parallel experiments
var summaryLock sync.Mutex

// Experiment encapsulates the agent configuration for one named setup
type Experiment[A, S any] struct {
	Name   string
	config *AgentConfig[A, S]
}

func NewExperiment[A, S any](name string, config *AgentConfig[A, S]) *Experiment[A, S] {
	return &Experiment[A, S]{
		Name:   name,
		config: config,
	}
}

// TracesPath is where Run records traces when RecordTraces is set
func (e *Experiment[A, S]) TracesPath(rConfig *RunConfig) string {
	return path.Join(rConfig.SavePath, "traces", e.Name+"_"+strconv.Itoa(rConfig.CurrentRun)+".jsonl.zst")
}

// Run the experiment, feeding every episode to the analyzers
func (e *Experiment[A, S]) Run(rConfig *RunConfig, analyzers ...Analyzer[A, S]) (err error) {
	ctx := rConfig.context()
	logger := log.With(rConfig.logger(), "experiment", e.Name, "run", rConfig.CurrentRun)

	agent, err := NewAgent(e.config)
	if err != nil {
		return fmt.Errorf("experiment %s: %w", e.Name, err)
	}
	for _, p := range e.config.Policies {
		p.Reset()
	}

	var traces *util.JSONLZstdWriter
	if rConfig.RecordTraces {
		traces = util.NewJSONLZstdWriter(e.TracesPath(rConfig))
		defer func() {
			if cerr := traces.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("experiment %s: closing traces: %w", e.Name, cerr)
			}
		}()
	}

	status := rConfig.status
	if status != nil {
		status.SetRunning(true)
		defer status.SetRunning(false)
	}

	counts := make(map[Outcome]int)
	start := time.Now()
	for i := 0; i < e.config.Episodes; i++ {
		select {
		case <-ctx.Done():
			level.Warn(logger).Log("msg", "experiment cancelled", "episodes", i)
			return ctx.Err()
		default:
		}

		episode := agent.RunEpisode(i)
		counts[episode.Outcome] += 1
		for _, a := range analyzers {
			a.Analyze(episode)
		}
		if traces != nil {
			if err := traces.Write(episode.Trace); err != nil {
				return fmt.Errorf("experiment %s: recording trace: %w", e.Name, err)
			}
		}
		level.Debug(logger).Log("msg", "episode finished", "episode", i, "outcome", episode.Outcome, "steps", episode.Steps())

		switch {
		case status != nil:
			status.TrySet(fmt.Sprintf("Episode: %d/%d", i+1, e.config.Episodes))
		case rConfig.Progress:
			fmt.Fprintf(rConfig.progressOut(), "\rExperiment: %s, Episode: %d/%d", e.Name, i+1, e.config.Episodes)
		}
	}
	if status != nil {
		status.Set(fmt.Sprintf("Done: terminal=%d exhausted=%d horizon=%d", counts[OutcomeTerminal], counts[OutcomeExhausted], counts[OutcomeHorizon]))
	} else if rConfig.Progress {
		fmt.Fprintln(rConfig.progressOut())
	}

	level.Info(logger).Log(
		"msg", "experiment finished",
		"episodes", e.config.Episodes,
		"terminal", counts[OutcomeTerminal],
		"exhausted", counts[OutcomeExhausted],
		"horizon", counts[OutcomeHorizon],
		"duration", time.Since(start),
	)
	if rConfig.SavePath != "" {
		summary := fmt.Sprintf("%s run=%d episodes=%d terminal=%d exhausted=%d horizon=%d",
			e.Name, rConfig.CurrentRun, e.config.Episodes,
			counts[OutcomeTerminal], counts[OutcomeExhausted], counts[OutcomeHorizon])
		summaryLock.Lock()
		werr := util.AppendToFile(path.Join(rConfig.SavePath, "summary.txt"), summary)
		summaryLock.Unlock()
		if werr != nil {
			return werr
		}
	}
	return nil
}

// Generic Dataset that contains information after processing the episodes
type DataSet interface{}

// Analyzer compresses the episodes of one experiment into a DataSet
type Analyzer[A, S any] interface {
	Analyze(*Episode[A, S])
	DataSet() DataSet
}

// AnalyzerConstructor creates a fresh analyzer for every experiment
type AnalyzerConstructor[A, S any] func() Analyzer[A, S]

// Comparator differentiates between datasets of different experiments
// run, experiment names, datasets
type Comparator func(int, []string, []DataSet) error

type analysis[A, S any] struct {
	name       string
	analyzer   AnalyzerConstructor[A, S]
	comparator Comparator
}

// Comparison runs a set of experiments with the same analyses
// and compares the resulting datasets
type Comparison[A, S any] struct {
	Experiments []*Experiment[A, S]
	analyses    []analysis[A, S]
	runs        int
}

func NewComparison[A, S any](runs int) *Comparison[A, S] {
	if runs < 1 {
		runs = 1
	}
	return &Comparison[A, S]{
		Experiments: make([]*Experiment[A, S], 0),
		analyses:    make([]analysis[A, S], 0),
		runs:        runs,
	}
}

func (c *Comparison[A, S]) AddExperiment(e *Experiment[A, S]) {
	c.Experiments = append(c.Experiments, e)
}

func (c *Comparison[A, S]) AddAnalysis(name string, a AnalyzerConstructor[A, S], comparator Comparator) {
	c.analyses = append(c.analyses, analysis[A, S]{name: name, analyzer: a, comparator: comparator})
}

func (c *Comparison[A, S]) newAnalyzers() []Analyzer[A, S] {
	analyzers := make([]Analyzer[A, S], len(c.analyses))
	for i, a := range c.analyses {
		analyzers[i] = a.analyzer()
	}
	return analyzers
}

func (c *Comparison[A, S]) Run(rConfig RunConfig) error {
	logger := rConfig.logger()
	names := make([]string, len(c.Experiments))
	for i, e := range c.Experiments {
		names[i] = e.Name
	}

	for run := 0; run < c.runs; run++ {
		rConfig.CurrentRun = run
		datasets := make([][]DataSet, len(c.analyses))
		for i := range datasets {
			datasets[i] = make([]DataSet, len(c.Experiments))
		}

		if rConfig.Parallel > 1 {
			if err := c.runParallel(rConfig, datasets); err != nil {
				return err
			}
		} else {
			for j, e := range c.Experiments {
				analyzers := c.newAnalyzers()
				if err := e.Run(&rConfig, analyzers...); err != nil {
					return err
				}
				for i, a := range analyzers {
					datasets[i][j] = a.DataSet()
				}
			}
		}

		for i, a := range c.analyses {
			if a.comparator == nil {
				continue
			}
			if err := a.comparator(run, names, datasets[i]); err != nil {
				level.Error(logger).Log("msg", "comparator failed", "analysis", a.name, "err", err)
				return fmt.Errorf("analysis %s: %w", a.name, err)
			}
		}
	}
	return nil
}
