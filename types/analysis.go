package types

import (
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strconv"

	"github.com/zeu5/fights/util"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// OutcomeDataSet counts how episodes ended
type OutcomeDataSet struct {
	Episodes int            `json:"episodes"`
	Wins     map[string]int `json:"wins"`
	// Draws are terminal episodes without a winner
	Draws     int `json:"draws"`
	Exhausted int `json:"exhausted"`
	Horizon   int `json:"horizon"`
}

// WinRate of the participant over all episodes
func (o *OutcomeDataSet) WinRate(id string) float64 {
	if o.Episodes == 0 {
		return 0
	}
	return float64(o.Wins[id]) / float64(o.Episodes)
}

// Participants returns the ids that won at least once, sorted
func (o *OutcomeDataSet) Participants() []string {
	ids := make([]string, 0, len(o.Wins))
	for id := range o.Wins {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type outcomeAnalyzer[A, S any] struct {
	data *OutcomeDataSet
}

func OutcomeAnalyzer[A, S any]() Analyzer[A, S] {
	return &outcomeAnalyzer[A, S]{
		data: &OutcomeDataSet{Wins: make(map[string]int)},
	}
}

func (o *outcomeAnalyzer[A, S]) Analyze(e *Episode[A, S]) {
	o.data.Episodes += 1
	switch e.Outcome {
	case OutcomeTerminal:
		if e.Winner != nil {
			o.data.Wins[e.Winner.ID] += 1
		} else {
			o.data.Draws += 1
		}
	case OutcomeExhausted:
		o.data.Exhausted += 1
	case OutcomeHorizon:
		o.data.Horizon += 1
	}
}

func (o *outcomeAnalyzer[A, S]) DataSet() DataSet {
	return o.data
}

type lengthAnalyzer[A, S any] struct {
	lengths []int
}

// EpisodeLengthAnalyzer records the number of steps of every episode
func EpisodeLengthAnalyzer[A, S any]() Analyzer[A, S] {
	return &lengthAnalyzer[A, S]{lengths: make([]int, 0)}
}

func (l *lengthAnalyzer[A, S]) Analyze(e *Episode[A, S]) {
	l.lengths = append(l.lengths, e.Steps())
}

func (l *lengthAnalyzer[A, S]) DataSet() DataSet {
	return l.lengths
}

// OutcomeTableComparator prints a win table to w and saves it under savePath
func OutcomeTableComparator(w io.Writer, savePath string) Comparator {
	return func(run int, names []string, ds []DataSet) error {
		lines := make([]string, 0, len(names))
		for i, name := range names {
			data := ds[i].(*OutcomeDataSet)
			line := fmt.Sprintf("%s: episodes=%d draws=%d exhausted=%d horizon=%d", name, data.Episodes, data.Draws, data.Exhausted, data.Horizon)
			for _, id := range data.Participants() {
				line += fmt.Sprintf(" wins[%s]=%d (%.1f%%)", id, data.Wins[id], data.WinRate(id)*100)
			}
			lines = append(lines, line)
			fmt.Fprintln(w, line)
		}
		if savePath == "" {
			return nil
		}
		return util.WriteToFile(path.Join(savePath, strconv.Itoa(run)+"_outcomes.txt"), lines...)
	}
}

// WinRatePlotter draws one bar group per participant
func WinRatePlotter(plotPath string) Comparator {
	return func(run int, names []string, ds []DataSet) error {
		if err := os.MkdirAll(plotPath, os.ModePerm); err != nil {
			return err
		}
		p := plot.New()
		p.Title.Text = "Win rate"
		p.Y.Label.Text = "Fraction of episodes"

		// every participant id across all experiments, in a stable order
		idSet := make(map[string]bool)
		for _, d := range ds {
			for _, id := range d.(*OutcomeDataSet).Participants() {
				idSet[id] = true
			}
		}
		ids := make([]string, 0, len(idSet))
		for id := range idSet {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		if len(ids) == 0 {
			return nil
		}

		width := vg.Points(20)
		for i, name := range names {
			data := ds[i].(*OutcomeDataSet)
			values := make(plotter.Values, len(ids))
			for j, id := range ids {
				values[j] = data.WinRate(id)
			}
			bars, err := plotter.NewBarChart(values, width)
			if err != nil {
				return err
			}
			bars.Color = plotutil.Color(i)
			bars.Offset = width * vg.Length(i-len(names)/2)
			p.Add(bars)
			p.Legend.Add(name, bars)
		}
		p.NominalX(ids...)
		p.Legend.Top = true
		return p.Save(8*vg.Inch, 6*vg.Inch, path.Join(plotPath, strconv.Itoa(run)+"_win_rate.png"))
	}
}

// EpisodeLengthPlotter draws the running mean of episode lengths
func EpisodeLengthPlotter(plotPath string) Comparator {
	return func(run int, names []string, ds []DataSet) error {
		if err := os.MkdirAll(plotPath, os.ModePerm); err != nil {
			return err
		}
		p := plot.New()
		p.Title.Text = "Comparison"
		p.X.Label.Text = "Episode"
		p.Y.Label.Text = "Mean episode length"
		for i := 0; i < len(names); i++ {
			lengths := ds[i].([]int)
			if len(lengths) == 0 {
				continue
			}
			points := RunningMean(lengths)
			line, err := plotter.NewLine(points)
			if err != nil {
				continue
			}
			line.Color = plotutil.Color(i)
			p.Add(line)
			p.Legend.Add(names[i], line)
		}
		return p.Save(8*vg.Inch, 8*vg.Inch, path.Join(plotPath, strconv.Itoa(run)+"_episode_length.png"))
	}
}

// RunningMean returns (i, mean(values[:i+1])) for every i
func RunningMean(values []int) plotter.XYs {
	points := make(plotter.XYs, len(values))
	floats := make([]float64, len(values))
	for i, v := range values {
		floats[i] = float64(v)
		points[i] = plotter.XY{
			X: float64(i),
			Y: stat.Mean(floats[:i+1], nil),
		}
	}
	return points
}

type coverageAnalyzer[A, S any] struct {
	hash   func(S) string
	states map[string]bool
	unique []int
}

// CoverageAnalyzer counts the distinct states visited, the dataset holds
// the running total after every episode
func CoverageAnalyzer[A, S any](hash func(S) string) AnalyzerConstructor[A, S] {
	return func() Analyzer[A, S] {
		return &coverageAnalyzer[A, S]{
			hash:   hash,
			states: make(map[string]bool),
			unique: make([]int, 0),
		}
	}
}

func (c *coverageAnalyzer[A, S]) Analyze(e *Episode[A, S]) {
	for _, step := range e.Trace.Steps() {
		c.states[c.hash(step.State)] = true
		c.states[c.hash(step.Result.State)] = true
	}
	c.unique = append(c.unique, len(c.states))
}

func (c *coverageAnalyzer[A, S]) DataSet() DataSet {
	return c.unique
}

// CoveragePlotter draws the number of states covered per episode
func CoveragePlotter(plotPath string) Comparator {
	return func(run int, names []string, ds []DataSet) error {
		if err := os.MkdirAll(plotPath, os.ModePerm); err != nil {
			return err
		}
		p := plot.New()
		p.Title.Text = "Comparison"
		p.X.Label.Text = "Episode"
		p.Y.Label.Text = "States covered"
		for i := 0; i < len(names); i++ {
			uniqueStates := ds[i].([]int)
			points := make(plotter.XYs, len(uniqueStates))
			for j, v := range uniqueStates {
				points[j] = plotter.XY{
					X: float64(j),
					Y: float64(v),
				}
			}
			line, err := plotter.NewLine(points)
			if err != nil {
				continue
			}
			line.Color = plotutil.Color(i)
			p.Add(line)
			p.Legend.Add(names[i], line)
		}
		return p.Save(8*vg.Inch, 8*vg.Inch, path.Join(plotPath, strconv.Itoa(run)+"_coverage.png"))
	}
}
