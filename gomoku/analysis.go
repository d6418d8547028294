package gomoku

import (
	"os"
	"path"
	"strconv"

	"github.com/zeu5/fights/ndarray"
	"github.com/zeu5/fights/types"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// heatmapAnalyzer counts how often each cell was played
type heatmapAnalyzer struct {
	counts *ndarray.NDArray[float64, ndarray.Dims2]
}

// MoveHeatmapAnalyzer returns a constructor for analyzers over a
// width x height board. The dataset is a *ndarray.NDArray[float64, ndarray.Dims2].
func MoveHeatmapAnalyzer(width, height int) types.AnalyzerConstructor[Action, Board] {
	return func() types.Analyzer[Action, Board] {
		return &heatmapAnalyzer{
			counts: ndarray.Zeros[float64](ndarray.Dims2{width, height}),
		}
	}
}

func (h *heatmapAnalyzer) Analyze(e *types.Episode[Action, Board]) {
	shape := h.counts.Shape()
	for _, step := range e.Trace.Steps() {
		a := step.Action
		if a[0] < 0 || a[0] >= shape[0] || a[1] < 0 || a[1] >= shape[1] {
			continue
		}
		h.counts.Set(a, h.counts.At(a)+1)
	}
}

func (h *heatmapAnalyzer) DataSet() types.DataSet {
	return h.counts
}

// heatGrid adapts a matrix to plotter.GridXYZ with x as rows
type heatGrid struct {
	m *mat.Dense
}

var _ plotter.GridXYZ = heatGrid{}

func (g heatGrid) Dims() (c, r int) {
	r, c = g.m.Dims()
	return c, r
}

func (g heatGrid) Z(c, r int) float64 {
	return g.m.At(r, c)
}

func (g heatGrid) X(c int) float64 {
	return float64(c)
}

func (g heatGrid) Y(r int) float64 {
	return float64(r)
}

// HeatmapPlotter saves one heatmap of move frequencies per experiment
func HeatmapPlotter(plotPath string) types.Comparator {
	return func(run int, names []string, ds []types.DataSet) error {
		if err := os.MkdirAll(plotPath, os.ModePerm); err != nil {
			return err
		}
		for i, name := range names {
			counts := ds[i].(*ndarray.NDArray[float64, ndarray.Dims2])
			if counts.Size() == 0 || counts.Max() == 0 {
				continue
			}
			p := plot.New()
			p.Title.Text = name + " moves"
			p.X.Label.Text = "y"
			p.Y.Label.Text = "x"
			p.Add(plotter.NewHeatMap(heatGrid{m: ndarray.Dense(counts)}, palette.Heat(12, 1)))
			if err := p.Save(6*vg.Inch, 6*vg.Inch, path.Join(plotPath, strconv.Itoa(run)+"_"+name+"_moves.png")); err != nil {
				return err
			}
		}
		return nil
	}
}
