package types

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gosuri/uilive"
	"golang.org/x/sync/errgroup"
)

// PARALLEL OUTPUT

// ParallelOutput holds the status line of one experiment running in a
// parallel slot
type ParallelOutput struct {
	Name string

	mu        sync.Mutex
	printable string
	running   bool
}

func NewParallelOutput(name string) *ParallelOutput {
	return &ParallelOutput{
		Name:      name,
		printable: "Pending",
	}
}

// Set the output string (blocking)
func (p *ParallelOutput) Set(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.printable = s
}

// Try to set the output string (non-blocking)
func (p *ParallelOutput) TrySet(s string) bool {
	if !p.mu.TryLock() {
		return false
	}
	defer p.mu.Unlock()
	p.printable = s
	return true
}

// Get the output string (blocking)
func (p *ParallelOutput) Get() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.printable
}

func (p *ParallelOutput) SetRunning(running bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = running
}

func (p *ParallelOutput) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// TERMINAL PRINTER

// TerminalPrinter redraws one line per experiment in place
type TerminalPrinter struct {
	outputs   []*ParallelOutput
	frequency time.Duration
	nameLen   int

	writer  *uilive.Writer
	writers []io.Writer

	stop chan struct{}
	done chan struct{}
}

func NewTerminalPrinter(out io.Writer, outputs []*ParallelOutput, frequency time.Duration) *TerminalPrinter {
	writer := uilive.New()
	writer.Out = out
	writers := make([]io.Writer, 0, len(outputs))
	for i := 1; i < len(outputs); i++ {
		writers = append(writers, writer.Newline())
	}
	nameLen := 0
	for _, o := range outputs {
		nameLen = max(nameLen, len(o.Name))
	}

	return &TerminalPrinter{
		outputs:   outputs,
		frequency: frequency,
		nameLen:   nameLen,
		writer:    writer,
		writers:   writers,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start redrawing until Stop is called
func (p *TerminalPrinter) Start() {
	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.frequency)
		defer ticker.Stop()
		for {
			select {
			case <-p.stop:
				p.print()
				return
			case <-ticker.C:
				p.print()
			}
		}
	}()
}

// Stop draws the final status of every experiment and returns once the
// printer has finished. It must be called exactly once.
func (p *TerminalPrinter) Stop() {
	close(p.stop)
	<-p.done
}

func (p *TerminalPrinter) print() {
	for i, output := range p.outputs {
		s := fmt.Sprintf("%-*s | %s\n", p.nameLen, output.Name, output.Get())
		if i == 0 {
			fmt.Fprint(p.writer, s)
		} else {
			fmt.Fprint(p.writers[i-1], s)
		}
	}
	p.writer.Flush()
}

// runParallel runs the experiments of the comparison in at most
// rConfig.Parallel slots. Every experiment gets its own analyzers and its
// datasets are stored at its index. The first failure cancels the
// experiments still running.
func (c *Comparison[A, S]) runParallel(rConfig RunConfig, datasets [][]DataSet) error {
	outputs := make([]*ParallelOutput, len(c.Experiments))
	for i, e := range c.Experiments {
		outputs[i] = NewParallelOutput(e.Name)
	}
	var printer *TerminalPrinter
	if rConfig.Progress {
		printer = NewTerminalPrinter(rConfig.progressOut(), outputs, 500*time.Millisecond)
		printer.Start()
	}

	g, ctx := errgroup.WithContext(rConfig.context())
	g.SetLimit(rConfig.Parallel)
	for j, e := range c.Experiments {
		eConfig := rConfig
		eConfig.Context = ctx
		eConfig.status = outputs[j]
		g.Go(func() error {
			analyzers := c.newAnalyzers()
			if err := e.Run(&eConfig, analyzers...); err != nil {
				outputs[j].Set("Failed: " + err.Error())
				return err
			}
			for i, a := range analyzers {
				datasets[i][j] = a.DataSet()
			}
			return nil
		})
	}
	err := g.Wait()
	if printer != nil {
		printer.Stop()
	}
	return err
}
