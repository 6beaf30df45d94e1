// Package core provides the module orchestration and packaging framework for sharekeeper.
package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// MaxParallelism caps concurrent modules regardless of configuration.
const MaxParallelism = 64

// Module defines the interface that all collection modules must implement.
type Module interface {
	// Name returns the module's identifier, used for directory naming and reporting.
	Name() string
	// Collect performs the module's collection work, writing artifacts to outDir.
	Collect(ctx context.Context, outDir string) error
}

// Result captures the execution result of a single module.
type Result struct {
	Module    string    `json:"name"`
	OK        bool      `json:"ok"`
	Error     string    `json:"error"`
	StartedAt time.Time `json:"started_utc"`
	EndedAt   time.Time `json:"ended_utc"`
}

// Clock provides time functions for testability.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Run executes registered modules with bounded parallelism and a per-module timeout.
type Run struct {
	modules       []Module
	parallelism   int
	moduleTimeout time.Duration
	artifactsDir  string
	clock         Clock
	log           *logrus.Entry
}

// NewRun creates a new Run orchestrator. Parallelism is clamped to 1..MaxParallelism.
func NewRun(parallelism int, moduleTimeout time.Duration, artifactsDir string, clock Clock, log *logrus.Entry) *Run {
	if clock == nil {
		clock = SystemClock{}
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Run{
		parallelism:   ClampParallelism(parallelism),
		moduleTimeout: moduleTimeout,
		artifactsDir:  artifactsDir,
		clock:         clock,
		log:           log,
	}
}

// ClampParallelism bounds n to 1..MaxParallelism.
func ClampParallelism(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxParallelism {
		return MaxParallelism
	}
	return n
}

// Register adds a module to the execution list.
func (r *Run) Register(m Module) {
	r.modules = append(r.modules, m)
}

// Modules returns the names of the registered modules in registration order.
func (r *Run) Modules() []string {
	names := make([]string, 0, len(r.modules))
	for _, m := range r.modules {
		names = append(names, m.Name())
	}
	return names
}

// CollectAll executes every registered module and returns one result per
// module in registration order. The returned error summarises failed modules;
// a failing module never stops the others.
func (r *Run) CollectAll(ctx context.Context) ([]Result, error) {
	results := make([]Result, len(r.modules))
	if len(r.modules) == 0 {
		return results, nil
	}

	// Bound concurrency with a limited errgroup
	var g errgroup.Group
	g.SetLimit(r.parallelism)

	// Start all modules; each writes only its own slot
	for i, m := range r.modules {
		g.Go(func() error {
			results[i] = r.executeModule(ctx, m)
			return nil
		})
	}
	// Wait for all modules to complete
	_ = g.Wait()

	// Collect failures in registration order
	var (
		firstErr error
		failed   int
	)
	for _, res := range results {
		if res.OK {
			continue
		}
		if firstErr == nil {
			firstErr = fmt.Errorf("module %s failed: %s", res.Module, res.Error)
		}
		failed++
	}
	// Return aggregated error if any modules failed
	if failed > 1 {
		return results, fmt.Errorf("%w (and %d other module errors)", firstErr, failed-1)
	}
	return results, firstErr
}

// executeModule runs a single module in its own directory under a timeout.
func (r *Run) executeModule(parent context.Context, m Module) Result {
	res := Result{Module: m.Name(), StartedAt: r.clock.Now().UTC()}
	log := r.log.WithField("module", m.Name())

	// Create module-specific timeout context
	ctx, cancel := context.WithTimeout(parent, r.moduleTimeout)
	defer cancel()

	// Create module output directory
	dir := filepath.Join(r.artifactsDir, SanitizeName(m.Name()))
	if err := os.MkdirAll(dir, 0755); err != nil {
		res.EndedAt = r.clock.Now().UTC()
		res.Error = fmt.Sprintf("failed to create module directory: %v", err)
		log.WithError(err).Error("module directory")
		return res
	}

	// Execute the module
	log.Debug("module started")
	err := m.Collect(ctx, dir)
	res.EndedAt = r.clock.Now().UTC()
	log = log.WithField("duration", res.EndedAt.Sub(res.StartedAt))
	if err != nil {
		res.Error = err.Error()
		log.WithError(err).Warn("module failed")
		return res
	}

	res.OK = true
	log.Info("module completed")
	return res
}
