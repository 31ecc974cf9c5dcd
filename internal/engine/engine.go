// Package engine executes workflow templates as local OS processes. Each
// run gets an isolated directory under the engine base directory; steps
// run sequentially and the first failing command ends the run. The engine
// is intended for testing and benchmarking backends, not production
// scheduling.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/scailfin/benchmark-multiproc-backend/internal/stage"
	"github.com/scailfin/benchmark-multiproc-backend/internal/store"
	"github.com/scailfin/benchmark-multiproc-backend/internal/template"
	"github.com/scailfin/benchmark-multiproc-backend/pkg/model"
)

// Option configures an Engine.
type Option func(*Engine)

// WithStore persists run records to the given store in addition to the
// in-memory run index.
func WithStore(st store.Store) Option {
	return func(e *Engine) { e.store = st }
}

// WithMetrics records run metrics.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// Engine runs workflow templates for sets of argument values and tracks
// the state of each run. Runs are identified by unique ids assigned when
// execution starts.
type Engine struct {
	baseDir string
	logger  *slog.Logger
	stager  *stage.FileStager
	store   store.Store
	metrics *Metrics

	mu   sync.Mutex
	runs map[string]*runHandle
}

// runHandle tracks one run: its record, the cancel function for the step
// processes, and a channel closed when the run goroutine finishes.
type runHandle struct {
	run    *model.Run
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an Engine with runs maintained under baseDir. The directory
// is created if it does not exist.
func New(baseDir string, logger *slog.Logger, opts ...Option) (*Engine, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create engine base dir: %w", err)
	}
	e := &Engine{
		baseDir: baseDir,
		logger:  logger.With("component", "engine"),
		stager:  stage.NewFileStager(logger),
		runs:    make(map[string]*runHandle),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Execute starts a run of the template for the given arguments and
// returns its unique id. Argument validation, run directory setup, file
// staging, and command expansion happen before the run is registered; any
// failure there removes the run directory and returns the error without
// creating a run. The steps themselves execute asynchronously.
func (e *Engine) Execute(ctx context.Context, t *model.Template, payloadDir string, args template.Arguments) (string, error) {
	// Make sure every template parameter has a value before any
	// directories are created or files are copied.
	if err := template.ValidateArguments(t, args); err != nil {
		return "", err
	}

	runID := newRunID()
	runDir := filepath.Join(e.baseDir, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", fmt.Errorf("create run dir: %w", err)
	}

	commands, outputFiles, err := e.prepare(t, payloadDir, args, runDir)
	if err != nil {
		os.RemoveAll(runDir)
		return "", err
	}

	run := &model.Run{
		ID:         runID,
		TemplateID: t.ID,
		State:      model.RunStatePending,
		Arguments:  rawArguments(args),
		CreatedAt:  time.Now(),
	}
	if err := run.Transition(model.RunStateRunning); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	h := &runHandle{run: run, cancel: cancel, done: make(chan struct{})}

	e.mu.Lock()
	e.runs[runID] = h
	e.mu.Unlock()

	if e.store != nil {
		if err := e.store.CreateRun(ctx, run); err != nil {
			cancel()
			e.dropRun(runID)
			os.RemoveAll(runDir)
			return "", fmt.Errorf("persist run: %w", err)
		}
	}

	e.metrics.RunStarted()
	e.logger.Info("run started", "run_id", runID, "template_id", t.ID, "commands", len(commands))

	go e.runWorkflow(runCtx, h, runDir, commands, outputFiles)
	return runID, nil
}

// ExecuteSync starts a run and waits for it to reach a terminal state.
// The returned run id is valid even when the run ends in ERROR; the error
// return covers setup failures only.
func (e *Engine) ExecuteSync(ctx context.Context, t *model.Template, payloadDir string, args template.Arguments) (string, error) {
	runID, err := e.Execute(ctx, t, payloadDir, args)
	if err != nil {
		return "", err
	}
	if _, err := e.Wait(ctx, runID); err != nil {
		return runID, err
	}
	return runID, nil
}

// prepare stages input files into the run directory and expands the step
// commands and declared output files for the given arguments.
func (e *Engine) prepare(t *model.Template, payloadDir string, args template.Arguments, runDir string) ([]string, []string, error) {
	entries, err := stage.Plan(t, args, payloadDir)
	if err != nil {
		return nil, nil, err
	}
	if err := e.stager.Stage(entries, runDir); err != nil {
		return nil, nil, err
	}

	commands, err := template.Commands(t, args)
	if err != nil {
		return nil, nil, err
	}
	return commands, template.OutputFiles(t, args), nil
}

// runWorkflow executes the expanded commands and records the terminal
// state of the run.
func (e *Engine) runWorkflow(ctx context.Context, h *runHandle, runDir string, commands, outputFiles []string) {
	defer close(h.done)

	messages := runCommands(ctx, runDir, commands, e.logger)
	canceled := ctx.Err() != nil

	e.mu.Lock()
	defer e.mu.Unlock()

	run := h.run
	if run.State.IsTerminal() {
		// Cancel already finalized the record.
		return
	}

	switch {
	case canceled:
		run.Transition(model.RunStateCanceled)
	case len(messages) > 0:
		run.Messages = messages
		run.Transition(model.RunStateError)
	default:
		run.Resources = collectResources(runDir, outputFiles)
		run.Transition(model.RunStateSuccess)
	}

	e.metrics.RunFinished(run.State, run.Duration())
	e.logger.Info("run finished", "run_id", run.ID, "state", run.State, "duration", run.Duration())

	if e.store != nil {
		if err := e.store.UpdateRun(context.Background(), run); err != nil {
			e.logger.Error("persist run state", "run_id", run.ID, "error", err)
		}
	}
}

// State returns a snapshot of the run with the given id. Unknown ids,
// including ids of canceled runs, yield an UnknownRunError.
func (e *Engine) State(runID string) (*model.Run, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	h, ok := e.runs[runID]
	if !ok {
		return nil, &model.UnknownRunError{RunID: runID}
	}
	return snapshot(h.run), nil
}

// Cancel requests cancellation of the given run: step processes are
// killed and the run is removed from the engine's index. Canceling an
// unknown run is a no-op.
func (e *Engine) Cancel(runID string) error {
	e.mu.Lock()
	h, ok := e.runs[runID]
	if ok {
		delete(e.runs, runID)
	}
	e.mu.Unlock()
	if !ok {
		return nil
	}

	h.cancel()

	e.mu.Lock()
	run := h.run
	finalized := false
	if run.State.IsActive() {
		run.Transition(model.RunStateCanceled)
		finalized = true
	}
	state := run.State
	e.mu.Unlock()

	// runWorkflow skips terminal records, so the finished metric is
	// recorded here when Cancel won the race.
	if finalized {
		e.metrics.RunFinished(run.State, run.Duration())
	}

	e.logger.Info("run canceled", "run_id", runID)
	if e.store != nil && state == model.RunStateCanceled {
		if err := e.store.UpdateRun(context.Background(), run); err != nil {
			return fmt.Errorf("persist canceled run: %w", err)
		}
	}
	return nil
}

// Wait blocks until the run reaches a terminal state or ctx is done, and
// returns the final run snapshot.
func (e *Engine) Wait(ctx context.Context, runID string) (*model.Run, error) {
	e.mu.Lock()
	h, ok := e.runs[runID]
	e.mu.Unlock()
	if !ok {
		return nil, &model.UnknownRunError{RunID: runID}
	}

	select {
	case <-h.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return snapshot(h.run), nil
}

// RunDir returns the working directory of a run.
func (e *Engine) RunDir(runID string) string {
	return filepath.Join(e.baseDir, runID)
}

func (e *Engine) dropRun(runID string) {
	e.mu.Lock()
	delete(e.runs, runID)
	e.mu.Unlock()
}

// snapshot copies a run record so callers can read it without holding the
// engine lock.
func snapshot(run *model.Run) *model.Run {
	cp := *run
	if run.Messages != nil {
		cp.Messages = append([]string(nil), run.Messages...)
	}
	if run.Resources != nil {
		cp.Resources = make(map[string]model.FileResource, len(run.Resources))
		for k, v := range run.Resources {
			cp.Resources[k] = v
		}
	}
	if run.Arguments != nil {
		cp.Arguments = make(map[string]any, len(run.Arguments))
		for k, v := range run.Arguments {
			cp.Arguments[k] = v
		}
	}
	return &cp
}

// rawArguments flattens bound arguments into the plain values recorded on
// the run: file arguments record their source path.
func rawArguments(args template.Arguments) map[string]any {
	raw := make(map[string]any, len(args))
	for id, arg := range args {
		if arg.File != nil {
			raw[id] = arg.File.Source
		} else {
			raw[id] = arg.Value
		}
	}
	return raw
}

// newRunID returns a uuid4 hex string without dashes.
func newRunID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
