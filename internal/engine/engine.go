// Package engine ties the arena, string pool, event graph, correlator,
// dispatcher, target controller and event source into the monitoring-state
// machine the rest of the program drives: Idle -> Starting -> Monitoring ->
// Stopping -> Idle.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/exeray/exeray/internal/arena"
	"github.com/exeray/exeray/internal/consumer"
	"github.com/exeray/exeray/internal/correlator"
	"github.com/exeray/exeray/internal/dispatcher"
	"github.com/exeray/exeray/internal/graph"
	"github.com/exeray/exeray/internal/source"
	"github.com/exeray/exeray/internal/stringpool"
	"github.com/exeray/exeray/internal/target"
	"github.com/exeray/exeray/internal/telemetry"
)

// state is the engine-wide monitoring state, held in an atomic so
// is_monitoring() and the transition guards never need a lock.
type state uint32

const (
	stateIdle state = iota
	stateStarting
	stateMonitoring
	stateStopping
)

// ProviderEntry configures one provider's enablement, matching the
// provider table format the config package fills in.
type ProviderEntry struct {
	Name     string
	Enabled  bool
	Level    uint8
	Keywords uint64 // 0 means "all keywords"
}

// Config bundles the construction-time parameters the Engine needs: the
// arena/graph sizing, the provider table, and the collaborators the core
// treats as external (target controller, event source).
type Config struct {
	ArenaBytes     int
	GraphCapacity  int
	Providers      []ProviderEntry
	Controller     target.Controller
	Source         source.Session
	Metrics        *telemetry.Metrics
	TargetArgs     []string
	TargetWorkdir  string
}

// Engine owns every long-lived resource of the monitoring pipeline and
// exposes the start/stop/freeze surface the CLI front-end drives.
type Engine struct {
	mu    sync.Mutex
	state atomic.Uint32

	arena      *arena.Arena
	strings    *stringpool.Pool
	graph      *graph.Graph
	correlator *correlator.Correlator
	dispatch   *dispatcher.Table
	metrics    *telemetry.Metrics

	controller target.Controller
	src        source.Session

	providers     []ProviderEntry
	targetArgs    []string
	targetWorkdir string

	ctx        *consumer.Context
	cancel     context.CancelFunc
	workerDone chan struct{}
}

// New constructs an idle Engine. The arena is sized once at construction
// and backs the string pool; the graph's node slice is a separate Go slice
// sized by GraphCapacity.
func New(cfg Config) *Engine {
	a := arena.New(cfg.ArenaBytes)
	strings := stringpool.New(a)
	g := graph.New(cfg.GraphCapacity, strings)

	e := &Engine{
		arena:         a,
		strings:       strings,
		graph:         g,
		correlator:    correlator.New(),
		dispatch:      dispatcher.Default(),
		metrics:       cfg.Metrics,
		controller:    cfg.Controller,
		src:           cfg.Source,
		providers:     cfg.Providers,
		targetArgs:    cfg.TargetArgs,
		targetWorkdir: cfg.TargetWorkdir,
	}
	return e
}

// Graph returns the engine's event graph for read-only analysis.
func (e *Engine) Graph() *graph.Graph { return e.graph }

// IsMonitoring reports whether the engine is currently in the Monitoring
// state.
func (e *Engine) IsMonitoring() bool {
	return state(e.state.Load()) == stateMonitoring
}

// TargetPid returns the pid of the currently monitored target, or 0 if
// none is running.
func (e *Engine) TargetPid() uint32 {
	if e.controller == nil {
		return 0
	}
	return e.controller.Pid()
}

// StartMonitoring runs the Start transition described in spec.md §4.7:
// launch suspended, arm the pid filter, open the session, enable
// providers, flip the monitoring flag, launch the worker, resume. A failure
// to launch or to enable a provider rolls back everything done up to that
// point and returns false. A failure to resume the target is logged and
// start still returns true.
func (e *Engine) StartMonitoring(exePath string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.CompareAndSwap(uint32(stateIdle), uint32(stateStarting)) {
		slog.Warn("engine: start_monitoring called while not idle")
		return false
	}

	if err := e.controller.Launch(exePath, e.targetArgs, e.targetWorkdir); err != nil {
		slog.Error("engine: failed to launch target", "error", err)
		e.state.Store(uint32(stateIdle))
		return false
	}
	// The launched process starts suspended in a real deployment via the
	// controller's own launch contract; Suspend here is a defensive
	// second call for controllers (like the Linux one) that start running.
	if err := e.controller.Suspend(); err != nil {
		slog.Warn("engine: could not suspend target immediately after launch", "error", err)
	}

	consumerCtx := consumer.New(e.graph, e.strings, e.correlator, e.dispatch, e.metrics)
	consumerCtx.TargetPid.Store(e.controller.Pid())
	e.ctx = consumerCtx

	var enabled []string
	for _, p := range e.providers {
		if !p.Enabled {
			continue
		}
		if err := e.enableProviderLocked(p.Name, p.Level, p.Keywords); err != nil {
			slog.Error("engine: failed to enable provider during start", "provider", p.Name, "error", err)
			for _, name := range enabled {
				_ = e.src.DisableProvider(name)
			}
			if err := e.controller.Terminate(0); err != nil {
				slog.Warn("engine: failed to terminate target during start rollback", "error", err)
			}
			consumerCtx.TargetPid.Store(0)
			e.state.Store(uint32(stateIdle))
			return false
		}
		enabled = append(enabled, p.Name)
	}

	e.state.Store(uint32(stateMonitoring))

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.workerDone = make(chan struct{})
	go e.runWorker(ctx)

	if err := e.controller.Resume(); err != nil {
		slog.Error("engine: failed to resume target after arming session", "error", err)
	}

	return true
}

func (e *Engine) runWorker(ctx context.Context) {
	defer close(e.workerDone)
	if err := e.src.Start(ctx, e.ctx.Callback()); err != nil {
		slog.Error("engine: event source returned an error", "error", err)
	}
}

// StopMonitoring runs the Stop transition: clear the flag, tear down the
// session (unblocking the worker), join it, terminate the target if still
// alive, and clear the pid filter. Idempotent -- calling it while already
// Idle is a no-op.
func (e *Engine) StopMonitoring() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.CompareAndSwap(uint32(stateMonitoring), uint32(stateStopping)) {
		return
	}

	e.src.Stop()
	if e.cancel != nil {
		e.cancel()
	}
	if e.workerDone != nil {
		<-e.workerDone
	}

	if e.controller != nil && e.controller.IsRunning() {
		if err := e.controller.Terminate(0); err != nil {
			slog.Warn("engine: failed to terminate target during stop", "error", err)
		}
	}
	if e.ctx != nil {
		e.ctx.TargetPid.Store(0)
	}

	e.state.Store(uint32(stateIdle))
}

// FreezeTarget suspends the monitored process without stopping monitoring.
func (e *Engine) FreezeTarget() error {
	if e.controller == nil {
		return fmt.Errorf("engine: no controller configured")
	}
	return e.controller.Suspend()
}

// UnfreezeTarget resumes a previously frozen target.
func (e *Engine) UnfreezeTarget() error {
	if e.controller == nil {
		return fmt.Errorf("engine: no controller configured")
	}
	return e.controller.Resume()
}

// KillTarget terminates the monitored process immediately, independent of
// the monitoring state machine.
func (e *Engine) KillTarget() error {
	if e.controller == nil {
		return fmt.Errorf("engine: no controller configured")
	}
	return e.controller.Terminate(-1)
}

// EnableProvider arms name for delivery, validating it against the
// well-known provider table; unknown names are a no-op logged at WARN.
func (e *Engine) EnableProvider(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enableProviderLocked(name, 0, 0); err != nil {
		slog.Warn("engine: enable_provider on unknown name", "name", name)
	}
}

func (e *Engine) enableProviderLocked(name string, level uint8, keywords uint64) error {
	if _, ok := dispatcher.NameToProviderConfig[name]; !ok {
		return fmt.Errorf("engine: unknown provider %q", name)
	}
	return e.src.EnableProvider(source.ProviderConfig{Name: name, Level: level, Keywords: keywords})
}

// DisableProvider stops delivery for name; unknown names are a no-op
// logged at WARN.
func (e *Engine) DisableProvider(name string) {
	if _, ok := dispatcher.NameToProviderConfig[name]; !ok {
		slog.Warn("engine: disable_provider on unknown name", "name", name)
		return
	}
	if err := e.src.DisableProvider(name); err != nil {
		slog.Warn("engine: failed to disable provider", "name", name, "error", err)
	}
}

// IsProviderEnabled reports whether name is currently armed, for backends
// that track enablement (simsource). Unknown names report false.
func (e *Engine) IsProviderEnabled(name string) bool {
	type enabledChecker interface {
		IsEnabled(name string) bool
	}
	if checker, ok := e.src.(enabledChecker); ok {
		return checker.IsEnabled(name)
	}
	return false
}

// Close stops monitoring if still live, mirroring the destructor-calls-stop
// contract spec.md §4.7 requires.
func (e *Engine) Close() {
	if e.IsMonitoring() {
		e.StopMonitoring()
	}
}
