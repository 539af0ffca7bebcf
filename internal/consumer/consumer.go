// Package consumer implements the callback the event source invokes once
// per raw event: pid filtering, dispatch, correlation, and the push into
// the event graph. This is the piece the engine's consumer worker blocks
// behind the source's "process trace" call to drive.
package consumer

import (
	"log/slog"
	"sync/atomic"

	"github.com/exeray/exeray/internal/correlator"
	"github.com/exeray/exeray/internal/dispatcher"
	"github.com/exeray/exeray/internal/eventmodel"
	"github.com/exeray/exeray/internal/graph"
	"github.com/exeray/exeray/internal/parsers"
	"github.com/exeray/exeray/internal/source"
	"github.com/exeray/exeray/internal/stringpool"
	"github.com/exeray/exeray/internal/telemetry"
)

// Context is the small bundle of non-owning references the consumer
// callback closes over, standing in for the borrowed ConsumerContext
// pointer a thread-based implementation would pass through a raw user
// pointer. TargetPid is an atomic filter: 0 accepts every pid.
type Context struct {
	Graph      *graph.Graph
	Strings    *stringpool.Pool
	Correlator *correlator.Correlator
	Dispatch   *dispatcher.Table
	Metrics    *telemetry.Metrics
	TargetPid  atomic.Uint32
}

// New builds a Context around the given graph, string pool, correlator and
// dispatch table. Metrics may be nil, in which case the callback simply
// skips recording.
func New(g *graph.Graph, strings *stringpool.Pool, corr *correlator.Correlator, dispatch *dispatcher.Table, metrics *telemetry.Metrics) *Context {
	return &Context{Graph: g, Strings: strings, Correlator: corr, Dispatch: dispatch, Metrics: metrics}
}

// Callback returns a source.Callback closing over c, safe to invoke from
// any number of concurrent event-source threads.
func (c *Context) Callback() source.Callback {
	return c.handle
}

func (c *Context) handle(raw source.RawEvent) {
	if filter := c.TargetPid.Load(); filter != 0 && raw.Header.ProcessId != filter {
		return
	}

	parsed := c.Dispatch.Dispatch(raw, c.Strings)
	if !parsed.Valid {
		c.dropped("parse_failed")
		return
	}

	parentPid := parentPidOf(parsed)
	parentId := c.findParent(parsed, parentPid)
	correlationId := c.Correlator.GetCorrelationId(parsed.Pid, parentPid)

	id := c.Graph.Push(parsed.Category, parsed.Operation, parsed.Status, parentId, correlationId, parsed.Payload)
	if id == eventmodel.InvalidEvent {
		c.dropped("graph_full")
		return
	}

	view, ok := c.Graph.Get(id)
	if !ok {
		slog.Warn("consumer: pushed node not immediately visible", "event_id", id)
		return
	}
	c.Correlator.RegisterEvent(view)

	c.ingested(parsed)
}

// findParent picks the correlator lookup spec.md §4.7 names by category:
// process-create uses the parent pid recorded by the parent process' own
// start event, thread events use the owning process's last event, and
// everything else falls back to the same per-pid lookup.
func (c *Context) findParent(parsed parsers.ParsedEvent, parentPid uint32) eventmodel.EventId {
	switch parsed.Category {
	case eventmodel.CategoryProcess:
		if eventmodel.ProcessOp(parsed.Operation) == eventmodel.ProcessCreate {
			return c.Correlator.FindProcessParent(parentPid)
		}
		return c.Correlator.FindOperationParent(parsed.Pid)
	case eventmodel.CategoryThread:
		return c.Correlator.FindThreadParent(parsed.Pid)
	default:
		return c.Correlator.FindOperationParent(parsed.Pid)
	}
}

func parentPidOf(parsed parsers.ParsedEvent) uint32 {
	if parsed.Category != eventmodel.CategoryProcess {
		return 0
	}
	proc, ok := parsed.Payload.AsProcess()
	if !ok {
		return 0
	}
	return proc.ParentPid
}

func (c *Context) dropped(reason string) {
	slog.Debug("consumer: dropping event", "reason", reason)
	if c.Metrics != nil {
		c.Metrics.EventsDropped.WithLabelValues(reason).Inc()
	}
}

func (c *Context) ingested(parsed parsers.ParsedEvent) {
	if c.Metrics == nil {
		return
	}
	category := parsed.Category.String()
	c.Metrics.EventsIngested.WithLabelValues(category).Inc()
	if parsed.Status == eventmodel.StatusSuspicious {
		c.Metrics.SuspiciousCount.WithLabelValues(category).Inc()
	}
}
