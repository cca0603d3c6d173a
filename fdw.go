// Package fdw turns a small plugin capability - begin a session, produce
// rows, optionally insert/update/delete - into a complete implementation of
// the host's foreign table access protocol. The wrapper owns the protocol
// state machine: it keeps per-session state across callbacks the host
// invokes at its own cadence, and marshals rows between the host's typed,
// nullable, column-indexed representation and the plugin's named-column
// tuples.
package fdw

import (
	"github.com/wrapgate/postgres-fdw/host"
	"github.com/wrapgate/postgres-fdw/settings"
)

// Wrapper adapts one ForeignData implementation to the host protocol. A
// single wrapper serves any number of concurrent sessions; each session
// owns an independent capability value and row producer.
type Wrapper[T ForeignData] struct {
	env      host.Env
	begin    BeginFunc[T]
	indices  IndicesFunc
	planner  *settings.PlannerSettings
	sessions *sessionRegistry[T]
}

// Option configures a Wrapper.
type Option[T ForeignData] func(*Wrapper[T])

// WithIndices declares the plugin's identity columns for update/delete.
func WithIndices[T ForeignData](fn IndicesFunc) Option[T] {
	return func(w *Wrapper[T]) { w.indices = fn }
}

// WithPlannerSettings overrides the default planner constants.
func WithPlannerSettings[T ForeignData](s *settings.PlannerSettings) Option[T] {
	return func(w *Wrapper[T]) { w.planner = s }
}

// New builds a wrapper around a plugin capability. begin is invoked once
// per session to construct the plugin's state.
func New[T ForeignData](env host.Env, begin BeginFunc[T], opts ...Option[T]) *Wrapper[T] {
	w := &Wrapper[T]{
		env:      env,
		begin:    begin,
		planner:  settings.NewPlannerSettings(),
		sessions: newSessionRegistry[T](),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// HostFunc is an entry point whose signature is owned by the host and not
// modeled here. Fields of this type are always nil in routines built by
// this package; the host's documented fallback applies to each.
type HostFunc any

// Routine is the host's table access dispatch table. Nil entries are
// unregistered: the host must not offer the corresponding feature for
// tables served by this wrapper.
type Routine struct {
	// planning
	GetForeignRelSize func(rel host.PlannerRel) error
	GetForeignPaths   func(rel host.PlannerRel) error
	GetForeignPlan    func(rel host.PlannerRel, tlist, scanClauses, outerPlan any) (*host.ForeignScanPlan, error)

	// scan execution
	BeginForeignScan   func(node host.ScanNode, eflags int) error
	IterateForeignScan func(node host.ScanNode) (host.TupleSlot, error)
	ReScanForeignScan  func(node host.ScanNode) error
	EndForeignScan     func(node host.ScanNode) error

	// modification
	AddForeignUpdateTargets func(target host.ModifyTarget) error
	BeginForeignModify      func(node host.ModifyNode, eflags int) error
	ExecForeignInsert       func(node host.ModifyNode, slot, planSlot host.TupleSlot) (host.TupleSlot, error)
	ExecForeignUpdate       func(node host.ModifyNode, slot, planSlot host.TupleSlot) (host.TupleSlot, error)
	ExecForeignDelete       func(node host.ModifyNode, slot, planSlot host.TupleSlot) (host.TupleSlot, error)
	EndForeignModify        func(node host.ModifyNode) error

	// Optional entry points this wrapper never registers: pushdown,
	// parallel scan, direct modify, row marks, explain, analyze and schema
	// import all fall back to host defaults.
	PlanForeignModify                HostFunc
	BeginForeignInsert               HostFunc
	EndForeignInsert                 HostFunc
	IsForeignRelUpdatable            HostFunc
	PlanDirectModify                 HostFunc
	BeginDirectModify                HostFunc
	IterateDirectModify              HostFunc
	EndDirectModify                  HostFunc
	GetForeignRowMarkType            HostFunc
	RefetchForeignRow                HostFunc
	RecheckForeignScan               HostFunc
	ExplainForeignScan               HostFunc
	ExplainForeignModify             HostFunc
	ExplainDirectModify              HostFunc
	AnalyzeForeignTable              HostFunc
	ImportForeignSchema              HostFunc
	GetForeignJoinPaths              HostFunc
	GetForeignUpperPaths             HostFunc
	IsForeignScanParallelSafe        HostFunc
	EstimateDSMForeignScan           HostFunc
	InitializeDSMForeignScan         HostFunc
	ReInitializeDSMForeignScan       HostFunc
	InitializeWorkerForeignScan      HostFunc
	ShutdownForeignScan              HostFunc
	ReparameterizeForeignPathByChild HostFunc
}

// Routine assembles the dispatch table for this wrapper, wiring implemented
// entry points and leaving every optional one absent.
func (w *Wrapper[T]) Routine() *Routine {
	return &Routine{
		GetForeignRelSize: w.getForeignRelSize,
		GetForeignPaths:   w.getForeignPaths,
		GetForeignPlan:    w.getForeignPlan,

		BeginForeignScan:   w.beginForeignScan,
		IterateForeignScan: w.iterateForeignScan,
		ReScanForeignScan:  w.reScanForeignScan,
		EndForeignScan:     w.endForeignScan,

		AddForeignUpdateTargets: w.addForeignUpdateTargets,
		BeginForeignModify:      w.beginForeignModify,
		ExecForeignInsert:       w.execForeignInsert,
		ExecForeignUpdate:       w.execForeignUpdate,
		ExecForeignDelete:       w.execForeignDelete,
		EndForeignModify:        w.endForeignModify,
	}
}
