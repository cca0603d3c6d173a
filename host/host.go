// Package host defines the narrow surface this wrapper consumes from the
// database engine: catalog option lookup, tuple slots, planner hooks,
// target lists and the opaque per-node state slot. A host integration
// implements these interfaces; the wrapper never reaches past them into
// engine internals.
package host

import (
	"github.com/wrapgate/postgres-fdw/types"
)

// OptionDef is one key/value pair from a catalog option list. Both sides
// are text-encoded by the host but may contain bytes that are not valid
// UTF-8; the options reader rejects those as a catalog integrity problem.
type OptionDef struct {
	Name  []byte
	Value []byte
}

// Catalog resolves the option lists attached to a foreign table and to the
// foreign server owning it, keyed by the relation's Oid. A nil list means
// the object carries no options; it is not an error.
type Catalog interface {
	TableOptions(rel types.Oid) ([]OptionDef, error)
	ServerOptions(rel types.Oid) ([]OptionDef, error)
}

// Converter is the host's value conversion routine. The type tag comes
// from the column descriptor and is forwarded verbatim; the wrapper never
// interprets it. Returning a nil Datum records the column as NULL.
type Converter interface {
	ValueToDatum(v any, typeTag types.Oid) (types.Datum, error)
}

// TupleSlot is a host row slot. Values and Nulls expose the slot's
// materialized column arrays; only the first NValid entries are defined.
type TupleSlot interface {
	// Clear empties the slot. A slot implementation that cannot clear is a
	// host invariant violation and is reported as a fatal error upstream.
	Clear() error
	// NValid reports how many leading columns have been materialized.
	NValid() int
	// Materialize forces at least natts columns into Values/Nulls.
	Materialize(natts int) error
	Values() []types.Datum
	Nulls() []bool
	// StoreVirtualRow forms a physical row from parallel value/null arrays
	// and stores it into the slot.
	StoreVirtualRow(values []types.Datum, nulls []bool) error
	TupleDesc() *types.TupleDesc
}

// StateSlot is the host-owned opaque per-node storage. The wrapper writes
// and reads exactly one value through it; allocation and release of the
// underlying memory stay with the host.
type StateSlot interface {
	Get() any
	Set(v any)
}

// Env bundles the host facilities a wrapper needs across all sessions.
type Env struct {
	Catalog   Catalog
	Converter Converter
}

// ForeignPath is one access path offered to the planner. The wrapper only
// ever emits a single fixed-cost path.
type ForeignPath struct {
	Rows        float64
	StartupCost types.Cost
	TotalCost   types.Cost
}

// PlannerRel is the planner's view of the base relation while a scan is
// being planned.
type PlannerRel interface {
	Relation() *types.Relation
	// RelID is the relation's index in the statement's range table.
	RelID() int
	SetRowEstimate(rows float64)
	AddPath(path ForeignPath)
}

// ForeignScanPlan is the finished scan plan handed back to the host.
// TargetList, Clauses and OuterPlan are opaque planner nodes; the wrapper
// forwards them unchanged.
type ForeignScanPlan struct {
	ScanRelid  int
	TargetList any
	Clauses    any
	OuterPlan  any
}

// TargetEntry is one synthetic projection column injected into a modify
// statement's target list so identity values reach update/delete.
type TargetEntry struct {
	Column    string
	ResultRel int
	AttNo     int16
	Type      types.Oid
	TypeMod   int32
	Collation types.Oid
	Junk      bool
}

// TargetList is the statement's projection list during the modify-target
// step.
type TargetList interface {
	Len() int
	Has(column string) bool
	Append(e TargetEntry)
}

// ModifyTarget is the context of the add-update-targets entry point: the
// target relation, its index in the statement, and the mutable target list.
type ModifyTarget interface {
	Relation() *types.Relation
	ResultRel() int
	Targets() TargetList
}

// ScanNode is one executing foreign scan node.
type ScanNode interface {
	Relation() *types.Relation
	ScanSlot() TupleSlot
	State() StateSlot
}

// ModifyNode is one executing foreign modify node.
type ModifyNode interface {
	Relation() *types.Relation
	State() StateSlot
}
