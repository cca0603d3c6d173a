// Package fdwtest is an in-memory host implementation: enough catalog,
// slot, planner and node machinery to drive a wrapper's dispatch table
// without a live database engine. Plugin authors can use it to exercise a
// full scan or modify lifecycle in plain tests.
package fdwtest

import (
	"errors"

	"github.com/wrapgate/postgres-fdw/host"
	"github.com/wrapgate/postgres-fdw/typeconv"
	"github.com/wrapgate/postgres-fdw/types"
)

// TextOid is the type tag this fake host assigns to text columns.
const TextOid types.Oid = 25

// TextDesc builds a tuple descriptor of text columns.
func TextDesc(cols ...string) *types.TupleDesc {
	d := &types.TupleDesc{Attrs: make([]types.Attr, len(cols))}
	for i, c := range cols {
		d.Attrs[i] = types.Attr{Name: c, Type: TextOid}
	}
	return d
}

// TextRelation builds relation metadata over a text-column descriptor.
func TextRelation(id types.Oid, namespace, name string, cols ...string) *types.Relation {
	return &types.Relation{
		ID:        id,
		IsValid:   true,
		Name:      name,
		Namespace: namespace,
		Attr:      TextDesc(cols...),
	}
}

// Defs converts a plain map into an option list.
func Defs(m map[string]string) []host.OptionDef {
	defs := make([]host.OptionDef, 0, len(m))
	for k, v := range m {
		defs = append(defs, host.OptionDef{Name: []byte(k), Value: []byte(v)})
	}
	return defs
}

// Catalog serves fixed option lists for every relation.
type Catalog struct {
	Server []host.OptionDef
	Table  []host.OptionDef
}

func (c *Catalog) TableOptions(types.Oid) ([]host.OptionDef, error) { return c.Table, nil }
func (c *Catalog) ServerOptions(types.Oid) ([]host.OptionDef, error) { return c.Server, nil }

// TextConverter renders every value as text, the way a text-typed host
// column would receive it.
type TextConverter struct{}

func (TextConverter) ValueToDatum(v any, _ types.Oid) (types.Datum, error) {
	if v == nil {
		return nil, nil
	}
	return types.Datum(typeconv.ValueString(v)), nil
}

// Env bundles the fake catalog and converter.
func Env(catalog *Catalog) host.Env {
	if catalog == nil {
		catalog = &Catalog{}
	}
	return host.Env{Catalog: catalog, Converter: TextConverter{}}
}

// Slot is an in-memory tuple slot. Pending holds values a "physical" row
// would materialize on demand; Materialize copies them into the live
// arrays.
type Slot struct {
	Desc    *types.TupleDesc
	Pending []types.Datum
	values  []types.Datum
	nulls   []bool
	nvalid  int
	Stored  bool
	NoClear bool
	Clears  int
}

// NewSlot builds an empty slot over a descriptor.
func NewSlot(desc *types.TupleDesc) *Slot {
	return &Slot{Desc: desc}
}

// NewRowSlot builds a slot holding one unmaterialized row; nil items are
// NULL.
func NewRowSlot(desc *types.TupleDesc, row ...types.Datum) *Slot {
	return &Slot{Desc: desc, Pending: row}
}

func (s *Slot) Clear() error {
	if s.NoClear {
		return errors.New("slot implementation has no clear operation")
	}
	s.Clears++
	s.values = nil
	s.nulls = nil
	s.nvalid = 0
	s.Stored = false
	return nil
}

func (s *Slot) NValid() int { return s.nvalid }

func (s *Slot) Materialize(natts int) error {
	if s.nvalid >= natts {
		return nil
	}
	if natts > len(s.Pending) {
		natts = len(s.Pending)
	}
	s.values = make([]types.Datum, natts)
	s.nulls = make([]bool, natts)
	for i := 0; i < natts; i++ {
		s.values[i] = s.Pending[i]
		s.nulls[i] = s.Pending[i] == nil
	}
	s.nvalid = natts
	return nil
}

func (s *Slot) Values() []types.Datum { return s.values }
func (s *Slot) Nulls() []bool         { return s.nulls }

func (s *Slot) StoreVirtualRow(values []types.Datum, nulls []bool) error {
	if len(values) != len(nulls) {
		return errors.New("value and null arrays differ in length")
	}
	s.values = values
	s.nulls = nulls
	s.nvalid = len(values)
	s.Stored = true
	return nil
}

func (s *Slot) TupleDesc() *types.TupleDesc { return s.Desc }

// Row reads the stored row back out; NULL columns come back nil.
func (s *Slot) Row() []types.Datum {
	row := make([]types.Datum, s.nvalid)
	for i := 0; i < s.nvalid; i++ {
		if !s.nulls[i] {
			row[i] = s.values[i]
		}
	}
	return row
}

// StateSlot is an in-memory per-node opaque slot.
type StateSlot struct{ v any }

func (s *StateSlot) Get() any  { return s.v }
func (s *StateSlot) Set(v any) { s.v = v }

// ScanNode is one fake scan node.
type ScanNode struct {
	Rel   *types.Relation
	Slot  *Slot
	state StateSlot
}

// NewScanNode builds a scan node with an empty scan slot.
func NewScanNode(rel *types.Relation) *ScanNode {
	return &ScanNode{Rel: rel, Slot: NewSlot(rel.Attr)}
}

func (n *ScanNode) Relation() *types.Relation { return n.Rel }
func (n *ScanNode) ScanSlot() host.TupleSlot  { return n.Slot }
func (n *ScanNode) State() host.StateSlot     { return &n.state }

// ModifyNode is one fake modify node.
type ModifyNode struct {
	Rel   *types.Relation
	state StateSlot
}

func (n *ModifyNode) Relation() *types.Relation { return n.Rel }
func (n *ModifyNode) State() host.StateSlot     { return &n.state }

// PlannerRel is the fake planner's view of a relation; it records what the
// wrapper reports.
type PlannerRel struct {
	Rel   *types.Relation
	Relid int
	Rows  float64
	Paths []host.ForeignPath
}

func (r *PlannerRel) Relation() *types.Relation   { return r.Rel }
func (r *PlannerRel) RelID() int                  { return r.Relid }
func (r *PlannerRel) SetRowEstimate(rows float64) { r.Rows = rows }
func (r *PlannerRel) AddPath(p host.ForeignPath)  { r.Paths = append(r.Paths, p) }

// TargetList records appended synthetic target entries on top of the
// statement's original projection.
type TargetList struct {
	Selected []string
	Added    []host.TargetEntry
}

func (l *TargetList) Len() int { return len(l.Selected) + len(l.Added) }

func (l *TargetList) Has(column string) bool {
	for _, c := range l.Selected {
		if c == column {
			return true
		}
	}
	for _, e := range l.Added {
		if e.Column == column {
			return true
		}
	}
	return false
}

func (l *TargetList) Append(e host.TargetEntry) { l.Added = append(l.Added, e) }

// ModifyTarget is the fake add-update-targets context.
type ModifyTarget struct {
	Rel  *types.Relation
	RRel int
	List TargetList
}

func (t *ModifyTarget) Relation() *types.Relation { return t.Rel }
func (t *ModifyTarget) ResultRel() int            { return t.RRel }
func (t *ModifyTarget) Targets() host.TargetList  { return &t.List }
