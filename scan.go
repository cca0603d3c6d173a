package fdw

import (
	"context"
	"log"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wrapgate/postgres-fdw/host"
	"github.com/wrapgate/postgres-fdw/instrument"
	"github.com/wrapgate/postgres-fdw/settings"
	"github.com/wrapgate/postgres-fdw/types"
)

// Scan lifecycle: RelSize -> Paths -> Plan -> Begin -> Iterate* ->
// Rescan? -> End. The host drives the order; the wrapper only keeps the
// session state consistent across calls.

// effectiveSettings resolves the planner constants for a relation, applying
// any per-server overrides on top of the wrapper defaults.
func (w *Wrapper[T]) effectiveSettings(rel *types.Relation) (*settings.PlannerSettings, error) {
	opts, err := OptionsFromRelation(w.env.Catalog, rel)
	if err != nil {
		return nil, err
	}
	eff := w.planner.Clone()
	if err := eff.ApplyOptions(opts.ServerOpts); err != nil {
		return nil, Errorf(ErrcodeFdwInvalidAttributeValue, "invalid planner setting: %v", err)
	}
	return eff, nil
}

// getForeignRelSize reports the relation size estimate. There is no
// cardinality estimation: the estimate is a constant.
func (w *Wrapper[T]) getForeignRelSize(rel host.PlannerRel) error {
	eff, err := w.effectiveSettings(rel.Relation())
	if err != nil {
		return err
	}
	rel.SetRowEstimate(eff.RowEstimate)
	return nil
}

// getForeignPaths emits exactly one fixed-cost access path. No alternative
// strategies are considered.
func (w *Wrapper[T]) getForeignPaths(rel host.PlannerRel) error {
	eff, err := w.effectiveSettings(rel.Relation())
	if err != nil {
		return err
	}
	rel.AddPath(host.ForeignPath{
		Rows:        eff.RowEstimate,
		StartupCost: types.Cost(eff.StartupCost),
		TotalCost:   types.Cost(eff.TotalCost),
	})
	return nil
}

// getForeignPlan finalizes the plan, forwarding the target list and scan
// clauses unchanged.
func (w *Wrapper[T]) getForeignPlan(rel host.PlannerRel, tlist, scanClauses, outerPlan any) (*host.ForeignScanPlan, error) {
	return &host.ForeignScanPlan{
		ScanRelid:  rel.RelID(),
		TargetList: tlist,
		Clauses:    scanClauses,
		OuterPlan:  outerPlan,
	}, nil
}

// beginForeignScan resolves the session options, constructs the plugin
// state and parks both behind the node's opaque state slot. The row
// producer stays absent until the first Iterate.
func (w *Wrapper[T]) beginForeignScan(node host.ScanNode, eflags int) error {
	rel := node.Relation()
	opts, err := OptionsFromRelation(w.env.Catalog, rel)
	if err != nil {
		return err
	}
	state, err := w.begin(opts)
	if err != nil {
		return Errorf(ErrcodeFdwError, "plugin begin failed for %s.%s: %v", rel.Namespace, rel.Name, err)
	}

	s := &sessionState[T]{id: uuid.New().String(), opts: opts, state: state}
	_, s.span = instrument.StartSpan(context.Background(), "fdw.scan")
	s.span.SetAttributes(
		attribute.String("table", rel.Name),
		attribute.String("session_id", s.id),
	)

	node.State().Set(w.sessions.save(s))
	log.Printf("[TRACE] beginForeignScan: %s.%s session %s eflags %d", rel.Namespace, rel.Name, s.id, eflags)
	return nil
}

// iterateForeignScan returns the next row, encoded into the node's scan
// slot. The plugin's Execute runs on the first call only; the producer it
// returns serves the rest of the scan. Exhaustion returns the cleared slot,
// the host's end-of-scan signal.
func (w *Wrapper[T]) iterateForeignScan(node host.ScanNode) (host.TupleSlot, error) {
	_, s, err := w.session(node.State())
	if err != nil {
		return nil, err
	}

	slot, err := clearSlot(node.ScanSlot())
	if err != nil {
		return nil, err
	}

	if s.rows == nil {
		rows, err := s.state.Execute(node.Relation().Attr)
		if err != nil {
			return nil, Errorf(ErrcodeFdwError, "plugin execute failed for %q: %v", s.opts.TableName, err)
		}
		s.rows = rows
	}

	row, err := s.rows.Next()
	if err != nil {
		return nil, Errorf(ErrcodeFdwError, "row producer failed for %q: %v", s.opts.TableName, err)
	}
	if row == nil {
		return slot, nil
	}
	return StoreRow(w.env.Converter, slot, node.Relation().Attr, row)
}

// reScanForeignScan is a no-op: there is no incremental reset logic, and a
// full rescan keeps serving the existing producer.
func (w *Wrapper[T]) reScanForeignScan(node host.ScanNode) error {
	_, s, err := w.session(node.State())
	if err != nil {
		return err
	}
	log.Printf("[TRACE] reScanForeignScan: session %s", s.id)
	return nil
}

// endForeignScan closes the row producer, if any, and drops the session.
func (w *Wrapper[T]) endForeignScan(node host.ScanNode) error {
	tok, s, err := w.session(node.State())
	if err != nil {
		return err
	}
	log.Printf("[TRACE] endForeignScan: session %s", s.id)
	w.release(tok, s)
	node.State().Set(nil)
	return nil
}
