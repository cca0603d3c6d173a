package fdw

import (
	"context"
	"log"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/exp/slices"

	"github.com/wrapgate/postgres-fdw/host"
	"github.com/wrapgate/postgres-fdw/instrument"
	"github.com/wrapgate/postgres-fdw/types"
)

// Modify lifecycle: the add-update-targets step runs once per target table
// during planning; then Begin -> Insert|Update|Delete* -> End. A modify
// session is independent from any scan session over the same table.

// addForeignUpdateTargets injects a junk projection column for every
// declared identity column the statement did not already select, so that
// update/delete always receive the identity values.
func (w *Wrapper[T]) addForeignUpdateTargets(target host.ModifyTarget) error {
	if w.indices == nil {
		return nil
	}
	rel := target.Relation()
	opts, err := OptionsFromRelation(w.env.Catalog, rel)
	if err != nil {
		return err
	}
	keys := w.indices(opts)
	if len(keys) == 0 {
		return nil
	}

	list := target.Targets()
	for i, attr := range rel.Attr.Attrs {
		if attr.Dropped || !slices.Contains(keys, attr.Name) {
			continue
		}
		if list.Has(attr.Name) {
			continue
		}
		list.Append(host.TargetEntry{
			Column:    attr.Name,
			ResultRel: target.ResultRel(),
			AttNo:     int16(i + 1),
			Type:      attr.Type,
			TypeMod:   attr.TypeMod,
			Collation: attr.Collation,
			Junk:      true,
		})
		log.Printf("[TRACE] addForeignUpdateTargets: injected identity column %q for %s.%s", attr.Name, rel.Namespace, rel.Name)
	}
	return nil
}

// beginForeignModify mirrors scan begin: fresh options, fresh plugin state,
// parked behind the node's state slot.
func (w *Wrapper[T]) beginForeignModify(node host.ModifyNode, eflags int) error {
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
	_, s.span = instrument.StartSpan(context.Background(), "fdw.modify")
	s.span.SetAttributes(
		attribute.String("table", rel.Name),
		attribute.String("session_id", s.id),
	)

	node.State().Set(w.sessions.save(s))
	log.Printf("[TRACE] beginForeignModify: %s.%s session %s eflags %d", rel.Namespace, rel.Name, s.id, eflags)
	return nil
}

// execForeignInsert decodes the incoming full row image and hands it to the
// plugin. The plugin's returned row is advisory and is not written back;
// the original slot is returned unchanged.
func (w *Wrapper[T]) execForeignInsert(node host.ModifyNode, slot, planSlot host.TupleSlot) (host.TupleSlot, error) {
	_, s, err := w.session(node.State())
	if err != nil {
		return nil, err
	}
	row, err := SlotToTuples(slot)
	if err != nil {
		return nil, err
	}
	result, err := s.state.Insert(slot.TupleDesc(), row)
	if err != nil {
		return nil, Errorf(ErrcodeFdwError, "insert into %q failed: %v", s.opts.TableName, err)
	}
	logAdvisoryResult("insert", result)
	return slot, nil
}

// execForeignUpdate decodes the new row image from the scan slot and the
// identity image from the plan slot.
func (w *Wrapper[T]) execForeignUpdate(node host.ModifyNode, slot, planSlot host.TupleSlot) (host.TupleSlot, error) {
	_, s, err := w.session(node.State())
	if err != nil {
		return nil, err
	}
	row, err := SlotToTuples(slot)
	if err != nil {
		return nil, err
	}
	identity, err := SlotToTuples(planSlot)
	if err != nil {
		return nil, err
	}
	result, err := s.state.Update(slot.TupleDesc(), row, identity)
	if err != nil {
		return nil, Errorf(ErrcodeFdwError, "update of %q failed: %v", s.opts.TableName, err)
	}
	logAdvisoryResult("update", result)
	return slot, nil
}

// execForeignDelete decodes the identity image from the plan slot.
func (w *Wrapper[T]) execForeignDelete(node host.ModifyNode, slot, planSlot host.TupleSlot) (host.TupleSlot, error) {
	_, s, err := w.session(node.State())
	if err != nil {
		return nil, err
	}
	identity, err := SlotToTuples(planSlot)
	if err != nil {
		return nil, err
	}
	result, err := s.state.Delete(planSlot.TupleDesc(), identity)
	if err != nil {
		return nil, Errorf(ErrcodeFdwError, "delete from %q failed: %v", s.opts.TableName, err)
	}
	logAdvisoryResult("delete", result)
	return slot, nil
}

// endForeignModify drops the session.
func (w *Wrapper[T]) endForeignModify(node host.ModifyNode) error {
	tok, s, err := w.session(node.State())
	if err != nil {
		return err
	}
	log.Printf("[TRACE] endForeignModify: session %s", s.id)
	w.release(tok, s)
	node.State().Set(nil)
	return nil
}

// Advisory rows returned by insert/update/delete are not written back into
// the host row; they are logged and dropped.
func logAdvisoryResult(op string, result []types.Tuple) {
	if result != nil {
		log.Printf("[TRACE] %s returned an advisory row (%d columns) - not written back", op, len(result))
	}
}
