package fdw

import (
	"log"

	"github.com/turbot/go-kit/helpers"

	"github.com/wrapgate/postgres-fdw/host"
	"github.com/wrapgate/postgres-fdw/types"
)

// The tuple codec is the single choke point where host representation
// crosses into plugin representation. Decoding turns a row slot into one
// Tuple per column; encoding turns a plugin row into a stored host row.

// SlotToTuples decodes a host row slot into one Tuple per column, in
// declared column order. If the slot has not materialized its values yet,
// it is materialized first. Only columns within the materialized bound are
// read.
func SlotToTuples(slot host.TupleSlot) ([]types.Tuple, error) {
	desc := slot.TupleDesc()
	if slot.NValid() == 0 {
		if err := slot.Materialize(len(desc.Attrs)); err != nil {
			return nil, Errorf(ErrcodeFdwError, "materializing row slot: %v", err)
		}
	}

	nvalid := slot.NValid()
	values := slot.Values()
	nulls := slot.Nulls()
	if len(values) < nvalid || len(nulls) < nvalid {
		return nil, Errorf(ErrcodeFdwError,
			"row slot reports %d materialized columns but exposes %d values and %d null flags",
			nvalid, len(values), len(nulls))
	}

	tuples := make([]types.Tuple, 0, nvalid)
	for i, attr := range desc.Attrs {
		if i >= nvalid {
			break
		}
		t := types.Tuple{Column: attr.Name, Type: attr.Type}
		if !nulls[i] {
			t.Value = values[i]
		}
		tuples = append(tuples, t)
	}
	return tuples, nil
}

// StoreRow encodes one plugin row into the slot and returns it. The row may
// be shorter than the column count; trailing columns, nil items and items
// the host cannot convert are stored as NULL.
func StoreRow(conv host.Converter, slot host.TupleSlot, desc *types.TupleDesc, row []any) (host.TupleSlot, error) {
	attrs := desc.Attrs
	values := make([]types.Datum, len(attrs))
	nulls := make([]bool, len(attrs))
	for i := range nulls {
		nulls[i] = true
	}

	for i, attr := range attrs {
		if i >= len(row) {
			break
		}
		item := row[i]
		if item == nil {
			continue
		}
		datum, err := valueToDatum(conv, item, attr.Type)
		if err != nil {
			log.Printf("[TRACE] StoreRow: column %q value not convertible, storing null: %v", attr.Name, err)
			continue
		}
		if datum == nil {
			continue
		}
		values[i] = datum
		nulls[i] = false
	}

	if err := slot.StoreVirtualRow(values, nulls); err != nil {
		return nil, Errorf(ErrcodeFdwError, "storing row into slot: %v", err)
	}
	return slot, nil
}

// valueToDatum guards the host conversion routine against panics.
func valueToDatum(conv host.Converter, v any, typeTag types.Oid) (d types.Datum, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = helpers.ToError(r)
		}
	}()
	return conv.ValueToDatum(v, typeTag)
}

// clearSlot empties the slot, treating a slot that cannot clear as a host
// invariant violation.
func clearSlot(slot host.TupleSlot) (host.TupleSlot, error) {
	if err := slot.Clear(); err != nil {
		return nil, Errorf(ErrcodeFdwError, "row slot does not support clearing: %v", err)
	}
	return slot, nil
}
