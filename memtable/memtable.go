// Package memtable is an example ForeignData implementation backed by a
// process-wide in-memory row store. It is the reference consumer of the
// wrapper: rows carry an id, a name and an email, the id column is the row
// identity for update/delete, and concurrent sessions share one store
// behind a read/write lock.
package memtable

import (
	"log"
	"sync"

	fdw "github.com/wrapgate/postgres-fdw"
	"github.com/wrapgate/postgres-fdw/host"
	"github.com/wrapgate/postgres-fdw/types"
)

// Row is one stored record. Name and Email are nil when the column was
// inserted as NULL.
type Row struct {
	ID    string
	Name  *string
	Email *string
}

type store struct {
	mu   sync.RWMutex
	rows []Row
}

// the process-wide table shared by all sessions
var table store

// Reset empties the store.
func Reset() {
	table.mu.Lock()
	defer table.mu.Unlock()
	table.rows = nil
}

// Rows returns a snapshot of the store.
func Rows() []Row {
	table.mu.RLock()
	defer table.mu.RUnlock()
	out := make([]Row, len(table.rows))
	copy(out, table.rows)
	return out
}

// Table is the per-session capability state. The backing store is shared;
// the capability itself carries nothing.
type Table struct{}

// Begin constructs the session state.
func Begin(_ *types.Options) (*Table, error) {
	return &Table{}, nil
}

// Indices declares the id column as the row identity.
func Indices(_ *types.Options) []string {
	return []string{"id"}
}

// NewWrapper builds a wrapper serving the in-memory table.
func NewWrapper(env host.Env) *fdw.Wrapper[*Table] {
	return fdw.New(env, Begin, fdw.WithIndices[*Table](Indices))
}

// Execute snapshots the store under the read lock. The returned producer
// owns the snapshot, so a scan is stable against concurrent writes.
func (t *Table) Execute(_ *types.TupleDesc) (fdw.RowIterator, error) {
	table.mu.RLock()
	defer table.mu.RUnlock()

	rows := make([][]any, len(table.rows))
	for i, r := range table.rows {
		row := make([]any, 3)
		row[0] = r.ID
		if r.Name != nil {
			row[1] = *r.Name
		}
		if r.Email != nil {
			row[2] = *r.Email
		}
		rows[i] = row
	}
	return &rowIterator{rows: rows}, nil
}

// Insert stores one row. Unrecognized columns are an error, not silently
// dropped.
func (t *Table) Insert(_ *types.TupleDesc, row []types.Tuple) ([]types.Tuple, error) {
	r, err := rowFromTuples(row)
	if err != nil {
		return nil, err
	}
	table.mu.Lock()
	defer table.mu.Unlock()
	table.rows = append(table.rows, r)
	return nil, nil
}

// Update merges the non-NULL columns of the new row image into every stored
// row matching the identity; NULL/absent columns keep their stored value.
func (t *Table) Update(_ *types.TupleDesc, row []types.Tuple, identity []types.Tuple) ([]types.Tuple, error) {
	id, err := identityID(identity)
	if err != nil {
		return nil, err
	}

	table.mu.Lock()
	defer table.mu.Unlock()
	matched := 0
	for i := range table.rows {
		if table.rows[i].ID != id {
			continue
		}
		if err := mergeTuples(&table.rows[i], row); err != nil {
			return nil, err
		}
		matched++
	}
	log.Printf("[TRACE] memtable update: id %q matched %d rows", id, matched)
	return nil, nil
}

// Delete removes every stored row matching the identity.
func (t *Table) Delete(_ *types.TupleDesc, identity []types.Tuple) ([]types.Tuple, error) {
	id, err := identityID(identity)
	if err != nil {
		return nil, err
	}

	table.mu.Lock()
	defer table.mu.Unlock()
	kept := table.rows[:0]
	for _, r := range table.rows {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	table.rows = kept
	return nil, nil
}

type rowIterator struct {
	rows  [][]any
	index int
}

func (i *rowIterator) Next() ([]any, error) {
	if idx := i.index; idx < len(i.rows) {
		i.index++
		return i.rows[idx], nil
	}
	return nil, nil
}

func (i *rowIterator) Close() {
	i.rows = nil
}

func rowFromTuples(tuples []types.Tuple) (Row, error) {
	var r Row
	for _, t := range tuples {
		if t.Value == nil {
			continue
		}
		text, err := datumText(t)
		if err != nil {
			return Row{}, err
		}
		switch t.Column {
		case "id":
			r.ID = text
		case "name":
			r.Name = &text
		case "email":
			r.Email = &text
		default:
			return Row{}, fdw.Errorf(fdw.ErrcodeFdwInvalidColumnName, "memtable has no column %q", t.Column)
		}
	}
	return r, nil
}

func mergeTuples(r *Row, tuples []types.Tuple) error {
	updated, err := rowFromTuples(tuples)
	if err != nil {
		return err
	}
	if updated.ID != "" {
		r.ID = updated.ID
	}
	if updated.Name != nil {
		r.Name = updated.Name
	}
	if updated.Email != nil {
		r.Email = updated.Email
	}
	return nil
}

func identityID(identity []types.Tuple) (string, error) {
	for _, t := range identity {
		if t.Column != "id" || t.Value == nil {
			continue
		}
		return datumText(t)
	}
	return "", fdw.Errorf(fdw.ErrcodeFdwInvalidColumnName, "identity image carries no id column")
}

func datumText(t types.Tuple) (string, error) {
	switch v := t.Value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fdw.Errorf(fdw.ErrcodeFdwInvalidAttributeValue, "column %q: expected text value, got %T", t.Column, t.Value)
	}
}
