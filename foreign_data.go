package fdw

import "github.com/wrapgate/postgres-fdw/types"

// ForeignData is the capability a plugin implements to back a foreign
// table. One value serves one session: a scan or a modification statement.
//
// Any internal inconsistency - an unmatched column name, a value that
// cannot be converted - should be reported as an error; it aborts the host
// statement. A plugin choosing to ignore unknown columns must do so
// explicitly.
type ForeignData interface {
	// Execute returns the row producer for a scan, reflecting the table's
	// contents at call time. It is invoked exactly once per scan session;
	// the returned producer serves every subsequent row request.
	Execute(desc *types.TupleDesc) (RowIterator, error)

	// Insert applies one insert. row carries the full column image; absent
	// values are nil. The returned row is advisory - a possibly transformed
	// row to report back - and nil means "no transformation".
	Insert(desc *types.TupleDesc, row []types.Tuple) ([]types.Tuple, error)

	// Update applies one update, locating existing rows by the identity
	// columns carried in identity.
	Update(desc *types.TupleDesc, row []types.Tuple, identity []types.Tuple) ([]types.Tuple, error)

	// Delete removes the rows matching the identity columns.
	Delete(desc *types.TupleDesc, identity []types.Tuple) ([]types.Tuple, error)
}

// RowIterator is the lazy row producer returned by Execute: a finite,
// non-restartable sequence of rows in table-declaration order. A row may be
// shorter than the column count; trailing columns are stored as NULL, as is
// any nil item.
//
// Next returns a nil row once the sequence is exhausted, and must keep
// returning nil on further calls. Close releases whatever the producer
// holds; the wrapper calls it once when the session ends.
type RowIterator interface {
	Next() ([]any, error)
	Close()
}

// BeginFunc constructs a plugin's per-session state. Called once per scan
// and once per modification statement; the two are never shared.
type BeginFunc[T ForeignData] func(opts *types.Options) (T, error)

// IndicesFunc declares which columns form the row identity image for
// update/delete. Identity columns missing from a statement's projection are
// injected by the wrapper so the plugin always receives their values.
type IndicesFunc func(opts *types.Options) []string

// ReadOnlyTable is an embeddable default for plugins that do not support
// modification: insert, update and delete all succeed as no-ops.
type ReadOnlyTable struct{}

func (ReadOnlyTable) Insert(_ *types.TupleDesc, _ []types.Tuple) ([]types.Tuple, error) {
	return nil, nil
}

func (ReadOnlyTable) Update(_ *types.TupleDesc, _ []types.Tuple, _ []types.Tuple) ([]types.Tuple, error) {
	return nil, nil
}

func (ReadOnlyTable) Delete(_ *types.TupleDesc, _ []types.Tuple) ([]types.Tuple, error) {
	return nil, nil
}
