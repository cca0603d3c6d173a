// Package types holds the plain Go mirrors of host structures that cross
// the boundary between the wrapper and a plugin: relation metadata, column
// descriptors, option sets and column-level tuples. Nothing here depends on
// the host representation; the host package is responsible for producing
// these values.
package types

// OptionMap is one set of FDW options, keyed by option name.
type OptionMap map[string]string

// Options is the full configuration resolved for one session: the options
// attached to the foreign server, the options attached to the foreign
// table, and the table identity. Built once per session and read-only
// afterwards.
type Options struct {
	ServerOpts     OptionMap
	TableOpts      OptionMap
	TableName      string
	TableNamespace string
}

// Datum is a raw host value. The wrapper never interprets one - datums are
// carried verbatim between the host's conversion routines and the plugin.
// A nil Datum encodes SQL NULL.
type Datum any

// Oid is a host internal object ID. Column type tags are Oids; they are
// opaque to the wrapper and forwarded unchanged.
type Oid uint

// Cost is an approximate cost of an operation. See Postgres docs for details.
type Cost float64

// Tuple is a single column's contribution to a row image: the column name,
// its raw value (nil for NULL) and its declared type at the current catalog
// snapshot.
type Tuple struct {
	Column string
	Value  Datum
	Type   Oid
}

// Relation is the metadata of one foreign table.
type Relation struct {
	ID        Oid
	IsValid   bool
	Name      string
	Namespace string
	Attr      *TupleDesc
}

// TupleDesc describes the row shape of a relation.
type TupleDesc struct {
	TypeID  Oid
	TypeMod int
	Attrs   []Attr // columns, in declaration order
}

// Attr is one column descriptor.
type Attr struct {
	Name       string
	Type       Oid
	TypeMod    int32
	Collation  Oid
	Dimensions int
	NotNull    bool
	Dropped    bool
}

// RelSize is the planner's size estimate for a scan.
type RelSize struct {
	Rows  int
	Width int
}

// ColumnNames returns the names of all non-dropped columns in declaration
// order.
func (d *TupleDesc) ColumnNames() []string {
	names := make([]string, 0, len(d.Attrs))
	for _, a := range d.Attrs {
		if a.Dropped {
			continue
		}
		names = append(names, a.Name)
	}
	return names
}
