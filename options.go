package fdw

import (
	"log"
	"unicode/utf8"

	"golang.org/x/exp/maps"

	"github.com/wrapgate/postgres-fdw/host"
	"github.com/wrapgate/postgres-fdw/types"
)

// OptionsFromRelation resolves the configuration for one session: the
// option lists attached to the relation's foreign server and foreign table,
// plus the table identity. Malformed option text indicates a catalog
// integrity problem and fails the whole session.
func OptionsFromRelation(catalog host.Catalog, rel *types.Relation) (*types.Options, error) {
	serverDefs, err := catalog.ServerOptions(rel.ID)
	if err != nil {
		return nil, Errorf(ErrcodeFdwError, "reading server options for %q: %v", rel.Name, err)
	}
	tableDefs, err := catalog.TableOptions(rel.ID)
	if err != nil {
		return nil, Errorf(ErrcodeFdwError, "reading table options for %q: %v", rel.Name, err)
	}

	serverOpts, err := optionMap(serverDefs)
	if err != nil {
		return nil, err
	}
	tableOpts, err := optionMap(tableDefs)
	if err != nil {
		return nil, err
	}

	opts := &types.Options{
		ServerOpts:     serverOpts,
		TableOpts:      tableOpts,
		TableName:      rel.Name,
		TableNamespace: rel.Namespace,
	}
	log.Printf("[TRACE] OptionsFromRelation: %s.%s server keys %v table keys %v",
		opts.TableNamespace, opts.TableName, maps.Keys(serverOpts), maps.Keys(tableOpts))
	return opts, nil
}

// optionMap converts a raw option list into a map. An absent list yields an
// empty map; duplicate keys resolve last-write-wins.
func optionMap(defs []host.OptionDef) (types.OptionMap, error) {
	m := make(types.OptionMap, len(defs))
	for _, def := range defs {
		if !utf8.Valid(def.Name) {
			return nil, Errorf(ErrcodeFdwInvalidOptionName, "option name %q is not valid UTF-8", def.Name)
		}
		if !utf8.Valid(def.Value) {
			return nil, Errorf(ErrcodeFdwInvalidStringFormat, "value of option %q is not valid UTF-8", def.Name)
		}
		m[string(def.Name)] = string(def.Value)
	}
	return m, nil
}
