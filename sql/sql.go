// Package sql generates the registration statements that bind a handler to
// the host's wrapper/server/table mechanism: CREATE FOREIGN DATA WRAPPER,
// CREATE SERVER and CREATE FOREIGN TABLE.
package sql

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/wrapgate/postgres-fdw/utils"
)

// Column is one column of a foreign table definition, with its SQL type.
type Column struct {
	Name string
	Type string
}

// TableDef describes one foreign table to register.
type TableDef struct {
	Name    string
	Columns []Column
	Options map[string]string
}

// GetSQLForWrapper returns the statement declaring the wrapper and binding
// it to the named handler function.
func GetSQLForWrapper(wrapperName, handlerName string) string {
	return fmt.Sprintf("create foreign data wrapper %s handler %s no validator",
		utils.PgEscapeName(wrapperName),
		utils.PgEscapeName(handlerName))
}

// GetSQLForServer returns the statement creating a server on the wrapper.
func GetSQLForServer(serverName, wrapperName string, opts map[string]string) string {
	sql := fmt.Sprintf("create server %s foreign data wrapper %s",
		utils.PgEscapeName(serverName),
		utils.PgEscapeName(wrapperName))
	if optionsString := formatOptions(opts); optionsString != "" {
		sql += " OPTIONS (" + optionsString + ")"
	}
	return sql
}

// GetSQLForTable returns the statement creating one foreign table on the
// server.
func GetSQLForTable(def TableDef, localSchema string, serverName string) (string, error) {
	if len(def.Columns) == 0 {
		return "", fmt.Errorf("table %q defines no columns", def.Name)
	}
	localSchema = utils.PgEscapeName(utils.SchemaName(localSchema))
	serverName = utils.PgEscapeName(serverName)
	escapedTableName := utils.PgEscapeName(def.Name)

	var columnsString []string
	for i, c := range def.Columns {
		trailing := ","
		if i+1 == len(def.Columns) {
			trailing = ""
		}
		columnsString = append(columnsString, fmt.Sprintf("%s %s%s", utils.PgEscapeName(c.Name), c.Type, trailing))
	}

	sql := fmt.Sprintf(`create foreign table %s.%s
(
  %s
)
server %s`,
		localSchema,
		escapedTableName,
		strings.Join(columnsString, "\n  "),
		serverName)

	if optionsString := formatOptions(def.Options); optionsString != "" {
		sql += " OPTIONS (" + optionsString + ")"
	}
	return sql, nil
}

func formatOptions(opts map[string]string) string {
	if len(opts) == 0 {
		return ""
	}
	keys := maps.Keys(opts)
	slices.Sort(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf("%s %s", utils.PgEscapeName(k), utils.PgEscapeString(opts[k]))
	}
	return strings.Join(pairs, ", ")
}
