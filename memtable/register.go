package memtable

import (
	"github.com/wrapgate/postgres-fdw/sql"
)

// RegistrationSQL returns the statements that register the example wrapper,
// its server and the users table with the host.
func RegistrationSQL() ([]string, error) {
	tableSQL, err := sql.GetSQLForTable(sql.TableDef{
		Name: "users",
		Columns: []sql.Column{
			{Name: "id", Type: "text"},
			{Name: "name", Type: "text"},
			{Name: "email", Type: "text"},
		},
		Options: map[string]string{
			"table_option":  "1",
			"table_option2": "2",
		},
	}, "public", "mem_table_srv")
	if err != nil {
		return nil, err
	}
	return []string{
		sql.GetSQLForWrapper("mem_table_handler", "mem_table_handler"),
		sql.GetSQLForServer("mem_table_srv", "mem_table_handler", nil),
		tableSQL,
	}, nil
}
