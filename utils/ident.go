// Package utils provides identifier handling shared by the sql generation
// code.
package utils

import (
	"fmt"
	"strings"

	"github.com/turbot/go-kit/helpers"
)

const maxSchemaNameLength = 63

// PgEscapeName escapes an identifier for use in a SQL statement.
func PgEscapeName(name string) string {
	return fmt.Sprintf(`"%s"`, strings.ReplaceAll(name, `"`, `""`))
}

// PgEscapeString escapes a string literal using dollar quoting, widening
// the tag until it does not occur in the value.
func PgEscapeString(s string) string {
	tag := "$fdw_escape$"
	for strings.Contains(s, tag) {
		tag = "$" + strings.Trim(tag, "$") + "_$"
	}
	return tag + s + tag
}

// SchemaName trims a name to the host's 63-char schema name limit. Longer
// names are truncated and suffixed with a hash to stay unique.
func SchemaName(name string) string {
	if len(name) < maxSchemaNameLength {
		return name
	}
	return trimSchemaName(name) + fmt.Sprintf("-%x", helpers.StringFnvHash(name))
}

func trimSchemaName(name string) string {
	if len(name) < maxSchemaNameLength {
		return name
	}
	return name[:maxSchemaNameLength-9]
}
