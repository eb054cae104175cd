// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package schema holds the table and column names of the catalog database.

Repositories build their SQL from these definitions so a renamed column is a
compile error rather than a runtime one.
*/
package schema

import "strings"

// qualify prefixes every column with alias and joins them for a SELECT list.
func qualify(alias string, columns []string) string {
	if alias == "" {
		return strings.Join(columns, ", ")
	}
	qualified := make([]string, len(columns))
	for i, column := range columns {
		qualified[i] = alias + "." + column
	}
	return strings.Join(qualified, ", ")
}
