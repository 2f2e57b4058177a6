// Package schema ships the DDL for the records and surveys tables
package schema

import (
	_ "embed"
	"strings"
)

// PG is the postgres DDL
//
//go:embed pg.sql
var PG string

// CH is the clickhouse DDL
//
//go:embed ch.sql
var CH string

// Statements splits a DDL script on semicolons; clickhouse takes one statement per call
func Statements(script string) []string {
	var out []string
	for _, s := range strings.Split(script, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
