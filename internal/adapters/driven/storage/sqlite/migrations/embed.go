// Package migrations carries the schema scripts compiled into the trove binary.
package migrations

import "embed"

// FS holds the numbered .sql scripts. The store walks them in filename
// order on open and applies any the database has not seen yet.
//
//go:embed *.sql
var FS embed.FS
