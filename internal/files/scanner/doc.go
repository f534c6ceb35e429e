// Package scanner discovers SQL sources under a corpus root.
//
// The expected layout is:
//
//	tables/      one CREATE TABLE per file
//	views/       derived objects (views, materialized views, functions)
//	migrations/  NNNN_name.sql steps, optionally paired with
//	             NNNN_name.down.sql reverse scripts
//
// Discovery is deterministic: files are visited in lexical path order.
package scanner
