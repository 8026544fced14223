// Package dao provides per-table CRUD operations over a statement executor.
//
// A Handler names a table and its id column. A Repository combines a
// Handler with an Executor and implements the CRUD defaults on top of the
// record accessor:
//
//   - Finds take a condition chain. An empty chain reads the first rows by
//     id (bounded by the row limit); a chain that can never match returns an
//     empty slice without touching the store.
//   - Insert writes every column of the record.
//   - Update diffs the record against the stored row and writes only the
//     changed columns, one statement per column.
//
// The Executor is the only component that talks to a database; predicates
// are passed to it as opaque strings rendered by package condition.
package dao
