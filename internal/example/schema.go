package example

import _ "embed"

// SchemaSQL creates the example tables. It is SQLite DDL and is idempotent.
//
//go:embed schema.sql
var SchemaSQL string

// FixtureSQL seeds online_log with four rows.
//
//go:embed fixture.sql
var FixtureSQL string
