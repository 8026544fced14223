// Package store executes table statements over database/sql.
//
// Store implements dao.Executor for two drivers:
//   - sqlite3 (github.com/mattn/go-sqlite3), used by the tests and the CLI default
//   - mysql (github.com/go-sql-driver/mysql)
//
// # Statement Shape
//
// Table and column names are checked against ^[A-Za-z_][A-Za-z0-9_]*$ and
// interpolated; values are always bound as parameters. Predicates are
// opaque text produced by package condition and are interpolated as given.
//
// # Date-Time Values
//
// SQLite has no date-time storage class. Date-time arguments are bound as
// text in the layout 2006-01-02 15:04:05.999999999, the same layout
// condition literals use, so rendered predicates compare text with text.
// go-sqlite3 parses that text back into time.Time for DATETIME columns.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait on lock contention
//   - Single connection: SQLite allows one writer
package store
