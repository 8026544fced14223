// Package harness runs table scenarios: scripted inserts, updates and
// assertions against tables resolved through the registry.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: online_log_lifecycle
//	description: "Rows written to online_log can be found and updated"
//	table: online_log
//	setup:
//	  - action: truncate
//	steps:
//	  - action: insert
//	    values: { record_id: "10", env_id: "0000000010", env_timein: "2000-01-01T00:00:00" }
//	  - action: assert_rows
//	    where:
//	      - [env_id, "0000000010"]
//	      - [record_id, ">", "0"]
//	    expect: { saf_plan_id: "null", env_timein: "{regexp:2000-.*}" }
//	  - action: update
//	    column: txn_source
//	    value: TNX_10
//	    where: [[record_id, "10"]]
//	    count: 1
//	  - action: wait
//	    where: [[txn_source, "TNX_10"]]
//	    timeout: 5s
//	    interval: 500ms
//
// A where row is [column, value] for equality or [column, operator, value]
// with one of =, like, >, < and is. Rows are and-joined.
//
// # Actions
//
//   - insert: writes a new row from values
//   - update: sets column to value on the rows matching where
//   - delete: removes the row with the given id
//   - truncate: removes every row
//   - count: checks the table row count
//   - assert_rows: checks that some matching row has the expected values
//   - assert_row: checks the first matching row
//   - assert_value: checks one column of the first matching row
//   - wait: polls until count rows match, or any row when count is unset
//
// Expected values compare ignoring case. A value written {regexp:PATTERN}
// must match the whole actual value, also ignoring case. Null reads as
// "null".
//
// # Deterministic Testing
//
// A scenario run_id or a fixed IDGenerator makes Result.Summary stable, so
// results can be compared against golden files (see RunWithGolden). A fake
// Clock makes wait steps finish without sleeping.
package harness
