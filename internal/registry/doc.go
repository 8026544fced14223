// Package registry resolves table names to record handlers.
//
// Handlers register themselves from init functions, the way database/sql
// drivers do:
//
//	func init() {
//		registry.Register[OnlineLog](OnlineLogHandler{})
//	}
//
// A Registry looks handlers up by table name, ignoring case. It only sees
// handlers whose package path lies under one of its namespaces, and builds
// its table map once, on first use. A handler's table name is the explicit
// WithTable metadata if given, else whatever its TableName method returns.
// When two handlers claim the same table, the one with explicit metadata
// wins; otherwise the one whose qualified type name sorts first wins.
package registry
