// Package example holds sample record types and handlers. Importing it
// registers them with the default registry catalog.
//
// ExampleHandler shows the handler reuse pattern: it embeds
// BaseExampleHandler, which is registered as excluded, and inherits its
// table and id column. OnlineLogHandler backs the online_log table used by
// the tests and the CLI demo.
package example
