// Package schema flattens a parsed proto file into the services and messages
// the document generator consumes. Nested messages are hoisted and keep their
// simple names.
package schema
