// Package converter wires parsing, schema extraction and document generation together.
//
// Every conversion is traced with OpenTelemetry and counted both in the
// Prometheus metrics passed with WithMetrics and in the global OTel meter.
package converter
