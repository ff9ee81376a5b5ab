// Package observability provides logrus logging, Prometheus metrics, and OpenTelemetry tracing.
//
// # Overview
//
// This package centralizes the observability plumbing shared by the CLI, the HTTP
// conversion server and the protoc plugin.
//
// # Structured Logging
//
// Create logger:
//
//	logger := observability.NewLogger("info", observability.JSONFormat, os.Stderr)
//	logger.WithField("file", path).Info("Converted")
//
// Request scoped logging:
//
//	ctx = observability.WithLogger(ctx, logger.WithField("request_id", id))
//	observability.LoggerFromContext(ctx).Warn("Parse failed")
//
// # Prometheus Metrics
//
//	metrics := observability.NewMetrics(prometheus.NewRegistry())
//	metrics.RecordConversion(observability.SourceFile, elapsed, len(doc.Methods), err)
//	router.Handle("/metrics", metrics.Handler())
//
// All Metrics methods accept a nil receiver.
//
// # OpenTelemetry
//
//	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
//		Enabled:     true,
//		Endpoint:    "otel-collector:4317",
//		ServiceName: "proto2openrpc",
//		Insecure:    true,
//	}, logger)
//	defer observability.ShutdownOTel(ctx, providers)
//
// # Graceful Shutdown
//
// ShutdownOnSignal waits for SIGINT or SIGTERM, stops the HTTP server and then
// runs each Closer in order. One timeout bounds the whole sequence.
//
// # Related Packages
//
//   - pkg/config: telemetry and log settings
//   - pkg/httputil: request logging middleware
package observability
