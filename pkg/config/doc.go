// Package config provides configuration loading from YAML and environment variables.
//
// # Overview
//
// Settings are resolved in three layers: built-in defaults, an optional YAML file,
// then PROTO2OPENRPC_* environment variables. Command-line flags are applied by the
// caller on top of the result.
//
// # Configuration File
//
//	document:
//	  title: Users API
//	  version: 2.0.0
//	output:
//	  format: json   # json, yaml
//	  pretty: true
//	parser:
//	  import_paths: [proto, third_party]
//	  json_names: false
//	log:
//	  level: info    # debug, info, warn, error
//	  format: text   # text, json
//	server:
//	  addr: ":8080"
//	  read_timeout: 15s
//	  max_body_bytes: 4194304
//	telemetry:
//	  enabled: false
//	  endpoint: localhost:4317
//	batch:
//	  concurrency: 4
//
// # Environment Overrides
//
//	PROTO2OPENRPC_TITLE="Users API"
//	PROTO2OPENRPC_FORMAT="yaml"
//	PROTO2OPENRPC_IMPORT_PATHS="proto:third_party"
//	PROTO2OPENRPC_LOG_LEVEL="debug"
//	PROTO2OPENRPC_ADDR=":9090"
//	PROTO2OPENRPC_OTEL_ENABLED="true"
//
// # Usage Example
//
//	cfg, err := config.LoadFromDir(".")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Related Packages
//
//   - pkg/cli: Applies flags on top of the loaded configuration
//   - pkg/observability: Uses log and telemetry settings
package config
