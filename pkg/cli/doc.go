// Package cli provides the proto2openrpc command-line interface.
//
// # Overview
//
// This package implements the `proto2openrpc` tool with cobra. Every command
// loads configuration first (--config, or a .proto2openrpc.yaml in the working
// directory), then applies explicitly set flags on top of it.
//
// # Commands
//
// convert: Convert one proto file
//
//	proto2openrpc convert api.proto \
//		-o api.openrpc.json \
//		-t "Users API" \
//		-v 2.0.0 \
//		--pretty
//
// convert-content: Convert proto text from stdin
//
//	cat api.proto | proto2openrpc convert-content --format yaml
//
// batch: Convert a directory tree in parallel
//
//	proto2openrpc batch --dir ./proto --out-dir ./openrpc --concurrency 8
//
// watch: Regenerate on change
//
//	proto2openrpc watch api.proto -o api.openrpc.json
//
// serve: Run the HTTP service
//
//	proto2openrpc serve --addr :8080
//
// version: Print version information
//
//	proto2openrpc version
//
// # Proto Import Resolution
//
// Imports resolve against the directory of the input file, each -I directory,
// the parser.import_paths configuration and the google/protobuf well-known types.
//
// # Related Packages
//
//   - pkg/converter: Runs the conversions
//   - pkg/config: Configuration file and environment overrides
//   - pkg/server: HTTP service started by serve
package cli
