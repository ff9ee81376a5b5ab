// Package plugin implements protoc-gen-openrpc, the protoc plugin flavor of the converter.
//
// protoc hands the plugin already linked descriptors, so no parsing happens here;
// each file to generate goes straight through schema extraction and document
// generation and comes back as <file>.openrpc.json (or .yaml).
//
// Parameters (comma separated, via --openrpc_opt):
//
//	title=Users API
//	version=2.0.0
//	description=...
//	format=json|yaml
//	pretty[=true|false]
//	json_names[=true|false]
package plugin
