// Package openrpc builds and encodes OpenRPC 1.3.0 documents.
//
// # Overview
//
// Generator turns the flat service and message lists produced by pkg/schema into
// a Document. Each rpc becomes a method named "<Service>.<Method>" and each
// message becomes a component schema under #/components/schemas/.
//
// # Type Mapping
//
//	string, bytes                          string
//	int32, int64, uint32, uint64, sint*,
//	fixed*, sfixed*                        integer
//	float, double                          number
//	bool                                   boolean
//	known message                          $ref
//	anything else                          string
//
// Repeated fields become arrays, map fields become objects whose
// additionalProperties is the value schema. Request streams become a single
// required "requests" array param; response streams make the result an array.
//
// # Ordering
//
// Methods follow service then rpc declaration order. Component schemas and
// properties keep declaration order through SchemaMap, so encoding the same
// input twice yields identical bytes.
//
// # Usage Example
//
//	doc := openrpc.NewGenerator(log).Generate(result.Services, result.Messages, openrpc.Info{
//		Title: "Users API",
//	})
//	data, err := openrpc.Encode(doc, openrpc.EncodeOptions{Format: openrpc.FormatJSON, Pretty: true})
package openrpc
