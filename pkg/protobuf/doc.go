// Package protobuf parses .proto sources with protocompile and exposes them as a small AST.
//
// # Overview
//
// CompileParser compiles a file (or in-memory content) to linked descriptors and
// converts them with FromFileDescriptor. Nodes carry source positions and leading
// comments, and RootNode.Children returns top-level declarations in source order.
//
// # Usage Example
//
//	parser := protobuf.NewCompileParser([]string{"third_party"}, log)
//	root, err := parser.ParseFile(ctx, "api/users.proto")
//	if err != nil {
//		return err
//	}
//	for _, svc := range root.Services {
//		fmt.Println(svc.Name, len(svc.RPCs))
//	}
package protobuf
