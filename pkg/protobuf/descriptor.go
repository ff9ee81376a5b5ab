package protobuf

import (
	"strings"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// FromFileDescriptor converts a linked file descriptor into an AST.
// Positions and leading comments are taken from the file's source info
// when it is present.
func FromFileDescriptor(fd protoreflect.FileDescriptor) *RootNode {
	root := &RootNode{
		Filename: fd.Path(),
		Syntax:   fd.Syntax().String(),
		Package:  string(fd.Package()),
		Imports:  make([]string, 0, fd.Imports().Len()),
		Messages: make([]*MessageNode, 0, fd.Messages().Len()),
		Enums:    make([]*EnumNode, 0, fd.Enums().Len()),
		Services: make([]*ServiceNode, 0, fd.Services().Len()),
	}

	for i := 0; i < fd.Imports().Len(); i++ {
		root.Imports = append(root.Imports, fd.Imports().Get(i).Path())
	}

	for i := 0; i < fd.Messages().Len(); i++ {
		md := fd.Messages().Get(i)
		if md.IsMapEntry() {
			continue
		}
		root.Messages = append(root.Messages, convertMessage(md))
	}

	for i := 0; i < fd.Enums().Len(); i++ {
		root.Enums = append(root.Enums, convertEnum(fd.Enums().Get(i)))
	}

	for i := 0; i < fd.Services().Len(); i++ {
		root.Services = append(root.Services, convertService(fd.Services().Get(i)))
	}

	return root
}

// convertMessage converts a message descriptor (and its nested declarations) to a MessageNode.
// Synthetic map entry messages are skipped; their shape is folded into the map field.
func convertMessage(md protoreflect.MessageDescriptor) *MessageNode {
	pos, comment := sourceInfo(md)
	msg := &MessageNode{
		Name:    string(md.Name()),
		Comment: comment,
		Fields:  make([]*FieldNode, 0, md.Fields().Len()),
		Nested:  make([]*MessageNode, 0),
		Enums:   make([]*EnumNode, 0, md.Enums().Len()),
		Options: optionsOf(md.Options()),
		Pos:     pos,
	}

	for i := 0; i < md.Fields().Len(); i++ {
		msg.Fields = append(msg.Fields, convertField(md.Fields().Get(i)))
	}

	for i := 0; i < md.Messages().Len(); i++ {
		nested := md.Messages().Get(i)
		if nested.IsMapEntry() {
			continue
		}
		msg.Nested = append(msg.Nested, convertMessage(nested))
	}

	for i := 0; i < md.Enums().Len(); i++ {
		msg.Enums = append(msg.Enums, convertEnum(md.Enums().Get(i)))
	}

	return msg
}

// convertField converts a field descriptor to a FieldNode
func convertField(fd protoreflect.FieldDescriptor) *FieldNode {
	pos, comment := sourceInfo(fd)
	field := &FieldNode{
		Name:     string(fd.Name()),
		JSONName: fd.JSONName(),
		Number:   int(fd.Number()),
		Comment:  comment,
		Options:  optionsOf(fd.Options()),
		Pos:      pos,
	}

	if fd.IsMap() {
		field.KeyType = typeName(fd.MapKey())
		field.Type = typeName(fd.MapValue())
		return field
	}

	field.Type = typeName(fd)
	switch fd.Cardinality() {
	case protoreflect.Repeated:
		field.Repeated = true
	case protoreflect.Required:
		field.Required = true
	case protoreflect.Optional:
		field.Optional = fd.HasOptionalKeyword()
	}

	return field
}

// typeName returns the scalar type name for a field, or the simple name of
// the referenced message or enum
func typeName(fd protoreflect.FieldDescriptor) string {
	switch fd.Kind() {
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return string(fd.Message().Name())
	case protoreflect.EnumKind:
		return string(fd.Enum().Name())
	default:
		// Kind names match the proto scalar keywords (int32, sfixed64, bytes, ...)
		return fd.Kind().String()
	}
}

// convertEnum converts an enum descriptor to an EnumNode
func convertEnum(ed protoreflect.EnumDescriptor) *EnumNode {
	pos, _ := sourceInfo(ed)
	enum := &EnumNode{
		Name:   string(ed.Name()),
		Values: make([]string, 0, ed.Values().Len()),
		Pos:    pos,
	}
	for i := 0; i < ed.Values().Len(); i++ {
		enum.Values = append(enum.Values, string(ed.Values().Get(i).Name()))
	}
	return enum
}

// convertService converts a service descriptor to a ServiceNode
func convertService(sd protoreflect.ServiceDescriptor) *ServiceNode {
	pos, comment := sourceInfo(sd)
	svc := &ServiceNode{
		Name:    string(sd.Name()),
		Comment: comment,
		RPCs:    make([]*RPCNode, 0, sd.Methods().Len()),
		Options: optionsOf(sd.Options()),
		Pos:     pos,
	}

	for i := 0; i < sd.Methods().Len(); i++ {
		method := sd.Methods().Get(i)
		rpcPos, rpcComment := sourceInfo(method)
		svc.RPCs = append(svc.RPCs, &RPCNode{
			Name:            string(method.Name()),
			InputType:       string(method.Input().Name()),
			OutputType:      string(method.Output().Name()),
			ClientStreaming: method.IsStreamingClient(),
			ServerStreaming: method.IsStreamingServer(),
			Comment:         rpcComment,
			Options:         optionsOf(method.Options()),
			Pos:             rpcPos,
		})
	}

	return svc
}

// sourceInfo returns the 1-based position and the cleaned leading comment of a declaration
func sourceInfo(d protoreflect.Descriptor) (Position, string) {
	file := d.ParentFile()
	if file == nil {
		return Position{}, ""
	}
	loc := file.SourceLocations().ByDescriptor(d)
	if loc.Path == nil {
		return Position{}, ""
	}
	return Position{Line: loc.StartLine + 1, Column: loc.StartColumn + 1}, cleanComment(loc.LeadingComments)
}

// cleanComment trims every line of a comment and drops empty lines
func cleanComment(comment string) string {
	if comment == "" {
		return ""
	}
	var lines []string
	for _, line := range strings.Split(comment, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// optionsOf copies the options set on a declaration into an opaque map.
// Values are kept as returned by protoreflect and never interpreted.
func optionsOf(opts protoreflect.ProtoMessage) Options {
	options := make(Options)
	if opts == nil {
		return options
	}
	msg := opts.ProtoReflect()
	if !msg.IsValid() {
		return options
	}
	msg.Range(func(fd protoreflect.FieldDescriptor, v protoreflect.Value) bool {
		key := string(fd.Name())
		if fd.IsExtension() {
			key = string(fd.FullName())
		}
		options[key] = v.Interface()
		return true
	})
	return options
}
