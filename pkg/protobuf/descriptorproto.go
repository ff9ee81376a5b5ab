package protobuf

import (
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"
)

// Source code info path elements of descriptor.proto
const (
	fileMessagePath   = 4
	fileEnumPath      = 5
	fileServicePath   = 6
	messageFieldPath  = 2
	messageNestedPath = 3
	messageEnumPath   = 4
	serviceMethodPath = 2
)

// FromFileDescriptorProto converts an unlinked file descriptor into an AST.
// Type references are kept as written, reduced to their simple name, so a
// reference to a type that was never declared or imported survives as a
// plain name. Field numbers must be unique within a message.
func FromFileDescriptorProto(fdp *descriptorpb.FileDescriptorProto) (*RootNode, error) {
	syntax := fdp.GetSyntax()
	if syntax == "" {
		syntax = "proto2"
	}

	b := &protoBuilder{syntax: syntax, locations: indexLocations(fdp.GetSourceCodeInfo())}
	root := &RootNode{
		Filename: fdp.GetName(),
		Syntax:   syntax,
		Package:  fdp.GetPackage(),
		Imports:  append([]string{}, fdp.GetDependency()...),
		Messages: make([]*MessageNode, 0, len(fdp.GetMessageType())),
		Enums:    make([]*EnumNode, 0, len(fdp.GetEnumType())),
		Services: make([]*ServiceNode, 0, len(fdp.GetService())),
	}

	for i, md := range fdp.GetMessageType() {
		if md.GetOptions().GetMapEntry() {
			continue
		}
		msg, err := b.message(md, []int32{fileMessagePath, int32(i)})
		if err != nil {
			return nil, err
		}
		root.Messages = append(root.Messages, msg)
	}

	for i, ed := range fdp.GetEnumType() {
		root.Enums = append(root.Enums, b.enum(ed, []int32{fileEnumPath, int32(i)}))
	}

	for i, sd := range fdp.GetService() {
		root.Services = append(root.Services, b.service(sd, []int32{fileServicePath, int32(i)}))
	}

	return root, nil
}

type protoBuilder struct {
	syntax    string
	locations map[string]*descriptorpb.SourceCodeInfo_Location
}

func indexLocations(info *descriptorpb.SourceCodeInfo) map[string]*descriptorpb.SourceCodeInfo_Location {
	locations := make(map[string]*descriptorpb.SourceCodeInfo_Location, len(info.GetLocation()))
	for _, loc := range info.GetLocation() {
		key := pathKey(loc.GetPath())
		// the first location recorded for a path is the whole declaration
		if _, ok := locations[key]; !ok {
			locations[key] = loc
		}
	}
	return locations
}

func pathKey(path []int32) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.Itoa(int(p))
	}
	return strings.Join(parts, ".")
}

func childPath(path []int32, elems ...int32) []int32 {
	out := make([]int32, 0, len(path)+len(elems))
	out = append(out, path...)
	return append(out, elems...)
}

func (b *protoBuilder) sourceInfo(path []int32) (Position, string) {
	loc, ok := b.locations[pathKey(path)]
	if !ok || len(loc.GetSpan()) < 2 {
		return Position{}, ""
	}
	span := loc.GetSpan()
	return Position{Line: int(span[0]) + 1, Column: int(span[1]) + 1}, cleanComment(loc.GetLeadingComments())
}

func (b *protoBuilder) message(md *descriptorpb.DescriptorProto, path []int32) (*MessageNode, error) {
	pos, comment := b.sourceInfo(path)
	msg := &MessageNode{
		Name:    md.GetName(),
		Comment: comment,
		Fields:  make([]*FieldNode, 0, len(md.GetField())),
		Nested:  make([]*MessageNode, 0),
		Enums:   make([]*EnumNode, 0, len(md.GetEnumType())),
		Options: uninterpretedOptions(md.GetOptions().GetUninterpretedOption()),
		Pos:     pos,
	}

	entries := make(map[string]*descriptorpb.DescriptorProto)
	for _, nested := range md.GetNestedType() {
		if nested.GetOptions().GetMapEntry() {
			entries[nested.GetName()] = nested
		}
	}

	numbers := make(map[int32]string, len(md.GetField()))
	for i, fd := range md.GetField() {
		if prev, ok := numbers[fd.GetNumber()]; ok {
			return nil, fmt.Errorf("field %s.%s: number %d is already used by %s",
				md.GetName(), fd.GetName(), fd.GetNumber(), prev)
		}
		numbers[fd.GetNumber()] = fd.GetName()
		msg.Fields = append(msg.Fields, b.field(fd, entries, childPath(path, messageFieldPath, int32(i))))
	}

	for i, nested := range md.GetNestedType() {
		if nested.GetOptions().GetMapEntry() {
			continue
		}
		child, err := b.message(nested, childPath(path, messageNestedPath, int32(i)))
		if err != nil {
			return nil, err
		}
		msg.Nested = append(msg.Nested, child)
	}

	for i, ed := range md.GetEnumType() {
		msg.Enums = append(msg.Enums, b.enum(ed, childPath(path, messageEnumPath, int32(i))))
	}

	return msg, nil
}

func (b *protoBuilder) field(fd *descriptorpb.FieldDescriptorProto, entries map[string]*descriptorpb.DescriptorProto, path []int32) *FieldNode {
	pos, comment := b.sourceInfo(path)
	field := &FieldNode{
		Name:     fd.GetName(),
		JSONName: fd.GetJsonName(),
		Number:   int(fd.GetNumber()),
		Comment:  comment,
		Options:  uninterpretedOptions(fd.GetOptions().GetUninterpretedOption()),
		Pos:      pos,
	}

	if entry, ok := entries[fd.GetTypeName()]; ok && fd.GetLabel() == descriptorpb.FieldDescriptorProto_LABEL_REPEATED {
		for _, kv := range entry.GetField() {
			switch kv.GetNumber() {
			case 1:
				field.KeyType = fieldTypeName(kv)
			case 2:
				field.Type = fieldTypeName(kv)
			}
		}
		return field
	}

	field.Type = fieldTypeName(fd)
	switch fd.GetLabel() {
	case descriptorpb.FieldDescriptorProto_LABEL_REPEATED:
		field.Repeated = true
	case descriptorpb.FieldDescriptorProto_LABEL_REQUIRED:
		field.Required = true
	case descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL:
		field.Optional = fd.GetProto3Optional() || (fd.Label != nil && b.syntax == "proto2")
	}

	return field
}

// fieldTypeName returns the scalar keyword of a field, or the simple name of
// the type it references
func fieldTypeName(fd *descriptorpb.FieldDescriptorProto) string {
	if name := fd.GetTypeName(); name != "" {
		return simpleName(name)
	}
	return strings.ToLower(strings.TrimPrefix(fd.GetType().String(), "TYPE_"))
}

func simpleName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func (b *protoBuilder) enum(ed *descriptorpb.EnumDescriptorProto, path []int32) *EnumNode {
	pos, _ := b.sourceInfo(path)
	enum := &EnumNode{
		Name:   ed.GetName(),
		Values: make([]string, 0, len(ed.GetValue())),
		Pos:    pos,
	}
	for _, v := range ed.GetValue() {
		enum.Values = append(enum.Values, v.GetName())
	}
	return enum
}

func (b *protoBuilder) service(sd *descriptorpb.ServiceDescriptorProto, path []int32) *ServiceNode {
	pos, comment := b.sourceInfo(path)
	svc := &ServiceNode{
		Name:    sd.GetName(),
		Comment: comment,
		RPCs:    make([]*RPCNode, 0, len(sd.GetMethod())),
		Options: uninterpretedOptions(sd.GetOptions().GetUninterpretedOption()),
		Pos:     pos,
	}

	for i, md := range sd.GetMethod() {
		rpcPos, rpcComment := b.sourceInfo(childPath(path, serviceMethodPath, int32(i)))
		svc.RPCs = append(svc.RPCs, &RPCNode{
			Name:            md.GetName(),
			InputType:       simpleName(md.GetInputType()),
			OutputType:      simpleName(md.GetOutputType()),
			ClientStreaming: md.GetClientStreaming(),
			ServerStreaming: md.GetServerStreaming(),
			Comment:         rpcComment,
			Options:         uninterpretedOptions(md.GetOptions().GetUninterpretedOption()),
			Pos:             rpcPos,
		})
	}

	return svc
}

// uninterpretedOptions keys options the way linked descriptors do: plain
// names for built-in options, full names for extensions.
func uninterpretedOptions(opts []*descriptorpb.UninterpretedOption) Options {
	options := make(Options)
	for _, opt := range opts {
		parts := make([]string, 0, len(opt.GetName()))
		for _, part := range opt.GetName() {
			parts = append(parts, strings.TrimPrefix(part.GetNamePart(), "."))
		}
		options[strings.Join(parts, ".")] = uninterpretedValue(opt)
	}
	return options
}

func uninterpretedValue(opt *descriptorpb.UninterpretedOption) interface{} {
	switch {
	case opt.IdentifierValue != nil:
		switch v := opt.GetIdentifierValue(); v {
		case "true":
			return true
		case "false":
			return false
		default:
			return v
		}
	case opt.PositiveIntValue != nil:
		return opt.GetPositiveIntValue()
	case opt.NegativeIntValue != nil:
		return opt.GetNegativeIntValue()
	case opt.DoubleValue != nil:
		return opt.GetDoubleValue()
	case opt.StringValue != nil:
		return string(opt.GetStringValue())
	default:
		return opt.GetAggregateValue()
	}
}
