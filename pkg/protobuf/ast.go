package protobuf

import "sort"

// NodeType represents the type of AST node
type NodeType int

const (
	NodeTypeUnknown NodeType = iota
	NodeTypeMessage
	NodeTypeEnum
	NodeTypeService
	NodeTypeField
	NodeTypeRPC
)

func (t NodeType) String() string {
	switch t {
	case NodeTypeMessage:
		return "message"
	case NodeTypeEnum:
		return "enum"
	case NodeTypeService:
		return "service"
	case NodeTypeField:
		return "field"
	case NodeTypeRPC:
		return "rpc"
	default:
		return "unknown"
	}
}

// Position represents the position in the source code.
// Line and Column are 1-based; a zero Line means the position is unknown.
type Position struct {
	Line   int
	Column int
}

// Options holds option values exactly as declared on a proto element.
// Keys are option names (full names for extensions).
type Options map[string]interface{}

// Node represents a declaration in the protobuf AST
type Node interface {
	NodeType() NodeType
	Position() Position
	// Children returns the nested declarations in declaration order
	Children() []Node
}

// RootNode represents the root of the protobuf AST for a single file
type RootNode struct {
	Filename string
	Syntax   string
	Package  string
	Imports  []string
	Messages []*MessageNode
	Enums    []*EnumNode
	Services []*ServiceNode
}

// NodeType returns the node type
func (n *RootNode) NodeType() NodeType {
	return NodeTypeUnknown
}

// Position returns the start position
func (n *RootNode) Position() Position {
	return Position{}
}

// Children returns the top-level messages, enums and services ordered by
// their position in the source. Declarations without source info keep
// their relative order.
func (n *RootNode) Children() []Node {
	children := make([]Node, 0, len(n.Messages)+len(n.Enums)+len(n.Services))
	for _, msg := range n.Messages {
		children = append(children, msg)
	}
	for _, enum := range n.Enums {
		children = append(children, enum)
	}
	for _, svc := range n.Services {
		children = append(children, svc)
	}
	sortByPosition(children)
	return children
}

// MessageNode represents a message definition in protobuf
type MessageNode struct {
	Name    string
	Comment string
	Fields  []*FieldNode
	Nested  []*MessageNode
	Enums   []*EnumNode
	Options Options
	Pos     Position
}

// NodeType returns the node type
func (n *MessageNode) NodeType() NodeType {
	return NodeTypeMessage
}

// Position returns the start position
func (n *MessageNode) Position() Position {
	return n.Pos
}

// Children returns nested messages and enums
func (n *MessageNode) Children() []Node {
	children := make([]Node, 0, len(n.Nested)+len(n.Enums))
	for _, nested := range n.Nested {
		children = append(children, nested)
	}
	for _, enum := range n.Enums {
		children = append(children, enum)
	}
	sortByPosition(children)
	return children
}

// FieldNode represents a field in a message
type FieldNode struct {
	Name     string
	JSONName string
	// Type is the scalar type name (e.g. "int32") or the simple name of a
	// message or enum type. For map fields it is the value type.
	Type     string
	KeyType  string
	Number   int
	Repeated bool
	Optional bool
	Required bool
	Comment  string
	Options  Options
	Pos      Position
}

// NodeType returns the node type
func (n *FieldNode) NodeType() NodeType {
	return NodeTypeField
}

// Position returns the start position
func (n *FieldNode) Position() Position {
	return n.Pos
}

// Children returns nil; fields have no nested declarations
func (n *FieldNode) Children() []Node {
	return nil
}

// IsMap reports whether the field was declared as map<K, V>
func (n *FieldNode) IsMap() bool {
	return n.KeyType != ""
}

// EnumNode represents an enum definition in protobuf
type EnumNode struct {
	Name   string
	Values []string
	Pos    Position
}

// NodeType returns the node type
func (n *EnumNode) NodeType() NodeType {
	return NodeTypeEnum
}

// Position returns the start position
func (n *EnumNode) Position() Position {
	return n.Pos
}

// Children returns nil
func (n *EnumNode) Children() []Node {
	return nil
}

// RPCNode represents an RPC method in a service
type RPCNode struct {
	Name            string
	InputType       string
	OutputType      string
	ClientStreaming bool
	ServerStreaming bool
	Comment         string
	Options         Options
	Pos             Position
}

// NodeType returns the node type
func (n *RPCNode) NodeType() NodeType {
	return NodeTypeRPC
}

// Position returns the start position
func (n *RPCNode) Position() Position {
	return n.Pos
}

// Children returns nil
func (n *RPCNode) Children() []Node {
	return nil
}

// ServiceNode represents a service definition in protobuf
type ServiceNode struct {
	Name    string
	Comment string
	RPCs    []*RPCNode
	Options Options
	Pos     Position
}

// NodeType returns the node type
func (n *ServiceNode) NodeType() NodeType {
	return NodeTypeService
}

// Position returns the start position
func (n *ServiceNode) Position() Position {
	return n.Pos
}

// Children returns nil. RPCs are reached through the RPCs field.
func (n *ServiceNode) Children() []Node {
	return nil
}

func sortByPosition(nodes []Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		pi, pj := nodes[i].Position(), nodes[j].Position()
		if pi.Line == 0 || pj.Line == 0 {
			return false
		}
		if pi.Line != pj.Line {
			return pi.Line < pj.Line
		}
		return pi.Column < pj.Column
	})
}
