package schema

import (
	"context"

	"github.com/platinummonkey/proto2openrpc/pkg/protobuf"
	"github.com/sirupsen/logrus"
)

// Extractor flattens a proto AST into services and messages
type Extractor struct {
	parser    protobuf.Parser
	jsonNames bool
	log       *logrus.Logger
}

// ExtractorOption configures an Extractor
type ExtractorOption func(*Extractor)

// WithParser replaces the default protocompile-backed parser
func WithParser(parser protobuf.Parser) ExtractorOption {
	return func(e *Extractor) {
		e.parser = parser
	}
}

// WithJSONNames emits lowerCamelCase JSON names instead of declared field names
func WithJSONNames() ExtractorOption {
	return func(e *Extractor) {
		e.jsonNames = true
	}
}

// WithLogger sets the logger
func WithLogger(log *logrus.Logger) ExtractorOption {
	return func(e *Extractor) {
		if log != nil {
			e.log = log
		}
	}
}

// NewExtractor creates an extractor. Without WithParser it parses with a
// protocompile parser that has no extra import paths.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{log: logrus.New()}
	for _, opt := range opts {
		opt(e)
	}
	if e.parser == nil {
		e.parser = protobuf.NewCompileParser(nil, e.log)
	}
	return e
}

// ExtractFile parses the proto file at path and flattens it
func (e *Extractor) ExtractFile(ctx context.Context, path string) (*Result, error) {
	root, err := e.parser.ParseFile(ctx, path)
	if err != nil {
		return nil, &ParseError{Source: path, Err: err}
	}
	return e.Extract(root), nil
}

// ExtractContent parses raw proto text and flattens it
func (e *Extractor) ExtractContent(content string) (*Result, error) {
	root, err := e.parser.ParseContent(protobuf.DefaultContentFilename, content)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return e.Extract(root), nil
}

// Extract walks the tree depth-first in declaration order. Services and
// messages are collected regardless of nesting depth; enums produce nothing.
func (e *Extractor) Extract(root *protobuf.RootNode) *Result {
	result := &Result{
		Services: make([]Service, 0),
		Messages: make([]Message, 0),
	}
	if root == nil {
		return result
	}

	var walk func(node protobuf.Node)
	walk = func(node protobuf.Node) {
		switch n := node.(type) {
		case *protobuf.ServiceNode:
			result.Services = append(result.Services, e.service(n))
		case *protobuf.MessageNode:
			result.Messages = append(result.Messages, e.message(n))
		}
		for _, child := range node.Children() {
			walk(child)
		}
	}
	walk(root)

	return result
}

func (e *Extractor) service(n *protobuf.ServiceNode) Service {
	svc := Service{
		Name:    n.Name,
		Methods: make([]Method, 0, len(n.RPCs)),
		Comment: n.Comment,
	}
	for _, rpc := range n.RPCs {
		svc.Methods = append(svc.Methods, Method{
			Name:           rpc.Name,
			RequestType:    rpc.InputType,
			ResponseType:   rpc.OutputType,
			RequestStream:  rpc.ClientStreaming,
			ResponseStream: rpc.ServerStreaming,
			Options:        copyOptions(rpc.Options),
			Comment:        rpc.Comment,
		})
	}
	return svc
}

func (e *Extractor) message(n *protobuf.MessageNode) Message {
	msg := Message{
		Name:    n.Name,
		Fields:  make([]Field, 0, len(n.Fields)),
		Comment: n.Comment,
	}
	for _, f := range n.Fields {
		name := f.Name
		if e.jsonNames && f.JSONName != "" {
			name = f.JSONName
		}
		msg.Fields = append(msg.Fields, Field{
			Name:    name,
			Type:    f.Type,
			ID:      f.Number,
			Rule:    ruleOf(f),
			KeyType: f.KeyType,
			Options: copyOptions(f.Options),
			Comment: f.Comment,
		})
	}
	return msg
}

func ruleOf(f *protobuf.FieldNode) Rule {
	switch {
	case f.Repeated:
		return RuleRepeated
	case f.Required:
		return RuleRequired
	case f.Optional:
		return RuleOptional
	default:
		return RuleNone
	}
}

// copyOptions detaches the record from the tree and defaults to an empty map
func copyOptions(src protobuf.Options) Options {
	dst := make(Options, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
