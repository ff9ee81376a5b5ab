package openrpc

import (
	"fmt"

	"github.com/platinummonkey/proto2openrpc/pkg/schema"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultTitle is used when no title is given
	DefaultTitle = "Generated API"
	// DefaultVersion is used when no version is given
	DefaultVersion = "1.0.0"
)

// Generator builds OpenRPC documents from extracted services and messages.
// The message table is rebuilt on every call, so a Generator must not be
// shared between concurrent Generate calls.
type Generator struct {
	messages map[string]schema.Message
	log      *logrus.Logger
}

// NewGenerator creates a new generator. A nil logger falls back to logrus.New().
func NewGenerator(log *logrus.Logger) *Generator {
	if log == nil {
		log = logrus.New()
	}
	return &Generator{
		messages: make(map[string]schema.Message),
		log:      log,
	}
}

// Generate builds the document. Type references are resolved by message name;
// unknown names never fail the call.
func (g *Generator) Generate(services []schema.Service, messages []schema.Message, info Info) *Document {
	if info.Title == "" {
		info.Title = DefaultTitle
	}
	if info.Version == "" {
		info.Version = DefaultVersion
	}

	g.messages = make(map[string]schema.Message, len(messages))
	for _, msg := range messages {
		g.messages[msg.Name] = msg
	}

	doc := &Document{
		OpenRPC: Version,
		Info:    info,
		Methods: make([]Method, 0),
		Components: Components{
			Schemas: NewSchemaMap(),
		},
	}

	for _, svc := range services {
		for _, m := range svc.Methods {
			doc.Methods = append(doc.Methods, g.method(svc, m))
		}
	}

	for _, msg := range messages {
		doc.Components.Schemas.Set(msg.Name, g.messageSchema(msg))
	}

	return doc
}

func (g *Generator) method(svc schema.Service, m schema.Method) Method {
	method := Method{
		Name:        svc.Name + "." + m.Name,
		Description: m.Comment,
		Params:      g.params(m),
		Result: Result{
			Name:        "result",
			Description: fmt.Sprintf("Response of type %s", m.ResponseType),
			Schema:      RefSchema(m.ResponseType),
		},
	}
	if method.Description == "" {
		method.Description = fmt.Sprintf("RPC method %s from service %s", m.Name, svc.Name)
	}
	if m.ResponseStream {
		method.Result.Schema = ArraySchema(method.Result.Schema)
	}
	if _, ok := g.messages[m.ResponseType]; !ok {
		g.log.Debugf("Result type %s of %s is not a known message", m.ResponseType, method.Name)
	}
	return method
}

func (g *Generator) params(m schema.Method) []Param {
	if m.RequestStream {
		return []Param{{
			Name:        "requests",
			Description: fmt.Sprintf("Stream of %s messages", m.RequestType),
			Required:    true,
			Schema:      ArraySchema(RefSchema(m.RequestType)),
		}}
	}

	params := make([]Param, 0)
	req, ok := g.messages[m.RequestType]
	if !ok {
		g.log.Debugf("Request type %s of method %s is not a known message, emitting no params", m.RequestType, m.Name)
		return params
	}

	for _, f := range req.Fields {
		desc := f.Comment
		if desc == "" {
			desc = fmt.Sprintf("Field from %s", req.Name)
		}
		params = append(params, Param{
			Name:        f.Name,
			Description: desc,
			Required:    f.Rule == schema.RuleRequired,
			Schema:      g.fieldSchema(f),
		})
	}
	return params
}

func (g *Generator) messageSchema(msg schema.Message) *Schema {
	s := &Schema{
		Type:        "object",
		Description: msg.Comment,
		Properties:  NewSchemaMap(),
	}
	for _, f := range msg.Fields {
		s.Properties.Set(f.Name, g.fieldSchema(f))
		if f.Rule == schema.RuleRequired {
			s.Required = append(s.Required, f.Name)
		}
	}
	return s
}

func (g *Generator) fieldSchema(f schema.Field) *Schema {
	base := g.typeSchema(f.Type)
	if f.IsMap() {
		return &Schema{Type: "object", AdditionalProperties: base}
	}
	if f.Rule == schema.RuleRepeated {
		return ArraySchema(base)
	}
	return base
}

func (g *Generator) typeSchema(typ string) *Schema {
	switch typ {
	case "double", "float":
		return &Schema{Type: "number"}
	case "int32", "int64", "uint32", "uint64", "sint32", "sint64",
		"fixed32", "fixed64", "sfixed32", "sfixed64":
		return &Schema{Type: "integer"}
	case "bool":
		return &Schema{Type: "boolean"}
	case "string", "bytes":
		return &Schema{Type: "string"}
	}
	if _, ok := g.messages[typ]; ok {
		return RefSchema(typ)
	}
	return &Schema{Type: "string"}
}
