package schema

// Rule is the cardinality keyword of a field. Only RuleRequired and
// RuleRepeated change the generated output; RuleNone and RuleOptional are
// treated identically.
type Rule string

const (
	RuleNone     Rule = ""
	RuleOptional Rule = "optional"
	RuleRequired Rule = "required"
	RuleRepeated Rule = "repeated"
)

// Options carries proto options as opaque values. Nothing downstream reads them.
type Options map[string]interface{}

// Result is the flattened view of one proto source
type Result struct {
	Services []Service
	Messages []Message
}

// Service is a proto service and its methods in declaration order
type Service struct {
	Name    string
	Methods []Method
	Comment string
}

// Method is an RPC. RequestType and ResponseType name a Message; they are
// resolved by name when the document is generated.
type Method struct {
	Name           string
	RequestType    string
	ResponseType   string
	RequestStream  bool
	ResponseStream bool
	Options        Options
	Comment        string
}

// Message is a proto message. Name is the component schema key.
type Message struct {
	Name    string
	Fields  []Field
	Comment string
}

// Field is a message field. Type is either a scalar proto type name or the
// name of another message (or enum).
type Field struct {
	Name string
	Type string
	ID   int
	Rule Rule
	// KeyType is the key type of a map field and empty otherwise
	KeyType string
	Options Options
	Comment string
}

// IsMap reports whether the field is a map<KeyType, Type>
func (f Field) IsMap() bool {
	return f.KeyType != ""
}
