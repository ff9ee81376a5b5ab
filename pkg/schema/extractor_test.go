package schema

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/platinummonkey/proto2openrpc/pkg/protobuf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userServiceProto = `syntax = "proto3";

package test;

// UserService manages users.
service UserService {
  // GetUser returns a single user.
  rpc GetUser (GetUserRequest) returns (User) {}
  rpc Watch (stream GetUserRequest) returns (stream User) {}
}

message GetUserRequest {
  string id = 1;
}

// User is a person.
message User {
  string id = 1;
  string display_name = 2;
  repeated string tags = 3;
  map<string, int32> scores = 4;
  Address address = 5;

  message Address {
    string city = 1;
  }

  enum Role {
    ROLE_UNSPECIFIED = 0;
  }
}
`

func TestExtractor_ExtractContent(t *testing.T) {
	result, err := NewExtractor().ExtractContent(userServiceProto)
	require.NoError(t, err)

	require.Len(t, result.Services, 1)
	svc := result.Services[0]
	assert.Equal(t, "UserService", svc.Name)
	assert.Equal(t, "UserService manages users.", svc.Comment)

	require.Len(t, svc.Methods, 2)
	get := svc.Methods[0]
	assert.Equal(t, "GetUser", get.Name)
	assert.Equal(t, "GetUserRequest", get.RequestType)
	assert.Equal(t, "User", get.ResponseType)
	assert.False(t, get.RequestStream)
	assert.False(t, get.ResponseStream)
	assert.Equal(t, "GetUser returns a single user.", get.Comment)
	assert.NotNil(t, get.Options)

	watch := svc.Methods[1]
	assert.True(t, watch.RequestStream)
	assert.True(t, watch.ResponseStream)

	names := make([]string, 0, len(result.Messages))
	for _, m := range result.Messages {
		names = append(names, m.Name)
	}
	// nested messages follow their parent; enums produce nothing
	assert.Equal(t, []string{"GetUserRequest", "User", "Address"}, names)

	user := result.Messages[1]
	assert.Equal(t, "User is a person.", user.Comment)
	require.Len(t, user.Fields, 5)

	assert.Equal(t, Field{Name: "id", Type: "string", ID: 1, Rule: RuleNone, Options: Options{}}, user.Fields[0])
	assert.Equal(t, "display_name", user.Fields[1].Name)
	assert.Equal(t, RuleRepeated, user.Fields[2].Rule)

	scores := user.Fields[3]
	assert.True(t, scores.IsMap())
	assert.Equal(t, "string", scores.KeyType)
	assert.Equal(t, "int32", scores.Type)
	assert.Equal(t, RuleNone, scores.Rule)

	assert.Equal(t, "Address", user.Fields[4].Type)
}

func TestExtractor_JSONNames(t *testing.T) {
	result, err := NewExtractor(WithJSONNames()).ExtractContent(userServiceProto)
	require.NoError(t, err)
	assert.Equal(t, "displayName", result.Messages[1].Fields[1].Name)
	assert.Equal(t, "id", result.Messages[1].Fields[0].Name)
}

func TestExtractor_Rules(t *testing.T) {
	content := `syntax = "proto2";
message M {
  required string a = 1;
  optional string b = 2;
  repeated string c = 3;
}
`
	result, err := NewExtractor().ExtractContent(content)
	require.NoError(t, err)

	fields := result.Messages[0].Fields
	require.Len(t, fields, 3)
	assert.Equal(t, RuleRequired, fields[0].Rule)
	assert.Equal(t, RuleOptional, fields[1].Rule)
	assert.Equal(t, RuleRepeated, fields[2].Rule)
}

func TestExtractor_EmptyInput(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty", content: ""},
		{name: "syntax only", content: `syntax = "proto3";`},
		{name: "enums only", content: `syntax = "proto3"; enum E { E_UNSPECIFIED = 0; }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewExtractor().ExtractContent(tt.content)
			require.NoError(t, err)
			assert.NotNil(t, result.Services)
			assert.NotNil(t, result.Messages)
			assert.Empty(t, result.Services)
			assert.Empty(t, result.Messages)
		})
	}
}

func TestExtractor_ParseErrors(t *testing.T) {
	_, err := NewExtractor().ExtractContent(`syntax = "proto3"; message {`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Empty(t, perr.Source)
	assert.Contains(t, err.Error(), "failed to parse proto content")

	missing := filepath.Join(t.TempDir(), "missing.proto")
	_, err = NewExtractor().ExtractFile(context.Background(), missing)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "failed to parse proto file "+missing)
}

func TestExtractor_ExtractFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.proto")
	require.NoError(t, os.WriteFile(path, []byte(userServiceProto), 0644))

	fromFile, err := NewExtractor().ExtractFile(context.Background(), path)
	require.NoError(t, err)
	fromContent, err := NewExtractor().ExtractContent(userServiceProto)
	require.NoError(t, err)

	assert.Equal(t, fromContent, fromFile)
}

func TestExtractor_Extract_DeeplyNested(t *testing.T) {
	root := &protobuf.RootNode{
		Messages: []*protobuf.MessageNode{
			{
				Name: "Outer",
				Pos:  protobuf.Position{Line: 1},
				Nested: []*protobuf.MessageNode{
					{
						Name: "Middle",
						Pos:  protobuf.Position{Line: 2},
						Nested: []*protobuf.MessageNode{
							{Name: "Inner", Pos: protobuf.Position{Line: 3}},
						},
					},
				},
			},
			{Name: "Last", Pos: protobuf.Position{Line: 10}},
		},
	}

	result := NewExtractor().Extract(root)
	require.Len(t, result.Messages, 4)
	assert.Equal(t, "Outer", result.Messages[0].Name)
	assert.Equal(t, "Middle", result.Messages[1].Name)
	assert.Equal(t, "Inner", result.Messages[2].Name)
	assert.Equal(t, "Last", result.Messages[3].Name)
}

func TestExtractor_Extract_Nil(t *testing.T) {
	result := NewExtractor().Extract(nil)
	assert.Empty(t, result.Services)
	assert.Empty(t, result.Messages)
}

type stubParser struct {
	root *protobuf.RootNode
	err  error
}

func (s stubParser) ParseFile(context.Context, string) (*protobuf.RootNode, error) {
	return s.root, s.err
}

func (s stubParser) ParseContent(string, string) (*protobuf.RootNode, error) {
	return s.root, s.err
}

func TestExtractor_WithParser(t *testing.T) {
	stub := stubParser{root: &protobuf.RootNode{
		Services: []*protobuf.ServiceNode{{
			Name: "S",
			RPCs: []*protobuf.RPCNode{{Name: "Do", InputType: "In", OutputType: "Out"}},
		}},
	}}

	result, err := NewExtractor(WithParser(stub)).ExtractContent("ignored")
	require.NoError(t, err)
	require.Len(t, result.Services, 1)
	assert.Equal(t, "Do", result.Services[0].Methods[0].Name)
	// options default to an empty map even when the tree has none
	assert.Equal(t, Options{}, result.Services[0].Methods[0].Options)

	_, err = NewExtractor(WithParser(stubParser{err: errors.New("boom")})).ExtractFile(context.Background(), "x.proto")
	require.Error(t, err)
	assert.EqualError(t, err, "failed to parse proto file x.proto: boom")
}
