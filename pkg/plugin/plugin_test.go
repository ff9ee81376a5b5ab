package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/bufbuild/protocompile"
	"github.com/platinummonkey/proto2openrpc/pkg/observability"
	"github.com/platinummonkey/proto2openrpc/pkg/openrpc"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/pluginpb"
	"gopkg.in/yaml.v3"
)

const usersProto = `syntax = "proto3";
package users.v1;

// Users manages accounts.
service Users {
  // GetUser looks up one account.
  rpc GetUser (GetUserRequest) returns (User);
  rpc WatchUsers (GetUserRequest) returns (stream User);
}

message GetUserRequest {
  string user_id = 1;
}

message User {
  string user_id = 1;
  map<string, string> labels = 2;
}
`

func request(t *testing.T, name, parameter string) *pluginpb.CodeGeneratorRequest {
	t.Helper()
	compiler := protocompile.Compiler{
		Resolver: &protocompile.SourceResolver{
			Accessor: protocompile.SourceAccessorFromMap(map[string]string{name: usersProto}),
		},
		SourceInfoMode: protocompile.SourceInfoStandard,
	}
	files, err := compiler.Compile(context.Background(), name)
	require.NoError(t, err)

	return &pluginpb.CodeGeneratorRequest{
		FileToGenerate: []string{name},
		Parameter:      proto.String(parameter),
		ProtoFile:      []*descriptorpb.FileDescriptorProto{protodesc.ToFileDescriptorProto(files[0])},
	}
}

func quietLogger() *logrus.Logger {
	return observability.NewLogger("error", observability.TextFormat, io.Discard)
}

func TestProcess(t *testing.T) {
	resp := Process(request(t, "users/v1/users.proto", "title=Users API,version=1.2.0,pretty"), quietLogger())
	require.Empty(t, resp.GetError())
	require.Len(t, resp.GetFile(), 1)

	file := resp.GetFile()[0]
	assert.Equal(t, "users/v1/users.openrpc.json", file.GetName())
	assert.Contains(t, file.GetContent(), "\n  \"openrpc\": \"1.3.0\"")

	var doc openrpc.Document
	require.NoError(t, json.Unmarshal([]byte(file.GetContent()), &doc))
	assert.Equal(t, "Users API", doc.Info.Title)
	assert.Equal(t, "1.2.0", doc.Info.Version)
	require.Len(t, doc.Methods, 2)
	assert.Equal(t, "Users.GetUser", doc.Methods[0].Name)
	assert.Equal(t, "GetUser looks up one account.", doc.Methods[0].Description)
	assert.Equal(t, "array", doc.Methods[1].Result.Schema.Type)

	user, ok := doc.Components.Schemas.Get("User")
	require.True(t, ok)
	assert.Equal(t, []string{"user_id", "labels"}, user.Properties.Keys())
	labels, _ := user.Properties.Get("labels")
	assert.Equal(t, "object", labels.Type)

	assert.NotZero(t, resp.GetSupportedFeatures()&uint64(pluginpb.CodeGeneratorResponse_FEATURE_PROTO3_OPTIONAL))
}

func TestProcess_YAMLAndJSONNames(t *testing.T) {
	resp := Process(request(t, "users.proto", "format=yaml,json_names=true"), quietLogger())
	require.Empty(t, resp.GetError())
	require.Len(t, resp.GetFile(), 1)
	assert.Equal(t, "users.openrpc.yaml", resp.GetFile()[0].GetName())

	var decoded struct {
		Info struct {
			Title string `yaml:"title"`
		} `yaml:"info"`
		Methods []struct {
			Params []struct {
				Name string `yaml:"name"`
			} `yaml:"params"`
		} `yaml:"methods"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(resp.GetFile()[0].GetContent()), &decoded))
	assert.Equal(t, "Generated API", decoded.Info.Title)
	require.NotEmpty(t, decoded.Methods)
	assert.Equal(t, "userId", decoded.Methods[0].Params[0].Name)
}

func TestProcess_ParameterErrors(t *testing.T) {
	tests := []struct {
		name      string
		parameter string
		wantError string
	}{
		{name: "unknown", parameter: "colour=blue", wantError: `unknown parameter "colour"`},
		{name: "bad bool", parameter: "pretty=sometimes", wantError: "must be a boolean"},
		{name: "bad format", parameter: "format=xml", wantError: "unsupported format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := Process(request(t, "users.proto", tt.parameter), quietLogger())
			assert.Contains(t, resp.GetError(), tt.wantError)
			assert.Empty(t, resp.GetFile())
		})
	}
}

func TestAddImportMappings(t *testing.T) {
	req := &pluginpb.CodeGeneratorRequest{
		Parameter: proto.String("pretty"),
		ProtoFile: []*descriptorpb.FileDescriptorProto{
			{Name: proto.String("a/b.proto")},
			{
				Name:    proto.String("c.proto"),
				Options: &descriptorpb.FileOptions{GoPackage: proto.String("example.com/c")},
			},
		},
	}
	addImportMappings(req)
	assert.Equal(t, "pretty,Ma/b.proto=proto2openrpc/a/b", req.GetParameter())

	req = &pluginpb.CodeGeneratorRequest{
		ProtoFile: []*descriptorpb.FileDescriptorProto{
			{Name: proto.String("c.proto"), Options: &descriptorpb.FileOptions{GoPackage: proto.String("example.com/c")}},
		},
	}
	addImportMappings(req)
	assert.Empty(t, req.GetParameter())
}

func TestRun(t *testing.T) {
	in, err := proto.Marshal(request(t, "users.proto", ""))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Run(bytes.NewReader(in), &out, quietLogger()))

	resp := &pluginpb.CodeGeneratorResponse{}
	require.NoError(t, proto.Unmarshal(out.Bytes(), resp))
	require.Empty(t, resp.GetError())
	require.Len(t, resp.GetFile(), 1)
	assert.Equal(t, "users.openrpc.json", resp.GetFile()[0].GetName())

	err = Run(bytes.NewReader([]byte{0xff, 0xff}), &out, quietLogger())
	assert.Error(t, err)
}

func TestParamsSet(t *testing.T) {
	var p Params
	require.NoError(t, p.Set("description", "All the users"))
	require.NoError(t, p.Set("json_names", ""))
	require.NoError(t, p.Set("pretty", "false"))
	require.NoError(t, p.Set("format", "yml"))

	assert.Equal(t, Params{Description: "All the users", JSONNames: true, Format: openrpc.FormatYAML}, p)
}
