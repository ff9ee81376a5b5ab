package openrpc

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/platinummonkey/proto2openrpc/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatJSON},
		{in: "json", want: FormatJSON},
		{in: "JSON", want: FormatJSON},
		{in: "yaml", want: FormatYAML},
		{in: " yml ", want: FormatYAML},
		{in: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncode_JSON(t *testing.T) {
	services, messages := scenarioInput()
	doc := NewGenerator(nil).Generate(services, messages, Info{})

	compact, err := Encode(doc, EncodeOptions{})
	require.NoError(t, err)
	assert.NotContains(t, string(compact), "\n")
	assert.True(t, strings.HasPrefix(string(compact), `{"openrpc":"1.3.0","info":{"title":"Generated API","version":"1.0.0"},"methods":[{"name":"S.M"`))

	pretty, err := Encode(doc, EncodeOptions{Format: FormatJSON, Pretty: true})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pretty), "{\n  \"openrpc\": \"1.3.0\",\n  \"info\": {\n    \"title\""))
	assert.JSONEq(t, string(compact), string(pretty))
}

func TestEncode_Deterministic(t *testing.T) {
	services := []schema.Service{{Name: "S", Methods: []schema.Method{{Name: "M", RequestType: "Z", ResponseType: "A"}}}}
	var messages []schema.Message
	for _, name := range []string{"Z", "Y", "X", "A", "B", "C", "M", "N"} {
		messages = append(messages, schema.Message{Name: name, Fields: []schema.Field{
			{Name: "z", Type: "string"},
			{Name: "a", Type: "A"},
			{Name: "m", Type: "int32", Rule: schema.RuleRepeated},
		}})
	}

	first, err := Encode(NewGenerator(nil).Generate(services, messages, Info{}), EncodeOptions{Pretty: true})
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Encode(NewGenerator(nil).Generate(services, messages, Info{}), EncodeOptions{Pretty: true})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	// keys appear in declaration order, not sorted
	out := string(first)
	assert.Less(t, strings.Index(out, `"Z": {`), strings.Index(out, `"A": {`))
	assert.Less(t, strings.Index(out, `"z": {`), strings.Index(out, `"a": {`))
}

func TestEncode_YAML(t *testing.T) {
	services, messages := scenarioInput()
	doc := NewGenerator(nil).Generate(services, messages, Info{Description: "demo"})

	data, err := Encode(doc, EncodeOptions{Format: FormatYAML})
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "openrpc: 1.3.0\n")
	assert.Contains(t, out, "description: demo\n")
	assert.Less(t, strings.Index(out, "Req:"), strings.Index(out, "Res:"))

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	methods := decoded["methods"].([]interface{})
	require.Len(t, methods, 1)
	result := methods[0].(map[string]interface{})["result"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"$ref": "#/components/schemas/Res"}, result["schema"])
}

func TestEncode_UnknownFormat(t *testing.T) {
	_, err := Encode(NewGenerator(nil).Generate(nil, nil, Info{}), EncodeOptions{Format: "xml"})
	assert.Error(t, err)
}

func TestSchemaMap(t *testing.T) {
	m := NewSchemaMap()
	m.Set("b", &Schema{Type: "string"})
	m.Set("a", &Schema{Type: "integer"})
	m.Set("b", &Schema{Type: "boolean"})

	assert.Equal(t, 2, m.Len())
	assert.Equal(t, []string{"b", "a"}, m.Keys())
	b, ok := m.Get("b")
	require.True(t, ok)
	assert.Equal(t, "boolean", b.Type)
	_, ok = m.Get("missing")
	assert.False(t, ok)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"b":{"type":"boolean"},"a":{"type":"integer"}}`, string(data))

	var decoded SchemaMap
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []string{"b", "a"}, decoded.Keys())

	var nilMap *SchemaMap
	assert.Equal(t, 0, nilMap.Len())
	assert.Nil(t, nilMap.Keys())
}

func TestDocument_JSONRoundTrip(t *testing.T) {
	services, messages := scenarioInput()
	doc := NewGenerator(nil).Generate(services, messages, Info{Title: "T"})

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var decoded Document
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, doc.Components.Schemas.Keys(), decoded.Components.Schemas.Keys())

	again, err := json.Marshal(&decoded)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}
