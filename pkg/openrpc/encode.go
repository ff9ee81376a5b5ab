package openrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is an output encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml and yml, case-insensitively. Empty means json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want json or yaml)", s)
	}
}

// Extension returns the file extension for the format, without the dot
func (f Format) Extension() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// ContentType returns the HTTP media type for the format
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// EncodeOptions controls Encode
type EncodeOptions struct {
	Format Format
	// Pretty indents JSON with two spaces. YAML is always block style.
	Pretty bool
}

// Encode serializes the document
func Encode(doc *Document, opts EncodeOptions) ([]byte, error) {
	switch opts.Format {
	case "", FormatJSON:
		if opts.Pretty {
			return json.MarshalIndent(doc, "", "  ")
		}
		return json.Marshal(doc)
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", opts.Format)
	}
}
