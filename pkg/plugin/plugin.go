package plugin

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/platinummonkey/proto2openrpc/pkg/converter"
	"github.com/platinummonkey/proto2openrpc/pkg/openrpc"
	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/compiler/protogen"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/pluginpb"
)

// Params are the plugin parameters passed with --openrpc_opt
type Params struct {
	Title       string
	Version     string
	Description string
	Format      openrpc.Format
	Pretty      bool
	JSONNames   bool
}

// Set applies one name=value parameter. Boolean parameters given without a
// value are true.
func (p *Params) Set(name, value string) error {
	var err error
	switch name {
	case "title":
		p.Title = value
	case "version":
		p.Version = value
	case "description":
		p.Description = value
	case "format":
		p.Format, err = openrpc.ParseFormat(value)
	case "pretty":
		p.Pretty, err = parseBool(name, value)
	case "json_names":
		p.JSONNames, err = parseBool(name, value)
	default:
		return fmt.Errorf("unknown parameter %q", name)
	}
	return err
}

func parseBool(name, value string) (bool, error) {
	if value == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid value %q for %s: must be a boolean", value, name)
	}
	return b, nil
}

// Run reads a CodeGeneratorRequest from in and writes the response to out
func Run(in io.Reader, out io.Writer, log *logrus.Logger) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read request: %w", err)
	}
	req := &pluginpb.CodeGeneratorRequest{}
	if err := proto.Unmarshal(data, req); err != nil {
		return fmt.Errorf("failed to unmarshal request: %w", err)
	}

	resp := Process(req, log)
	data, err = proto.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	_, err = out.Write(data)
	return err
}

// Process generates one document per file to generate. Failures are reported
// in the response's error field, as protoc expects.
func Process(req *pluginpb.CodeGeneratorRequest, log *logrus.Logger) *pluginpb.CodeGeneratorResponse {
	if log == nil {
		log = logrus.New()
	}

	params := &Params{}
	addImportMappings(req)
	gen, err := protogen.Options{ParamFunc: params.Set}.New(req)
	if err != nil {
		return &pluginpb.CodeGeneratorResponse{Error: proto.String(err.Error())}
	}
	if err := Generate(gen, params, log); err != nil {
		gen.Error(err)
	}
	return gen.Response()
}

// Generate writes <file>.openrpc.<ext> next to each proto file marked for generation
func Generate(gen *protogen.Plugin, params *Params, log *logrus.Logger) error {
	gen.SupportedFeatures = uint64(pluginpb.CodeGeneratorResponse_FEATURE_PROTO3_OPTIONAL)

	opts := []converter.Option{converter.WithLogger(log)}
	if params.JSONNames {
		opts = append(opts, converter.WithJSONNames())
	}
	conv := converter.New(opts...)

	format := params.Format
	if format == "" {
		format = openrpc.FormatJSON
	}

	for _, f := range gen.Files {
		if !f.Generate {
			continue
		}

		doc := conv.ConvertDescriptor(context.Background(), f.Desc, converter.Options{
			Title:       params.Title,
			Version:     params.Version,
			Description: params.Description,
		})
		data, err := openrpc.Encode(doc, openrpc.EncodeOptions{Format: format, Pretty: params.Pretty})
		if err != nil {
			return fmt.Errorf("%s: %w", f.Desc.Path(), err)
		}

		name := strings.TrimSuffix(f.Desc.Path(), ".proto") + ".openrpc." + format.Extension()
		g := gen.NewGeneratedFile(name, "")
		if _, err := g.Write(data); err != nil {
			return err
		}
		log.Debugf("Generated %s: %d methods", name, len(doc.Methods))
	}
	return nil
}

// addImportMappings gives files without a go_package option a placeholder Go
// import path. protogen refuses requests it cannot map to Go packages, and
// nothing generated here depends on the value.
func addImportMappings(req *pluginpb.CodeGeneratorRequest) {
	var mappings []string
	for _, fd := range req.GetProtoFile() {
		if fd.GetOptions().GetGoPackage() != "" {
			continue
		}
		name := fd.GetName()
		mappings = append(mappings, "M"+name+"=proto2openrpc/"+strings.TrimSuffix(name, ".proto"))
	}
	if len(mappings) == 0 {
		return
	}

	param := req.GetParameter()
	if param != "" {
		param += ","
	}
	req.Parameter = proto.String(param + strings.Join(mappings, ","))
}
