package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/platinummonkey/proto2openrpc/pkg/converter"
	"github.com/platinummonkey/proto2openrpc/pkg/openrpc"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// documentFlags are the conversion flags shared by convert, convert-content, batch and watch
type documentFlags struct {
	title       string
	version     string
	description string
	format      string
	pretty      bool
	jsonNames   bool
	importPaths []string
}

func (f *documentFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.title, "title", "t", "", "API title (default \"Generated API\")")
	fs.StringVarP(&f.version, "version", "v", "", "API version (default \"1.0.0\")")
	fs.StringVarP(&f.description, "description", "d", "", "API description")
	fs.StringVar(&f.format, "format", "", "output format: json, yaml")
	fs.BoolVar(&f.pretty, "pretty", false, "pretty-print JSON output")
	fs.BoolVar(&f.jsonNames, "json-names", false, "use protobuf JSON (lowerCamelCase) field names")
	fs.StringSliceVarP(&f.importPaths, "import-path", "I", nil, "directory to search for imports (repeatable)")
}

// settings is the result of layering flags over configuration
type settings struct {
	doc       converter.Options
	encode    openrpc.EncodeOptions
	converter []converter.Option
}

// resolve applies explicitly set flags on top of the loaded configuration
func (f *documentFlags) resolve(cmd *cobra.Command, a *app) (settings, error) {
	cfg := a.cfg
	changed := cmd.Flags().Changed

	s := settings{
		doc: converter.Options{
			Title:       cfg.Document.Title,
			Version:     cfg.Document.Version,
			Description: cfg.Document.Description,
		},
	}
	if changed("title") {
		s.doc.Title = f.title
	}
	if changed("version") {
		s.doc.Version = f.version
	}
	if changed("description") {
		s.doc.Description = f.description
	}

	formatName := cfg.Output.Format
	if changed("format") {
		formatName = f.format
	}
	format, err := openrpc.ParseFormat(formatName)
	if err != nil {
		return settings{}, err
	}
	s.encode = openrpc.EncodeOptions{Format: format, Pretty: cfg.Output.Pretty}
	if changed("pretty") {
		s.encode.Pretty = f.pretty
	}

	importPaths := append(append([]string{}, cfg.Parser.ImportPaths...), f.importPaths...)
	s.converter = []converter.Option{converter.WithLogger(a.log)}
	if len(importPaths) > 0 {
		s.converter = append(s.converter, converter.WithImportPaths(importPaths...))
	}
	if f.jsonNames || cfg.Parser.JSONNames {
		s.converter = append(s.converter, converter.WithJSONNames())
	}
	return s, nil
}

// writeDocument encodes doc and writes it to path, or to out when path is empty
func writeDocument(out io.Writer, path string, doc *openrpc.Document, opts openrpc.EncodeOptions) error {
	data, err := openrpc.Encode(doc, opts)
	if err != nil {
		return err
	}

	if path == "" {
		if _, err := out.Write(data); err != nil {
			return err
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			_, err = fmt.Fprintln(out)
		}
		return err
	}

	if err := writeFile(path, data); err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	fmt.Fprintf(out, "OpenRPC document generated: %s\n", abs)
	return nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
