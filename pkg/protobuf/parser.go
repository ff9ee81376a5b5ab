package protobuf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bufbuild/protocompile"
	"github.com/bufbuild/protocompile/parser"
	"github.com/bufbuild/protocompile/reporter"
	"github.com/bufbuild/protocompile/sourceinfo"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultContentFilename is the virtual file name used when parsing raw proto text
const DefaultContentFilename = "input.proto"

// Parser turns proto source into an AST. It is the only place that knows
// about the underlying proto compiler.
type Parser interface {
	// ParseFile reads and parses the proto file at path
	ParseFile(ctx context.Context, path string) (*RootNode, error)
	// ParseContent parses raw proto text registered under filename
	ParseContent(filename, content string) (*RootNode, error)
}

// CompileParser implements Parser with protocompile.
// Imports are resolved against the directory of the parsed file, the
// configured import paths and the well-known google/protobuf files.
// When linking fails (an undefined type, an import that cannot be found)
// the file's own declarations are still returned, with type references
// left as written.
type CompileParser struct {
	importPaths []string
	log         *logrus.Logger
}

// NewCompileParser creates a parser. A nil logger falls back to logrus.New().
func NewCompileParser(importPaths []string, log *logrus.Logger) *CompileParser {
	if log == nil {
		log = logrus.New()
	}
	return &CompileParser{
		importPaths: importPaths,
		log:         log,
	}
}

// ParseFile parses the proto file at path
func (p *CompileParser) ParseFile(ctx context.Context, path string) (*RootNode, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve path %s", path)
	}

	importPaths := append([]string{filepath.Dir(abs)}, p.importPaths...)
	resolver := &protocompile.SourceResolver{ImportPaths: importPaths}

	filename := filepath.Base(abs)
	root, err := p.compile(ctx, resolver, filename)
	if err == nil {
		return root, nil
	}
	content, readErr := os.ReadFile(abs)
	if readErr != nil {
		return nil, err
	}
	return p.parseUnlinked(filename, content, err)
}

// ParseContent parses raw proto text. Imports other than the well-known
// types resolve against the configured import paths only.
func (p *CompileParser) ParseContent(filename, content string) (*RootNode, error) {
	if filename == "" {
		filename = DefaultContentFilename
	}

	resolver := protocompile.CompositeResolver{
		&protocompile.SourceResolver{
			Accessor: protocompile.SourceAccessorFromMap(map[string]string{
				filename: content,
			}),
		},
		&protocompile.SourceResolver{ImportPaths: p.importPaths},
	}

	root, err := p.compile(context.Background(), resolver, filename)
	if err == nil {
		return root, nil
	}
	return p.parseUnlinked(filename, []byte(content), err)
}

func (p *CompileParser) compile(ctx context.Context, resolver protocompile.Resolver, filename string) (*RootNode, error) {
	compiler := protocompile.Compiler{
		Resolver:       protocompile.WithStandardImports(resolver),
		SourceInfoMode: protocompile.SourceInfoStandard,
	}

	files, err := compiler.Compile(ctx, filename)
	if err != nil {
		return nil, errors.Wrapf(err, "protocompile failed for %s", filename)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files compiled for %s", filename)
	}

	root := FromFileDescriptor(files[0])
	p.log.Debugf("Parsed %s: %d messages, %d services, %d enums",
		filename, len(root.Messages), len(root.Services), len(root.Enums))
	return root, nil
}

// parseUnlinked builds the tree from the parse result alone. compileErr is
// returned when the file does not parse, or is invalid on its own.
func (p *CompileParser) parseUnlinked(filename string, content []byte, compileErr error) (*RootNode, error) {
	handler := reporter.NewHandler(nil)
	file, err := parser.Parse(filename, bytes.NewReader(content), handler)
	if err != nil {
		return nil, compileErr
	}
	res, err := parser.ResultFromAST(file, true, handler)
	if err != nil {
		return nil, compileErr
	}

	fdp := res.FileDescriptorProto()
	fdp.SourceCodeInfo = sourceinfo.GenerateSourceInfo(file, nil)
	root, err := FromFileDescriptorProto(fdp)
	if err != nil {
		p.log.Debugf("Unlinked parse of %s rejected: %v", filename, err)
		return nil, compileErr
	}

	p.log.WithError(compileErr).Warnf("Could not link %s, unresolved type references are kept by name", filename)
	p.log.Debugf("Parsed %s: %d messages, %d services, %d enums",
		filename, len(root.Messages), len(root.Services), len(root.Enums))
	return root, nil
}
