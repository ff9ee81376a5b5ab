package converter

import (
	"context"
	"time"

	"github.com/platinummonkey/proto2openrpc/pkg/observability"
	"github.com/platinummonkey/proto2openrpc/pkg/openrpc"
	"github.com/platinummonkey/proto2openrpc/pkg/protobuf"
	"github.com/platinummonkey/proto2openrpc/pkg/schema"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/protobuf/reflect/protoreflect"
)

const instrumentationName = "github.com/platinummonkey/proto2openrpc/pkg/converter"

// Options is the document metadata of one conversion. Empty Title and Version
// take the generator defaults.
type Options struct {
	Title       string
	Version     string
	Description string
}

// Converter runs the extract and generate pipeline. It holds no per-call
// state and is safe for concurrent use.
type Converter struct {
	log         *logrus.Logger
	metrics     *observability.Metrics
	importPaths []string
	jsonNames   bool
	parser      protobuf.Parser

	tracer      trace.Tracer
	conversions metric.Int64Counter
}

// Option configures a Converter
type Option func(*Converter)

// WithLogger sets the logger
func WithLogger(log *logrus.Logger) Option {
	return func(c *Converter) {
		if log != nil {
			c.log = log
		}
	}
}

// WithMetrics records every conversion in m
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Converter) {
		c.metrics = m
	}
}

// WithImportPaths adds directories searched for imported proto files
func WithImportPaths(paths ...string) Option {
	return func(c *Converter) {
		c.importPaths = append(c.importPaths, paths...)
	}
}

// WithJSONNames uses proto3 JSON field names for params and properties
func WithJSONNames() Option {
	return func(c *Converter) {
		c.jsonNames = true
	}
}

// WithParser replaces the protocompile parser
func WithParser(p protobuf.Parser) Option {
	return func(c *Converter) {
		c.parser = p
	}
}

// New creates a converter
func New(opts ...Option) *Converter {
	c := &Converter{log: logrus.New()}
	for _, opt := range opts {
		opt(c)
	}
	if c.parser == nil {
		c.parser = protobuf.NewCompileParser(c.importPaths, c.log)
	}

	c.tracer = otel.Tracer(instrumentationName)
	counter, err := otel.Meter(instrumentationName).Int64Counter(
		"proto2openrpc.conversions",
		metric.WithDescription("Number of conversions"),
	)
	if err != nil {
		c.log.WithError(err).Warn("Failed to create conversion counter")
	}
	c.conversions = counter

	return c
}

// ConvertFromFile reads and converts the proto file at path
func (c *Converter) ConvertFromFile(ctx context.Context, path string, opts Options) (*openrpc.Document, error) {
	ctx, span := c.tracer.Start(ctx, "ConvertFromFile", trace.WithAttributes(
		attribute.String("proto.path", path),
	))
	defer span.End()

	start := time.Now()
	result, err := c.extractor().ExtractFile(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.record(ctx, observability.SourceFile, start, nil, err)
		return nil, err
	}

	doc := c.generate(result, opts)
	span.SetAttributes(
		attribute.Int("openrpc.services", len(result.Services)),
		attribute.Int("openrpc.messages", len(result.Messages)),
		attribute.Int("openrpc.methods", len(doc.Methods)),
	)
	c.record(ctx, observability.SourceFile, start, doc, nil)
	c.log.WithFields(observability.TraceFields(ctx)).Debugf("Converted %s: %d methods, %d schemas",
		path, len(doc.Methods), doc.Components.Schemas.Len())
	return doc, nil
}

// ConvertFromContent converts raw proto text
func (c *Converter) ConvertFromContent(content string, opts Options) (*openrpc.Document, error) {
	return c.convertContent(context.Background(), observability.SourceContent, content, opts)
}

// ConvertContentWithSource is ConvertFromContent labeled with the calling surface
// (for example observability.SourceHTTP) and traced under ctx.
func (c *Converter) ConvertContentWithSource(ctx context.Context, source, content string, opts Options) (*openrpc.Document, error) {
	return c.convertContent(ctx, source, content, opts)
}

func (c *Converter) convertContent(ctx context.Context, source, content string, opts Options) (*openrpc.Document, error) {
	_, span := c.tracer.Start(ctx, "ConvertFromContent", trace.WithAttributes(
		attribute.String("convert.source", source),
		attribute.Int("proto.bytes", len(content)),
	))
	defer span.End()

	start := time.Now()
	result, err := c.extractor().ExtractContent(content)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.record(ctx, source, start, nil, err)
		return nil, err
	}

	doc := c.generate(result, opts)
	c.record(ctx, source, start, doc, nil)
	c.log.Debugf("Converted content: %d methods, %d schemas", len(doc.Methods), doc.Components.Schemas.Len())
	return doc, nil
}

// ConvertDescriptor converts a file descriptor that was already parsed and
// linked elsewhere, such as the files protoc hands to a plugin
func (c *Converter) ConvertDescriptor(ctx context.Context, fd protoreflect.FileDescriptor, opts Options) *openrpc.Document {
	ctx, span := c.tracer.Start(ctx, "ConvertDescriptor", trace.WithAttributes(
		attribute.String("proto.path", fd.Path()),
	))
	defer span.End()

	start := time.Now()
	result := c.extractor().Extract(protobuf.FromFileDescriptor(fd))
	doc := c.generate(result, opts)
	c.record(ctx, observability.SourcePlugin, start, doc, nil)
	return doc
}

// ConvertResult generates a document from an already extracted result
func (c *Converter) ConvertResult(result *schema.Result, opts Options) *openrpc.Document {
	return c.generate(result, opts)
}

func (c *Converter) extractor() *schema.Extractor {
	opts := []schema.ExtractorOption{
		schema.WithParser(c.parser),
		schema.WithLogger(c.log),
	}
	if c.jsonNames {
		opts = append(opts, schema.WithJSONNames())
	}
	return schema.NewExtractor(opts...)
}

// generate uses a fresh Generator so concurrent calls never share a lookup table
func (c *Converter) generate(result *schema.Result, opts Options) *openrpc.Document {
	return openrpc.NewGenerator(c.log).Generate(result.Services, result.Messages, openrpc.Info{
		Title:       opts.Title,
		Version:     opts.Version,
		Description: opts.Description,
	})
}

func (c *Converter) record(ctx context.Context, source string, start time.Time, doc *openrpc.Document, err error) {
	methods := 0
	if doc != nil {
		methods = len(doc.Methods)
	}
	c.metrics.RecordConversion(source, time.Since(start), methods, err)

	if c.conversions != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		c.conversions.Add(ctx, 1, metric.WithAttributes(
			attribute.String("source", source),
			attribute.String("status", status),
		))
	}
}
