// Package server exposes the converter over HTTP.
package server

import (
	_ "embed"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/platinummonkey/proto2openrpc/pkg/converter"
	"github.com/platinummonkey/proto2openrpc/pkg/httputil"
	"github.com/platinummonkey/proto2openrpc/pkg/observability"
	"github.com/platinummonkey/proto2openrpc/pkg/openrpc"
	"github.com/platinummonkey/proto2openrpc/pkg/schema"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

//go:embed service.proto
var serviceProto string

// Options configures the server
type Options struct {
	Logger  *logrus.Logger
	Metrics *observability.Metrics
	// Defaults fill in title, version and description missing from a request
	Defaults converter.Options
	Format   openrpc.Format
	Pretty   bool
	// MaxBodyBytes limits request bodies; zero means 4 MiB
	MaxBodyBytes int64
}

// ConvertRequest is the JSON request body of POST /v1/convert
type ConvertRequest struct {
	Content     string `json:"content"`
	Title       string `json:"title,omitempty"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty"`
}

// Server exposes the converter over HTTP
type Server struct {
	router    *mux.Router
	converter *converter.Converter
	opts      Options
	log       *logrus.Logger
}

// New creates a server and registers its routes
func New(conv *converter.Converter, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 4 << 20
	}
	if opts.Format == "" {
		opts.Format = openrpc.FormatJSON
	}

	s := &Server{
		router:    mux.NewRouter(),
		converter: conv,
		opts:      opts,
		log:       opts.Logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(observability.HTTPMetricsMiddleware(s.opts.Metrics))

	s.router.HandleFunc("/v1/convert", s.handleConvert).Methods(http.MethodPost)
	s.router.HandleFunc("/openrpc.json", s.handleDescribe).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", s.opts.Metrics.Handler()).Methods(http.MethodGet)
}

// Handler returns the router wrapped in the middleware stack and otelhttp
func (s *Server) Handler() http.Handler {
	chain := httputil.Chain(
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(s.log),
		httputil.RecoveryMiddleware(s.log),
		httputil.MaxBytesMiddleware(s.opts.MaxBodyBytes),
	)
	return otelhttp.NewHandler(chain(s.router), "proto2openrpc")
}

// HTTPServer builds an *http.Server for addr with the given timeouts
func (s *Server) HTTPServer(addr string, readTimeout, writeTimeout, idleTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	logger := observability.LoggerFromContext(r.Context())

	body, err := httputil.ReadBody(r)
	if err != nil {
		if errors.Is(err, httputil.ErrBodyTooLarge) {
			httputil.WriteRequestTooLarge(w, err.Error())
			return
		}
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	req := ConvertRequest{Content: string(body)}
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "application/json" {
		req = ConvertRequest{}
		if err := json.Unmarshal(body, &req); err != nil {
			httputil.WriteBadRequest(w, "invalid JSON: "+err.Error())
			return
		}
	}

	opts := converter.Options{
		Title:       firstNonEmpty(httputil.ParseQueryString(r, "title", req.Title), s.opts.Defaults.Title),
		Version:     firstNonEmpty(httputil.ParseQueryString(r, "version", req.Version), s.opts.Defaults.Version),
		Description: firstNonEmpty(httputil.ParseQueryString(r, "description", req.Description), s.opts.Defaults.Description),
	}

	pretty, err := httputil.ParseQueryBool(r, "pretty", s.opts.Pretty)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}
	format, err := openrpc.ParseFormat(httputil.ParseQueryString(r, "format", string(s.opts.Format)))
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	doc, err := s.converter.ConvertContentWithSource(r.Context(), observability.SourceHTTP, req.Content, opts)
	if err != nil {
		if errors.Is(err, schema.ErrParse) {
			logger.WithError(err).Warn("Conversion rejected")
			httputil.WriteBadRequest(w, err.Error())
			return
		}
		logger.WithError(err).Error("Conversion failed")
		httputil.WriteInternalError(w, err)
		return
	}

	s.writeDocument(w, doc, openrpc.EncodeOptions{Format: format, Pretty: pretty})
}

// handleDescribe serves the OpenRPC document of this server's own API,
// generated from the embedded service definition
func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	doc, err := s.converter.ConvertFromContent(serviceProto, converter.Options{
		Title:   "proto2openrpc",
		Version: s.opts.Defaults.Version,
	})
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	s.writeDocument(w, doc, openrpc.EncodeOptions{Format: openrpc.FormatJSON, Pretty: s.opts.Pretty})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, map[string]string{"status": "healthy"})
}

func (s *Server) writeDocument(w http.ResponseWriter, doc *openrpc.Document, opts openrpc.EncodeOptions) {
	data, err := openrpc.Encode(doc, opts)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if err := httputil.WriteBytes(w, http.StatusOK, opts.Format.ContentType(), data); err != nil {
		s.log.WithError(err).Debug("Failed to write response")
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
