package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/platinummonkey/proto2openrpc/pkg/converter"
	"github.com/platinummonkey/proto2openrpc/pkg/observability"
	"github.com/platinummonkey/proto2openrpc/pkg/server"
	"github.com/spf13/cobra"
)

func newServeCommand(a *app) *cobra.Command {
	var (
		flags documentFlags
		addr  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the conversion HTTP service",
		Long: `serve exposes the converter over HTTP:

  POST /v1/convert    proto text (or a JSON request) in, OpenRPC document out
  GET  /openrpc.json  the OpenRPC document of this service
  GET  /healthz       liveness
  GET  /metrics       Prometheus metrics

The document flags set the defaults applied when a request omits them.`,
		Example: `  proto2openrpc serve --addr :8080 -I ./proto`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.resolve(cmd, a)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			return serve(cmd.Context(), a, s)
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default \":8080\")")
	return cmd
}

func serve(ctx context.Context, a *app, s settings) error {
	cfg := a.cfg.Server

	providers, err := observability.InitOTel(ctx, a.cfg.OTel(Version), a.log)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics := observability.NewMetrics(nil)
	conv := converter.New(append(s.converter, converter.WithMetrics(metrics))...)
	srv := server.New(conv, server.Options{
		Logger:       a.log,
		Metrics:      metrics,
		Defaults:     s.doc,
		Format:       s.encode.Format,
		Pretty:       s.encode.Pretty,
		MaxBodyBytes: cfg.MaxBodyBytes,
	})
	httpSrv := srv.HTTPServer(cfg.Addr, cfg.ReadTimeout, cfg.WriteTimeout, cfg.IdleTimeout)

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		_ = observability.ShutdownOTel(ctx, providers)
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}

	serveErr := make(chan error, 1)
	go func() {
		a.log.Infof("Listening on %s", ln.Addr())
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	shutdownDone := make(chan error, 1)
	go func() {
		shutdownDone <- observability.ShutdownOnSignal(waitCtx, a.log, httpSrv, cfg.ShutdownTimeout,
			func(ctx context.Context) error { return observability.ShutdownOTel(ctx, providers) })
	}()

	select {
	case err := <-serveErr:
		cancel()
		<-shutdownDone
		return fmt.Errorf("server failed: %w", err)
	case err := <-shutdownDone:
		return err
	}
}
