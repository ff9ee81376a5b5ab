package cli

import (
	"fmt"

	"github.com/platinummonkey/proto2openrpc/pkg/config"
	"github.com/platinummonkey/proto2openrpc/pkg/observability"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is stamped at build time with -ldflags "-X .../pkg/cli.Version=..."
var Version = "dev"

// app carries state shared by every subcommand once the root has loaded configuration
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg *config.Config
	log *logrus.Logger
}

// NewRootCommand creates the proto2openrpc command tree
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "proto2openrpc",
		Short: "Convert Protocol Buffer service definitions to OpenRPC documents",
		Long: `proto2openrpc reads .proto files and emits OpenRPC 1.3.0 documents.

Every rpc becomes a method named Service.Method, every message becomes a
component schema, and field types are mapped to JSON Schema.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a configuration file (default: search the working directory)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: text, json")

	root.AddCommand(
		newConvertCommand(a),
		newConvertContentCommand(a),
		newBatchCommand(a),
		newWatchCommand(a),
		newServeCommand(a),
		newVersionCommand(),
	)
	return root
}

// load reads configuration and builds the logger. Logs go to stderr so that
// documents written to stdout stay machine readable.
func (a *app) load(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.Load(a.configPath)
	} else {
		cfg, err = config.LoadFromDir(".")
	}
	if err != nil {
		return err
	}

	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	format, err := observability.ParseLogFormat(cfg.Log.Format)
	if err != nil {
		return err
	}
	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q", cfg.Log.Level)
	}

	a.cfg = cfg
	a.log = observability.NewLogger(cfg.Log.Level, format, cmd.ErrOrStderr())
	return nil
}

// Execute runs the root command against os.Args
func Execute() error {
	return NewRootCommand().Execute()
}
