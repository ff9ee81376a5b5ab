package cli

import (
	"fmt"
	"runtime"

	"github.com/platinummonkey/proto2openrpc/pkg/openrpc"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// configuration is irrelevant here; skip loading it
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "proto2openrpc %s (OpenRPC %s, %s)\n", Version, openrpc.Version, runtime.Version())
		},
	}
}
