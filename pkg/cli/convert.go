package cli

import (
	"fmt"
	"io"

	"github.com/platinummonkey/proto2openrpc/pkg/converter"
	"github.com/spf13/cobra"
)

func newConvertCommand(a *app) *cobra.Command {
	var (
		flags  documentFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "convert <input.proto>",
		Short: "Convert a proto file to an OpenRPC document",
		Example: `  proto2openrpc convert api.proto -o api.openrpc.json --pretty
  proto2openrpc convert api.proto -t "Users API" -v 2.0.0 --format yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.resolve(cmd, a)
			if err != nil {
				return err
			}

			doc, err := converter.New(s.converter...).ConvertFromFile(cmd.Context(), args[0], s.doc)
			if err != nil {
				return err
			}
			return writeDocument(cmd.OutOrStdout(), output, doc, s.encode)
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func newConvertContentCommand(a *app) *cobra.Command {
	var (
		flags  documentFlags
		output string
	)

	cmd := &cobra.Command{
		Use:     "convert-content",
		Short:   "Convert proto text read from stdin",
		Example: `  cat api.proto | proto2openrpc convert-content --pretty`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.resolve(cmd, a)
			if err != nil {
				return err
			}

			content, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}

			doc, err := converter.New(s.converter...).ConvertFromContent(string(content), s.doc)
			if err != nil {
				return err
			}
			return writeDocument(cmd.OutOrStdout(), output, doc, s.encode)
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}
