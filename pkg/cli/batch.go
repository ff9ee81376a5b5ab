package cli

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/platinummonkey/proto2openrpc/pkg/converter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newBatchCommand(a *app) *cobra.Command {
	var (
		flags       documentFlags
		dir         string
		outDir      string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Convert every proto file under a directory",
		Long: `batch walks --dir for .proto files and writes one document per file to
--out-dir, mirroring the source tree. Files that fail to parse are reported
and skipped; the command fails if any file failed.`,
		Example: `  proto2openrpc batch --dir ./proto --out-dir ./openrpc --concurrency 8`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.resolve(cmd, a)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("concurrency") {
				concurrency = a.cfg.Batch.Concurrency
			}
			if concurrency < 1 {
				return fmt.Errorf("concurrency must be at least 1")
			}
			if outDir == "" {
				outDir = dir
			}

			files, err := findProtoFiles(dir)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no .proto files found in %s", dir)
			}

			conv := converter.New(append(s.converter, converter.WithImportPaths(dir))...)

			var (
				mu     sync.Mutex
				failed []string
			)
			eg, ctx := errgroup.WithContext(cmd.Context())
			eg.SetLimit(concurrency)

			for _, rel := range files {
				rel := rel
				eg.Go(func() error {
					doc, err := conv.ConvertFromFile(ctx, filepath.Join(dir, rel), s.doc)
					if err != nil {
						a.log.WithError(err).WithField("file", rel).Error("Conversion failed")
						mu.Lock()
						failed = append(failed, rel)
						mu.Unlock()
						return nil
					}

					out := filepath.Join(outDir, strings.TrimSuffix(rel, ".proto")+".openrpc."+s.encode.Format.Extension())
					mu.Lock()
					defer mu.Unlock()
					return writeDocument(cmd.OutOrStdout(), out, doc, s.encode)
				})
			}

			if err := eg.Wait(); err != nil {
				return err
			}
			if len(failed) > 0 {
				sort.Strings(failed)
				return fmt.Errorf("%d of %d files failed to convert: %s", len(failed), len(files), strings.Join(failed, ", "))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Converted %d files\n", len(files))
			return nil
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&dir, "dir", ".", "directory to search for .proto files")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "output directory (default: --dir)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "maximum number of files converted in parallel")
	return cmd
}

// findProtoFiles returns the .proto files under root as sorted paths relative to root
func findProtoFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".proto" {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}
