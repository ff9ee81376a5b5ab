package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/platinummonkey/proto2openrpc/pkg/converter"
	"github.com/spf13/cobra"
)

// watchDebounce coalesces the burst of events an editor save produces
const watchDebounce = 100 * time.Millisecond

func newWatchCommand(a *app) *cobra.Command {
	var (
		flags  documentFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "watch <input.proto>",
		Short: "Regenerate the document whenever proto files change",
		Long: `watch converts the input once, then again every time a .proto file in the
input's directory is written. Conversion errors are logged and watching
continues. Stop with Ctrl-C.`,
		Example: `  proto2openrpc watch api.proto -o api.openrpc.json --pretty`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.resolve(cmd, a)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := &watcher{
				input:  args[0],
				output: output,
				conv:   converter.New(s.converter...),
				s:      s,
				out:    cmd.OutOrStdout(),
				a:      a,
			}
			return w.run(ctx)
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

type watcher struct {
	input  string
	output string
	conv   *converter.Converter
	s      settings
	out    io.Writer
	a      *app
}

func (w *watcher) run(ctx context.Context) error {
	if _, err := os.Stat(w.input); err != nil {
		return fmt.Errorf("cannot watch %s: %w", w.input, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.input)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.convert(ctx)
	w.a.log.Infof("Watching %s for changes", dir)

	timer := time.NewTimer(watchDebounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			w.a.log.Info("Stopped watching")
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != ".proto" || !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			w.a.log.Debugf("Modified file: %s", event.Name)
			timer.Reset(watchDebounce)
		case <-timer.C:
			w.convert(ctx)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.a.log.WithError(err).Warn("Watcher error")
		}
	}
}

func (w *watcher) convert(ctx context.Context) {
	doc, err := w.conv.ConvertFromFile(ctx, w.input, w.s.doc)
	if err != nil {
		w.a.log.WithError(err).Error("Conversion failed")
		return
	}
	if err := writeDocument(w.out, w.output, doc, w.s.encode); err != nil {
		w.a.log.WithError(err).Error("Failed to write document")
	}
}
