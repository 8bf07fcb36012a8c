package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/hlop3z/relite/internal/cli"
	"github.com/hlop3z/relite/pkg/relite"
)

// renderCmd writes definition.sql from a definition document.
func renderCmd() *cobra.Command {
	var watchFile bool

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Write definition.sql from the document",
		Long: `Render the create statements of every table, with pending changes
applied, into the baseline definition.sql. With --watch the document is
re-rendered whenever it is saved.`,
		Example: `  # Render once
  relite render tables.yaml

  # Re-render on every save
  relite render tables.yaml --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, client, err := setup(cmd, true)
			if err != nil {
				return err
			}
			defer client.Close()

			path := documentPath(cfg, args)
			out := cmd.OutOrStdout()
			ctx := commandContext(cmd)
			render := func() error {
				return renderDocument(ctx, client, path, out)
			}

			if err := render(); err != nil {
				if !watchFile {
					return err
				}
				fmt.Fprint(cmd.ErrOrStderr(), cli.FormatError(err))
			}
			if !watchFile {
				return nil
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			watcher, err := watchDocument(path)
			if err != nil {
				return err
			}
			defer watcher.Close()

			fmt.Fprintf(out, "  Watching: %s\n", path)
			return watchLoop(ctx, watcher, path, cmd.ErrOrStderr(), render)
		},
	}

	cmd.Flags().BoolVarP(&watchFile, "watch", "w", false, "Re-render when the document changes")
	return cmd
}

func renderDocument(ctx context.Context, client *relite.Client, path string, out io.Writer) error {
	doc, err := loadDocument(path)
	if err != nil {
		return err
	}
	written, err := client.WriteBaseline(ctx, doc.After()...)
	if err != nil {
		return err
	}
	fmt.Fprint(out, cli.FormatSuccess("rendered "+cli.FormatCount(len(doc.Tables), "table", "tables")+" to "+written))
	return nil
}

// watchDocument watches the document's directory; editors often replace
// the file on save instead of writing it.
func watchDocument(path string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}
	return watcher, nil
}

// watchLoop calls render for every write or create of path until ctx is
// done. Render errors are reported and watching continues.
func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string, errOut io.Writer, render func() error) error {
	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := render(); err != nil {
				fmt.Fprint(errOut, cli.FormatError(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
