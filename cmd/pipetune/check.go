package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/phoenixxxx/xgl"
	"github.com/phoenixxxx/xgl/internal/profilefile"
)

var errCheckFailed = errors.New("profile check failed")

func newCheckCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "check <profile>",
		Short: "Validate a runtime profile file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			out := cmd.OutOrStdout()
			ok := checkOnce(out, path)
			if !watch {
				if !ok {
					return errCheckFailed
				}
				return nil
			}

			w, err := newProfileWatcher(path)
			if err != nil {
				return err
			}
			defer w.Close()
			err = w.Run(cmd.Context(), func() { checkOnce(out, path) })
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-check whenever the file changes")
	return cmd
}

// checkOnce reports whether path holds a valid profile.
func checkOnce(w io.Writer, path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(w, "%s: %v\n", path, err)
		return false
	}
	rules, err := profilefile.Parse(data)
	if err != nil {
		fmt.Fprintf(w, "%s: %v\n", path, err)
		return false
	}
	fmt.Fprintf(w, "%s: %d rules\n", path, len(rules))
	return true
}

// profileWatcher reports writes to a single file. The parent directory is
// watched so editors that replace the file on save are still seen.
type profileWatcher struct {
	path    string
	watcher *fsnotify.Watcher
}

func newProfileWatcher(path string) (*profileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	return &profileWatcher{path: filepath.Clean(abs), watcher: watcher}, nil
}

// Run calls onChange for every write to the file until ctx is done or the
// watcher is closed.
func (p *profileWatcher) Run(ctx context.Context, onChange func()) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-p.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != p.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				onChange()
			}
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return nil
			}
			xgl.Logger().Warn("pipetune: watch error", "path", p.path, "error", err)
		}
	}
}

func (p *profileWatcher) Close() error {
	return p.watcher.Close()
}
