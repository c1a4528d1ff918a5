package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phoenixxxx/xgl"
	"github.com/phoenixxxx/xgl/appprofile"
	"github.com/phoenixxxx/xgl/settings"
)

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "pipetune",
		Short:         "Inspect and test pipeline tuning profiles",
		Version:       xgl.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(logLevel)); err != nil {
				return fmt.Errorf("--log-level: %w", err)
			}
			xgl.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newHashCmd(),
		newMatchCmd(),
		newDumpCmd(),
		newCheckCmd(),
	)
	return root
}

// targetFlags selects the application and device the built-in profile is
// built for.
type targetFlags struct {
	app  string
	asic string
	gfx  string
}

func (f *targetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.app, "app", "", "application executable name (e.g. dota2)")
	cmd.Flags().StringVar(&f.asic, "asic", "", "ASIC revision (e.g. polaris10)")
	cmd.Flags().StringVar(&f.gfx, "gfx", "", "graphics IP level (e.g. gfx8)")
}

func (f *targetFlags) target() (appprofile.Target, error) {
	t := appprofile.Target{App: appprofile.Detect(f.app)}
	if f.asic != "" {
		r, ok := appprofile.ParseAsicRevision(f.asic)
		if !ok {
			return t, fmt.Errorf("unknown ASIC revision %q", f.asic)
		}
		t.Revision = r
	}
	if f.gfx != "" {
		g, ok := appprofile.ParseGfxIPLevel(f.gfx)
		if !ok {
			return t, fmt.Errorf("unknown graphics IP level %q", f.gfx)
		}
		t.GfxLevel = g
	}
	return t, nil
}

func loadSettings(path string) (settings.Settings, error) {
	if strings.TrimSpace(path) == "" {
		return settings.Default(), nil
	}
	return settings.Load(path)
}
