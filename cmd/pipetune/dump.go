package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phoenixxxx/xgl/internal/profilefile"
	"github.com/phoenixxxx/xgl/optimizer"
)

func newDumpCmd() *cobra.Command {
	var (
		settingsPath string
		layer        string
		tf           targetFlags
	)

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print a built-in profile in the runtime file format",
		Long: `Print the tuning profile built from a settings file, or the application
profile selected for a target. The output can be loaded back as a runtime
profile.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var l optimizer.Layer
			switch layer {
			case "tuning":
				l = optimizer.LayerTuning
			case "app":
				l = optimizer.LayerApplication
			default:
				return fmt.Errorf("--layer: unknown layer %q (want tuning or app)", layer)
			}

			s, err := loadSettings(settingsPath)
			if err != nil {
				return err
			}
			s.EnablePipelineProfileDumping = false
			s.PipelineProfileIgnoresAppProfile = false

			target, err := tf.target()
			if err != nil {
				return err
			}

			opt := optimizer.New(s, target,
				optimizer.WithRuntimeProfile(false),
				optimizer.WithDiagnostics(nil))
			opt.Init()
			defer opt.Close()

			return profilefile.Encode(cmd.OutOrStdout(), opt.Profile(l).Rules())
		},
	}

	cmd.Flags().StringVar(&settingsPath, "settings", "", "settings file")
	cmd.Flags().StringVar(&layer, "layer", "tuning", "profile to print (tuning or app)")
	tf.register(cmd)
	return cmd
}
