package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phoenixxxx/xgl/pipeline"
)

func newHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <file>...",
		Short: "Print the identity of shader files",
		Long: `Print the code hash and size of each shader file in the form accepted
by the match command's stage flags. WGSL sources (.wgsl) are compiled to
SPIR-V first; any other file is hashed as-is.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, path := range args {
				shader, err := identifyFile(path)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s:%d  %s\n", shader.CodeHash, shader.CodeSize, path)
			}
			return nil
		},
	}
}

func identifyFile(path string) (pipeline.ShaderIdentity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.ShaderIdentity{}, err
	}
	if strings.EqualFold(filepath.Ext(path), ".wgsl") {
		shader, _, err := pipeline.CompileWGSL(string(data))
		if err != nil {
			return pipeline.ShaderIdentity{}, fmt.Errorf("%s: %w", path, err)
		}
		return shader, nil
	}
	return pipeline.Capture(data), nil
}
