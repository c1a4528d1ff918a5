package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phoenixxxx/xgl/internal/profilefile"
	"github.com/phoenixxxx/xgl/optimizer"
	"github.com/phoenixxxx/xgl/pipeline"
	"github.com/phoenixxxx/xgl/profile"
)

func newMatchCmd() *cobra.Command {
	var (
		profilePath  string
		settingsPath string
		gpuStages    string
		tf           targetFlags
		args         [pipeline.StageCount]string
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Show which profile entries match a pipeline and what they override",
		Example: `  pipetune match --profile runtime.json \
    --vs 0x00000000000022220000000000001111:1024 \
    --ps 0x751207727c904749dd6c573c46e6adf8:2048`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(settingsPath)
			if err != nil {
				return err
			}
			s.EnablePipelineProfileDumping = false
			s.PipelineProfileDbgPrintProfileMatch = false

			target, err := tf.target()
			if err != nil {
				return err
			}

			var id pipeline.Identity
			for _, st := range pipeline.Stages {
				if args[st] == "" {
					continue
				}
				shader, err := parseShaderArg(args[st])
				if err != nil {
					return fmt.Errorf("--%s: %w", st.Key(), err)
				}
				id.Set(st, shader)
			}
			if id.ActiveStages() == 0 {
				return errors.New("no shader stages given")
			}

			dispatch := id.ActiveStages()
			if gpuStages != "" {
				set, err := pipeline.ParseGPUStages(gpuStages)
				if err != nil {
					return fmt.Errorf("--stages: %w", err)
				}
				dispatch &= pipeline.FromGPUStages(set)
			}

			opts := []optimizer.Option{optimizer.WithDiagnostics(nil)}
			if profilePath != "" {
				// A bad file is an error here, not an empty runtime layer.
				data, err := os.ReadFile(profilePath)
				if err != nil {
					return err
				}
				if _, err := profilefile.Parse(data); err != nil {
					return fmt.Errorf("%s: %w", profilePath, err)
				}
				s.PipelineProfileRuntimeFile = profilePath
				opts = append(opts, optimizer.WithReadFile(func(string) ([]byte, error) { return data, nil }))
			}

			opt := optimizer.New(s, target, opts...)
			opt.Init()
			defer opt.Close()

			reportMatch(cmd.OutOrStdout(), opt, &id, dispatch)
			return nil
		},
	}

	cmd.Flags().StringVar(&profilePath, "profile", "", "runtime profile file (JSON or YAML)")
	cmd.Flags().StringVar(&settingsPath, "settings", "", "settings file supplying the tuning profile")
	cmd.Flags().StringVar(&gpuStages, "stages", "", "WebGPU stages receiving dispatch overrides, e.g. vertex|fragment (default: every given stage)")
	tf.register(cmd)
	for _, st := range pipeline.Stages {
		cmd.Flags().StringVar(&args[st], st.Key(), "", fmt.Sprintf("%s shader as hash:size", st))
	}
	return cmd
}

// parseShaderArg parses "hash:size". The hash may be split into upper and
// lower halves by a space.
func parseShaderArg(arg string) (pipeline.ShaderIdentity, error) {
	i := strings.LastIndexByte(arg, ':')
	if i < 0 {
		return pipeline.ShaderIdentity{}, fmt.Errorf("%q: want hash:size", arg)
	}
	hash, err := pipeline.ParseHash128(arg[:i])
	if err != nil {
		return pipeline.ShaderIdentity{}, err
	}
	size, err := strconv.ParseUint(arg[i+1:], 0, 64)
	if err != nil {
		return pipeline.ShaderIdentity{}, fmt.Errorf("%q: bad size: %w", arg, err)
	}
	if size == 0 {
		return pipeline.ShaderIdentity{}, fmt.Errorf("%q: size must be non-zero", arg)
	}
	return pipeline.ShaderIdentity{CodeHash: hash, CodeSize: size}, nil
}

// reportMatch prints the matching entries of every layer, then the overrides
// for each active stage. Only stages in dispatch receive graphics dispatch
// overrides.
func reportMatch(w io.Writer, opt *optimizer.ShaderOptimizer, id *pipeline.Identity, dispatch pipeline.StageMask) {
	for _, l := range optimizer.Layers {
		sel := profile.Select(opt.Profile(l), id)
		if len(sel) == 0 {
			fmt.Fprintf(w, "%-12s no match\n", l.String()+":")
			continue
		}
		fmt.Fprintf(w, "%-12s entries %v\n", l.String()+":", []int(sel))
	}

	stages := id.ActiveStages()
	for _, st := range pipeline.Stages {
		if !stages.Has(st) {
			continue
		}
		var (
			opts  profile.ShaderOptions
			popts profile.PipelineShaderOptions
			ngg   = profile.NggState{EnableNgg: true}
		)
		opt.OverrideShaderCreateInfo(id, st, profile.ShaderOptionsSet{Options: &opts, Pipeline: &popts, Ngg: &ngg})
		fmt.Fprintf(w, "%s options: %+v\n", st, opts)
		if popts != (profile.PipelineShaderOptions{}) {
			fmt.Fprintf(w, "%s pipeline: %+v\n", st, popts)
		}
		if st != pipeline.StageCompute && ngg != (profile.NggState{EnableNgg: true}) {
			fmt.Fprintf(w, "%s ngg: %+v\n", st, ngg)
		}
	}

	if stages.Has(pipeline.StageCompute) {
		var info profile.DynamicComputeShaderInfo
		opt.OverrideComputePipelineCreateInfo(id, &info)
		fmt.Fprintf(w, "compute dispatch: %+v\n", info)
		return
	}
	var (
		info    profile.GraphicsPipelineInfo
		shaders profile.DynamicGraphicsShaderInfos
	)
	opt.OverrideGraphicsPipelineCreateInfo(id, dispatch, &info, &shaders)
	fmt.Fprintf(w, "graphics dispatch [%s]: %+v\n", dispatch, shaders)
	fmt.Fprintf(w, "graphics pipeline: %+v\n", info)
}
