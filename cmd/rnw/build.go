package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"rnw/internal/buildpipeline"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [entry]",
	Short: "Bundle an app with esbuild",
	Long:  "Bundle an app for the web using rnw.toml ([build].entry) or the given entry point.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  buildExecution,
}

func init() {
	buildCmd.Flags().String("outdir", "", "output directory (default: [build].outdir)")
	buildCmd.Flags().Bool("dev", false, "development build (no minification, no rewrite)")
	buildCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

func buildExecution(cmd *cobra.Command, args []string) error {
	outdir, err := cmd.Flags().GetString("outdir")
	if err != nil {
		return err
	}
	ui, err := switchFlag(cmd, "ui")
	if err != nil {
		return err
	}

	manifest, err := loadManifest()
	if err != nil {
		return err
	}
	opts, err := pluginOptions(cmd, manifest)
	if err != nil {
		return err
	}

	var entry string
	if len(args) == 1 {
		entry, err = filepath.Abs(args[0])
	} else {
		entry, err = manifest.Entry()
	}
	if err != nil {
		return err
	}
	if _, err := os.Stat(entry); err != nil {
		return fmt.Errorf("entry point: %w", err)
	}
	if outdir == "" {
		outdir = manifest.ResolvePath(manifest.Config.Build.Outdir)
	}

	req := &buildpipeline.BuildRequest{
		Entries: []string{entry},
		Outdir:  outdir,
		Write:   true,
		Options: opts,
		Logger:  logger,
	}
	var result buildpipeline.BuildResult
	if ui.enabledFor(os.Stdout) {
		result, err = runBuildWithUI(cmd.Context(), "build", req.Entries, req)
	} else {
		result, err = buildpipeline.Build(cmd.Context(), req)
	}

	stderr := cmd.ErrOrStderr()
	if !quietFlag(cmd) && len(result.Warnings) > 0 {
		fmt.Fprintln(stderr, buildpipeline.FormatWarnings(result.Warnings))
	}
	if err != nil {
		return err
	}
	if !quietFlag(cmd) {
		renderBuildSummary(cmd.OutOrStdout(), outdir, opts.Mode(), result)
	}
	if timingsFlag(cmd) {
		printStageTimings(stderr, result.Timings)
	}
	return nil
}

func renderBuildSummary(out io.Writer, outdir, mode string, result buildpipeline.BuildResult) {
	fmt.Fprintf(out, "%s %s build into %s\n", color.New(color.FgGreen, color.Bold).Sprint("bundled"), mode, outdir)
	fmt.Fprintf(out, "  %d file(s) loaded, %d rewritten\n", result.Loaded, result.Rewritten)
}
