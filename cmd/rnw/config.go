package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"rnw/internal/config"
	"rnw/internal/plugin"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved build configuration as JSON",
	Args:  cobra.NoArgs,
	RunE:  configExecution,
}

func init() {
	configCmd.Flags().Bool("dev", false, "show the development configuration")
}

type configPayload struct {
	Manifest          string            `json:"manifest,omitempty"`
	Root              string            `json:"root"`
	Mode              string            `json:"mode"`
	Entry             string            `json:"entry,omitempty"`
	Outdir            string            `json:"outdir"`
	Include           []string          `json:"include"`
	Exclude           []string          `json:"exclude"`
	JSXRuntime        string            `json:"jsx_runtime"`
	JSXImportSource   string            `json:"jsx_import_source,omitempty"`
	Define            map[string]string `json:"define"`
	Alias             map[string]string `json:"alias"`
	ResolveExtensions []string          `json:"resolve_extensions"`
	Minify            bool              `json:"minify"`
}

func configExecution(cmd *cobra.Command, args []string) error {
	manifest, err := loadManifest()
	if err != nil {
		return err
	}
	opts, err := pluginOptions(cmd, manifest)
	if err != nil {
		return err
	}
	return renderConfig(cmd.OutOrStdout(), manifest, opts)
}

func renderConfig(out io.Writer, manifest *config.Manifest, opts plugin.Options) error {
	build := plugin.BuildOptions(opts, plugin.BuildRequest{}, nil)
	payload := configPayload{
		Manifest:          manifest.Path,
		Root:              manifest.Root,
		Mode:              opts.Mode(),
		Outdir:            manifest.ResolvePath(manifest.Config.Build.Outdir),
		Include:           opts.Include,
		Exclude:           opts.Exclude,
		JSXRuntime:        string(opts.JSXRuntime),
		Define:            build.Define,
		Alias:             build.Alias,
		ResolveExtensions: build.ResolveExtensions,
		Minify:            build.MinifySyntax,
	}
	if opts.JSXRuntime == plugin.JSXAutomatic {
		payload.JSXImportSource = opts.JSXImportSource
	}
	if entry, err := manifest.Entry(); err == nil {
		payload.Entry = entry
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
