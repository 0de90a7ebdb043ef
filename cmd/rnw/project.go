package main

import (
	"maps"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rnw/internal/config"
	"rnw/internal/plugin"
)

// loadManifest reads rnw.toml from the working directory upward.
func loadManifest() (*config.Manifest, error) {
	manifest, found, err := config.Load(".")
	if err != nil {
		return nil, err
	}
	if found {
		logger.Debug("loaded manifest", zap.String("path", manifest.Path))
	} else {
		logger.Debug("no manifest found, using defaults", zap.String("root", manifest.Root))
	}
	return manifest, nil
}

// pluginOptions merges the manifest, the dotenv files and the --dev flag of cmd.
func pluginOptions(cmd *cobra.Command, manifest *config.Manifest) (plugin.Options, error) {
	opts := manifest.Config.PluginOptions()
	dev, err := cmd.Flags().GetBool("dev")
	if err != nil {
		return plugin.Options{}, err
	}
	if dev {
		opts.Production = false
	}
	env, err := manifest.EnvDefines(opts.Mode())
	if err != nil {
		return plugin.Options{}, err
	}
	if len(env) > 0 {
		merged := make(map[string]string, len(env)+len(opts.Define))
		maps.Copy(merged, env)
		// [define] wins over the environment
		maps.Copy(merged, opts.Define)
		opts.Define = merged
		logger.Debug("exposed environment variables", zap.Int("count", len(env)))
	}
	return opts, nil
}
