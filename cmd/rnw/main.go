// Package main implements the rnw CLI.
package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"rnw/internal/logging"
	"rnw/internal/prof"
	"rnw/internal/version"
)

var (
	// logger is built in PersistentPreRunE; commands never see it nil.
	logger = zap.NewNop()

	profiling *prof.Session
)

var rootCmd = &cobra.Command{
	Use:   "rnw",
	Short: "react-native-web build tooling",
	Long: `rnw bundles react-native apps for the web with esbuild.

It rewrites the legacy try/require bindings react-native-reanimated ships
in its web utilities into static re-exports, so production bundles keep them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupColor(cmd); err != nil {
			return err
		}
		if err := setupLogger(cmd); err != nil {
			return err
		}
		return setupProfiling(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if err := profiling.Stop(); err != nil {
			logger.Warn("failed to write profiles", zap.Error(err))
		}
		profiling = nil
		_ = logger.Sync()
	},
}

func init() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Get().Version

	rootCmd.AddCommand(transformCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("log-format", "console", "log encoding (console|json)")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to file")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a runtime trace to file")
}

// main executes the root command and exits with status 1 on error.
func main() {
	err := rootCmd.Execute()
	// PersistentPostRun is skipped when a command fails
	_ = profiling.Stop()
	if err != nil {
		os.Exit(1)
	}
}

func setupColor(cmd *cobra.Command) error {
	mode, err := switchFlag(cmd, "color")
	if err != nil {
		return err
	}
	color.NoColor = !mode.enabledFor(os.Stdout)
	return nil
}

func setupLogger(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	verbose, err := flags.GetBool("verbose")
	if err != nil {
		return err
	}
	quiet, err := flags.GetBool("quiet")
	if err != nil {
		return err
	}
	formatValue, err := flags.GetString("log-format")
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(formatValue)
	if err != nil {
		return err
	}
	built, err := logging.New(logging.Options{Verbose: verbose, Quiet: quiet, Format: format})
	if err != nil {
		return err
	}
	logger = built
	return nil
}

// setupProfiling starts the profiles requested by the persistent flags.
func setupProfiling(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	var opts prof.Options
	var err error
	if opts.CPU, err = flags.GetString("cpu-profile"); err != nil {
		return err
	}
	if opts.Mem, err = flags.GetString("mem-profile"); err != nil {
		return err
	}
	if opts.Trace, err = flags.GetString("runtime-trace"); err != nil {
		return err
	}
	profiling, err = prof.Start(opts)
	return err
}

func quietFlag(cmd *cobra.Command) bool {
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	return err == nil && quiet
}

func timingsFlag(cmd *cobra.Command) bool {
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	return err == nil && timings
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
