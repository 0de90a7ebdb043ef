package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rnw/internal/legacybind"
)

var transformCmd = &cobra.Command{
	Use:   "transform [flags] <file|->",
	Short: "Rewrite the legacy bindings of one file and print the result",
	Long: `Reads a file (or stdin with "-"), applies the legacy-binding rewrite
and prints the result. The file path doubles as the module id unless --id is set;
only reanimated's webUtils ids are rewritten, and only in production mode.`,
	Args: cobra.ExactArgs(1),
	RunE: transformExecution,
}

func init() {
	transformCmd.Flags().String("id", "", "module id used by the eligibility check (defaults to the file path)")
	transformCmd.Flags().Bool("dev", false, "development mode (the rewrite is skipped)")
	transformCmd.Flags().String("original", "", "read the untransformed text from this file (defaults to the input)")
}

func transformExecution(cmd *cobra.Command, args []string) error {
	id, err := cmd.Flags().GetString("id")
	if err != nil {
		return err
	}
	originalPath, err := cmd.Flags().GetString("original")
	if err != nil {
		return err
	}
	if args[0] == "-" && originalPath == "-" {
		return fmt.Errorf("stdin can be read only once: pass the input or --original as a file")
	}
	manifest, err := loadManifest()
	if err != nil {
		return err
	}
	opts, err := pluginOptions(cmd, manifest)
	if err != nil {
		return err
	}

	input := args[0]
	candidate, err := readInput(cmd.InOrStdin(), input)
	if err != nil {
		return err
	}
	original := candidate
	if originalPath != "" {
		original, err = readInput(cmd.InOrStdin(), originalPath)
		if err != nil {
			return err
		}
	}
	if id == "" {
		id = input
	}

	out := legacybind.Transform(candidate, original, id, opts.Production)
	if out != candidate {
		analysis := legacybind.Analyze(original)
		logger.Info("rewrote legacy bindings",
			zap.String("id", id),
			zap.Strings("declared", analysis.Declared()),
			zap.Int("resolved", analysis.Groups.Bindings()),
			zap.Strings("unresolved", analysis.Unresolved()),
		)
	} else {
		logger.Debug("file left unchanged", zap.String("id", id), zap.Bool("production", opts.Production))
	}
	_, err = io.WriteString(cmd.OutOrStdout(), out)
	return err
}

func readInput(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	// #nosec G304 -- path is provided by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
