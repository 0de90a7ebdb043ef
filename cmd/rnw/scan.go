package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rnw/internal/cache"
	"rnw/internal/config"
	"rnw/internal/driver"
)

var scanCmd = &cobra.Command{
	Use:   "scan [flags] [root]",
	Short: "Find and rewrite legacy bindings under node_modules",
	Long: `Walks root (default: [scan].root from rnw.toml, or node_modules) for
reanimated's webUtils modules and reports the legacy bindings they declare.
With --write the rewritten files replace the originals in place.`,
	Args: cobra.MaximumNArgs(1),
	RunE: scanExecution,
}

func init() {
	scanCmd.Flags().Bool("write", false, "write rewritten files back in place")
	scanCmd.Flags().Bool("dev", false, "development mode (files are left unchanged)")
	scanCmd.Flags().Int("jobs", 0, "max parallel files (0=auto)")
	scanCmd.Flags().Bool("no-cache", false, "ignore the rewrite cache")
	scanCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	scanCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func scanExecution(cmd *cobra.Command, args []string) error {
	write, err := cmd.Flags().GetBool("write")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format = strings.ToLower(format)
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
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
	root := manifest.ResolvePath(manifest.Config.Scan.Root)
	if len(args) == 1 {
		root = args[0]
	}
	if !cmd.Flags().Changed("jobs") {
		jobs = manifest.Config.Scan.Jobs
	}

	req := driver.ScanRequest{
		Root:       root,
		Production: opts.Production,
		Write:      write,
		Jobs:       jobs,
		Cache:      openCache(manifest, noCache),
		Logger:     logger,
	}

	var result *driver.ScanResult
	if format == "pretty" && ui.enabledFor(os.Stdout) {
		files, listErr := driver.Candidates(root)
		if listErr != nil {
			return listErr
		}
		result, err = runScanWithUI(cmd.Context(), "scan", files, req)
	} else {
		result, err = driver.Scan(cmd.Context(), req)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		if err := renderScanJSON(out, result); err != nil {
			return err
		}
	} else if !quietFlag(cmd) {
		renderScanPretty(out, result, write)
	}
	if timingsFlag(cmd) {
		printStageTimings(cmd.ErrOrStderr(), result.Timings)
	}
	return result.Err()
}

func openCache(manifest *config.Manifest, disabled bool) *cache.Cache {
	if disabled || !manifest.Config.CacheEnabled() {
		return nil
	}
	c, err := cache.Open("rnw")
	if err != nil {
		logger.Warn("rewrite cache unavailable", zap.Error(err))
		return nil
	}
	return c
}

func renderScanPretty(out io.Writer, result *driver.ScanResult, write bool) {
	changedLabel := color.New(color.FgGreen, color.Bold).Sprint("rewrite")
	if write {
		changedLabel = color.New(color.FgGreen, color.Bold).Sprint("rewrote")
	}
	sameLabel := color.New(color.FgHiBlack).Sprint("unchanged")
	errorLabel := color.New(color.FgRed, color.Bold).Sprint("error")

	for _, file := range result.Files {
		switch {
		case file.Err != nil:
			fmt.Fprintf(out, "%s %s: %v\n", errorLabel, file.Path, file.Err)
		case file.Changed:
			fmt.Fprintf(out, "%s %s (%d of %d bindings)\n", changedLabel, file.Path, file.Resolved, len(file.Declared))
			for _, b := range file.Bindings {
				if b.Target == nil {
					fmt.Fprintf(out, "  %d: %s %s\n", b.Line, b.Name, color.YellowString("unresolved"))
					continue
				}
				fmt.Fprintf(out, "  %d: %s <- %s.%s\n", b.Line, b.Name, b.Target.ModulePath, b.Target.Member)
			}
		default:
			fmt.Fprintf(out, "%s %s\n", sameLabel, file.Path)
		}
	}
	fmt.Fprintf(out, "%d file(s) scanned, %d with legacy bindings\n", len(result.Files), result.Changed())
}

type scanBindingJSON struct {
	Name   string `json:"name"`
	Line   uint32 `json:"line"`
	Module string `json:"module,omitempty"`
	Member string `json:"member,omitempty"`
}

type scanFileJSON struct {
	Path     string            `json:"path"`
	Declared []string          `json:"declared"`
	Resolved int               `json:"resolved"`
	Bindings []scanBindingJSON `json:"bindings,omitempty"`
	Changed  bool              `json:"changed"`
	Written  bool              `json:"written"`
	Cached   bool              `json:"cached"`
	Error    string            `json:"error,omitempty"`
}

type scanPayload struct {
	Root    string         `json:"root"`
	Files   []scanFileJSON `json:"files"`
	Changed int            `json:"changed"`
}

func renderScanJSON(out io.Writer, result *driver.ScanResult) error {
	payload := scanPayload{Root: result.Root, Files: make([]scanFileJSON, 0, len(result.Files)), Changed: result.Changed()}
	for _, file := range result.Files {
		entry := scanFileJSON{
			Path:     file.Path,
			Declared: file.Declared,
			Resolved: file.Resolved,
			Changed:  file.Changed,
			Written:  file.Written,
			Cached:   file.Cached,
		}
		if entry.Declared == nil {
			entry.Declared = []string{}
		}
		if file.Err != nil {
			entry.Error = file.Err.Error()
		}
		for _, b := range file.Bindings {
			jb := scanBindingJSON{Name: b.Name, Line: b.Line}
			if b.Target != nil {
				jb.Module = b.Target.ModulePath
				jb.Member = b.Target.Member
			}
			entry.Bindings = append(entry.Bindings, jb)
		}
		payload.Files = append(payload.Files, entry)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("encode scan result: %w", err)
	}
	return nil
}
