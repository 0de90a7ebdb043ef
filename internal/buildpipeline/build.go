// Package buildpipeline bundles a react-native-web app with esbuild and
// reports progress for the files it works on.
package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"go.uber.org/zap"

	"rnw/internal/plugin"
)

// ErrBuildFailed is returned when esbuild reports errors.
var ErrBuildFailed = errors.New("bundle failed")

// BuildRequest configures a bundle.
type BuildRequest struct {
	Entries  []string
	Outdir   string
	Write    bool
	Options  plugin.Options
	Logger   *zap.Logger
	Progress ProgressSink
}

// BuildResult captures bundle outputs, messages and timings.
type BuildResult struct {
	OutputFiles []api.OutputFile
	Warnings    []api.Message
	Errors      []api.Message
	Loaded      int64
	Rewritten   int64
	Timings     Timings
}

// Build bundles req.Entries with the rnw plugin installed.
func Build(ctx context.Context, req *BuildRequest) (BuildResult, error) {
	var result BuildResult
	if req == nil {
		return result, fmt.Errorf("missing build request")
	}
	if len(req.Entries) == 0 {
		return result, fmt.Errorf("missing entry point")
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}
	logger := req.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	p, err := plugin.New(req.Options, logger)
	if err != nil {
		return result, err
	}
	opts := plugin.BuildOptions(p.Options(), plugin.BuildRequest{
		EntryPoints: req.Entries,
		Outdir:      req.Outdir,
		Write:       req.Write,
	}, p)

	start := time.Now()
	emitStage(req.Progress, req.Entries, StageBundle, StatusWorking, nil, 0)

	esbuild, ctxErr := api.Context(opts)
	if ctxErr != nil {
		err = fmt.Errorf("%w: %s", ErrBuildFailed, formatMessages(ctxErr.Errors, api.ErrorMessage))
		emitStage(req.Progress, req.Entries, StageBundle, StatusError, err, time.Since(start))
		return result, err
	}
	defer esbuild.Dispose()
	stop := context.AfterFunc(ctx, esbuild.Cancel)
	defer stop()

	res := esbuild.Rebuild()
	elapsed := time.Since(start)
	result.Timings.Set(StageBundle, elapsed)
	result.OutputFiles = res.OutputFiles
	result.Warnings = plugin.FilterWarnings(res.Warnings)
	result.Errors = res.Errors
	result.Loaded = p.Loaded()
	result.Rewritten = p.Rewritten()

	if err := ctx.Err(); err != nil {
		emitStage(req.Progress, req.Entries, StageBundle, StatusError, err, elapsed)
		return result, err
	}
	if len(res.Errors) > 0 {
		err = fmt.Errorf("%w: %s", ErrBuildFailed, formatMessages(res.Errors, api.ErrorMessage))
		emitStage(req.Progress, req.Entries, StageBundle, StatusError, err, elapsed)
		return result, err
	}

	logger.Debug("bundle finished",
		zap.Strings("entries", req.Entries),
		zap.Int("outputs", len(res.OutputFiles)),
		zap.Int64("rewritten", result.Rewritten),
		zap.Duration("elapsed", elapsed),
	)
	emitStage(req.Progress, req.Entries, StageBundle, StatusDone, nil, elapsed)
	return result, nil
}

// FormatWarnings renders warnings the way esbuild prints them, without color.
func FormatWarnings(msgs []api.Message) string {
	return formatMessages(msgs, api.WarningMessage)
}

func formatMessages(msgs []api.Message, kind api.MessageKind) string {
	if len(msgs) == 0 {
		return ""
	}
	formatted := api.FormatMessages(msgs, api.FormatMessagesOptions{Kind: kind})
	return strings.TrimSpace(strings.Join(formatted, ""))
}
