// Package driver rewrites the legacy bindings of every matching file under
// a directory tree, in parallel.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"rnw/internal/buildpipeline"
	"rnw/internal/cache"
	"rnw/internal/legacybind"
	"rnw/internal/source"
)

// ScanRequest configures Scan.
type ScanRequest struct {
	Root       string
	Production bool
	// Write stores rewritten files back in place.
	Write bool
	// Jobs bounds concurrency; <= 0 means GOMAXPROCS.
	Jobs     int
	Cache    *cache.Cache
	Logger   *zap.Logger
	Progress buildpipeline.ProgressSink
}

// Binding is one declared legacy binding and the target it resolved to.
type Binding struct {
	Name string
	Line uint32
	// Target is nil when no assignment was found.
	Target *legacybind.Target
}

// FileResult is the outcome for one file.
type FileResult struct {
	Path   string // относительно Root, через '/'
	FileID source.FileID
	// Bindings is nil for cached results; Declared and Resolved are always set.
	Bindings []Binding
	Declared []string
	Resolved int
	Changed  bool
	Written  bool
	Cached   bool
	Err      error
	Elapsed  time.Duration
}

// Unresolved returns the declared names with no assignment.
func (r FileResult) Unresolved() []string {
	var names []string
	for _, b := range r.Bindings {
		if b.Target == nil {
			names = append(names, b.Name)
		}
	}
	return names
}

// ScanResult holds per-file results sorted by path.
type ScanResult struct {
	Root    string
	FileSet *source.FileSet
	Files   []FileResult
	Timings buildpipeline.Timings
}

// Changed counts files whose rewrite differs from the input.
func (r *ScanResult) Changed() int {
	n := 0
	for _, f := range r.Files {
		if f.Changed {
			n++
		}
	}
	return n
}

// Err joins the per-file errors.
func (r *ScanResult) Err() error {
	var errs []error
	for _, f := range r.Files {
		if f.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.Path, f.Err))
		}
	}
	return errors.Join(errs...)
}

var scriptExts = map[string]struct{}{
	".js": {}, ".jsx": {}, ".mjs": {}, ".cjs": {}, ".ts": {}, ".tsx": {},
}

// listCandidates возвращает отсортированный список файлов, которые проходят проверку пути
func listCandidates(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := scriptExts[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}
		if legacybind.MatchesFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Scan finds the files under req.Root that the rewrite applies to and
// processes them in parallel. Per-file failures are recorded in the results;
// the returned error covers walking the tree and cancellation.
func Scan(ctx context.Context, req ScanRequest) (*ScanResult, error) {
	root := req.Root
	if root == "" {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	logger := req.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	files, err := listCandidates(root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	fileSet := source.NewFileSetWithBase(root)
	result := &ScanResult{Root: root, FileSet: fileSet}
	if len(files) == 0 {
		return result, nil
	}

	rels := make([]string, len(files))
	for i, path := range files {
		rels[i] = relPath(root, path)
	}
	buildpipeline.EmitQueued(req.Progress, rels)

	// Загружаем все файлы заранее: FileSet не потокобезопасен на запись
	readStart := time.Now()
	fileIDs := make([]source.FileID, len(files))
	loadErrors := make(map[int]error)
	for i, path := range files {
		start := time.Now()
		fileID, err := fileSet.Load(path)
		if err != nil {
			loadErrors[i] = err
			buildpipeline.Emit(req.Progress, rels[i], buildpipeline.StageRead, buildpipeline.StatusError, err, time.Since(start))
			continue
		}
		fileIDs[i] = fileID
		buildpipeline.Emit(req.Progress, rels[i], buildpipeline.StageRead, buildpipeline.StatusDone, nil, time.Since(start))
	}
	result.Timings.Set(buildpipeline.StageRead, time.Since(readStart))

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]FileResult, len(files))
	writeTimes := make([]time.Duration, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i := range files {
		if err, failed := loadErrors[i]; failed {
			results[i] = FileResult{Path: rels[i], Err: err}
			continue
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			w := worker{req: req, logger: logger, file: fileSet.Get(fileIDs[i]), path: files[i], rel: rels[i]}
			results[i], writeTimes[i] = w.run()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range results {
		result.Timings.Add(buildpipeline.StageRewrite, results[i].Elapsed-writeTimes[i])
		if writeTimes[i] > 0 {
			result.Timings.Add(buildpipeline.StageWrite, writeTimes[i])
		}
	}
	result.Files = results
	return result, nil
}

type worker struct {
	req    ScanRequest
	logger *zap.Logger
	file   *source.File
	path   string
	rel    string
}

func (w worker) emit(stage buildpipeline.Stage, status buildpipeline.Status, err error, elapsed time.Duration) {
	buildpipeline.Emit(w.req.Progress, w.rel, stage, status, err, elapsed)
}

func (w worker) run() (FileResult, time.Duration) {
	start := time.Now()
	res := FileResult{Path: w.rel, FileID: w.file.ID}
	key := cache.Key(w.rel, w.file.Content, w.req.Production)

	var output []byte
	entry, hit, err := w.req.Cache.Get(key)
	if err != nil {
		// битая запись кэша: просто пересчитываем
		w.logger.Debug("cache read failed", zap.String("path", w.rel), zap.Error(err))
	}
	if hit {
		res.Cached = true
		res.Declared = entry.Declared
		res.Resolved = entry.Resolved
		res.Changed = entry.Changed
		if entry.Changed {
			output = entry.Output
		}
		w.emit(buildpipeline.StageAnalyze, buildpipeline.StatusSkipped, nil, 0)
	} else {
		w.emit(buildpipeline.StageAnalyze, buildpipeline.StatusWorking, nil, 0)
		output = w.rewrite(&res)
		w.emit(buildpipeline.StageAnalyze, buildpipeline.StatusDone, nil, time.Since(start))
	}

	if !res.Changed {
		w.emit(buildpipeline.StageRewrite, buildpipeline.StatusSkipped, nil, time.Since(start))
		res.Elapsed = time.Since(start)
		return res, 0
	}
	w.emit(buildpipeline.StageRewrite, buildpipeline.StatusDone, nil, time.Since(start))

	var writeTime time.Duration
	if w.req.Write {
		writeStart := time.Now()
		if err := writeFileAtomic(w.path, output); err != nil {
			res.Err = err
			writeTime = time.Since(writeStart)
			w.emit(buildpipeline.StageWrite, buildpipeline.StatusError, err, writeTime)
			res.Elapsed = time.Since(start)
			return res, writeTime
		}
		res.Written = true
		writeTime = time.Since(writeStart)
		w.emit(buildpipeline.StageWrite, buildpipeline.StatusDone, nil, writeTime)
		// переписанный файл больше не меняется: запоминаем и его
		w.put(cache.Key(w.rel, output, w.req.Production), &cache.Entry{
			Path:       w.rel,
			Production: w.req.Production,
			OutputHash: cache.Hash(output),
		})
	}
	res.Elapsed = time.Since(start)
	return res, writeTime
}

// rewrite analyzes the file, fills res and returns the rewritten text.
func (w worker) rewrite(res *FileResult) []byte {
	text := string(w.file.Content)
	analysis := legacybind.Analyze(text)
	res.Declared = analysis.Declared()
	for _, decl := range analysis.Declarations {
		b := Binding{Name: decl.Name, Line: w.file.Position(decl.Span.Start).Line}
		if target, ok := analysis.Groups.Lookup(decl.Name); ok {
			b.Target = &target
			res.Resolved++
		}
		res.Bindings = append(res.Bindings, b)
	}

	out := legacybind.Transform(text, text, w.path, w.req.Production)
	res.Changed = out != text
	w.logger.Debug("analyzed legacy bindings",
		zap.String("path", w.rel),
		zap.Int("declared", len(res.Declared)),
		zap.Int("resolved", res.Resolved),
		zap.Bool("changed", res.Changed),
	)

	var output []byte
	entry := &cache.Entry{
		Path:       w.rel,
		Production: w.req.Production,
		Declared:   res.Declared,
		Resolved:   res.Resolved,
		Changed:    res.Changed,
		OutputHash: w.file.Hash,
	}
	if res.Changed {
		output = []byte(out)
		entry.Output = output
		entry.OutputHash = cache.Hash(output)
	}
	w.put(cache.Key(w.rel, w.file.Content, w.req.Production), entry)
	return output
}

func (w worker) put(key cache.Digest, entry *cache.Entry) {
	if err := w.req.Cache.Put(key, entry); err != nil {
		w.logger.Warn("cache write failed", zap.String("path", w.rel), zap.Error(err))
	}
}

// writeFileAtomic replaces path with data, keeping the file mode.
func writeFileAtomic(path string, data []byte) (err error) {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()
	if _, err = f.Write(data); err != nil {
		return err
	}
	if err = f.Chmod(info.Mode().Perm()); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(tmp, path)
}

// Candidates lists the files Scan would process, relative to root and sorted.
func Candidates(root string) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	files, err := listCandidates(abs)
	if err != nil {
		return nil, err
	}
	for i, path := range files {
		files[i] = relPath(abs, path)
	}
	return files, nil
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
