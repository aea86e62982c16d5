// Package pipeline orchestrates batch conversion of solid files into graph
// files. It discovers inputs, runs the graph builder across a bounded
// worker pool (or sequentially), reports progress, isolates per-file
// failures, and tears the pool down under memory pressure.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brepmaster/uvgraph/pkg/solid"
	"github.com/brepmaster/uvgraph/pkg/uvgraph"
)

// SolidExts are the recognized extensions of the source solid format.
var SolidExts = []string{".stp", ".step"}

// ErrNoInputFiles indicates that discovery found no solid files under the
// input root. It is raised before any work is dispatched.
var ErrNoInputFiles = errors.New("pipeline: no input files found")

// PoolStartupError indicates the worker pool could not be created. It is
// fatal to the whole batch.
type PoolStartupError struct {
	Err error
}

func (e *PoolStartupError) Error() string {
	return fmt.Sprintf("pipeline: worker pool startup failed: %v", e.Err)
}

func (e *PoolStartupError) Unwrap() error { return e.Err }

// ExecutionMode selects how the batch executes. Sequential mode is the
// safe default and is mandatory inside packaged single-binary
// distributions; pooled mode fans work out across worker goroutines.
type ExecutionMode int

const (
	ModeSequential ExecutionMode = iota
	ModePooled
)

func (m ExecutionMode) String() string {
	switch m {
	case ModeSequential:
		return "sequential"
	case ModePooled:
		return "pooled"
	default:
		return fmt.Sprintf("ExecutionMode(%d)", int(m))
	}
}

// ProgressFunc receives (completed, total) after every finished file,
// success or failure. Counts are monotonically non-decreasing and reach
// total on an uncancelled run.
type ProgressFunc func(completed, total int)

// Failure records one file that could not be converted. The batch never
// discards failures; all of them are reported at the end.
type Failure struct {
	RelPath string
	Message string
}

// Result summarizes one batch run.
type Result struct {
	Total     int // files discovered under the input root
	Skipped   int // files filtered out by the checkpoint set
	Completed int // files processed this run (success or failure)
	Failures  []Failure
	Cancelled bool // run stopped by caller cancellation
	Truncated bool // run stopped by the memory supervisor
}

// FailureCount returns the number of per-file failures.
func (r *Result) FailureCount() int { return len(r.Failures) }

// Options configures one batch conversion.
type Options struct {
	InputRoot  string
	OutputRoot string
	Sample     uvgraph.SampleOpts
	Workers    int
	Mode       ExecutionMode

	// MemoryCeilingBytes tears the pool down when process RSS exceeds it.
	// Zero disables the supervisor.
	MemoryCeilingBytes uint64

	// MemoryPollInterval is how often the supervisor samples RSS.
	// Zero selects the default interval.
	MemoryPollInterval time.Duration

	// Progress is invoked after every completed file. Nil disables
	// progress reporting.
	Progress ProgressFunc

	// Skip holds relative output paths that already exist; matching jobs
	// are not re-dispatched. Nil disables checkpoint filtering.
	Skip CheckpointSet

	// Loader is the solid adapter used to read input files.
	Loader solid.Loader
}

// job is one immutable unit of work derived from a discovered file.
type job struct {
	inPath  string
	outPath string
	relPath string // input path relative to the input root
	relOut  string // output path relative to the output root
}

// fileResult is what workers hand back per finished file.
type fileResult struct {
	failure *Failure // nil on success
}

// Convert runs one batch. Per-file failures are recorded and do not abort
// the run; the only hard failures are empty discovery, pool startup, and
// an unusable configuration.
func Convert(ctx context.Context, opts Options) (*Result, error) {
	if opts.Loader == nil {
		return nil, fmt.Errorf("pipeline: a solid loader is required")
	}
	if err := opts.Sample.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	jobs, err := discover(opts.InputRoot, opts.OutputRoot)
	if err != nil {
		return nil, err
	}

	res := &Result{Total: len(jobs)}

	work := jobs[:0:0]
	for _, j := range jobs {
		if opts.Skip.Contains(j.relOut) {
			res.Skipped++
			continue
		}
		work = append(work, j)
	}
	if len(work) == 0 {
		logrus.Infof("all %d files already converted, nothing to do", res.Total)
		return res, nil
	}

	logrus.Infof("converting %d files (%d skipped) from %s in %s mode",
		len(work), res.Skipped, opts.InputRoot, opts.Mode)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var sup *memorySupervisor
	if opts.MemoryCeilingBytes > 0 {
		sup = newMemorySupervisor(opts.MemoryCeilingBytes, opts.MemoryPollInterval)
		go sup.watch(runCtx, cancel)
	}

	switch opts.Mode {
	case ModeSequential:
		runSequential(runCtx, work, opts, res)
	case ModePooled:
		if opts.Workers < 1 {
			return nil, &PoolStartupError{Err: fmt.Errorf("worker count %d must be >= 1", opts.Workers)}
		}
		runPooled(runCtx, work, opts, res)
	default:
		return nil, fmt.Errorf("pipeline: unknown execution mode %v", opts.Mode)
	}

	if sup != nil && sup.tripped() {
		res.Truncated = true
		logrus.Errorf("batch truncated: memory ceiling of %d bytes exceeded", opts.MemoryCeilingBytes)
	} else if runCtx.Err() != nil {
		res.Cancelled = true
		logrus.Warnf("batch cancelled after %d of %d files", res.Completed, len(work))
	}

	logrus.Infof("batch finished: %d completed, %d failed, %d skipped",
		res.Completed, res.FailureCount(), res.Skipped)
	return res, nil
}

// discover walks the input root for solid files and derives one job per
// file, mirroring the relative path under the output root with the graph
// extension.
func discover(inputRoot, outputRoot string) ([]job, error) {
	info, err := os.Stat(inputRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: input root %s", solid.ErrNotFound, inputRoot)
		}
		return nil, fmt.Errorf("pipeline: stat input root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("pipeline: input root %s is not a directory", inputRoot)
	}

	var jobs []job
	err = filepath.WalkDir(inputRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isSolidFile(path) {
			return nil
		}
		rel, err := filepath.Rel(inputRoot, path)
		if err != nil {
			return err
		}
		relOut := replaceExt(rel, uvgraph.GraphExt)
		jobs = append(jobs, job{
			inPath:  path,
			outPath: filepath.Join(outputRoot, relOut),
			relPath: filepath.ToSlash(rel),
			relOut:  filepath.ToSlash(relOut),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: discover inputs: %w", err)
	}
	if len(jobs) == 0 {
		return nil, ErrNoInputFiles
	}
	return jobs, nil
}

func isSolidFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range SolidExts {
		if ext == want {
			return true
		}
	}
	return false
}

func replaceExt(path, newExt string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + newExt
}

// runSequential processes the work list in the current goroutine, checking
// for cancellation between files.
func runSequential(ctx context.Context, work []job, opts Options, res *Result) {
	total := len(work)
	for _, j := range work {
		if ctx.Err() != nil {
			return
		}
		fr := runJob(j, opts)
		recordResult(fr, total, opts, res)
	}
}

// runPooled fans the work list out across opts.Workers goroutines in small
// chunks and drains results in completion order. Cancellation stops new
// dispatch; in-flight chunks run their current file to completion.
func runPooled(ctx context.Context, work []job, opts Options, res *Result) {
	total := len(work)
	chunk := chunkSize(total, opts.Workers)

	jobsCh := make(chan []job)
	resultsCh := make(chan fileResult)

	var wg sync.WaitGroup
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range jobsCh {
				for _, j := range batch {
					resultsCh <- runJob(j, opts)
					if ctx.Err() != nil {
						// Abandon the rest of the chunk; results so far
						// are already reported.
						break
					}
				}
			}
		}()
	}

	go func() {
		defer close(jobsCh)
		for start := 0; start < total; start += chunk {
			end := start + chunk
			if end > total {
				end = total
			}
			select {
			case jobsCh <- work[start:end]:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	for fr := range resultsCh {
		recordResult(fr, total, opts, res)
	}
}

// chunkSize balances dispatch overhead against load balance: roughly ten
// chunks per worker, bounded to 1..10 files each.
func chunkSize(total, workers int) int {
	c := total / (workers * 10)
	if c < 1 {
		c = 1
	}
	if c > 10 {
		c = 10
	}
	return c
}

// recordResult folds one finished file into the batch result and reports
// progress. Results arrive only from the draining goroutine, so no lock is
// needed.
func recordResult(fr fileResult, total int, opts Options, res *Result) {
	res.Completed++
	if fr.failure != nil {
		res.Failures = append(res.Failures, *fr.failure)
	}
	if opts.Progress != nil {
		opts.Progress(res.Completed, total)
	}
}

// runJob converts one file. All errors, including panics escaping the
// geometry stack, are caught at this boundary and converted into failure
// records so a pathological file cannot abort the batch.
func runJob(j job, opts Options) (fr fileResult) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Warnf("convert %s: panic: %v", j.relPath, r)
			fr = fileResult{failure: &Failure{RelPath: j.relPath, Message: fmt.Sprintf("panic: %v", r)}}
		}
	}()

	if err := convertOne(j, opts); err != nil {
		logrus.Warnf("convert %s: %v", j.relPath, err)
		return fileResult{failure: &Failure{RelPath: j.relPath, Message: err.Error()}}
	}
	logrus.Debugf("converted %s -> %s", j.relPath, j.relOut)
	return fileResult{}
}

// convertOne loads the first solid of the input file, builds its graph and
// writes it atomically to the mirrored output path.
func convertOne(j job, opts Options) error {
	solids, err := opts.Loader.LoadSolids(j.inPath)
	if err != nil {
		return err
	}
	if len(solids) == 0 {
		return fmt.Errorf("file contains no solids")
	}

	g, err := uvgraph.Build(solids[0], opts.Sample)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(j.outPath), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return uvgraph.Save(g, j.outPath)
}
