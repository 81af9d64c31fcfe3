// Package driver implements the parallel driver (C11): fanning the
// per-file analyser out across a resolved file list with no shared mutable
// state, then folding the independent per-file results together with a
// commutative merge before sorting once by the diagnostic total order.
package driver

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"time"

	backoff "github.com/cenkalti/backoff/v5"
	"golang.org/x/sync/errgroup"

	"github.com/fortitude-sh/fortitude/internal/analyzer"
	"github.com/fortitude-sh/fortitude/internal/rules"
)

// FileResult is one file's outcome, the unit that gets merged.
type FileResult struct {
	Path        string
	Diagnostics []rules.Diagnostic
	Skipped     bool
}

// CheckResult is the run-wide accumulation: a commutative merge of every
// FileResult, sorted once at the end.
type CheckResult struct {
	Diagnostics  []rules.Diagnostic
	FilesChecked int
	FilesSkipped int
}

// merge folds one FileResult into acc. Order-independent: callers may apply
// results from any goroutine completion order.
func (acc *CheckResult) merge(r FileResult) {
	acc.Diagnostics = append(acc.Diagnostics, r.Diagnostics...)
	acc.FilesChecked++
	if r.Skipped {
		acc.FilesSkipped++
	}
}

// Run analyses every path in files concurrently and returns the merged,
// sorted result. ctx cancellation (e.g. on Ctrl-C) stops launching new
// files and returns the partial merge gathered so far alongside the
// cancellation error.
func Run(ctx context.Context, files []string, concurrency int, analyze func(path string) FileResult) (CheckResult, error) {
	if concurrency <= 0 {
		concurrency = len(files)
		if concurrency == 0 {
			concurrency = 1
		}
	}

	results := make([]FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = analyze(path)
			return nil
		})
	}

	err := g.Wait()

	var acc CheckResult
	for _, r := range results {
		if r.Path == "" {
			continue // never ran, due to cancellation
		}
		acc.merge(r)
	}
	acc.Diagnostics = rules.SortDiagnostics(acc.Diagnostics)
	return acc, err
}

// RunStdin analyses stdin content once as a single synthetic file, per
// spec's `-`/--stdin-filename handling. The content is read fully into
// memory before analysis begins, matching the per-file analyser's
// file-at-a-time contract.
func RunStdin(stdinFilename string, stdin io.Reader, analyze func(path string, content []byte) FileResult) (FileResult, error) {
	content, err := io.ReadAll(stdin)
	if err != nil {
		return FileResult{}, err
	}
	return analyze(stdinFilename, content), nil
}

// AnalyzeFile adapts an analyzer.Analyzer into the analyze callback Run
// expects, reading path's content from disk itself.
func AnalyzeFile(a *analyzer.Analyzer, path string) FileResult {
	content, err := ReadFile(path)
	res := a.File(path, content, err)
	return FileResult{Path: path, Diagnostics: res.Diagnostics, Skipped: res.Skipped}
}

// readRetryBackoff bounds ReadFile's retry of a transient open error; a
// scan touching thousands of files shouldn't fail one over another
// process holding it locked for a moment.
func readRetryBackoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 100 * time.Millisecond
	b.Multiplier = 2.0
	return b
}

// ReadFile reads path's content, making up to 3 attempts with a short
// backoff for any read error (such as a transient sharing violation, with
// another process holding the file open), and giving up immediately on
// not found or permission denied, since those won't resolve by waiting.
func ReadFile(path string) ([]byte, error) {
	return backoff.Retry(context.Background(), func() ([]byte, error) {
		content, err := os.ReadFile(path)
		if err == nil {
			return content, nil
		}
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	},
		backoff.WithBackOff(readRetryBackoff()),
		backoff.WithMaxTries(3),
	)
}
