package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/dmsqlkit/dmtrace/internal/sqllog"
)

// Options configures a concurrent parsing run.
type Options struct {
	// ThreadCount is the number of parser workers. 0 means
	// min(len(paths), GOMAXPROCS).
	ThreadCount int
	// ChunkSize bounds batch delivery inside each file. 0 means one batch
	// per file.
	ChunkSize int
	// QueueSize is the capacity of the batch queue feeding the export
	// pipeline. 0 falls back to a small default.
	QueueSize int
	// ErrorsOut, when set, appends every parse error to this JSONL file.
	ErrorsOut string
	Logger    *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o Options) workerCount(numPaths int) int {
	n := o.ThreadCount
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
		if numPaths < n {
			n = numPaths
		}
	}
	if n < 1 {
		n = 1
	}
	return n
}

// FileResult summarizes one input file's outcome.
type FileResult struct {
	Path    string
	Records int
	Errors  int
	// Err is set when the file could not be opened or read. Parse errors
	// are counted, not stored here.
	Err error
}

// Result aggregates a multi-file run. Records and Errors are concatenated in
// input path order; Files is indexed like the input paths.
type Result struct {
	Records []sqllog.Record
	Errors  []sqllog.ParseError
	Files   []FileResult
}

type fileJob struct {
	idx  int
	path string
}

// ParseFilesConcurrent parses every path with a bounded worker pool and
// collects all records and parse errors. A file that cannot be read is
// recorded in its FileResult and does not stop the other files. Cancelling
// ctx prevents new files from starting; files already in flight finish, and
// the partial Result is returned together with ctx.Err().
func ParseFilesConcurrent(ctx context.Context, paths []string, opts Options) (*Result, error) {
	log := opts.logger()

	var ew *ErrorWriter
	if opts.ErrorsOut != "" {
		var err error
		ew, err = NewErrorWriter(opts.ErrorsOut, opts.QueueSize, log)
		if err != nil {
			return nil, err
		}
	}

	perRecords := make([][]sqllog.Record, len(paths))
	perErrors := make([][]sqllog.ParseError, len(paths))
	files := make([]FileResult, len(paths))
	for i, p := range paths {
		files[i] = FileResult{Path: p}
	}

	jobs := make(chan fileJob)
	go func() {
		defer close(jobs)
		for i, p := range paths {
			select {
			case jobs <- fileJob{idx: i, path: p}:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < opts.workerCount(len(paths)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if ctx.Err() != nil {
					return
				}
				fr := FileResult{Path: job.path}
				err := sqllog.ParseInChunks(job.path, opts.ChunkSize,
					func(batch []sqllog.Record) {
						perRecords[job.idx] = append(perRecords[job.idx], batch...)
					},
					func(batch []sqllog.ParseError) {
						perErrors[job.idx] = append(perErrors[job.idx], batch...)
						if ew != nil {
							ew.Report(batch)
						}
					},
				)
				if err != nil {
					fr.Err = err
					log.Error("failed to parse file", "path", job.path, "error", err)
				}
				fr.Records = len(perRecords[job.idx])
				fr.Errors = len(perErrors[job.idx])
				files[job.idx] = fr
				log.Info("parsed file",
					"path", job.path, "records", fr.Records, "errors", fr.Errors)
			}
		}()
	}
	wg.Wait()

	if ew != nil {
		if err := ew.Close(); err != nil {
			return nil, fmt.Errorf("finalizing error output: %w", err)
		}
	}

	res := &Result{Files: files}
	for i := range paths {
		res.Records = append(res.Records, perRecords[i]...)
		res.Errors = append(res.Errors, perErrors[i]...)
	}
	return res, ctx.Err()
}
