package ingestion

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dmsqlkit/dmtrace/internal/exporter"
	"github.com/dmsqlkit/dmtrace/internal/sqllog"
)

// ExportService parses trace files concurrently and streams the record
// batches into a single exporter. The exporter is owned by one goroutine,
// so sinks never need their own locking.
type ExportService struct {
	exporter exporter.Exporter
	opts     Options
}

func NewExportService(exp exporter.Exporter, opts Options) *ExportService {
	return &ExportService{exporter: exp, opts: opts}
}

// Run parses every path and exports the records as they come off the
// parsers. Parse errors go to the errors file when configured; a file that
// cannot be read is recorded in its FileResult and does not stop the run.
// An exporter failure aborts the run and is returned. The exporter is
// finalized in every case.
func (s *ExportService) Run(ctx context.Context, paths []string) (*exporter.Stats, []FileResult, error) {
	log := s.opts.logger()
	stats := exporter.NewStats()

	var ew *ErrorWriter
	if s.opts.ErrorsOut != "" {
		var err error
		ew, err = NewErrorWriter(s.opts.ErrorsOut, s.opts.QueueSize, log)
		if err != nil {
			return nil, nil, err
		}
	}

	files := make([]FileResult, len(paths))
	for i, p := range paths {
		files[i] = FileResult{Path: p}
	}

	queueSize := s.opts.QueueSize
	if queueSize <= 0 {
		queueSize = 16
	}
	batches := make(chan []sqllog.Record, queueSize)

	g, gctx := errgroup.WithContext(ctx)

	// Single writer: the exporter is touched only here.
	g.Go(func() error {
		for batch := range batches {
			if err := s.exporter.ExportBatch(batch); err != nil {
				stats.FailedRecords += len(batch)
				return fmt.Errorf("exporting batch of %d records: %w", len(batch), err)
			}
			stats.ExportedRecords += len(batch)
		}
		return nil
	})

	jobs := make(chan fileJob)
	go func() {
		defer close(jobs)
		for i, p := range paths {
			select {
			case jobs <- fileJob{idx: i, path: p}:
			case <-gctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < s.opts.workerCount(len(paths)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if gctx.Err() != nil {
					return
				}
				fr := &files[job.idx]
				err := sqllog.ParseInChunks(job.path, s.opts.ChunkSize,
					func(batch []sqllog.Record) {
						fr.Records += len(batch)
						select {
						case batches <- batch:
						case <-gctx.Done():
						}
					},
					func(batch []sqllog.ParseError) {
						fr.Errors += len(batch)
						if ew != nil {
							ew.Report(batch)
						}
					},
				)
				if err != nil {
					fr.Err = err
					log.Error("failed to parse file", "path", job.path, "error", err)
					continue
				}
				log.Info("parsed file",
					"path", job.path, "records", fr.Records, "errors", fr.Errors)
			}
		}()
	}

	// Writer exits once all parsers are done and the queue drains.
	go func() {
		wg.Wait()
		close(batches)
	}()

	runErr := g.Wait()
	// On an export failure the writer returns before the parsers do; wait
	// for them so files is safe to hand back.
	wg.Wait()
	stats.Finish()

	if ew != nil {
		if err := ew.Close(); err != nil && runErr == nil {
			runErr = err
		}
	}
	if err := s.exporter.Finalize(); err != nil && runErr == nil {
		runErr = fmt.Errorf("finalizing %s exporter: %w", s.exporter.Name(), err)
	}
	if runErr == nil {
		runErr = ctx.Err()
	}

	log.Info("export run finished",
		"exporter", s.exporter.Name(),
		"exported", stats.ExportedRecords,
		"failed", stats.FailedRecords,
		"duration", stats.Duration())

	return stats, files, runErr
}
