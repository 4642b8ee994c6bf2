package sqllog

import "context"

// ParseWithHooks runs the chunked driver in a background goroutine and
// returns two bounded channels carrying record and error batches. Each batch
// holds up to batchSize entries; queueSize is the channel capacity. A slow
// consumer blocks the producer at the channel send (backpressure). Consumers
// stop early by cancelling ctx: the producer observes the cancellation at
// its next send and terminates without finishing the file. Both channels are
// closed when the producer exits, whatever the reason.
func ParseWithHooks(ctx context.Context, path string, batchSize, queueSize int) (<-chan []Record, <-chan []ParseError) {
	if queueSize < 1 {
		queueSize = 1
	}
	recordCh := make(chan []Record, queueSize)
	errorCh := make(chan []ParseError, queueSize)

	go func() {
		defer close(recordCh)
		defer close(errorCh)

		// A batch is only enqueued once fully assembled; cancellation never
		// hands over a partially built batch.
		cancelled := false
		_ = ParseInChunks(path, batchSize,
			func(records []Record) {
				if cancelled {
					return
				}
				batch := make([]Record, len(records))
				copy(batch, records)
				select {
				case recordCh <- batch:
				case <-ctx.Done():
					cancelled = true
				}
			},
			func(errs []ParseError) {
				if cancelled {
					return
				}
				batch := make([]ParseError, len(errs))
				copy(batch, errs)
				select {
				case errorCh <- batch:
				case <-ctx.Done():
					cancelled = true
				}
			},
		)
	}()

	return recordCh, errorCh
}
