package sqllog

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
)

// OnRecords receives a batch of parsed records. Batch boundaries carry no
// meaning beyond delivery granularity; within one file, concatenating all
// batches reproduces file order exactly.
type OnRecords func(records []Record)

// OnErrors receives the parse errors accumulated over the same span as the
// corresponding record batch.
type OnErrors func(errs []ParseError)

// chunker accumulates records and errors and hands them to the callbacks in
// chunkSize-bounded groups. chunkSize 0 means a single delivery at flush.
type chunker struct {
	chunkSize int
	onRecords OnRecords
	onErrors  OnErrors
	records   []Record
	errors    []ParseError
}

func (c *chunker) add(rec *Record) {
	c.records = append(c.records, *rec)
	c.maybeFlush()
}

func (c *chunker) addError(e ParseError) {
	c.errors = append(c.errors, e)
	c.maybeFlush()
}

func (c *chunker) maybeFlush() {
	if c.chunkSize > 0 && (len(c.records) >= c.chunkSize || len(c.errors) >= c.chunkSize) {
		c.flush()
	}
}

// flush delivers whatever is pending. Empty groups are not delivered.
func (c *chunker) flush() {
	if len(c.records) > 0 && c.onRecords != nil {
		c.onRecords(c.records)
	}
	if len(c.errors) > 0 && c.onErrors != nil {
		c.onErrors(c.errors)
	}
	c.records = nil
	c.errors = nil
}

// parseSegmentInto runs the field parser over one segment and records the
// outcome. Format failures become errors; whitespace-only segments are
// dropped silently.
func parseSegmentInto(seg segment, c *chunker) {
	rec, err := ParseSegment(seg.text, seg.startLine)
	switch {
	case err != nil:
		c.addError(ParseError{
			Line:    seg.startLine,
			Content: seg.text,
			Kind:    KindFormat,
			Message: err.Error(),
		})
	case rec != nil:
		c.add(rec)
	}
}

// parseReader is the single parsing loop behind every entry point: it reads
// physical lines, decodes them, assembles segments and feeds the chunker.
// Only read failures are fatal; decode and format problems are accumulated
// as ParseErrors and parsing continues with the next line or segment.
func parseReader(r io.Reader, chunkSize int, onRecords OnRecords, onErrors OnErrors) error {
	br := bufio.NewReader(r)
	c := &chunker{chunkSize: chunkSize, onRecords: onRecords, onErrors: onErrors}
	var builder segmentBuilder

	lineNum := 0
	for {
		raw, err := br.ReadBytes('\n')
		if len(raw) > 0 {
			lineNum++
			var decodeErrs []ParseError
			line := decodeLine(bytes.TrimRight(raw, "\n"), lineNum, &decodeErrs)
			for _, de := range decodeErrs {
				c.addError(de)
			}
			if seg, done := builder.feed(line, lineNum); done {
				parseSegmentInto(seg, c)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading line %d: %w", lineNum+1, err)
		}
	}

	if seg, ok := builder.flush(); ok {
		parseSegmentInto(seg, c)
	}
	c.flush()
	return nil
}

// ParseAll parses the file at path, delivering records and errors to the
// callbacks in chunkSize-bounded batches. chunkSize 0 delivers everything in
// one call after the whole file is parsed. The file content is loaded up
// front; use ParseInChunks to stream instead. Only I/O failures return an
// error.
func ParseAll(path string, chunkSize int, onRecords OnRecords, onErrors OnErrors) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return parseReader(bytes.NewReader(data), chunkSize, onRecords, onErrors)
}

// ParseInChunks is ParseAll with streaming reads: chunks are delivered as the
// file is consumed instead of after loading it whole.
func ParseInChunks(path string, chunkSize int, onRecords OnRecords, onErrors OnErrors) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return parseReader(f, chunkSize, onRecords, onErrors)
}

// ParseFile parses a whole file and returns its records, discarding
// recoverable parse errors.
func ParseFile(path string) ([]Record, error) {
	records, _, err := ParseFileWithErrors(path)
	return records, err
}

// ParseFileWithErrors parses a whole file and returns both its records and
// the recoverable parse errors encountered along the way.
func ParseFileWithErrors(path string) ([]Record, []ParseError, error) {
	var records []Record
	var errs []ParseError
	err := ParseAll(path, 0,
		func(batch []Record) { records = append(records, batch...) },
		func(batch []ParseError) { errs = append(errs, batch...) },
	)
	if err != nil {
		return nil, nil, err
	}
	return records, errs, nil
}
