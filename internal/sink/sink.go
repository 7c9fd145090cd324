// Package sink provides output sinks for generated workloads. The core
// engine only requires a sequential byte writer with flush; this package
// supplies a plain file sink, a snappy-compressed wrapper, and a post-run
// S3 artifact uploader.
package sink

import (
	"io"
	"os"

	"github.com/golang/snappy"

	"github.com/arkilian/loadgen/internal/errors"
)

// Sink is a sequential byte writer with flush. The engine writes the
// operation stream through this abstraction only.
type Sink interface {
	io.Writer

	// Flush forces buffered bytes down to durable storage.
	Flush() error

	// Close flushes and releases the sink.
	Close() error
}

// FileSink writes to a local file. Buffering happens in the emitter, so
// writes pass straight through.
type FileSink struct {
	f *os.File
}

// NewFile creates (truncating) the output file at path.
func NewFile(path string) (*FileSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.NewIOError(errors.CodeOpenFailed, "creating output file "+path, err)
	}
	return &FileSink{f: f}, nil
}

func (s *FileSink) Write(p []byte) (int, error) {
	return s.f.Write(p)
}

func (s *FileSink) Flush() error {
	if err := s.f.Sync(); err != nil {
		return errors.NewIOError(errors.CodeFlushFailed, "syncing output file", err)
	}
	return nil
}

func (s *FileSink) Close() error {
	return s.f.Close()
}

// SnappySink wraps a sink with snappy framing. The compressed stream
// decompresses to the exact byte stream the emitter produced.
type SnappySink struct {
	inner Sink
	w     *snappy.Writer
}

// NewSnappy wraps inner with a snappy-framed writer.
func NewSnappy(inner Sink) *SnappySink {
	return &SnappySink{
		inner: inner,
		w:     snappy.NewBufferedWriter(inner),
	}
}

func (s *SnappySink) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

func (s *SnappySink) Flush() error {
	if err := s.w.Flush(); err != nil {
		return errors.NewIOError(errors.CodeFlushFailed, "flushing snappy frames", err)
	}
	return s.inner.Flush()
}

func (s *SnappySink) Close() error {
	if err := s.w.Close(); err != nil {
		s.inner.Close()
		return errors.NewIOError(errors.CodeFlushFailed, "closing snappy writer", err)
	}
	return s.inner.Close()
}
