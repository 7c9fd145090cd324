// Package emitter formats resolved operations as ASCII text, one line per
// operation, and writes them incrementally through a buffered writer so that
// gigabyte-scale workloads stream with bounded memory.
//
// Line formats (space separated, newline terminated, no trailing whitespace):
//
//	I <key> <value>
//	U <key> <value>
//	D <key>
//	P <key>
//	R <key1> <key2>
package emitter

import (
	"bufio"
	"io"

	"github.com/arkilian/loadgen/internal/errors"
)

// DefaultBufferSize is 1 MiB, large enough that gigabyte-scale runs spend
// almost no time in write syscalls.
const DefaultBufferSize = 1 << 20

// Operation kind prefixes.
var (
	prefixInsert     = []byte("I ")
	prefixUpdate     = []byte("U ")
	prefixDelete     = []byte("D ")
	prefixPointQuery = []byte("P ")
	prefixRangeQuery = []byte("R ")
	sep              = []byte(" ")
	newline          = []byte("\n")
)

// Line length math, used by the spec model's pre-flight BytesCount.

// InsertLineLen returns the byte length of an insert line.
func InsertLineLen(keyLen, valLen int) int { return 2 + keyLen + 1 + valLen + 1 }

// UpdateLineLen returns the byte length of an update line.
func UpdateLineLen(keyLen, valLen int) int { return 2 + keyLen + 1 + valLen + 1 }

// DeleteLineLen returns the byte length of a delete line.
func DeleteLineLen(keyLen int) int { return 2 + keyLen + 1 }

// PointQueryLineLen returns the byte length of a point-query line.
func PointQueryLineLen(keyLen int) int { return 2 + keyLen + 1 }

// RangeQueryLineLen returns the byte length of a range-query line.
func RangeQueryLineLen(key1Len, key2Len int) int { return 2 + key1Len + 1 + key2Len + 1 }

// Emitter writes operation lines to an output sink.
type Emitter struct {
	w     *bufio.Writer
	bytes int64
}

// New creates an Emitter over w with the given buffer size. A bufSize <= 0
// uses DefaultBufferSize.
func New(w io.Writer, bufSize int) *Emitter {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	return &Emitter{w: bufio.NewWriterSize(w, bufSize)}
}

// BytesWritten returns the number of line bytes emitted so far.
func (e *Emitter) BytesWritten() int64 {
	return e.bytes
}

func (e *Emitter) line(parts ...[]byte) error {
	for _, p := range parts {
		n, err := e.w.Write(p)
		e.bytes += int64(n)
		if err != nil {
			return errors.NewIOError(errors.CodeWriteFailed, "writing operation line", err)
		}
	}
	return nil
}

// Insert emits an insert line.
func (e *Emitter) Insert(key, val []byte) error {
	return e.line(prefixInsert, key, sep, val, newline)
}

// Update emits an update line.
func (e *Emitter) Update(key, val []byte) error {
	return e.line(prefixUpdate, key, sep, val, newline)
}

// Delete emits a delete line.
func (e *Emitter) Delete(key []byte) error {
	return e.line(prefixDelete, key, newline)
}

// PointQuery emits a point-query line. Empty point queries use the same
// format; absence is a property of the key, not of the line.
func (e *Emitter) PointQuery(key []byte) error {
	return e.line(prefixPointQuery, key, newline)
}

// RangeQuery emits a range-query line with key1 <= key2.
func (e *Emitter) RangeQuery(key1, key2 []byte) error {
	return e.line(prefixRangeQuery, key1, sep, key2, newline)
}

// Flush drains the buffer to the underlying sink.
func (e *Emitter) Flush() error {
	if err := e.w.Flush(); err != nil {
		return errors.NewIOError(errors.CodeFlushFailed, "flushing output", err)
	}
	return nil
}
