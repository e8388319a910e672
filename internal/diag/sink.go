// Package diag keeps a rotating JSONL trail of inbound frames the
// subscriber could not use, for debugging malformed producers.
package diag

import (
	"log/slog"
	"time"
)

const (
	defaultMaxFrameBytes = 4096
	defaultBufferSize    = 256
	defaultMaxSizeMB     = 25
)

// Record is one dropped frame.
type Record struct {
	Time          string `json:"time"`
	Reason        string `json:"reason"`
	Error         string `json:"error,omitempty"`
	Frame         string `json:"frame"`
	Truncated     bool   `json:"truncated,omitempty"`
	OriginalBytes int    `json:"originalBytes"`
	SHA256        string `json:"sha256,omitempty"`
}

// Sink receives frames the subscriber dropped. Record must not block.
type Sink interface {
	Record(reason string, frame []byte, err error)
}

// Options tunes a FileSink. Zero values use defaults.
type Options struct {
	MaxFrameBytes int
	BufferSize    int
	MaxSizeMB     int
}

// FileSink writes records under dir, one directory per UTC day.
type FileSink struct {
	w             *jsonlWriter
	maxFrameBytes int
	now           func() time.Time
}

// NewFileSink starts a sink rooted at dir.
func NewFileSink(dir string, opts Options) *FileSink {
	if opts.MaxFrameBytes <= 0 {
		opts.MaxFrameBytes = defaultMaxFrameBytes
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaultBufferSize
	}
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = defaultMaxSizeMB
	}
	return &FileSink{
		w:             newJSONLWriter(dir, "dropped_frames", opts.BufferSize, opts.MaxSizeMB),
		maxFrameBytes: opts.MaxFrameBytes,
		now:           time.Now,
	}
}

// Record queues a dropped frame. Oversized frames are cut and hashed.
func (s *FileSink) Record(reason string, frame []byte, err error) {
	out, truncated, origLen, sum := truncateBytes(frame, s.maxFrameBytes)
	rec := Record{
		Time:          s.now().UTC().Format(time.RFC3339Nano),
		Reason:        reason,
		Frame:         string(out),
		Truncated:     truncated,
		OriginalBytes: origLen,
		SHA256:        sum,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if werr := s.w.write(rec); werr != nil {
		slog.Debug("diagnostic record dropped", "reason", reason, "error", werr)
	}
}

// Close flushes pending records.
func (s *FileSink) Close() error {
	return s.w.close()
}

// Discard drops every record.
type Discard struct{}

func (Discard) Record(string, []byte, error) {}
