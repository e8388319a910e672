package diag

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	errWriterClosed = errors.New("diag: writer is closed")
	errBufferFull   = errors.New("diag: buffer full")
)

// jsonlWriter appends JSON lines to <baseDir>/<date>/<name>.jsonl on a
// background goroutine. Writes never block the caller.
type jsonlWriter struct {
	baseDir   string
	name      string
	maxSizeMB int
	now       func() time.Time

	writeCh chan any
	done    chan struct{}
	wg      sync.WaitGroup

	mu          sync.Mutex
	closed      bool
	currentDate string
	logger      *lumberjack.Logger
}

func newJSONLWriter(baseDir, name string, bufferSize, maxSizeMB int) *jsonlWriter {
	if bufferSize < 1 {
		bufferSize = 1
	}
	w := &jsonlWriter{
		baseDir:   baseDir,
		name:      name,
		maxSizeMB: maxSizeMB,
		now:       time.Now,
		writeCh:   make(chan any, bufferSize),
		done:      make(chan struct{}),
	}
	w.wg.Add(1)
	go w.writeLoop()
	return w
}

func (w *jsonlWriter) write(record any) error {
	select {
	case <-w.done:
		return errWriterClosed
	default:
	}
	select {
	case w.writeCh <- record:
		return nil
	case <-w.done:
		return errWriterClosed
	default:
		slog.Warn("diagnostic buffer full, dropping record", "name", w.name)
		return errBufferFull
	}
}

// close stops the loop, flushes queued records and closes the file.
func (w *jsonlWriter) close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	w.wg.Wait()

	timeout := time.After(5 * time.Second)
drain:
	for {
		select {
		case record := <-w.writeCh:
			w.writeRecord(record)
		case <-timeout:
			slog.Warn("diagnostic writer close timeout, some records may be lost", "name", w.name)
			break drain
		default:
			break drain
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.logger != nil {
		return w.logger.Close()
	}
	return nil
}

func (w *jsonlWriter) writeLoop() {
	defer w.wg.Done()
	for {
		select {
		case record := <-w.writeCh:
			w.writeRecord(record)
		case <-w.done:
			return
		}
	}
}

func (w *jsonlWriter) writeRecord(record any) {
	data, err := json.Marshal(record)
	if err != nil {
		slog.Error("diagnostic record marshal failed", "error", err, "name", w.name)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	date := w.now().UTC().Format("2006-01-02")
	if w.logger == nil || date != w.currentDate {
		if !w.openForDate(date) {
			return
		}
	}
	if _, err := w.logger.Write(append(data, '\n')); err != nil {
		slog.Error("diagnostic record write failed", "error", err, "name", w.name)
	}
}

func (w *jsonlWriter) openForDate(date string) bool {
	if w.logger != nil {
		if err := w.logger.Close(); err != nil {
			slog.Debug("diagnostic file close failed", "error", err)
		}
		w.logger = nil
	}

	dir := filepath.Join(w.baseDir, date)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Error("diagnostic directory create failed", "error", err, "dir", dir)
		return false
	}

	filename := filepath.Join(dir, w.name+".jsonl")
	w.logger = &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    w.maxSizeMB,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}
	w.currentDate = date
	slog.Info("opened diagnostic file", "file", filename)
	return true
}
