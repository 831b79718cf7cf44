package corpus

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Writer appends one JSON value per line to a file, gzip-compressing when
// the path ends in .gz. Writes are buffered; Close flushes everything.
type Writer struct {
	f    *os.File
	buf  *bufio.Writer
	gz   *gzip.Writer
	path string
}

// Create truncates or creates path and returns a Writer for it.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: %w", err)
	}
	w := &Writer{f: f, buf: bufio.NewWriterSize(f, defaultBufSize), path: path}
	if strings.HasSuffix(path, ".gz") {
		w.gz = gzip.NewWriter(w.buf)
	}
	return w, nil
}

// Write marshals v and appends it as one line.
func (w *Writer) Write(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("corpus: marshal: %w", err)
	}
	data = append(data, '\n')
	if w.gz != nil {
		_, err = w.gz.Write(data)
	} else {
		_, err = w.buf.Write(data)
	}
	if err != nil {
		return fmt.Errorf("corpus: write %s: %w", w.path, err)
	}
	return nil
}

// Close flushes buffers and closes the file.
func (w *Writer) Close() error {
	if w.gz != nil {
		if err := w.gz.Close(); err != nil {
			w.f.Close()
			return fmt.Errorf("corpus: close %s: %w", w.path, err)
		}
	}
	if err := w.buf.Flush(); err != nil {
		w.f.Close()
		return fmt.Errorf("corpus: flush %s: %w", w.path, err)
	}
	return w.f.Close()
}
