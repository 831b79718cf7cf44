// Package corpus reads and writes newline-delimited JSON record files, with
// transparent gzip compression for paths ending in .gz.
package corpus

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	defaultBufSize = 64 * 1024
	maxLineSize    = 8 * 1024 * 1024
)

// Record is one corpus line: a text with an optional class label. A line may
// also be a bare JSON string, which decodes as a Record with only Text set.
type Record struct {
	Text  string `json:"text"`
	Klass string `json:"klass,omitempty"`
}

// Reader streams non-empty lines from an NDJSON file.
type Reader struct {
	f    *os.File
	gz   *gzip.Reader
	sc   *bufio.Scanner
	path string
	line int
}

// Open opens path for line-by-line reading, decompressing when the name ends
// in .gz.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: %w", err)
	}
	r := &Reader{f: f, path: path}
	var src io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("corpus: open %s: %w", path, err)
		}
		r.gz = gz
		src = gz
	}
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, defaultBufSize), maxLineSize)
	r.sc = sc
	return r, nil
}

// Next returns the next non-empty line, or io.EOF after the last one. The
// returned bytes alias the scanner's buffer and are only valid until the
// following Next call.
func (r *Reader) Next() ([]byte, error) {
	for r.sc.Scan() {
		r.line++
		data := bytes.TrimSpace(r.sc.Bytes())
		if len(data) == 0 {
			continue
		}
		return data, nil
	}
	if err := r.sc.Err(); err != nil {
		return nil, fmt.Errorf("corpus: read %s: %w", r.path, err)
	}
	return nil, io.EOF
}

// Line returns the 1-based number of the line last returned by Next.
func (r *Reader) Line() int {
	return r.line
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	if r.gz != nil {
		if err := r.gz.Close(); err != nil {
			r.f.Close()
			return fmt.Errorf("corpus: close %s: %w", r.path, err)
		}
	}
	return r.f.Close()
}

// EachRecord streams every record of path through fn, stopping early after
// limit records when limit > 0.
func EachRecord(path string, limit int, fn func(Record) error) error {
	r, err := Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	seen := 0
	for {
		data, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		rec, err := decodeRecord(data)
		if err != nil {
			return fmt.Errorf("corpus: %s line %d: %w", path, r.Line(), err)
		}
		if err := fn(rec); err != nil {
			return err
		}
		seen++
		if limit > 0 && seen >= limit {
			return nil
		}
	}
}

// EachTokenList streams a pre-tokenized corpus (one JSON string array per
// line) through fn, stopping early after limit lines when limit > 0.
func EachTokenList(path string, limit int, fn func([]string) error) error {
	r, err := Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	seen := 0
	for {
		data, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		var tokens []string
		if err := json.Unmarshal(data, &tokens); err != nil {
			return fmt.Errorf("corpus: %s line %d: %w", path, r.Line(), err)
		}
		if err := fn(tokens); err != nil {
			return err
		}
		seen++
		if limit > 0 && seen >= limit {
			return nil
		}
	}
}

// decodeRecord accepts either a {"text": …} object or a bare JSON string.
func decodeRecord(data []byte) (Record, error) {
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return Record{}, err
		}
		return Record{Text: s}, nil
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}
