package sink

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// TableWriter appends rows to one flat delimited file with a single
// header row. Writes are buffered; the first write error is kept and
// surfaced on Close so the matching path never blocks on I/O errors.
type TableWriter struct {
	f   *os.File
	bw  *bufio.Writer
	w   *csv.Writer
	err error
}

func NewTableWriter(path string, header []string) (*TableWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	bw := bufio.NewWriter(f)
	w := csv.NewWriter(bw)
	t := &TableWriter{f: f, bw: bw, w: w}
	t.Write(header)
	return t, nil
}

func (t *TableWriter) Write(row []string) {
	if t.err != nil {
		return
	}
	t.err = t.w.Write(row)
}

func (t *TableWriter) Close() error {
	t.w.Flush()
	if t.err == nil {
		t.err = t.w.Error()
	}
	if err := t.bw.Flush(); err != nil && t.err == nil {
		t.err = err
	}
	if err := t.f.Close(); err != nil && t.err == nil {
		t.err = err
	}
	return t.err
}
