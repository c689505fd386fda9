// Package codec implements the framed line codec the supervisor's RPC
// endpoint and front-end client speak: one UTF-8 JSON value per line.
package codec

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// maxLineSize caps a single frame at 1 MiB.
const maxLineSize = 1024 * 1024

// Reader reads one JSON value per line from an underlying byte stream.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader wraps r with line framing.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{scanner: scanner}
}

// ReadMessage reads the next line and unmarshals it into v. It returns
// (false, nil) on EOF ("no message", not an error). A line that fails to
// parse as JSON is a fatal protocol error on the connection.
func (r *Reader) ReadMessage(v interface{}) (bool, error) {
	for r.scanner.Scan() {
		line := r.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := json.Unmarshal(line, v); err != nil {
			return false, fmt.Errorf("codec: invalid JSON frame: %w", err)
		}
		return true, nil
	}
	if err := r.scanner.Err(); err != nil {
		return false, fmt.Errorf("codec: read error: %w", err)
	}
	return false, nil
}

// Writer writes one JSON value per line to an underlying byte stream.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w with line framing.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteMessage serializes v without pretty-printing, appends a trailing
// newline, and writes it in one call. json.Marshal escapes control
// characters inside string values, so an embedded newline in a field can
// never split a frame.
func (w *Writer) WriteMessage(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("codec: failed to marshal message: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.w.Write(data); err != nil {
		return fmt.Errorf("codec: failed to write message: %w", err)
	}
	return nil
}
