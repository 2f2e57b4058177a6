// Package reader streams loader lines out of plain or gzip newline-delimited JSON
package reader

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"epimetrics/internal/services/records/domain"
)

const maxLineSize = 4 * 1024 * 1024

var gzipMagic = []byte{0x1f, 0x8b}

// DecodeError is a line that is not valid JSON for its kind; the reader stays usable after it
type DecodeError struct {
	Line int
	Err  error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

func (e *DecodeError) Unwrap() error { return e.Err }

// Reader yields one domain.Line per non-blank input line
type Reader struct {
	gz    *gzip.Reader
	sc    *bufio.Scanner
	line  int
	bytes int64
	err   error
}

// New wraps r, sniffing the gzip header so both .ndjson and .ndjson.gz load the same way
func New(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	rd := &Reader{}
	var src io.Reader = br
	if head, err := br.Peek(2); err == nil && bytes.Equal(head, gzipMagic) {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		rd.gz = gz
		src = gz
	}
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	rd.sc = sc
	return rd, nil
}

// Next returns the next line, io.EOF when done, or a *DecodeError for a malformed line
func (rd *Reader) Next() (domain.Line, error) {
	if rd.err != nil {
		return domain.Line{}, rd.err
	}
	for {
		if !rd.sc.Scan() {
			if err := rd.sc.Err(); err != nil {
				rd.err = fmt.Errorf("line %d: %w", rd.line+1, err)
				return domain.Line{}, rd.err
			}
			rd.err = io.EOF
			return domain.Line{}, io.EOF
		}
		rd.line++
		raw := bytes.TrimSpace(rd.sc.Bytes())
		rd.bytes += int64(len(rd.sc.Bytes()) + 1)
		if len(raw) == 0 {
			continue
		}
		return decode(rd.line, raw)
	}
}

// Stats reports lines seen and uncompressed bytes read so far
func (rd *Reader) Stats() (lines int, read int64) { return rd.line, rd.bytes }

// Close releases the gzip stream; the caller owns the underlying reader
func (rd *Reader) Close() error {
	if rd.gz != nil {
		return rd.gz.Close()
	}
	return nil
}

func decode(no int, raw []byte) (domain.Line, error) {
	var probe struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return domain.Line{No: no}, &DecodeError{Line: no, Err: err}
	}
	switch probe.Kind {
	case "", domain.KindRecord:
		var r domain.Record
		if err := json.Unmarshal(raw, &r); err != nil {
			return domain.Line{No: no}, &DecodeError{Line: no, Err: err}
		}
		return domain.Line{No: no, Record: &r}, nil
	case domain.KindSurvey:
		var s domain.Survey
		if err := json.Unmarshal(raw, &s); err != nil {
			return domain.Line{No: no}, &DecodeError{Line: no, Err: err}
		}
		return domain.Line{No: no, Survey: &s}, nil
	}
	return domain.Line{No: no}, &DecodeError{Line: no, Err: fmt.Errorf("unknown kind %q", probe.Kind)}
}

// AsDecodeError reports whether err is a recoverable line error
func AsDecodeError(err error) (*DecodeError, bool) {
	var de *DecodeError
	ok := errors.As(err, &de)
	return de, ok
}
