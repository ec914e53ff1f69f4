package csvproc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Encoder writes rows back out as delimited text using the delimiter and
// quote of a Settings value. Lines are separated, not terminated, by the
// line break so that the output decodes to the same number of rows.
type Encoder struct {
	w        *bufio.Writer
	s        Settings
	header   Header
	hWritten bool

	lineBreak string
	lines     int64

	writeMu sync.Mutex
}

type EncoderOption func(e *Encoder)

// WithLineBreak sets the string written between lines. Default "\n".
func WithLineBreak(lb string) EncoderOption {
	return func(e *Encoder) {
		e.lineBreak = lb
	}
}

// WithHeader makes the encoder write h as the first line. Object mode rows
// need a header to fix their column order.
func WithHeader(h Header) EncoderOption {
	return func(e *Encoder) {
		e.header = h
	}
}

var (
	errWriterNil       = errors.New("writer is nil")
	errObjectNoHeader  = errors.New("object row requires a header")
	errUnencodableCell = errors.New("cell cannot be encoded")
)

// NewEncoder returns a new [Encoder] writing to w.
//
// It is the caller's responsibility to call Close on the [Encoder] when done.
func NewEncoder(w io.Writer, s Settings, opts ...EncoderOption) (*Encoder, error) {
	e := &Encoder{s: s, lineBreak: "\n"}
	for _, opt := range opts {
		opt(e)
	}
	if e.s.Delimiter == "" {
		e.s.Delimiter = defaultDelimiter
	}
	if e.s.Quote == "" {
		e.s.Quote = defaultQuote
	}

	if err := e.Reset(w, e.header); err != nil {
		return nil, err
	}
	return e, nil
}

// Reset discards the [Encoder] e's state and makes it equivalent to the
// result of its original state from [NewEncoder], but writing to w instead.
func (e *Encoder) Reset(w io.Writer, h Header) error {
	if w == nil {
		return errWriterNil
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	e.w = bufio.NewWriter(w)
	e.header = h
	e.hWritten = false
	e.lines = 0
	return nil
}

// Write encodes one row. Object rows are written in header order, with
// absent fields left empty. A row holding a cell that would not decode back
// to itself is rejected and nothing is written for it.
func (e *Encoder) Write(r Row) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	if e.w == nil {
		return errWriterNil
	}
	var cells []string
	if r.IsObject() {
		if len(e.header) == 0 {
			return errObjectNoHeader
		}
		cells = make([]string, len(e.header))
		for i, name := range e.header {
			if c, ok := r.Fields[name]; ok {
				cells[i] = c.String()
			}
		}
	} else {
		cells = r.Strings()
	}

	for i, c := range cells {
		encoded, err := e.encodeCell(c)
		if err != nil {
			return err
		}
		cells[i] = encoded
	}

	if err := e.writeHeader(); err != nil {
		return err
	}
	return e.writeLine(cells)
}

// encodeCell returns c as it must appear on the line for the decoder to read
// it back as exactly one cell equal to c. Only cells the delimiter would split
// are wrapped in quote markers, and only when special quotes are enabled.
func (e *Encoder) encodeCell(c string) (string, error) {
	if strings.Contains(c, "\n") {
		return "", fmt.Errorf("%w: %q contains a line break", errUnencodableCell, c)
	}

	encoded := c
	if e.s.AllowSpecialQuotes && strings.Contains(c, e.s.Delimiter) {
		encoded = e.s.Quote + c + e.s.Quote
	}

	tokens := strings.Split(encoded, e.s.Delimiter)
	if e.s.AllowSpecialQuotes {
		tokens = resolveQuotes(tokens, e.s.Quote, e.s.Delimiter)
	}
	if len(tokens) != 1 || tokens[0] != c {
		return "", fmt.Errorf("%w: %q would not decode as a single cell", errUnencodableCell, c)
	}
	return encoded, nil
}

// Close flushes any pending output. It is an error to call Write after
// calling Close.
func (e *Encoder) Close() error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	if e.w == nil {
		return errWriterNil
	}
	defer func() { e.w = nil }()

	if err := e.writeHeader(); err != nil {
		return err
	}
	return e.w.Flush()
}

func (e *Encoder) writeHeader() error {
	if e.hWritten || len(e.header) == 0 {
		return nil
	}
	e.hWritten = true
	return e.writeLine(e.header)
}

func (e *Encoder) writeLine(cells []string) error {
	if e.lines > 0 {
		if _, err := e.w.WriteString(e.lineBreak); err != nil {
			return err
		}
	}
	e.lines++

	for i, c := range cells {
		if i > 0 {
			if _, err := e.w.WriteString(e.s.Delimiter); err != nil {
				return err
			}
		}
		if _, err := e.w.WriteString(c); err != nil {
			return err
		}
	}
	return nil
}
