package csvproc

import (
	"context"
	"errors"
	"fmt"
	"io"
)

const (
	defaultReadBufSize = 32 * 1024
	// DefaultMaxSourceBytes bounds how much a reader bridge will buffer.
	DefaultMaxSourceBytes = 1 << 30
)

// readBuffer accumulates a whole source in memory, growing geometrically up
// to max bytes.
type readBuffer struct {
	buf []byte
	end int
	max int
}

func (rb *readBuffer) init() {
	if rb.max <= 0 {
		rb.max = DefaultMaxSourceBytes
	}
	if len(rb.buf) == 0 {
		rb.buf = make([]byte, min(defaultReadBufSize, rb.max))
	}
}

func (rb *readBuffer) ensureWriteSpace() error {
	if rb.end < len(rb.buf) {
		return nil
	}

	// No space: grow.
	newLen := len(rb.buf) * 2
	if newLen > rb.max {
		newLen = rb.max
	}
	if newLen <= len(rb.buf) {
		return fmt.Errorf("source exceeded %d bytes", rb.max)
	}

	nb := make([]byte, newLen)
	copy(nb, rb.buf[:rb.end])
	rb.buf = nb
	return nil
}

func (rb *readBuffer) readMore(r io.Reader) (int, error) {
	if rb.end == rb.max {
		// Full at the limit: only EOF keeps the source within bounds.
		var one [1]byte
		n, err := r.Read(one[:])
		if n > 0 {
			return 0, fmt.Errorf("source exceeded %d bytes", rb.max)
		}
		return 0, err
	}
	if err := rb.ensureWriteSpace(); err != nil {
		return 0, err
	}
	n, err := r.Read(rb.buf[rb.end:])
	if n > 0 {
		rb.end += n
	}
	return n, err
}

// drain reads r until io.EOF and returns everything read as text.
func (rb *readBuffer) drain(r io.Reader) (string, error) {
	if r == nil {
		return "", errors.New("source reader is nil")
	}
	rb.init()

	for {
		if _, err := rb.readMore(r); err != nil {
			if errors.Is(err, io.EOF) {
				return string(rb.buf[:rb.end]), nil
			}
			return "", err
		}
	}
}

// WithMaxSourceBytes bounds how much ProcessReader and RunReader buffer
// before failing with UnreadableSource. A source of exactly n bytes is
// accepted. Default DefaultMaxSourceBytes.
func WithMaxSourceBytes(n int) DecoderOption {
	return func(d *Decoder) {
		d.maxSource = n
	}
}

func (d *Decoder) readerSource(r io.Reader) source {
	return func() (string, error) {
		rb := readBuffer{max: d.maxSource}
		return rb.drain(r)
	}
}

// ProcessReader is Process for a source that still has to be read. Reading
// happens on the pass goroutine; a read failure is delivered as an
// UnreadableSource error notification.
func (d *Decoder) ProcessReader(r io.Reader) error {
	s, pass, err := d.begin()
	if err != nil {
		return err
	}

	d.mu.Lock()
	g := d.newPassGroup()
	d.mu.Unlock()

	g.Go(func() error {
		if err := d.run(context.Background(), pass, s, d.readerSource(r)); err != nil {
			return err
		}
		return nil
	})
	return nil
}

// RunReader is Run for a source that still has to be read.
func (d *Decoder) RunReader(ctx context.Context, r io.Reader) error {
	s, pass, err := d.begin()
	if err != nil {
		return err
	}
	if err := d.run(ctx, pass, s, d.readerSource(r)); err != nil {
		return err
	}
	return nil
}
