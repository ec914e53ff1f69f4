// Package source acquires the text a csvproc decoder works on: it opens
// files, undoes lz4 compression and transcodes legacy single-byte encodings
// to UTF-8. Failures are reported as csvproc UnreadableSource errors.
package source

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mnightingale/csvproc"
	"github.com/pierrec/lz4/v4"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Compression selects how the raw bytes are decompressed.
type Compression int

const (
	CompressionAuto Compression = 0 // default, sniff the lz4 frame magic
	CompressionNone Compression = 1
	CompressionLZ4  Compression = 2
)

// lz4Magic is the little-endian lz4 frame magic number 0x184D2204.
var lz4Magic = []byte{0x04, 0x22, 0x4d, 0x18}

type options struct {
	encoding    string
	compression Compression
}

type Option func(o *options)

// WithEncoding names the character encoding of the source: "utf-8" (the
// default), "utf-8-sig" (strip a byte order mark), "latin1"/"iso-8859-1" or
// "windows-1252".
func WithEncoding(enc string) Option {
	return func(o *options) {
		o.encoding = enc
	}
}

// WithCompression overrides compression sniffing.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// Open opens the file at path and wraps it with the decompressor and decoder
// its options require. A ".lz4" suffix forces lz4 unless overridden.
func Open(path string, opts ...Option) (io.ReadCloser, error) {
	o := options{}
	if strings.HasSuffix(strings.ToLower(path), ".lz4") {
		o.compression = CompressionLZ4
	}
	for _, opt := range opts {
		opt(&o)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, unreadable(err)
	}

	r, err := wrap(f, o)
	if err != nil {
		f.Close()
		return nil, unreadable(err)
	}

	return struct {
		io.Reader
		io.Closer
	}{
		Reader: r,
		Closer: f,
	}, nil
}

// NewReader wraps r with the decompressor and decoder opts require.
func NewReader(r io.Reader, opts ...Option) (io.Reader, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	wrapped, err := wrap(r, o)
	if err != nil {
		return nil, unreadable(err)
	}
	return wrapped, nil
}

// ReadFile reads the whole file at path as decoder input.
func ReadFile(path string, opts ...Option) (string, error) {
	rc, err := Open(path, opts...)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return "", unreadable(err)
	}
	return string(b), nil
}

func wrap(r io.Reader, o options) (io.Reader, error) {
	dec, err := lookupEncoding(o.encoding)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(r)

	compression := o.compression
	if compression == CompressionAuto {
		compression = CompressionNone
		// A short or failed peek just means there is no frame header.
		if magic, _ := br.Peek(len(lz4Magic)); bytes.Equal(magic, lz4Magic) {
			compression = CompressionLZ4
		}
	}

	var out io.Reader = br
	if compression == CompressionLZ4 {
		out = lz4.NewReader(br)
	}

	if dec != nil {
		out = transform.NewReader(out, dec.NewDecoder())
	}
	return out, nil
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "utf-8-sig", "utf8-sig":
		return unicode.UTF8BOM, nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

func unreadable(err error) error {
	return &csvproc.DecodeError{Kind: csvproc.UnreadableSource, Err: err}
}
