package csvproc

import (
	"context"
)

// DecodeAll decodes an entire text buffer in a single call and returns the
// extracted header with every delivered row. This is simpler than wiring
// handlers on a Decoder when the caller needs neither backpressure nor
// incremental delivery.
//
// The header is returned whenever one was extracted, in object mode too.
// Rows delivered before a failing row are returned alongside the error.
func DecodeAll(text string, cfg Options, opts ...DecoderOption) (Header, []Row, error) {
	var rows []Row

	d := NewDecoder(cfg, opts...)
	d.OnRow(func(r Row) {
		rows = append(rows, r)
	})

	if err := d.Run(context.Background(), text); err != nil {
		return d.Header(), rows, err
	}

	return d.Header(), rows, nil
}
