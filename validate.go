package csvproc

import (
	"fmt"
)

// rowSize returns the approximate serialized size of a row: the summed byte
// length of its cells. Delimiters, quote markers and line breaks are not
// counted, so this is a guard against runaway rows and not an exact measure
// of what the row occupied in the input.
func rowSize(cells []string) int64 {
	var n int64
	for _, c := range cells {
		n += int64(len(c))
	}
	return n
}

// validateRow checks a resolved, not yet coerced row read from input line
// num. Rows handed to it are always past the skip region.
func validateRow(cells []string, header Header, num int, s Settings) *DecodeError {
	if s.Strict && len(header) > 0 && len(cells) != len(header) {
		return newDecodeError(RowLengthMismatch, num,
			fmt.Errorf("%w: got %d cells, want %d", ErrRowLength, len(cells), len(header)))
	}

	if size := rowSize(cells); size > s.MaxRowBytes {
		return newDecodeError(RowTooLarge, num,
			fmt.Errorf("%w: approximately %d bytes, limit %d", ErrRowTooLarge, size, s.MaxRowBytes))
	}

	return nil
}
