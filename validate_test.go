package csvproc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRowSize(t *testing.T) {
	require.Equal(t, int64(0), rowSize(nil))
	require.Equal(t, int64(0), rowSize([]string{"", ""}))
	require.Equal(t, int64(6), rowSize([]string{"ab", "cd", "ef"}))
	require.Equal(t, int64(4), rowSize([]string{"é", "ü"}))
}

func TestValidateRow(t *testing.T) {
	header := Header{"a", "b"}

	cases := []struct {
		name   string
		cells  []string
		header Header
		opts   Options
		kind   ErrorKind
	}{
		{"lenient mismatch passes", []string{"1"}, header, Options{}, 0},
		{"strict match passes", []string{"1", "2"}, header, Options{Strict: true}, 0},
		{"strict mismatch fails", []string{"1", "2", "3"}, header, Options{Strict: true}, RowLengthMismatch},
		{"strict without header passes", []string{"1", "2", "3"}, nil, Options{Strict: true}, 0},
		{"size at limit passes", []string{"abc", "de"}, header, Options{MaxRowBytes: 5}, 0},
		{"size over limit fails", []string{"abc", "def"}, header, Options{MaxRowBytes: 5}, RowTooLarge},
		{"length checked before size", []string{"abcdef"}, header, Options{Strict: true, MaxRowBytes: 1}, RowLengthMismatch},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateRow(tc.cells, tc.header, 7, Resolve(tc.opts))
			if tc.kind == 0 {
				require.Nil(t, err)
				return
			}
			require.NotNil(t, err)
			require.Equal(t, tc.kind, err.Kind)
			require.Equal(t, 7, err.Line)
		})
	}
}

func TestDecodeErrorUnwrap(t *testing.T) {
	cause := errors.New("disk on fire")

	err := error(newDecodeError(UnreadableSource, 0, cause))
	require.ErrorIs(t, err, ErrUnreadableSource)
	require.ErrorIs(t, err, cause)
	require.Equal(t, "csvproc: unreadable_source: disk on fire", err.Error())

	err = error(newDecodeError(EmptyInput, 0, nil))
	require.ErrorIs(t, err, ErrEmptyInput)
	require.NotErrorIs(t, err, ErrRowLength)
	require.Len(t, err.(*DecodeError).Unwrap(), 1)

	err = validateRow([]string{"x"}, Header{"a", "b"}, 3, Resolve(Options{Strict: true}))
	require.ErrorIs(t, err, ErrRowLength)
	require.Contains(t, err.Error(), "on line 3")

	var de *DecodeError
	require.ErrorAs(t, err, &de)
	require.Equal(t, RowLengthMismatch, de.Kind)
}

func TestMaterialize(t *testing.T) {
	cells := []Cell{FloatCell(1), StringCell("x"), BoolCell(true)}

	row := materialize(cells, Header{"a", "b", "c"}, 4, false)
	require.False(t, row.IsObject())
	require.Equal(t, 4, row.Line)
	require.Equal(t, []any{1.0, "x", true}, row.Values())
	require.Equal(t, []string{"1", "x", "true"}, row.Strings())

	row = materialize(cells, Header{"a", "b"}, 4, true)
	require.True(t, row.IsObject())
	require.Nil(t, row.Cells)
	require.Equal(t, map[string]any{"a": 1.0, "b": "x"}, row.Map())

	row = materialize(cells[:1], Header{"a", "b"}, 4, true)
	require.Equal(t, map[string]any{"a": 1.0}, row.Map())
}

func TestTypeNames(t *testing.T) {
	require.Equal(t, "float", CellFloat.String())
	require.Equal(t, "paused", StatePaused.String())
	require.Equal(t, "aborted", StateAborted.String())
	require.Equal(t, "row_too_large", RowTooLarge.String())
	require.Equal(t, "unknown", ErrorKind(0).String())
}
