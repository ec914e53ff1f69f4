package csvproc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveDefaults(t *testing.T) {
	s := Resolve(Options{})

	require.Equal(t, ",", s.Delimiter)
	require.Equal(t, `"`, s.Quote)
	require.Equal(t, "#", s.CommentChar)
	require.Equal(t, DefaultMaxRowBytes, s.MaxRowBytes)
	require.Equal(t, 1, s.SkipLines)
	require.True(t, s.HasHeader())
	require.True(t, s.AnnounceHeader())
	require.False(t, s.Strict)
}

func TestResolve(t *testing.T) {
	cases := []struct {
		name  string
		opts  Options
		check func(t *testing.T, s Settings)
	}{
		{"row as object implies strict", Options{RowAsObject: true}, func(t *testing.T, s Settings) {
			require.True(t, s.Strict)
			require.Equal(t, 1, s.SkipLines)
			require.False(t, s.AnnounceHeader())
		}},
		{"row as object keeps larger skip", Options{RowAsObject: true, SkipLines: 3}, func(t *testing.T, s Settings) {
			require.Equal(t, 3, s.SkipLines)
		}},
		{"row as object wins over no header", Options{RowAsObject: true, NoHeader: true, Strict: false}, func(t *testing.T, s Settings) {
			require.True(t, s.Strict)
			require.Equal(t, 1, s.SkipLines)
		}},
		{"no header", Options{NoHeader: true, SkipLines: 4}, func(t *testing.T, s Settings) {
			require.Equal(t, 0, s.SkipLines)
			require.False(t, s.HasHeader())
			require.False(t, s.AnnounceHeader())
		}},
		{"trim implies ltrim and rtrim", Options{Trim: true}, func(t *testing.T, s Settings) {
			require.True(t, s.LTrim)
			require.True(t, s.RTrim)
		}},
		{"multi line skip does not announce", Options{SkipLines: 2}, func(t *testing.T, s Settings) {
			require.Equal(t, 2, s.SkipLines)
			require.False(t, s.AnnounceHeader())
		}},
		{"negative skip is default", Options{SkipLines: -2}, func(t *testing.T, s Settings) {
			require.Equal(t, 1, s.SkipLines)
		}},
		{"custom values kept", Options{Delimiter: ";", Quote: "'", CommentChar: "//", MaxRowBytes: 10}, func(t *testing.T, s Settings) {
			require.Equal(t, ";", s.Delimiter)
			require.Equal(t, "'", s.Quote)
			require.Equal(t, "//", s.CommentChar)
			require.Equal(t, int64(10), s.MaxRowBytes)
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, Resolve(tc.opts))
		})
	}
}
