package source

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mnightingale/csvproc"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/require"
)

const sample = "name,city\nZoë,Zürich\nÅsa,Malmö"

func writeLZ4(t *testing.T, path, text string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := lz4.NewWriter(f)
	_, err = io.Copy(zw, strings.NewReader(text))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
}

func TestReadFilePlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	got, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, sample, got)
}

func TestReadFileLZ4(t *testing.T) {
	dir := t.TempDir()

	t.Run("by extension", func(t *testing.T) {
		path := filepath.Join(dir, "rows.csv.lz4")
		writeLZ4(t, path, sample)

		got, err := ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, sample, got)
	})

	t.Run("by magic", func(t *testing.T) {
		path := filepath.Join(dir, "rows.bin")
		writeLZ4(t, path, sample)

		got, err := ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, sample, got)
	})

	t.Run("sniffing disabled", func(t *testing.T) {
		path := filepath.Join(dir, "raw.bin")
		writeLZ4(t, path, sample)

		got, err := ReadFile(path, WithCompression(CompressionNone))
		require.NoError(t, err)
		require.NotEqual(t, sample, got)
	})
}

func TestEncodings(t *testing.T) {
	cases := []struct {
		name     string
		encoding string
		raw      []byte
		want     string
	}{
		{"utf-8", "", []byte("a,b\nü,1"), "a,b\nü,1"},
		{"utf-8 bom kept", "utf-8", []byte("\xef\xbb\xbfa,b"), "\ufeffa,b"},
		{"utf-8 bom stripped", "utf-8-sig", []byte("\xef\xbb\xbfa,b"), "a,b"},
		{"latin1", "latin1", []byte("a,b\n\xfc,\xe9"), "a,b\nü,é"},
		{"iso-8859-1", "ISO-8859-1", []byte("\xc5sa"), "Åsa"},
		{"windows-1252", "windows-1252", []byte("\x80 5"), "€ 5"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := NewReader(bytes.NewReader(tc.raw), WithEncoding(tc.encoding))
			require.NoError(t, err)

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			require.Equal(t, tc.want, string(got))
		})
	}
}

func TestUnreadable(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	require.ErrorIs(t, err, csvproc.ErrUnreadableSource)
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = NewReader(strings.NewReader("a"), WithEncoding("ebcdic"))
	require.ErrorIs(t, err, csvproc.ErrUnreadableSource)
	require.ErrorContains(t, err, `unsupported encoding "ebcdic"`)

	path := filepath.Join(t.TempDir(), "broken.lz4")
	require.NoError(t, os.WriteFile(path, []byte("not a frame"), 0o644))
	_, err = ReadFile(path)
	require.ErrorIs(t, err, csvproc.ErrUnreadableSource)
}

func TestDecodeLatin1LZ4(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.csv.lz4")
	writeLZ4(t, path, "name,n\n\xc5sa,1\nZo\xeb,2")

	rc, err := Open(path, WithEncoding("latin1"))
	require.NoError(t, err)
	defer rc.Close()

	var names []string
	d := csvproc.NewDecoder(csvproc.Options{RowAsObject: true, ParseNumbers: true})
	d.OnRow(func(r csvproc.Row) {
		names = append(names, r.Fields["name"].Str)
	})

	require.NoError(t, d.RunReader(context.Background(), rc))
	require.Equal(t, []string{"Åsa", "Zoë"}, names)
}
