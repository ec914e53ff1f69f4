package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mnightingale/csvproc"
	"github.com/stretchr/testify/require"
)

func TestParseHCL(t *testing.T) {
	src := []byte(`
delimiter      = ";"
skip_comments  = "//"
skip_lines     = 2
parse_numbers  = true
row_as_object  = true
max_row_bytes  = 4096
encoding       = "latin1"
`)

	f, err := ParseHCL(src, "settings.hcl")
	require.NoError(t, err)
	require.Equal(t, csvproc.Options{
		Delimiter:    ";",
		SkipComments: true,
		CommentChar:  "//",
		SkipLines:    2,
		ParseNumbers: true,
		RowAsObject:  true,
		MaxRowBytes:  4096,
	}, f.Options)
	require.Equal(t, "latin1", f.Encoding)
}

func TestParseHCLSkipComments(t *testing.T) {
	cases := []struct {
		name    string
		src     string
		skip    bool
		char    string
		wantErr string
	}{
		{"absent", `strict = true`, false, "", ""},
		{"bool", `skip_comments = true`, true, "", ""},
		{"false", `skip_comments = false`, false, "", ""},
		{"string", `skip_comments = "%"`, true, "%", ""},
		{"number", `skip_comments = 3`, false, "", "must be a bool or a string"},
		{"unknown attribute", `colour = "red"`, false, "", "failed to decode HCL file"},
		{"syntax", `delimiter = `, false, "", "failed to parse HCL file"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := ParseHCL([]byte(tc.src), "test.hcl")
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.skip, f.Options.SkipComments)
			require.Equal(t, tc.char, f.Options.CommentChar)
		})
	}
}

func TestParseYAML(t *testing.T) {
	src := []byte(`
delimiter: "\t"
allow_special_quotes: true
quote: "'"
skip_comments: true
skip_empty_lines: true
parse_booleans: true
trim: true
strict: true
error_log: true
encoding: utf-8-sig
`)

	f, err := ParseYAML(src, "settings.yaml")
	require.NoError(t, err)
	require.Equal(t, csvproc.Options{
		Delimiter:          "\t",
		AllowSpecialQuotes: true,
		Quote:              "'",
		SkipComments:       true,
		SkipEmptyLines:     true,
		ParseBooleans:      true,
		Trim:               true,
		Strict:             true,
		ErrorLog:           true,
	}, f.Options)
	require.Equal(t, "utf-8-sig", f.Encoding)
}

func TestParseYAMLSkipComments(t *testing.T) {
	f, err := ParseYAML([]byte(`skip_comments: ";"`), "a.yaml")
	require.NoError(t, err)
	require.True(t, f.Options.SkipComments)
	require.Equal(t, ";", f.Options.CommentChar)

	_, err = ParseYAML([]byte(`skip_comments: [1]`), "a.yaml")
	require.ErrorContains(t, err, "skip_comments must be a bool or a string")

	_, err = ParseYAML([]byte(`skip_lines: many`), "a.yaml")
	require.ErrorContains(t, err, "failed to decode YAML file a.yaml")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	hclPath := filepath.Join(dir, "csv.hcl")
	require.NoError(t, os.WriteFile(hclPath, []byte(`no_header = true`), 0o644))
	f, err := Load(hclPath)
	require.NoError(t, err)
	require.True(t, f.Options.NoHeader)

	ymlPath := filepath.Join(dir, "csv.YML")
	require.NoError(t, os.WriteFile(ymlPath, []byte("ltrim: true\nrtrim: true\n"), 0o644))
	f, err = Load(ymlPath)
	require.NoError(t, err)
	require.True(t, f.Options.LTrim)
	require.True(t, f.Options.RTrim)

	txtPath := filepath.Join(dir, "csv.txt")
	require.NoError(t, os.WriteFile(txtPath, nil, 0o644))
	_, err = Load(txtPath)
	require.ErrorContains(t, err, "unsupported settings file extension")

	_, err = Load(filepath.Join(dir, "missing.hcl"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
