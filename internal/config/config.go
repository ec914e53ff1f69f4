// Package config loads decoder settings files for the csvproc command. HCL
// (.hcl) and YAML (.yaml, .yml) are supported; both use the same attribute
// names.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/mnightingale/csvproc"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// File is a loaded settings file.
type File struct {
	Options  csvproc.Options
	Encoding string // source character encoding, see source.WithEncoding
}

// hclFile is the HCL schema of a settings file.
type hclFile struct {
	Delimiter          string     `hcl:"delimiter,optional"`
	AllowSpecialQuotes bool       `hcl:"allow_special_quotes,optional"`
	Quote              string     `hcl:"quote,optional"`
	SkipComments       *cty.Value `hcl:"skip_comments,optional"`
	SkipLines          int        `hcl:"skip_lines,optional"`
	NoHeader           bool       `hcl:"no_header,optional"`
	SkipEmptyLines     bool       `hcl:"skip_empty_lines,optional"`
	ParseNumbers       bool       `hcl:"parse_numbers,optional"`
	ParseBooleans      bool       `hcl:"parse_booleans,optional"`
	LTrim              bool       `hcl:"ltrim,optional"`
	RTrim              bool       `hcl:"rtrim,optional"`
	Trim               bool       `hcl:"trim,optional"`
	MaxRowBytes        int64      `hcl:"max_row_bytes,optional"`
	RowAsObject        bool       `hcl:"row_as_object,optional"`
	Strict             bool       `hcl:"strict,optional"`
	ErrorLog           bool       `hcl:"error_log,optional"`
	Encoding           string     `hcl:"encoding,optional"`
}

// yamlFile is the YAML schema of a settings file.
type yamlFile struct {
	Delimiter          string `yaml:"delimiter"`
	AllowSpecialQuotes bool   `yaml:"allow_special_quotes"`
	Quote              string `yaml:"quote"`
	SkipComments       any    `yaml:"skip_comments"`
	SkipLines          int    `yaml:"skip_lines"`
	NoHeader           bool   `yaml:"no_header"`
	SkipEmptyLines     bool   `yaml:"skip_empty_lines"`
	ParseNumbers       bool   `yaml:"parse_numbers"`
	ParseBooleans      bool   `yaml:"parse_booleans"`
	LTrim              bool   `yaml:"ltrim"`
	RTrim              bool   `yaml:"rtrim"`
	Trim               bool   `yaml:"trim"`
	MaxRowBytes        int64  `yaml:"max_row_bytes"`
	RowAsObject        bool   `yaml:"row_as_object"`
	Strict             bool   `yaml:"strict"`
	ErrorLog           bool   `yaml:"error_log"`
	Encoding           string `yaml:"encoding"`
}

// Load reads the settings file at path, choosing the format by extension.
func Load(path string) (*File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return ParseHCL(src, path)
	case ".yaml", ".yml":
		return ParseYAML(src, path)
	default:
		return nil, fmt.Errorf("unsupported settings file extension %q", filepath.Ext(path))
	}
}

// ParseHCL decodes an HCL settings document. filename is used in
// diagnostics only.
func ParseHCL(src []byte, filename string) (*File, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var parsed hclFile
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	f := &File{
		Options: csvproc.Options{
			Delimiter:          parsed.Delimiter,
			AllowSpecialQuotes: parsed.AllowSpecialQuotes,
			Quote:              parsed.Quote,
			SkipLines:          parsed.SkipLines,
			NoHeader:           parsed.NoHeader,
			SkipEmptyLines:     parsed.SkipEmptyLines,
			ParseNumbers:       parsed.ParseNumbers,
			ParseBooleans:      parsed.ParseBooleans,
			LTrim:              parsed.LTrim,
			RTrim:              parsed.RTrim,
			Trim:               parsed.Trim,
			MaxRowBytes:        parsed.MaxRowBytes,
			RowAsObject:        parsed.RowAsObject,
			Strict:             parsed.Strict,
			ErrorLog:           parsed.ErrorLog,
		},
		Encoding: parsed.Encoding,
	}

	if parsed.SkipComments != nil {
		if diags := applyCtySkipComments(*parsed.SkipComments, &f.Options); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
		}
	}

	return f, nil
}

// applyCtySkipComments accepts skip_comments as a bool, or as a string naming
// the comment character.
func applyCtySkipComments(v cty.Value, o *csvproc.Options) hcl.Diagnostics {
	if v.IsNull() {
		return nil
	}
	if !v.IsKnown() {
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid skip_comments value",
			Detail:   "skip_comments must be a known value.",
		}}
	}

	switch {
	case v.Type().Equals(cty.Bool):
		o.SkipComments = v.True()
	case v.Type().Equals(cty.String):
		o.SkipComments = true
		o.CommentChar = v.AsString()
	default:
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid skip_comments value",
			Detail:   fmt.Sprintf("skip_comments must be a bool or a string, got %s.", v.Type().FriendlyName()),
		}}
	}
	return nil
}

// ParseYAML decodes a YAML settings document.
func ParseYAML(src []byte, filename string) (*File, error) {
	var parsed yamlFile
	if err := yaml.Unmarshal(src, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode YAML file %s: %w", filename, err)
	}

	f := &File{
		Options: csvproc.Options{
			Delimiter:          parsed.Delimiter,
			AllowSpecialQuotes: parsed.AllowSpecialQuotes,
			Quote:              parsed.Quote,
			SkipLines:          parsed.SkipLines,
			NoHeader:           parsed.NoHeader,
			SkipEmptyLines:     parsed.SkipEmptyLines,
			ParseNumbers:       parsed.ParseNumbers,
			ParseBooleans:      parsed.ParseBooleans,
			LTrim:              parsed.LTrim,
			RTrim:              parsed.RTrim,
			Trim:               parsed.Trim,
			MaxRowBytes:        parsed.MaxRowBytes,
			RowAsObject:        parsed.RowAsObject,
			Strict:             parsed.Strict,
			ErrorLog:           parsed.ErrorLog,
		},
		Encoding: parsed.Encoding,
	}

	switch v := parsed.SkipComments.(type) {
	case nil:
	case bool:
		f.Options.SkipComments = v
	case string:
		f.Options.SkipComments = true
		f.Options.CommentChar = v
	default:
		return nil, fmt.Errorf("failed to decode YAML file %s: skip_comments must be a bool or a string, got %T", filename, v)
	}

	return f, nil
}
