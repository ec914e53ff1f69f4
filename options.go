package csvproc

// DefaultMaxRowBytes is the default approximate row size limit, large enough
// to never trigger in practice.
const DefaultMaxRowBytes int64 = 8e16

const (
	defaultDelimiter   = ","
	defaultQuote       = `"`
	defaultCommentChar = "#"
)

// Options is the caller-facing configuration. Zero values select defaults;
// Resolve turns it into the Settings a decode pass actually uses.
type Options struct {
	// Delimiter separates cells. Default ",".
	Delimiter string
	// AllowSpecialQuotes re-merges cells wrapped in Quote that the delimiter
	// split apart. Does not apply to the header line.
	AllowSpecialQuotes bool
	// Quote is the quote marker used by AllowSpecialQuotes. Default `"`.
	Quote string
	// SkipComments drops lines whose first cell starts with CommentChar.
	SkipComments bool
	// CommentChar defaults to "#".
	CommentChar string
	// SkipLines is the number of leading lines to consume; the first of them
	// is the header. Zero consumes just the header line.
	SkipLines int
	// NoHeader consumes nothing and extracts no header. Ignored when
	// RowAsObject is set.
	NoHeader       bool
	SkipEmptyLines bool
	ParseNumbers   bool
	ParseBooleans  bool
	LTrim          bool // trim the start of the first cell
	RTrim          bool // trim the end of the last cell
	Trim           bool // trim every cell; implies LTrim and RTrim
	// MaxRowBytes bounds the approximate size of a row. Default
	// DefaultMaxRowBytes.
	MaxRowBytes int64
	// RowAsObject keys each row by the header. Implies Strict and at least
	// one skipped line.
	RowAsObject bool
	// Strict requires every row to have as many cells as the header.
	Strict bool
	// ErrorLog logs decode failures whether or not an error handler exists.
	ErrorLog bool
}

// Settings is the canonical, internally consistent configuration of a
// decode pass. It is only produced by Resolve and is never mutated while a
// pass is in flight; reconfiguring replaces it wholesale.
type Settings struct {
	Delimiter          string
	Quote              string
	AllowSpecialQuotes bool
	SkipComments       bool
	CommentChar        string
	SkipLines          int
	SkipEmptyLines     bool
	ParseNumbers       bool
	ParseBooleans      bool
	LTrim              bool
	RTrim              bool
	Trim               bool
	MaxRowBytes        int64
	RowAsObject        bool
	Strict             bool
	ErrorLog           bool
}

// Resolve normalizes o into Settings.
func Resolve(o Options) Settings {
	s := Settings{
		Delimiter:          o.Delimiter,
		Quote:              o.Quote,
		AllowSpecialQuotes: o.AllowSpecialQuotes,
		SkipComments:       o.SkipComments,
		CommentChar:        o.CommentChar,
		SkipLines:          o.SkipLines,
		SkipEmptyLines:     o.SkipEmptyLines,
		ParseNumbers:       o.ParseNumbers,
		ParseBooleans:      o.ParseBooleans,
		LTrim:              o.LTrim,
		RTrim:              o.RTrim,
		Trim:               o.Trim,
		MaxRowBytes:        o.MaxRowBytes,
		RowAsObject:        o.RowAsObject,
		Strict:             o.Strict,
		ErrorLog:           o.ErrorLog,
	}

	if s.Delimiter == "" {
		s.Delimiter = defaultDelimiter
	}
	if s.Quote == "" {
		s.Quote = defaultQuote
	}
	if s.CommentChar == "" {
		s.CommentChar = defaultCommentChar
	}
	if s.MaxRowBytes <= 0 {
		s.MaxRowBytes = DefaultMaxRowBytes
	}
	if s.SkipLines < 0 {
		s.SkipLines = 0
	}

	switch {
	case s.RowAsObject:
		s.Strict = true
		if s.SkipLines < 1 {
			s.SkipLines = 1
		}
	case o.NoHeader:
		s.SkipLines = 0
	case s.SkipLines == 0:
		s.SkipLines = 1
	}

	if s.Trim {
		s.LTrim = true
		s.RTrim = true
	}

	return s
}

// HasHeader reports whether a header line is extracted.
func (s Settings) HasHeader() bool {
	return s.SkipLines > 0
}

// AnnounceHeader reports whether the header is pushed as a header event.
// Object mode never announces it, and neither does a multi-line skip region.
func (s Settings) AnnounceHeader() bool {
	return !s.RowAsObject && s.SkipLines == 1
}
