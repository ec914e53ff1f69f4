package csvproc

import (
	"strings"
)

// quoteState is the state of the special quotes resolver between tokens.
type quoteState int

const (
	quoteOutside quoteState = 0 // default
	quoteInside  quoteState = 1
)

// resolveQuotes re-merges delimiter-split tokens whose cell was wrapped in
// quote markers. Tokens inside a span are joined back with the delimiter that
// split them. A span still open when the tokens run out is kept as
// accumulated.
//
// This works on already split tokens, so it is a heuristic and not a quoted
// field grammar: escaped quotes and quoted line breaks are not understood.
func resolveQuotes(tokens []string, quote, delimiter string) []string {
	if quote == "" {
		return tokens
	}

	var (
		state  quoteState
		merged strings.Builder
	)
	cells := make([]string, 0, len(tokens))

	for _, token := range tokens {
		switch state {
		case quoteOutside:
			if opensSpan(token, quote) {
				merged.Reset()
				merged.WriteString(token[len(quote):])
				state = quoteInside
				continue
			}
			cells = append(cells, token)
		case quoteInside:
			merged.WriteString(delimiter)
			if strings.HasSuffix(token, quote) {
				merged.WriteString(token[:len(token)-len(quote)])
				cells = append(cells, merged.String())
				state = quoteOutside
				continue
			}
			merged.WriteString(token)
		}
	}

	if state == quoteInside {
		cells = append(cells, merged.String())
	}

	return cells
}

// opensSpan reports whether token starts a quoted span: it starts with the
// quote marker but does not also end with it. A token that is wrapped on both
// sides is a complete cell and passes through unchanged.
func opensSpan(token, quote string) bool {
	return strings.HasPrefix(token, quote) && !strings.HasSuffix(token, quote)
}
