package csvproc

import (
	"strings"
)

// Header is the ordered sequence of unquoted column names.
type Header []string

// rawLine is one input line before delimiter splitting.
type rawLine struct {
	text string
	num  int // 1-based position in the input
}

// splitLines splits text on "\r\n" or "\n", preserving empty lines.
func splitLines(text string) []string {
	lines := make([]string, 0, strings.Count(text, "\n")+1)
	for {
		line, rest, found := strings.Cut(text, "\n")
		if !found {
			return append(lines, text)
		}
		lines = append(lines, strings.TrimSuffix(line, "\r"))
		text = rest
	}
}

// consumeHeader takes the skip region off the front of lines. The first
// skipped line becomes the header, the others are discarded unread. The
// remaining lines are returned with their input line numbers, empty ones
// dropped when SkipEmptyLines is set.
func consumeHeader(lines []string, s Settings) (Header, []rawLine) {
	var header Header

	skip := min(s.SkipLines, len(lines))
	if skip > 0 {
		header = unquoteHeader(strings.Split(lines[0], s.Delimiter))
	}

	rest := make([]rawLine, 0, len(lines)-skip)
	for i := skip; i < len(lines); i++ {
		if s.SkipEmptyLines && lines[i] == "" {
			continue
		}
		rest = append(rest, rawLine{text: lines[i], num: i + 1})
	}

	return header, rest
}

// unquoteHeader strips one matching pair of " or ' around each column, judged
// on the column's trimmed form. Columns without such a pair are left as split.
func unquoteHeader(columns []string) Header {
	for i, col := range columns {
		trimmed := strings.TrimSpace(col)
		if len(trimmed) < 2 {
			continue
		}
		first, last := trimmed[0], trimmed[len(trimmed)-1]
		if first == last && (first == '"' || first == '\'') {
			columns[i] = trimmed[1 : len(trimmed)-1]
		}
	}
	return Header(columns)
}
