package csvproc

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// floatGrammar accepts an optional sign, integer and/or fractional digits and
// an optional exponent, or a (signed) Infinity / NaN literal. Matching is
// case-sensitive.
var floatGrammar = regexp.MustCompile(`^[-+]?(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)(?:[eE][-+]?[0-9]+)?$|^[-+]?(?:Infinity|NaN)$`)

// trimRow applies ltrim to the first cell, rtrim to the last cell and, when
// trim is set, a full trim to every cell.
func trimRow(cells []string, s Settings) {
	if len(cells) == 0 {
		return
	}
	if s.Trim {
		for i, c := range cells {
			cells[i] = strings.TrimSpace(c)
		}
		return
	}
	if s.LTrim {
		cells[0] = strings.TrimLeftFunc(cells[0], unicode.IsSpace)
	}
	if s.RTrim {
		last := len(cells) - 1
		cells[last] = strings.TrimRightFunc(cells[last], unicode.IsSpace)
	}
}

// coerceRow trims the raw cells and applies numeric then boolean coercion.
// Coercion is skipped for a row whose first cell is empty.
func coerceRow(raw []string, s Settings) []Cell {
	trimRow(raw, s)

	cells := make([]Cell, len(raw))
	for i, r := range raw {
		cells[i] = StringCell(r)
	}

	if len(raw) == 0 || raw[0] == "" {
		return cells
	}

	for i := range cells {
		if s.ParseNumbers {
			cells[i] = coerceNumber(cells[i])
		}
		if s.ParseBooleans {
			cells[i] = coerceBool(cells[i])
		}
	}

	return cells
}

// coerceNumber turns a string cell matching the float grammar into a float
// cell. Any other cell is returned unchanged.
func coerceNumber(c Cell) Cell {
	if c.Type != CellString || !floatGrammar.MatchString(c.Str) {
		return c
	}
	f, ok := parseFloat(c.Str)
	if !ok {
		return c
	}
	return FloatCell(f)
}

// coerceBool turns a string cell spelling true or false in any case into a
// bool cell. Any other cell is returned unchanged.
func coerceBool(c Cell) Cell {
	if c.Type != CellString {
		return c
	}
	switch strings.ToLower(c.Str) {
	case "true":
		return BoolCell(true)
	case "false":
		return BoolCell(false)
	default:
		return c
	}
}

func parseFloat(s string) (float64, bool) {
	body := strings.TrimLeft(s, "+-")
	switch body {
	case "Infinity":
		if strings.HasPrefix(s, "-") {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	case "NaN":
		return math.NaN(), true
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Out of range values still carry a usable ±Inf or 0.
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f, true
		}
		return 0, false
	}
	return f, true
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		return "NaN"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
