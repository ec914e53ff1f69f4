package csvproc

import (
	"strconv"
)

// CellType records which coercion, if any, produced a Cell.
type CellType int

const (
	CellString CellType = 0 // default, no coercion applied
	CellFloat  CellType = 1
	CellBool   CellType = 2
)

func (t CellType) String() string {
	switch t {
	case CellString:
		return "string"
	case CellFloat:
		return "float"
	case CellBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Cell is one decoded column value within a row.
type Cell struct {
	Type  CellType
	Str   string
	Float float64
	Bool  bool
}

// StringCell returns an uncoerced Cell holding s.
func StringCell(s string) Cell { return Cell{Type: CellString, Str: s} }

// FloatCell returns a Cell produced by numeric coercion.
func FloatCell(f float64) Cell { return Cell{Type: CellFloat, Float: f} }

// BoolCell returns a Cell produced by boolean coercion.
func BoolCell(b bool) Cell { return Cell{Type: CellBool, Bool: b} }

// Value returns the cell as a string, float64 or bool.
func (c Cell) Value() any {
	switch c.Type {
	case CellFloat:
		return c.Float
	case CellBool:
		return c.Bool
	default:
		return c.Str
	}
}

// String formats the cell back to text. Floats use the shortest
// representation that round-trips, with Infinity and NaN spelled the way the
// numeric grammar accepts them.
func (c Cell) String() string {
	switch c.Type {
	case CellFloat:
		return formatFloat(c.Float)
	case CellBool:
		return strconv.FormatBool(c.Bool)
	default:
		return c.Str
	}
}

// State is the state of the streaming controller.
type State int

const (
	StateIdle     State = 0 // default, process not yet invoked
	StateRunning  State = 1
	StatePaused   State = 2
	StateFinished State = 3 // last line processed, finish emitted
	StateEnded    State = 4 // end requested, notifications suppressed
	StateAborted  State = 5 // pass terminated by a decode error
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateFinished:
		return "finished"
	case StateEnded:
		return "ended"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// ErrorKind classifies a DecodeError.
type ErrorKind int

const (
	EmptyInput        ErrorKind = 1
	RowLengthMismatch ErrorKind = 2
	RowTooLarge       ErrorKind = 3
	UnreadableSource  ErrorKind = 4
)

func (k ErrorKind) String() string {
	switch k {
	case EmptyInput:
		return "empty_input"
	case RowLengthMismatch:
		return "row_length_mismatch"
	case RowTooLarge:
		return "row_too_large"
	case UnreadableSource:
		return "unreadable_source"
	default:
		return "unknown"
	}
}
