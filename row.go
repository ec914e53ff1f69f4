package csvproc

// Row is one decoded line. In positional mode Cells holds the values in
// column order; in object mode Fields maps header names to values and Cells
// is nil.
type Row struct {
	Line   int // 1-based input line the row was read from
	Cells  []Cell
	Fields map[string]Cell
}

// IsObject reports whether the row was materialized in object mode.
func (r Row) IsObject() bool {
	return r.Fields != nil
}

// Values returns the positional cell values as plain Go values.
func (r Row) Values() []any {
	values := make([]any, len(r.Cells))
	for i, c := range r.Cells {
		values[i] = c.Value()
	}
	return values
}

// Map returns the object mode fields as plain Go values.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.Fields))
	for k, c := range r.Fields {
		m[k] = c.Value()
	}
	return m
}

// Strings returns the cells formatted back to text.
func (r Row) Strings() []string {
	out := make([]string, len(r.Cells))
	for i, c := range r.Cells {
		out[i] = c.String()
	}
	return out
}

// materialize builds the emitted row. In object mode header[k] maps to
// cells[k]; cells beyond the header are dropped and missing cells are absent.
func materialize(cells []Cell, header Header, num int, asObject bool) Row {
	if !asObject {
		return Row{Line: num, Cells: cells}
	}

	fields := make(map[string]Cell, len(header))
	for k, name := range header {
		if k >= len(cells) {
			break
		}
		fields[name] = cells[k]
	}
	return Row{Line: num, Fields: fields}
}
