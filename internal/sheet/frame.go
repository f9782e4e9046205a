package sheet

// Frame is a header-indexed table of string cells. Every row has exactly
// len(Columns) cells.
type Frame struct {
	Columns []string
	Rows    [][]string

	index map[string]int
}

// NewFrame builds a Frame, padding or truncating rows to the column count.
func NewFrame(columns []string, rows [][]string) *Frame {
	f := &Frame{
		Columns: columns,
		Rows:    make([][]string, 0, len(rows)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if _, dup := f.index[c]; !dup {
			f.index[c] = i
		}
	}
	for _, r := range rows {
		row := make([]string, len(columns))
		copy(row, r)
		f.Rows = append(f.Rows, row)
	}
	return f
}

// Len returns the number of data rows.
func (f *Frame) Len() int {
	return len(f.Rows)
}

// Has reports whether the frame has the named column.
func (f *Frame) Has(col string) bool {
	_, ok := f.index[col]
	return ok
}

// Get returns the cell of row i in the named column, or "" when the column
// does not exist.
func (f *Frame) Get(i int, col string) string {
	j, ok := f.index[col]
	if !ok {
		return ""
	}
	return f.Rows[i][j]
}

// Column returns a copy of every cell in the named column.
func (f *Frame) Column(col string) []string {
	out := make([]string, f.Len())
	for i := range f.Rows {
		out[i] = f.Get(i, col)
	}
	return out
}
