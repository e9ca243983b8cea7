package ncm

// Grid is a raw sheet: rows of text cells with blanks kept as "". Rows may be
// ragged; Cell treats anything past the end of a row as blank.
type Grid [][]string

// Width returns the length of the longest row.
func (g Grid) Width() int {
	w := 0
	for _, r := range g {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

// Cell returns the value at (row, col) or "" when out of range.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) || col < 0 || col >= len(g[row]) {
		return ""
	}
	return g[row][col]
}

// Row is one normalized record. Every canonical column is always present.
type Row [numColumns]string

// Get returns the value of column c.
func (r Row) Get(c Column) string {
	if !c.Valid() {
		return ""
	}
	return r[c]
}

// Table is an immutable set of normalized rows together with their
// comparison keys. Filtering and slicing produce new tables.
type Table struct {
	rows []Row
	keys []Row
}

// NewTable builds a table, precomputing the comparison key of every cell.
// The rows slice is copied.
func NewTable(rows []Row) *Table {
	t := &Table{
		rows: make([]Row, len(rows)),
		keys: make([]Row, len(rows)),
	}
	copy(t.rows, rows)
	for i := range t.rows {
		for c := range t.rows[i] {
			t.keys[i][c] = NormalizeForCompare(t.rows[i][c])
		}
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Row returns a copy of row i.
func (t *Table) Row(i int) Row {
	return t.rows[i]
}

// Rows returns a copy of every row.
func (t *Table) Rows() []Row {
	if t == nil {
		return nil
	}
	return append([]Row(nil), t.rows...)
}

// Slice returns rows [start, end), clamped to the table bounds.
func (t *Table) Slice(start, end int) *Table {
	n := t.Len()
	start = min(max(start, 0), n)
	end = min(max(end, start), n)
	return &Table{
		rows: append([]Row(nil), t.rows[start:end]...),
		keys: append([]Row(nil), t.keys[start:end]...),
	}
}

// filter keeps rows whose mask entry is true.
func (t *Table) filter(mask []bool) *Table {
	out := &Table{}
	for i, keep := range mask {
		if keep {
			out.rows = append(out.rows, t.rows[i])
			out.keys = append(out.keys, t.keys[i])
		}
	}
	return out
}

// key returns the comparison key of cell (i, c).
func (t *Table) key(i int, c Column) string {
	return t.keys[i][c]
}
