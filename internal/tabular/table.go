// Package tabular implements a small in-memory table keyed by column name,
// the working representation for award CSV payloads between extraction and
// export.
package tabular

// Row maps column names to string cell values. Missing columns read as "".
type Row map[string]string

// Table is an ordered set of columns over a slice of rows. Methods return
// new Tables; the receiver is never mutated.
type Table struct {
	Columns []string
	Rows    []Row
}

// New builds an empty Table with the given column order.
func New(columns ...string) Table {
	return Table{Columns: append([]string(nil), columns...)}
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// IsEmpty reports whether the table has no rows.
func (t Table) IsEmpty() bool {
	return len(t.Rows) == 0
}

// HasColumn reports whether the named column exists.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Concat appends the rows of others to t. The resulting column order is the
// first-seen order across all inputs; cells absent from a source table read
// as "". Tables with no rows contribute columns only.
func Concat(tables ...Table) Table {
	var out Table
	seen := make(map[string]struct{})
	for _, t := range tables {
		for _, c := range t.Columns {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out.Columns = append(out.Columns, c)
		}
		for _, r := range t.Rows {
			out.Rows = append(out.Rows, cloneRow(r))
		}
	}
	return out
}

// Select returns a table restricted to the named columns, in the given
// order. Names not present in t are ignored; cell values are carried over
// only for the kept columns.
func (t Table) Select(columns ...string) Table {
	var kept []string
	for _, c := range columns {
		if t.HasColumn(c) {
			kept = append(kept, c)
		}
	}
	out := Table{Columns: kept}
	for _, r := range t.Rows {
		nr := make(Row, len(kept))
		for _, c := range kept {
			nr[c] = r[c]
		}
		out.Rows = append(out.Rows, nr)
	}
	return out
}

// Drop returns a table without the named columns.
func (t Table) Drop(columns ...string) Table {
	dropped := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		dropped[c] = struct{}{}
	}
	var kept []string
	for _, c := range t.Columns {
		if _, ok := dropped[c]; !ok {
			kept = append(kept, c)
		}
	}
	return t.Select(kept...)
}

// WithColumn returns a table where the named column holds derive(row) for
// every row. The column is appended to the order if new.
func (t Table) WithColumn(name string, derive func(Row) string) Table {
	out := Table{Columns: append([]string(nil), t.Columns...)}
	if !t.HasColumn(name) {
		out.Columns = append(out.Columns, name)
	}
	for _, r := range t.Rows {
		nr := cloneRow(r)
		nr[name] = derive(r)
		out.Rows = append(out.Rows, nr)
	}
	return out
}

// Filter returns a table holding only rows for which keep returns true.
func (t Table) Filter(keep func(Row) bool) Table {
	out := Table{Columns: append([]string(nil), t.Columns...)}
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, cloneRow(r))
		}
	}
	return out
}

func cloneRow(r Row) Row {
	nr := make(Row, len(r))
	for k, v := range r {
		nr[k] = v
	}
	return nr
}
