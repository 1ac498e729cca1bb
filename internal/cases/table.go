// Package cases handles the tabular case data: loading and writing CSV
// tables, preparing the enrichment input from a raw decisions export,
// and selecting pending work.
package cases

import (
	"encoding/csv"
	"fmt"
	"os"
)

// Column names shared across the pipeline. All other columns are opaque
// passthrough data carried along unchanged.
const (
	ColCourt      = "soud"
	ColCaseNumber = "jednaciCislo"
	ColLookupURL  = "infosoud_url"
)

// Table is an in-memory CSV table: an ordered header plus rows of
// strings. Every field stays text end to end so a reload never coerces
// values lossily.
type Table struct {
	header []string
	index  map[string]int
	rows   [][]string
}

// NewTable creates an empty table with the given header.
func NewTable(header []string) *Table {
	t := &Table{header: append([]string(nil), header...)}
	t.reindex()
	return t
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.header))
	for i, col := range t.header {
		t.index[col] = i
	}
}

// Load reads a CSV file into a Table. The first record is the header.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("reading %s: empty file, expected a header row", path)
	}

	t := NewTable(records[0])
	t.rows = records[1:]
	return t, nil
}

// Write writes the table as CSV to path.
func (t *Table) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, row := range t.rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return nil
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Header returns the column names in order.
func (t *Table) Header() []string {
	return t.header
}

// HasColumn reports whether a column exists.
func (t *Table) HasColumn(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Row returns the i-th data row.
func (t *Table) Row(i int) []string {
	return t.rows[i]
}

// Append adds a data row. The row must match the header length.
func (t *Table) Append(row []string) {
	t.rows = append(t.rows, row)
}

// Value returns the value of column col in row i, or "" when the column
// does not exist or the row is short.
func (t *Table) Value(i int, col string) string {
	j, ok := t.index[col]
	if !ok || j >= len(t.rows[i]) {
		return ""
	}
	return t.rows[i][j]
}

// URLSet returns the set of non-empty lookup URLs in the table.
func (t *Table) URLSet() map[string]struct{} {
	set := make(map[string]struct{}, len(t.rows))
	for i := range t.rows {
		if u := t.Value(i, ColLookupURL); u != "" {
			set[u] = struct{}{}
		}
	}
	return set
}

// Pending returns the indices of the first limit rows whose lookup URL
// is not in done, preserving table order. Rows with an empty lookup URL
// can never be marked done, so they are skipped rather than selected
// forever.
func (t *Table) Pending(done map[string]struct{}, limit int) []int {
	var idx []int
	for i := range t.rows {
		if len(idx) >= limit {
			break
		}
		u := t.Value(i, ColLookupURL)
		if u == "" {
			continue
		}
		if _, ok := done[u]; ok {
			continue
		}
		idx = append(idx, i)
	}
	return idx
}
