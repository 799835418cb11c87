package csv

import "fmt"

// Column describes one column of a reader.
type Column struct {
	Index int
	Name  string
	// Override replaces the parsed value of the column when HasOverride is
	// set.
	Override    string
	HasOverride bool
}

// Columns returns the columns of the reader in index order.
func (e *engine) Columns() []Column {
	e.begin()
	cols := make([]Column, e.fieldCount)
	for i := range cols {
		ov, ok := e.overrides[i]
		cols[i] = Column{Index: i, Name: e.names[i], Override: ov, HasOverride: ok}
	}
	return cols
}

// SetOverride makes field access on column col return v for every record,
// whatever the input holds. The input field is still parsed and counted.
func (e *engine) SetOverride(col int, v string) error {
	if err := e.begin(); err != nil {
		return err
	}
	if col < 0 || col >= e.fieldCount {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrFieldIndex, col, e.fieldCount)
	}
	e.overrides[col] = v
	return nil
}

// ClearOverride removes the override of column col.
func (e *engine) ClearOverride(col int) {
	delete(e.overrides, col)
}
