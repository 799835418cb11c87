// Package header resolves the names of a header record into a column table.
package header

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrDuplicateHeader is matched by every *DuplicateHeaderError.
var ErrDuplicateHeader = errors.New("duplicate header name")

// DuplicateHeaderError reports a header name that resolves to the name of an
// earlier column.
type DuplicateHeaderError struct {
	Name  string
	Index int // zero-based column index of the second occurrence
}

func (e *DuplicateHeaderError) Error() string {
	return fmt.Sprintf("csv: duplicate header %q at column %d", e.Name, e.Index)
}

// Is reports whether target is ErrDuplicateHeader.
func (e *DuplicateHeaderError) Is(target error) bool {
	return target == ErrDuplicateHeader
}

// Resolver is consulted when a header name collides with an earlier column.
// It gets the colliding name and the column index and returns the name to
// use instead.
type Resolver func(name string, index int) string

// Table maps resolved header names to column indexes.
type Table struct {
	names []string
	index map[string]int
}

// Resolve builds the table for raw. Blank names become defaultName followed
// by the column index.
func Resolve(raw []string, defaultName string, resolve Resolver) (*Table, error) {
	t := &Table{
		names: make([]string, len(raw)),
		index: make(map[string]int, len(raw)),
	}
	for i, name := range raw {
		if isBlank(name) {
			name = Default(defaultName, i)
		}
		if _, dup := t.index[name]; dup {
			if resolve == nil {
				return nil, &DuplicateHeaderError{Name: name, Index: i}
			}
			renamed := resolve(name, i)
			if _, dup := t.index[renamed]; dup {
				return nil, &DuplicateHeaderError{Name: name, Index: i}
			}
			name = renamed
		}
		t.names[i] = name
		t.index[name] = i
	}
	return t, nil
}

// Default returns the generated name of column i.
func Default(defaultName string, i int) string {
	return defaultName + strconv.Itoa(i)
}

// Len returns the number of columns.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}

// Names returns a copy of the resolved names in column order.
func (t *Table) Names() []string {
	if t == nil {
		return []string{}
	}
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Name returns the name of column i.
func (t *Table) Name(i int) string {
	return t.names[i]
}

// Index looks name up exactly, case included.
func (t *Table) Index(name string) (int, bool) {
	if t == nil {
		return -1, false
	}
	i, ok := t.index[name]
	if !ok {
		return -1, false
	}
	return i, true
}

func isBlank(s string) bool {
	return strings.TrimFunc(s, unicode.IsSpace) == ""
}
