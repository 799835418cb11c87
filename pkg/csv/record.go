package csv

// Record represents a single row of CSV data.
// It provides type-safe access to field values by index or by header name.
// A Record owns its fields: records returned by a reader never share storage
// with each other or with the reader.
type Record struct {
	index   int64
	fields  []string
	nulls   []bool   // nil when no field is null
	headers []string // shared, read-only
	pos     Position
}

// NewRecord creates a Record from fields, with names used by GetByName.
func NewRecord(fields []string, headers []string) Record {
	return Record{fields: fields, headers: headers}
}

// Index returns the zero-based index of the record in its stream.
func (r Record) Index() int64 {
	return r.index
}

// Position returns where the record starts in the input.
func (r Record) Position() Position {
	return r.pos
}

// Get gets the field value at the specified index.
// Returns (value, false) if the index is out of bounds.
// Index is 0-based.
func (r Record) Get(index int) (string, bool) {
	if index < 0 || index >= len(r.fields) {
		return "", false
	}
	return r.fields[index], true
}

// GetByName gets the field value by header name.
// Returns (value, false) if the header name is not found or if no headers are set.
func (r Record) GetByName(name string) (string, bool) {
	for i, h := range r.headers {
		if h == name {
			return r.Get(i)
		}
	}
	return "", false
}

// IsNull reports whether the field at index was missing from the input and
// replaced by null.
func (r Record) IsNull(index int) bool {
	return index >= 0 && index < len(r.nulls) && r.nulls[index]
}

// Fields returns all field values in the record.
// This returns a copy of the fields slice.
func (r Record) Fields() []string {
	fields := make([]string, len(r.fields))
	copy(fields, r.fields)
	return fields
}

// Headers returns a copy of the header names the record was read with.
func (r Record) Headers() []string {
	headers := make([]string, len(r.headers))
	copy(headers, r.headers)
	return headers
}

// Len returns the number of fields in the record.
func (r Record) Len() int {
	return len(r.fields)
}
