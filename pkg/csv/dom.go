// Package csv provides an in-memory Document API for CSV data.
//
// # Document Type
//
// Document represents a CSV file with optional headers and data records:
//
//	doc := csv.NewDocument().
//		SetHeaders([]string{"name", "age"}).
//		AddRecord([]string{"Alice", "30"}).
//		AddRecord([]string{"Bob", "25"})
//
// # Record Type
//
// Record represents a single row in a CSV file with typed access:
//
//	record, _ := doc.GetRecord(0)
//	name, _ := record.Get(0)           // Get by index
//	age, _ := record.GetByName("age")  // Get by header name
//
// # Reading
//
// ReadDocument loads a whole source into memory:
//
//	opts := csv.DefaultOptions()
//	opts.HasHeaders = true
//	doc, err := csv.ReadDocument(file, opts)
package csv

import (
	"io"
	"strings"

	"github.com/shapestone/shape-core/pkg/ast"
)

// Document represents a CSV file with a fluent API for manipulation.
// All setter methods return *Document to enable method chaining.
//
// A Document consists of:
//   - Optional headers (first row that names the columns)
//   - Data records (remaining rows)
type Document struct {
	headers []string
	records [][]string
}

// NewDocument creates a new empty Document.
func NewDocument() *Document {
	return &Document{
		headers: []string{},
		records: make([][]string, 0),
	}
}

// ReadDocument reads every record of src into a Document. With
// opts.HasHeaders the resolved header names become the document headers.
// Overrides and the missing field action apply as for Reader.Record.
func ReadDocument(src io.Reader, opts Options) (*Document, error) {
	r, err := NewReader(src, opts)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	doc := NewDocument().SetHeaders(r.Headers())
	for rec, err := range r.Records() {
		if err != nil {
			return nil, err
		}
		doc.AddRecord(rec.fields)
	}
	return doc, nil
}

// ParseDocument parses a CSV string into a Document with DefaultOptions.
// All rows are treated as data records.
//
// Example:
//
//	doc, err := csv.ParseDocument("name,age\nAlice,30\nBob,25")
//	if err != nil {
//	    // handle error
//	}
//	fmt.Println(doc.RecordCount()) // 3
func ParseDocument(input string) (*Document, error) {
	opts := DefaultOptions()
	opts.MissingFieldAction = ReplaceByEmpty
	return ReadDocument(strings.NewReader(input), opts)
}

// SetHeaders sets the column headers for this CSV document.
// Headers are used by Record.GetByName() to access fields by name.
// Returns the Document for method chaining.
func (d *Document) SetHeaders(headers []string) *Document {
	d.headers = headers
	return d
}

// AddRecord adds a data record (row) to the document.
// Returns the Document for method chaining.
func (d *Document) AddRecord(fields []string) *Document {
	d.records = append(d.records, fields)
	return d
}

// Headers returns the column headers.
// Returns an empty slice if no headers have been set.
func (d *Document) Headers() []string {
	return d.headers
}

// Records returns all data records as Record objects.
func (d *Document) Records() []Record {
	records := make([]Record, len(d.records))
	for i := range d.records {
		records[i], _ = d.GetRecord(i)
	}
	return records
}

// RecordCount returns the number of data records in the document.
// This does not include the header row.
func (d *Document) RecordCount() int {
	return len(d.records)
}

// GetRecord returns the record at the specified index.
// Returns (Record, false) if the index is out of bounds.
// Index is 0-based (0 = first data record, not the header).
func (d *Document) GetRecord(index int) (Record, bool) {
	if index < 0 || index >= len(d.records) {
		return Record{}, false
	}
	return Record{
		index:   int64(index),
		fields:  d.records[index],
		headers: d.headers,
	}, true
}

// ToAST converts the Document to an AST ArrayDataNode.
// The headers, if set, are the first row.
func (d *Document) ToAST() (*ast.ArrayDataNode, error) {
	rows := make([]ast.SchemaNode, 0, len(d.records)+1)
	if len(d.headers) > 0 {
		rows = append(rows, rowNode(d.headers, ast.ZeroPosition()))
	}
	for _, record := range d.records {
		rows = append(rows, rowNode(record, ast.ZeroPosition()))
	}
	return ast.NewArrayDataNode(rows, ast.ZeroPosition()), nil
}

// FromAST creates a Document from an AST ArrayDataNode.
// Every row becomes a data record; call SetHeaders to promote one.
func FromAST(node ast.SchemaNode) (*Document, error) {
	records, err := NodeToRecords(node)
	if err != nil {
		return nil, err
	}
	doc := NewDocument()
	for _, fields := range records {
		doc.AddRecord(fields)
	}
	return doc, nil
}
