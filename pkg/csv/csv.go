// Package csv implements a streaming, configurable reader for CSV and other
// delimited text.
//
// The reader pulls characters from its source through a growable buffer and
// splits them into records with a state machine that handles custom
// delimiter, quote, escape and comment characters, line breaks inside quoted
// fields, mixed line terminators and ragged rows. Records are read one at a
// time; nothing but the current record is kept unless a CachedReader is used.
//
// # Thread Safety
//
// A Reader, CachedReader or Scanner must be used by one goroutine at a time.
// The package level functions create their own reader on each call and are
// safe for concurrent use by multiple goroutines.
//
//	// Safe: Concurrent parsing
//	go func() { csv.Parse(input1) }()
//	go func() { csv.Parse(input2) }()
//
// # Reading APIs
//
//   - Reader - forward-only access to the current record
//   - CachedReader - random access to every record read so far
//   - Scanner - bufio.Scanner style loop over Records
//   - Parse, ParseReader - the whole input as a Shape AST
//   - ReadDocument - the whole input as a Document
//
// # Example usage with Reader:
//
//	opts := csv.DefaultOptions()
//	opts.HasHeaders = true
//	r, err := csv.NewReader(file, opts)
//	if err != nil {
//	    // handle error
//	}
//	defer r.Close()
//	for rec, err := range r.Records() {
//	    if err != nil {
//	        // handle error
//	    }
//	    name, _ := rec.GetByName("name")
//	    fmt.Println(name)
//	}
//
// # Example usage with Parse:
//
//	node, err := csv.Parse("name,age\nAlice,30\nBob,25")
//	if err != nil {
//	    // handle error
//	}
//	// node is now a *ast.ArrayDataNode representing the CSV data
package csv

import (
	"io"
	"strings"

	"github.com/shapestone/shape-core/pkg/ast"
)

// Parse parses CSV format into an AST from a string, with DefaultOptions.
//
// Returns an ast.ArrayDataNode representing the parsed CSV:
//   - *ast.ArrayDataNode for the file (array of records)
//   - Each record is an *ast.ArrayDataNode of fields
//   - Each field is an *ast.LiteralNode containing a string value
//
// Example:
//
//	node, err := csv.Parse("name,age\nAlice,30\nBob,25")
//	arrayNode := node.(*ast.ArrayDataNode)
//	records := arrayNode.Elements()
//	// records[0] is the header row
//	// records[1] is the first data row
func Parse(input string) (ast.SchemaNode, error) {
	return ParseReaderWithOptions(strings.NewReader(input), DefaultOptions())
}

// ParseWithOptions parses CSV format into an AST from a string with custom
// options.
//
// Example:
//
//	opts := csv.DefaultOptions()
//	opts.Delimiter = '\t'  // Tab-separated
//	node, err := csv.ParseWithOptions("name\tage\nAlice\t30", opts)
func ParseWithOptions(input string, opts Options) (ast.SchemaNode, error) {
	return ParseReaderWithOptions(strings.NewReader(input), opts)
}

// ParseReader parses CSV format into an AST from an io.Reader, with
// DefaultOptions. The input is read incrementally but the resulting AST
// holds every record.
func ParseReader(reader io.Reader) (ast.SchemaNode, error) {
	return ParseReaderWithOptions(reader, DefaultOptions())
}

// ParseReaderWithOptions parses CSV format into an AST from an io.Reader with
// custom options. With opts.HasHeaders the resolved header row is the first
// element.
func ParseReaderWithOptions(reader io.Reader, opts Options) (ast.SchemaNode, error) {
	opts.LeaveOpen = true
	r, err := NewCachedReader(reader, opts)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.ToAST()
}

// Format returns the format identifier for this parser.
// Returns "CSV" to identify this as the CSV data format parser.
func Format() string {
	return "CSV"
}

// Validate checks if the input string is valid CSV under DefaultOptions.
//
// Returns nil if the input is valid CSV.
// Returns an error with details about why the CSV is invalid.
//
//	if err := csv.Validate(input); err != nil {
//	    // Invalid CSV
//	    fmt.Println("Invalid CSV:", err)
//	}
func Validate(input string) error {
	return ValidateReaderWithOptions(strings.NewReader(input), DefaultOptions())
}

// ValidateReader checks if the input from an io.Reader is valid CSV under
// DefaultOptions. Records are checked as they are read and not retained.
func ValidateReader(reader io.Reader) error {
	return ValidateReaderWithOptions(reader, DefaultOptions())
}

// ValidateReaderWithOptions checks the input from an io.Reader with custom
// options.
func ValidateReaderWithOptions(reader io.Reader, opts Options) error {
	opts.LeaveOpen = true
	r, err := NewReader(reader, opts)
	if err != nil {
		return err
	}
	defer r.Close()
	for {
		ok, err := r.ReadNextRecord()
		if err != nil || !ok {
			return err
		}
	}
}
