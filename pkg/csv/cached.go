package csv

import (
	"fmt"
	"io"
	"iter"

	"github.com/shapestone/shape-core/pkg/ast"
	"golang.org/x/text/encoding"
)

// CachedReader is a Reader that retains every record it reads, so that
// records can be revisited by index. Records not read yet are pulled from the
// source on demand; the source is never rewound.
//
// Example:
//
//	r, _ := csv.NewCachedReader(file, opts)
//	r.MoveTo(10)   // reads records 0..10
//	r.MoveTo(2)    // served from the cache
//	v, _ := r.Field(0)
//
// A CachedReader is not safe for concurrent use.
type CachedReader struct {
	*engine
	cache []*parsed
}

// NewCachedReader creates a CachedReader over src. See NewReader.
func NewCachedReader(src io.Reader, opts Options) (*CachedReader, error) {
	e, err := newEngine(src, opts, false, nil)
	if err != nil {
		return nil, err
	}
	return &CachedReader{engine: e}, nil
}

// NewCachedReaderWithEncoding creates a CachedReader over src decoded from
// enc. See NewReaderWithEncoding.
func NewCachedReaderWithEncoding(src io.Reader, enc encoding.Encoding, opts Options) (*CachedReader, error) {
	e, err := newEngine(src, opts, true, enc)
	if err != nil {
		return nil, err
	}
	return &CachedReader{engine: e}, nil
}

// RecordCount returns the number of records cached so far.
func (c *CachedReader) RecordCount() int64 {
	return int64(len(c.cache))
}

// ReadNextRecord moves to the record after the current one. At the end of the
// source it returns false and leaves no current record; the index of the
// last record is kept.
func (c *CachedReader) ReadNextRecord() (bool, error) {
	ok, err := c.MoveTo(c.curIndex + 1)
	if !ok {
		c.cur = nil
	}
	return ok, err
}

// MoveTo makes the record at index current. Cached records are served
// without reading; later records are read and cached up to index. It returns
// false, leaving the cursor unchanged, when the source ends first. -1 moves
// before the first record; other negative indexes return false.
func (c *CachedReader) MoveTo(index int64) (bool, error) {
	if c.closed {
		return false, ErrClosed
	}
	if index == -1 {
		c.cur = nil
		c.curIndex = -1
		return true, nil
	}
	if index < 0 {
		return false, nil
	}
	for int64(len(c.cache)) <= index {
		ok, err := c.fetch()
		if err != nil || !ok {
			return false, err
		}
	}
	c.setCurrent(c.cache[index])
	return true, nil
}

// fetch reads one record into the cache.
func (c *CachedReader) fetch() (bool, error) {
	rec, err := c.read()
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	c.cache = append(c.cache, rec)
	return true, nil
}

// FieldAt returns field of the record at index record.
func (c *CachedReader) FieldAt(record int64, field int) (string, error) {
	ok, err := c.MoveTo(record)
	if err != nil {
		return "", err
	}
	if !ok || record < 0 {
		return "", fmt.Errorf("%w: record %d", ErrNoCurrentRecord, record)
	}
	return c.Field(field)
}

// ReadAll reads the rest of the source into the cache without moving the
// cursor.
func (c *CachedReader) ReadAll() error {
	if c.closed {
		return ErrClosed
	}
	for {
		ok, err := c.fetch()
		if err != nil || !ok {
			return err
		}
	}
}

// Records returns an iterator over the records after the current one, cached
// or not. See Reader.Records.
func (c *CachedReader) Records() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for {
			ok, err := c.ReadNextRecord()
			if err != nil {
				yield(Record{}, err)
				return
			}
			if !ok {
				return
			}
			if !yield(c.Record()) {
				return
			}
		}
	}
}

// ToAST reads the rest of the source and returns every record as an
// *ast.ArrayDataNode of *ast.ArrayDataNode of *ast.LiteralNode. The header
// row, when present, comes first. Record nodes carry the position where the
// record starts. Overrides are applied; missing fields are omitted.
func (c *CachedReader) ToAST() (*ast.ArrayDataNode, error) {
	if err := c.ReadAll(); err != nil {
		return nil, err
	}
	rows := make([]ast.SchemaNode, 0, len(c.cache)+1)
	if c.opts.HasHeaders && c.fieldCount > 0 {
		rows = append(rows, rowNode(c.headers, ast.NewPosition(0, 1, 1)))
	}
	for _, rec := range c.cache {
		fields := make([]string, len(rec.fields))
		for i, f := range rec.fields {
			if ov, ok := c.overrides[i]; ok {
				f = ov
			}
			fields[i] = f
		}
		rows = append(rows, rowNode(fields, astPosition(rec.pos)))
	}
	return ast.NewArrayDataNode(rows, ast.NewPosition(0, 1, 1)), nil
}

func rowNode(fields []string, pos ast.Position) *ast.ArrayDataNode {
	nodes := make([]ast.SchemaNode, len(fields))
	for i, f := range fields {
		nodes[i] = ast.NewLiteralNode(f, pos)
	}
	return ast.NewArrayDataNode(nodes, pos)
}

func astPosition(p Position) ast.Position {
	return ast.NewPosition(int(p.Offset), p.Line, p.Column)
}
