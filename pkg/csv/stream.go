package csv

import (
	"io"
)

// Scanner provides a streaming interface for reading CSV records one at a time.
// It is backed by a Reader, so only the current record is held in memory.
//
// Example usage:
//
//	file, _ := os.Open("data.csv")
//	defer file.Close()
//
//	scanner := csv.NewScanner(file).SetHasHeaders(true)
//	for scanner.Scan() {
//	    record := scanner.Record()
//	    name, _ := record.GetByName("name")
//	    fmt.Println(name)
//	}
//	if err := scanner.Err(); err != nil {
//	    // handle error
//	}
type Scanner struct {
	src     io.Reader
	opts    Options
	reader  *Reader
	record  Record
	err     error
	started bool
	done    bool
}

// NewScanner creates a new Scanner that reads CSV from the given io.Reader
// with DefaultOptions, except that fields missing from short records read
// as empty. By default, the scanner assumes no headers. Use
// SetHasHeaders(true) to treat the first row as headers.
func NewScanner(src io.Reader) *Scanner {
	opts := DefaultOptions()
	opts.MissingFieldAction = ReplaceByEmpty
	return &Scanner{
		src:  src,
		opts: opts,
	}
}

// SetHasHeaders sets whether the first row should be treated as headers.
// It has no effect once scanning has started.
// Returns the Scanner for method chaining.
func (s *Scanner) SetHasHeaders(hasHeaders bool) *Scanner {
	s.opts.HasHeaders = hasHeaders
	return s
}

// SetOptions replaces the options the scanner reads with. It has no effect
// once scanning has started.
// Returns the Scanner for method chaining.
func (s *Scanner) SetOptions(opts Options) *Scanner {
	s.opts = opts
	return s
}

// Scan advances the scanner to the next record.
// It returns false when there are no more records or an error occurs.
// After Scan returns false, the Err method will return any error that occurred.
func (s *Scanner) Scan() bool {
	if s.done {
		return false
	}
	if !s.started {
		s.started = true
		s.reader, s.err = NewReader(s.src, s.opts)
		if s.err != nil {
			s.done = true
			return false
		}
	}

	ok, err := s.reader.ReadNextRecord()
	if err == nil && ok {
		s.record, err = s.reader.Record()
	}
	if err != nil || !ok {
		s.err = err
		s.done = true
		s.record = Record{}
		return false
	}
	return true
}

// Record returns the current record.
// This should only be called after Scan() returns true.
func (s *Scanner) Record() Record {
	return s.record
}

// Err returns the error, if any, that was encountered during scanning.
// It returns nil if no error occurred or at EOF.
func (s *Scanner) Err() error {
	return s.err
}

// Headers returns the column headers if SetHasHeaders(true) was called.
// Returns an empty slice if no headers were set.
// This is available after the first call to Scan().
func (s *Scanner) Headers() []string {
	if s.reader == nil {
		return []string{}
	}
	return s.reader.Headers()
}
