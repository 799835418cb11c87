// Package csv provides CSV dialect detection.
package csv

import (
	"strings"
)

// candidateDelimiters are scored in this order; the first best score wins.
var candidateDelimiters = []rune{',', '\t', ';', '|'}

// Sniffer detects the delimiter of a CSV sample.
type Sniffer struct {
	sample    string
	quote     rune
	comment   rune
	delimiter rune
	analyzed  bool
}

// NewSniffer creates a new Sniffer with a sample of CSV data.
// For best results, provide at least 2-3 lines of data.
func NewSniffer(sample string) *Sniffer {
	return &Sniffer{
		sample:  sample,
		quote:   '"',
		comment: '#',
	}
}

// SetQuote sets the quote character whose sections are ignored while
// counting. 0 counts everything.
// Returns the Sniffer for method chaining.
func (s *Sniffer) SetQuote(quote rune) *Sniffer {
	s.quote = quote
	s.analyzed = false
	return s
}

// SetComment sets the character that starts a comment line. Comment lines
// are not counted. 0 counts every line.
// Returns the Sniffer for method chaining.
func (s *Sniffer) SetComment(comment rune) *Sniffer {
	s.comment = comment
	s.analyzed = false
	return s
}

// DetectDelimiter returns the detected field delimiter.
// Common delimiters checked: comma, tab, semicolon, pipe. A delimiter found
// the same number of times on every line scores ten times its count.
func (s *Sniffer) DetectDelimiter() rune {
	if !s.analyzed {
		s.delimiter = s.detectDelimiter()
		s.analyzed = true
	}
	return s.delimiter
}

// Apply returns opts with the detected delimiter.
func (s *Sniffer) Apply(opts Options) Options {
	opts.Delimiter = s.DetectDelimiter()
	return opts
}

func (s *Sniffer) detectDelimiter() rune {
	lines := sampleLines(s.sample, s.comment)
	if len(lines) == 0 {
		return ','
	}

	best := ','
	bestScore := 0
	for _, delim := range candidateDelimiters {
		counts := make([]int, len(lines))
		for i, line := range lines {
			counts[i] = countDelimiter(line, delim, s.quote)
		}
		if counts[0] == 0 {
			continue
		}

		score := counts[0]
		consistent := true
		for _, c := range counts[1:] {
			if c != counts[0] {
				consistent = false
				break
			}
		}
		if consistent {
			score *= 10
		}
		if score > bestScore {
			best, bestScore = delim, score
		}
	}
	return best
}

// sampleLines splits the sample on any line terminator and drops blank and
// comment lines.
func sampleLines(sample string, comment rune) []string {
	sample = strings.ReplaceAll(sample, "\r\n", "\n")
	sample = strings.ReplaceAll(sample, "\r", "\n")
	var lines []string
	for _, line := range strings.Split(sample, "\n") {
		if line != "" && (comment == 0 || !strings.HasPrefix(line, string(comment))) {
			lines = append(lines, line)
		}
	}
	return lines
}

// countDelimiter counts occurrences of a delimiter, ignoring quoted sections.
func countDelimiter(line string, delim, quote rune) int {
	count := 0
	inQuotes := false

	for _, ch := range line {
		if quote != 0 && ch == quote {
			inQuotes = !inQuotes
		} else if ch == delim && !inQuotes {
			count++
		}
	}

	return count
}
