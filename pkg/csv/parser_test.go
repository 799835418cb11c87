package csv_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/shapestone/shape-core/pkg/ast"
	"github.com/shapestone/shape-csvreader/pkg/csv"
)

// TestParse tests Parse and ParseReader on the same inputs
func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    [][]string
		wantErr error
	}{
		{
			name:  "simple csv",
			input: "name,age\nAlice,30\nBob,25",
			want:  [][]string{{"name", "age"}, {"Alice", "30"}, {"Bob", "25"}},
		},
		{
			name:  "empty input",
			input: "",
			want:  [][]string{},
		},
		{
			name:  "escaped quotes and newlines in quoted fields",
			input: "\"field with \"\"quotes\"\"\",\"field\nwith\nnewlines\"",
			want:  [][]string{{"field with \"quotes\"", "field\nwith\nnewlines"}},
		},
		{
			name:  "comments and blank lines are not rows",
			input: "# header comment\na,,c\n\n,b,\n# trailing",
			want:  [][]string{{"a", "", "c"}, {"", "b", ""}},
		},
		{
			name:  "unquoted values trimmed",
			input: " a , \" b \" \n",
			want:  [][]string{{"a", " b "}},
		},
		{
			name:  "ragged short row keeps its own length",
			input: "a,b,c\n1\n",
			want:  [][]string{{"a", "b", "c"}, {"1"}},
		},
		{
			name:    "ragged long row",
			input:   "a,b\n1,2,3\n",
			wantErr: csv.ErrTooManyFields,
		},
		{
			name:    "unclosed quote",
			input:   `"unclosed`,
			wantErr: csv.ErrUnterminatedQuote,
		},
	}

	parsers := map[string]func(string) (ast.SchemaNode, error){
		"Parse": csv.Parse,
		"ParseReader": func(s string) (ast.SchemaNode, error) {
			return csv.ParseReader(strings.NewReader(s))
		},
	}

	for _, tt := range tests {
		for pname, parse := range parsers {
			t.Run(pname+"/"+tt.name, func(t *testing.T) {
				node, err := parse(tt.input)
				if tt.wantErr != nil {
					if !errors.Is(err, tt.wantErr) {
						t.Errorf("%s() error = %v, want %v", pname, err, tt.wantErr)
					}
					return
				}
				if err != nil {
					t.Fatalf("%s() error = %v", pname, err)
				}
				if _, ok := node.(*ast.ArrayDataNode); !ok {
					t.Fatalf("%s() returned %T, expected *ast.ArrayDataNode", pname, node)
				}

				rows, err := csv.NodeToRecords(node)
				if err != nil {
					t.Fatalf("NodeToRecords() error = %v", err)
				}
				if len(rows) != len(tt.want) {
					t.Fatalf("%s() got %d rows %q, want %d", pname, len(rows), rows, len(tt.want))
				}
				for i := range tt.want {
					if strings.Join(rows[i], "|") != strings.Join(tt.want[i], "|") || len(rows[i]) != len(tt.want[i]) {
						t.Errorf("row %d = %q, want %q", i, rows[i], tt.want[i])
					}
				}
			})
		}
	}
}

// TestParseReaderLarge tests that a large stream parses into every row
func TestParseReaderLarge(t *testing.T) {
	node, err := csv.ParseReader(strings.NewReader(generateLargeCSV(1000)))
	if err != nil {
		t.Fatalf("ParseReader() error = %v", err)
	}
	if n := node.(*ast.ArrayDataNode).Len(); n != 1001 {
		t.Errorf("ParseReader() got %d rows, want 1001", n)
	}
}

// TestParsePositions tests that row nodes carry the line they start on
func TestParsePositions(t *testing.T) {
	node, err := csv.Parse("a,b\n# skipped\n\"x\ny\",z\nc,d")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	rows := node.(*ast.ArrayDataNode).Elements()
	wantLines := []int{1, 3, 5}
	if len(rows) != len(wantLines) {
		t.Fatalf("Parse() got %d rows, want %d", len(rows), len(wantLines))
	}
	for i, line := range wantLines {
		if got := rows[i].Position().Line; got != line {
			t.Errorf("row %d line = %d, want %d", i, got, line)
		}
	}
}

// TestValidate tests Validate and ValidateReader on the same inputs
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "valid simple csv",
			input:   "name,age\nAlice,30",
			wantErr: false,
		},
		{
			name:    "valid empty input",
			input:   "",
			wantErr: false,
		},
		{
			name:    "valid escaped quotes",
			input:   `"field with ""quotes"""`,
			wantErr: false,
		},
		{
			name:    "invalid unclosed quote",
			input:   `"unclosed`,
			wantErr: true,
		},
		{
			name:    "valid quote in unquoted field",
			input:   `field"with"quote`,
			wantErr: false,
		},
		{
			name:    "valid whitespace after closing quote",
			input:   "\"field\"  ,b\n",
			wantErr: false,
		},
		{
			name:    "invalid text after closing quote",
			input:   `"field"with`,
			wantErr: true,
		},
		{
			name:    "invalid ragged record",
			input:   "a,b\n1,2,3",
			wantErr: true,
		},
		{
			name:    "valid short record",
			input:   "a,b\n1",
			wantErr: false,
		},
		{
			name:    "valid comment with quote",
			input:   "# it's \"odd\nA,B",
			wantErr: false,
		},
		{
			name:    "large valid csv",
			input:   generateLargeCSV(500),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := csv.Validate(tt.input); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err := csv.ValidateReader(strings.NewReader(tt.input)); (err != nil) != tt.wantErr {
				t.Errorf("ValidateReader() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestParseWithOptions tests parsing with headers and a custom dialect
func TestParseWithOptions(t *testing.T) {
	opts := csv.DefaultOptions()
	opts.HasHeaders = true
	opts.Delimiter = '|'
	opts.DuplicateHeader = func(name string, index int) string {
		return name + "2"
	}

	node, err := csv.ParseWithOptions("id|id|\n1|2|3\n", opts)
	if err != nil {
		t.Fatalf("ParseWithOptions() error = %v", err)
	}

	rows, err := csv.NodeToRecords(node)
	if err != nil {
		t.Fatalf("NodeToRecords() error = %v", err)
	}
	want := [][]string{{"id", "id2", "Column2"}, {"1", "2", "3"}}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	for i := range want {
		for j := range want[i] {
			if rows[i][j] != want[i][j] {
				t.Errorf("row %d field %d = %q, want %q", i, j, rows[i][j], want[i][j])
			}
		}
	}

	if _, err := csv.ParseWithOptions("a", csv.Options{}); err == nil {
		t.Error("ParseWithOptions() with zero Options should fail")
	}

	opts = csv.DefaultOptions()
	opts.HasHeaders = true
	if _, err := csv.ParseWithOptions("a,a\n1,2", opts); !errors.Is(err, csv.ErrDuplicateHeader) {
		t.Errorf("ParseWithOptions() error = %v, want ErrDuplicateHeader", err)
	}
}

// TestValidateReaderWithOptions tests that bad lines can be tolerated
func TestValidateReaderWithOptions(t *testing.T) {
	input := "a,b\n\"x\"y,z\nc,d"
	if err := csv.ValidateReader(strings.NewReader(input)); err == nil {
		t.Error("ValidateReader() should fail on a bad line")
	}

	opts := csv.DefaultOptions()
	opts.OnBadLine = csv.BadLineModeSkip
	if err := csv.ValidateReaderWithOptions(strings.NewReader(input), opts); err != nil {
		t.Errorf("ValidateReaderWithOptions() error = %v", err)
	}

	opts = csv.DefaultOptions()
	opts.SupportsMultiline = false
	if err := csv.ValidateReaderWithOptions(strings.NewReader("\"a\nb\""), opts); !errors.Is(err, csv.ErrMultilineQuoted) {
		t.Errorf("ValidateReaderWithOptions() error = %v, want ErrMultilineQuoted", err)
	}
}

// TestFormat tests the Format function
func TestFormat(t *testing.T) {
	format := csv.Format()
	if format != "CSV" {
		t.Errorf("Format() = %q, want %q", format, "CSV")
	}
}

// Helper function to generate large CSV for testing
func generateLargeCSV(rows int) string {
	var sb strings.Builder
	sb.WriteString("id,name,age,email\n")
	for i := 0; i < rows; i++ {
		sb.WriteString("1,Alice,30,alice@example.com\n")
	}
	return sb.String()
}
