// csvpeek inspects delimited text files: it counts records, prints the
// resolved headers, or shows a range of records.
//
//	csvpeek stat --headers data.csv
//	csvpeek headers --delimiter auto export.txt
//	csvpeek show --from 100 --count 5 --encoding utf-16le dump.csv
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jrivets/log4g"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	ucli "gopkg.in/urfave/cli.v2"

	"github.com/shapestone/shape-csvreader/pkg/csv"
)

const (
	Version = "0.1.0"
)

const (
	argLogCfgFile  = "log-config"
	argCfgFile     = "config"
	argHeaders     = "headers"
	argDelimiter   = "delimiter"
	argQuote       = "quote"
	argEscape      = "escape"
	argComment     = "comment"
	argTrimming    = "trimming"
	argBufferSize  = "buffer-size"
	argMaxQuoted   = "max-quoted"
	argMissing     = "missing"
	argOnBadLine   = "on-bad-line"
	argEncoding    = "encoding"
	argShowFrom    = "from"
	argShowCount   = "count"
	argShowColumns = "columns"

	// sniffSize is the number of bytes inspected by --delimiter auto.
	sniffSize = 64 * 1024
)

var logger = log4g.GetLogger("csvpeek")

func main() {
	defer log4g.Shutdown()

	cmnFlags := []ucli.Flag{
		&ucli.StringFlag{
			Name:  argLogCfgFile,
			Usage: "log4g configuration file path",
		},
		&ucli.StringFlag{
			Name:  argCfgFile,
			Usage: "JSON file with reader options, e.g. {\"delimiter\": \"tab\", \"trimming\": \"all\"}",
		},
		&ucli.BoolFlag{
			Name:  argHeaders,
			Usage: "treat the first record as the header row",
		},
		&ucli.StringFlag{
			Name:  argDelimiter,
			Usage: "field delimiter: a character, \"tab\", or \"auto\" to detect it",
		},
		&ucli.StringFlag{
			Name:  argQuote,
			Usage: "quote character, \"none\" disables quoting",
		},
		&ucli.StringFlag{
			Name:  argEscape,
			Usage: "escape character, \"none\" disables escaping",
		},
		&ucli.StringFlag{
			Name:  argComment,
			Usage: "comment character, \"none\" disables comments",
		},
		&ucli.StringFlag{
			Name:  argTrimming,
			Usage: "white space trimming, one of: \"none\", \"quoted\", \"unquoted\" or \"all\"",
		},
		&ucli.StringFlag{
			Name:  argBufferSize,
			Usage: "initial buffer size in characters, e.g. 4096 or 64KiB",
		},
		&ucli.StringFlag{
			Name:  argMaxQuoted,
			Usage: "maximum length of a quoted field, e.g. 1MiB",
		},
		&ucli.StringFlag{
			Name:  argMissing,
			Usage: "value of missing fields, one of: \"error\", \"empty\" or \"null\"",
		},
		&ucli.StringFlag{
			Name:  argOnBadLine,
			Usage: "malformed record handling, one of: \"error\", \"warn\" or \"skip\"",
		},
		&ucli.StringFlag{
			Name:  argEncoding,
			Usage: "input encoding, one of: \"utf-8\", \"utf-16le\", \"utf-16be\", \"latin1\" or \"windows-1252\"",
		},
	}

	showFlags := []ucli.Flag{
		&ucli.Int64Flag{
			Name:  argShowFrom,
			Usage: "index of the first record to show",
		},
		&ucli.IntFlag{
			Name:  argShowCount,
			Value: 10,
			Usage: "number of records to show",
		},
		&ucli.StringFlag{
			Name:  argShowColumns,
			Usage: "comma separated header names to show, all columns by default",
		},
	}
	showFlags = append(showFlags, cmnFlags...)

	app := &ucli.App{
		Name:    "csvpeek",
		Version: Version,
		Usage:   "Inspect delimited text files",
		Commands: []*ucli.Command{
			{
				Name:      "stat",
				Usage:     "Count records and columns",
				UsageText: "csvpeek stat [command options] <file>",
				Action:    runStat,
				Flags:     cmnFlags,
			},
			{
				Name:      "headers",
				Usage:     "Print the resolved header names",
				UsageText: "csvpeek headers [command options] <file>",
				Action:    runHeaders,
				Flags:     cmnFlags,
			},
			{
				Name:      "show",
				Usage:     "Print a range of records",
				UsageText: "csvpeek show [command options] <file>",
				Action:    runShow,
				Flags:     showFlags,
			},
		},
	}

	for _, c := range app.Commands {
		sort.Sort(ucli.FlagsByName(c.Flags))
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runStat(c *ucli.Context) error {
	in, err := openInput(c)
	if err != nil {
		return err
	}
	defer in.Close()

	r, err := in.reader()
	if err != nil {
		return err
	}
	defer r.Close()

	var records, nulls int64
	for rec, err := range r.Records() {
		if err != nil {
			return err
		}
		records++
		for i := 0; i < rec.Len(); i++ {
			if rec.IsNull(i) {
				nulls++
			}
		}
	}

	fmt.Printf("%-10s %s\n", "file", in.name)
	fmt.Printf("%-10s %s\n", "size", humanize.Bytes(uint64(in.size)))
	fmt.Printf("%-10s %q\n", "delimiter", in.opts.Delimiter)
	fmt.Printf("%-10s %s\n", "columns", humanize.Comma(int64(r.FieldCount())))
	fmt.Printf("%-10s %s\n", "records", humanize.Comma(records))
	if nulls > 0 {
		fmt.Printf("%-10s %s\n", "nulls", humanize.Comma(nulls))
	}
	return nil
}

func runHeaders(c *ucli.Context) error {
	in, err := openInput(c)
	if err != nil {
		return err
	}
	defer in.Close()

	r, err := in.reader()
	if err != nil {
		return err
	}
	defer r.Close()

	// headers are resolved by the first read
	if _, err := r.MoveTo(0); err != nil {
		return err
	}
	for _, col := range r.Columns() {
		fmt.Printf("%4d  %s\n", col.Index, col.Name)
	}
	return nil
}

func runShow(c *ucli.Context) error {
	in, err := openInput(c)
	if err != nil {
		return err
	}
	defer in.Close()

	r, err := in.reader()
	if err != nil {
		return err
	}
	defer r.Close()

	from, count := c.Int64(argShowFrom), c.Int(argShowCount)
	if from < 0 {
		return fmt.Errorf("--%s must not be negative", argShowFrom)
	}
	ok, err := r.MoveTo(from)
	if err != nil || !ok {
		return err
	}

	cols, err := selectColumns(r, c.String(argShowColumns))
	if err != nil {
		return err
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	for n := 0; ok && n < count; n++ {
		vals := make([]string, len(cols))
		for i, col := range cols {
			v, err := r.Field(col)
			if err != nil {
				return err
			}
			if r.IsNull(col) {
				v = "<null>"
			}
			vals[i] = v
		}
		fmt.Fprintf(out, "%d: %s\n", r.CurrentRecordIndex(), strings.Join(vals, " | "))

		if ok, err = r.ReadNextRecord(); err != nil {
			return err
		}
	}
	return nil
}

func selectColumns(r *csv.Reader, names string) ([]int, error) {
	if names == "" {
		cols := make([]int, r.FieldCount())
		for i := range cols {
			cols[i] = i
		}
		return cols, nil
	}

	var cols []int
	for _, name := range strings.Split(names, ",") {
		i, ok := r.FieldIndex(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("unknown column %q, known: %v", name, r.Headers())
		}
		cols = append(cols, i)
	}
	return cols, nil
}

// input is the file named on the command line with the options to read it.
type input struct {
	name string
	size int64
	f    *os.File
	src  io.Reader
	enc  encoding.Encoding
	opts csv.Options
}

func openInput(c *ucli.Context) (*input, error) {
	if lc := c.String(argLogCfgFile); lc != "" {
		if err := log4g.ConfigF(lc); err != nil {
			return nil, err
		}
	}
	if c.Args().Len() != 1 {
		return nil, fmt.Errorf("exactly one file expected, but %d given", c.Args().Len())
	}

	name := c.Args().First()
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	in := &input{name: name, f: f, src: f}
	if fi, err := f.Stat(); err == nil {
		in.size = fi.Size()
	}

	if in.enc, err = parseEncoding(c.String(argEncoding)); err != nil {
		f.Close()
		return nil, err
	}
	if in.opts, err = optionsFromArgs(c); err != nil {
		f.Close()
		return nil, err
	}
	if c.String(argDelimiter) == "auto" {
		if err = in.sniff(); err != nil {
			f.Close()
			return nil, err
		}
	}
	logger.Debug("Reading ", name, " with delimiter=", string(in.opts.Delimiter), ", headers=", in.opts.HasHeaders)
	return in, nil
}

// sniff detects the delimiter from the head of the file, which is then read
// again through a bufio.Reader.
func (in *input) sniff() error {
	br := bufio.NewReaderSize(in.f, sniffSize)
	head, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return errors.Wrap(err, "sniff delimiter")
	}
	sample := string(head)
	if in.enc != nil {
		if sample, err = in.enc.NewDecoder().String(sample); err != nil {
			logger.Warn("Could not decode the sample, delimiter detection may be off: ", err)
		}
	}
	in.opts = csv.NewSniffer(sample).
		SetQuote(in.opts.Quote).
		SetComment(in.opts.Comment).
		Apply(in.opts)
	in.src = br
	logger.Info("Detected delimiter ", fmt.Sprintf("%q", in.opts.Delimiter))
	return nil
}

func (in *input) reader() (*csv.Reader, error) {
	opts := in.opts
	opts.LeaveOpen = true
	opts.WarningCallback = func(line int, message string) {
		fmt.Fprintln(os.Stderr, "warning:", message)
	}
	if in.enc == nil {
		return csv.NewReader(in.src, opts)
	}
	return csv.NewReaderWithEncoding(in.src, in.enc, opts)
}

func (in *input) Close() error {
	return in.f.Close()
}

// optionsFromArgs merges the --config file and the flags, flags winning, and
// decodes the result into reader options.
func optionsFromArgs(c *ucli.Context) (csv.Options, error) {
	m := make(map[string]interface{})
	if cf := c.String(argCfgFile); cf != "" {
		logger.Info("Loading reader options from=", cf)
		data, err := os.ReadFile(cf)
		if err != nil {
			return csv.Options{}, err
		}
		if err := json.Unmarshal(data, &m); err != nil {
			return csv.Options{}, errors.Wrapf(err, "parse %s", cf)
		}
	}

	if c.IsSet(argHeaders) {
		m["HasHeaders"] = c.Bool(argHeaders)
	}
	for flag, key := range map[string]string{
		argQuote:     "Quote",
		argEscape:    "Escape",
		argComment:   "Comment",
		argTrimming:  "Trimming",
		argMissing:   "MissingFieldAction",
		argOnBadLine: "OnBadLine",
	} {
		if v := c.String(flag); v != "" {
			m[key] = v
		}
	}
	if d := c.String(argDelimiter); d != "" && d != "auto" {
		m["Delimiter"] = d
	}
	for flag, key := range map[string]string{
		argBufferSize: "BufferSize",
		argMaxQuoted:  "MaxQuotedFieldLength",
	} {
		v := c.String(flag)
		if v == "" {
			continue
		}
		n, err := humanize.ParseBytes(v)
		if err != nil {
			return csv.Options{}, errors.Wrapf(err, "--%s", flag)
		}
		m[key] = int(n)
	}
	return csv.OptionsFromMap(m)
}

func parseEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "utf-16", "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	}
	return nil, fmt.Errorf("unknown encoding %q", name)
}
