package csv

import (
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

var (
	runeType        = reflect.TypeOf(rune(0))
	trimmingType    = reflect.TypeOf(TrimNone)
	missingType     = reflect.TypeOf(RaiseError)
	badLineModeType = reflect.TypeOf(BadLineModeError)
)

// OptionsFromMap returns DefaultOptions overridden by the values of m, as
// decoded from a JSON or YAML configuration. Keys are the Options field
// names, case-insensitive. Characters are given as a one-character string or
// as one of "tab", "space", "none", `\t`, `\r`, `\n`; enumerations by name
// ("unquoted", "null", "warn"...). Unknown keys are an error.
//
// Example:
//
//	opts, err := csv.OptionsFromMap(map[string]interface{}{
//	    "delimiter":  "tab",
//	    "hasHeaders": true,
//	    "trimming":   "all",
//	})
func OptionsFromMap(m map[string]interface{}) (Options, error) {
	opts := DefaultOptions()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       optionsHook,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &opts,
	})
	if err != nil {
		return Options{}, errors.Wrap(err, "csv: options decoder")
	}
	if err := dec.Decode(m); err != nil {
		return Options{}, errors.Wrap(err, "csv: decode options")
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

func optionsHook(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	s, ok := data.(string)
	if !ok {
		return data, nil
	}
	switch to {
	case runeType:
		return ParseRune(s)
	case trimmingType:
		return ParseTrimming(s)
	case missingType:
		return ParseMissingFieldAction(s)
	case badLineModeType:
		return ParseBadLineMode(s)
	}
	return data, nil
}

// ParseRune parses a character option. "none" and the empty string give 0.
func ParseRune(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	case "space":
		return ' ', nil
	case `\r`:
		return '\r', nil
	case `\n`:
		return '\n', nil
	case `\0`:
		return 0, nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, errors.Errorf("csv: %q is not a single character", s)
	}
	return r, nil
}

// ParseTrimming parses a trimming name as returned by Trimming.String.
func ParseTrimming(s string) (Trimming, error) {
	switch strings.ToLower(s) {
	case "none":
		return TrimNone, nil
	case "quoted", "quotedonly":
		return TrimQuotedOnly, nil
	case "unquoted", "unquotedonly":
		return TrimUnquotedOnly, nil
	case "all":
		return TrimAll, nil
	}
	return TrimNone, errors.Errorf("csv: unknown trimming %q", s)
}

// ParseMissingFieldAction parses a name as returned by
// MissingFieldAction.String.
func ParseMissingFieldAction(s string) (MissingFieldAction, error) {
	switch strings.ToLower(s) {
	case "error", "raiseerror":
		return RaiseError, nil
	case "empty", "replacebyempty":
		return ReplaceByEmpty, nil
	case "null", "replacebynull":
		return ReplaceByNull, nil
	}
	return RaiseError, errors.Errorf("csv: unknown missing field action %q", s)
}

// ParseBadLineMode parses a name as returned by BadLineMode.String.
func ParseBadLineMode(s string) (BadLineMode, error) {
	switch strings.ToLower(s) {
	case "error":
		return BadLineModeError, nil
	case "warn":
		return BadLineModeWarn, nil
	case "skip":
		return BadLineModeSkip, nil
	}
	return BadLineModeError, errors.Errorf("csv: unknown bad line mode %q", s)
}
