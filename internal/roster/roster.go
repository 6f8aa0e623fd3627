// Package roster turns pasted or file-loaded text into the list of names the
// partitioner works on.
package roster

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// MinNames is the smallest roster that can be divided.
const MinNames = 2

// DefaultFallbackEncoding decodes roster files saved by spreadsheet tools in
// a legacy Cyrillic code page.
const DefaultFallbackEncoding = "windows-1251"

var (
	// ErrTooFewNames is returned when fewer than MinNames names were supplied.
	ErrTooFewNames = fmt.Errorf("roster: enter at least %d names", MinNames)
	// ErrUnsupportedFile is returned for files other than .txt and .csv.
	ErrUnsupportedFile = errors.New("roster: only .txt and .csv files are supported")
)

var separators = regexp.MustCompile(`[\r\n,]+`)

// Parse splits text on newlines and commas and drops blank entries.
func Parse(text string) []string {
	parts := separators.Split(text, -1)
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Validate checks that the roster is large enough to divide.
func Validate(names []string) error {
	if len(names) < MinNames {
		return ErrTooFewNames
	}
	return nil
}

// ParseAndValidate is Parse followed by Validate.
func ParseAndValidate(text string) ([]string, error) {
	names := Parse(text)
	if err := Validate(names); err != nil {
		return nil, err
	}
	return names, nil
}

// Supported reports whether path has an extension the loader accepts.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".csv":
		return true
	default:
		return false
	}
}

// ReadFile returns the text of a roster file. A UTF-8 byte order mark is
// removed; content that is not valid UTF-8 is decoded with the named
// fallback charset (see htmlindex for accepted names).
func ReadFile(path, fallback string) (string, error) {
	if !Supported(path) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("roster: read %s: %w", path, err)
	}
	return Decode(data, fallback)
}

// Decode converts raw file bytes to text using the same rules as ReadFile.
func Decode(data []byte, fallback string) (string, error) {
	if bytes.HasPrefix(data, []byte("\xef\xbb\xbf")) || utf8.Valid(data) {
		text, err := decodeWith(unicode.UTF8BOM, data)
		if err != nil {
			return "", fmt.Errorf("roster: decode utf-8: %w", err)
		}
		return text, nil
	}
	name := strings.TrimSpace(fallback)
	if name == "" {
		name = DefaultFallbackEncoding
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return "", fmt.Errorf("roster: unknown encoding %q: %w", name, err)
	}
	text, err := decodeWith(enc, data)
	if err != nil {
		return "", fmt.Errorf("roster: decode %s: %w", name, err)
	}
	return text, nil
}

func decodeWith(enc encoding.Encoding, data []byte) (string, error) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Load reads, parses and validates a roster file.
func Load(path, fallback string) ([]string, error) {
	text, err := ReadFile(path, fallback)
	if err != nil {
		return nil, err
	}
	return ParseAndValidate(text)
}
