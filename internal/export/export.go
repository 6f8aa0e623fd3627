// Package export serializes a partition result for people outside the app:
// a CSV table for spreadsheets, a plain listing for the terminal, and the
// system clipboard.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/kingrea/class-divider/internal/partition"
)

// DefaultFilename is used when no export file name is configured.
const DefaultFilename = "groups_distribution.csv"

// Header is the first CSV row.
var Header = []string{"Group", "Member", "Role"}

// clipboardWrite is swapped out in tests; the real clipboard needs a display.
var clipboardWrite = clipboard.WriteAll

// WriteCSV writes one row per member with the group name, member name and
// role name (empty when the member has no role).
func WriteCSV(w io.Writer, groups []partition.Group) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, g := range groups {
		for _, m := range g.Members {
			if err := cw.Write([]string{g.Name, m.Name, m.RoleName()}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSV returns the CSV rendering as a string.
func CSV(groups []partition.Group) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, groups); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteText writes a human-readable listing, one block per group.
func WriteText(w io.Writer, groups []partition.Group) error {
	for i, g := range groups {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s (%d)\n", g.Name, g.Size()); err != nil {
			return err
		}
		for _, m := range g.Members {
			line := "  - " + m.Name
			if role := m.RoleName(); role != "" {
				line += " · " + role
			}
			if _, err := io.WriteString(w, line+"\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

// SaveCSV writes the CSV to dir/filename through a temporary file so a
// failed export never leaves a truncated table behind. It returns the final
// path.
func SaveCSV(dir, filename string, groups []partition.Group) (string, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		filename = DefaultFilename
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: ensure dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".export-*.csv")
	if err != nil {
		return "", fmt.Errorf("export: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := WriteCSV(tmp, groups); err != nil {
		tmp.Close()
		return "", fmt.Errorf("export: write csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("export: close temp file: %w", err)
	}
	path := filepath.Join(dir, filename)
	if err := os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("export: move into place: %w", err)
	}
	return path, nil
}

// CopyCSV puts the CSV rendering on the system clipboard.
func CopyCSV(groups []partition.Group) error {
	text, err := CSV(groups)
	if err != nil {
		return fmt.Errorf("export: render csv: %w", err)
	}
	if err := clipboardWrite(text); err != nil {
		return fmt.Errorf("export: clipboard: %w", err)
	}
	return nil
}
