package batch

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/klauspost/compress/zip"
)

const maxNameRunes = 100

// WriteZip writes one file per entry: "<name>.<ext>" for successes and
// "<name>.error.txt" holding the error for failures.
func WriteZip(w io.Writer, entries []Entry) error {
	zw := zip.NewWriter(w)
	for _, e := range entries {
		name, body := e.Name+".error.txt", []byte(errorText(e))
		if e.Err == nil && e.Result != nil {
			name, body = e.Name+"."+e.Result.Extension, e.Result.Bytes
		}
		f, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("failed to add %s: %w", name, err)
		}
		if _, err := f.Write(body); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return zw.Close()
}

func errorText(e Entry) string {
	if e.Err == nil {
		return "no output\n"
	}
	return e.Err.Error() + "\n"
}

// uniqueNames derives an archive base name per row: the filename column
// sanitized, or qr_<n> with n the row's position. Collisions get a numeric
// suffix.
func uniqueNames(rows []Row) []string {
	names := make([]string, len(rows))
	taken := map[string]bool{}
	for i, row := range rows {
		base := sanitizeName(row.Filename)
		if base == "" {
			base = fmt.Sprintf("qr_%d", i+1)
		}
		name := base
		for n := 2; taken[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		taken[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

func sanitizeName(s string) string {
	s = strings.TrimSpace(s)
	s = filepath.Base(strings.ReplaceAll(s, `\`, "/"))
	if ext := strings.ToLower(filepath.Ext(s)); ext == ".png" || ext == ".svg" || ext == ".jpg" {
		s = strings.TrimSuffix(s, filepath.Ext(s))
	}
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			return r
		case unicode.IsSpace(r):
			return '_'
		default:
			return -1
		}
	}, s)
	s = strings.Trim(s, ".")
	if r := []rune(s); len(r) > maxNameRunes {
		s = string(r[:maxNameRunes])
	}
	return s
}
