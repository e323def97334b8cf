package requests

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"prunarr/internal/services"
)

// Read returns the first field of every CSV row, in file order. Rows are not
// deduplicated and no header is assumed. A leading UTF-8 or UTF-16 byte order
// mark is honoured.
func Read(r io.Reader) ([]string, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	var titles []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "requests", "parse csv", "", err)
		}
		if len(record) == 0 {
			continue
		}
		titles = append(titles, record[0])
	}
	return titles, nil
}

// ReadFile opens path and parses it with Read.
func ReadFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "requests", "open", path, err)
		}
		return nil, fmt.Errorf("open request list: %w", err)
	}
	defer file.Close()
	return Read(file)
}
