package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"dataprof/internal/table"
)

// LoadCSV reads a delimited text file into a table. The encoding is detected
// from byte-order marks with a Latin-1 fallback for non-UTF-8 input, and the
// delimiter is sniffed from the header line.
func LoadCSV(path string) (*table.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: read csv: %w", err)
	}
	return ParseCSV(data)
}

// ParseCSV parses raw delimited bytes. Exposed separately so HTTP uploads can
// skip the filesystem.
func ParseCSV(data []byte) (*table.Table, error) {
	data, err := decodeText(data)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("loader: csv is empty")
		}
		return nil, fmt.Errorf("loader: read csv header: %w", err)
	}

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Skip rows the reader cannot make sense of; the cleaner
			// reports missing cells for whatever got through.
			continue
		}
		records = append(records, rec)
	}
	return build(header, records)
}

// decodeText normalizes the input to UTF-8: BOM-tagged UTF-8/UTF-16 first,
// then a UTF-8 validity check, then Latin-1 as the lossless fallback.
func decodeText(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return data[3:], nil
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return transformBytes(data, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder())
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return transformBytes(data, unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder())
	}
	if utf8.Valid(data) {
		return data, nil
	}
	return transformBytes(data, charmap.ISO8859_1.NewDecoder())
}

func transformBytes(data []byte, t transform.Transformer) ([]byte, error) {
	out, _, err := transform.Bytes(t, data)
	if err != nil {
		return nil, fmt.Errorf("loader: decode text: %w", err)
	}
	return out, nil
}

// sniffDelimiter counts candidate separators on the first line and picks the
// most frequent, defaulting to comma.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best := ','
	bestCount := bytes.Count(line, []byte{','})
	for _, cand := range []byte{';', '\t', '|'} {
		if n := bytes.Count(line, []byte{cand}); n > bestCount {
			best = rune(cand)
			bestCount = n
		}
	}
	return best
}
