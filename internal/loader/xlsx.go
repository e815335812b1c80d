package loader

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"dataprof/internal/table"
)

// LoadXLSX reads the first worksheet of an Office Open XML spreadsheet. Only
// the pieces the pipeline needs are parsed: shared strings and the cell grid
// of sheet1. Formatting, formulas and additional sheets are ignored.
func LoadXLSX(path string) (*table.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: read xlsx: %w", err)
	}
	return ParseXLSX(data)
}

// ParseXLSX parses raw xlsx bytes.
func ParseXLSX(data []byte) (*table.Table, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("loader: open xlsx: %w", err)
	}
	shared := parseSharedStrings(readZipFile(zr, "xl/sharedStrings.xml"))
	sheetXML := readZipFile(zr, "xl/worksheets/sheet1.xml")
	if len(sheetXML) == 0 {
		return nil, fmt.Errorf("loader: xlsx has no first worksheet")
	}

	rr := newSheetRowReader(sheetXML, shared)
	header, ok := rr.Next()
	if !ok || len(header) == 0 {
		return nil, fmt.Errorf("loader: xlsx worksheet is empty")
	}
	var records [][]string
	for {
		row, ok := rr.Next()
		if !ok {
			break
		}
		records = append(records, row)
	}
	return build(header, records)
}

func readZipFile(zr *zip.Reader, name string) []byte {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			return nil
		}
		return b
	}
	return nil
}

// parseSharedStrings extracts the <si><t> entries of sharedStrings.xml in
// order, so shared-string cells can be resolved by index.
func parseSharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	var buf strings.Builder
	var inT bool
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "si" {
				buf.Reset()
			}
			if se.Name.Local == "t" {
				inT = true
			}
		case xml.EndElement:
			if se.Name.Local == "t" {
				inT = false
			}
			if se.Name.Local == "si" {
				out = append(out, buf.String())
				buf.Reset()
			}
		case xml.CharData:
			if inT {
				buf.Write([]byte(se))
			}
		}
	}
}

// sheetRowReader streams <row> elements out of a worksheet XML document,
// resolving cell references so sparse rows keep their column positions.
type sheetRowReader struct {
	dec    *xml.Decoder
	shared []string
	curRow []string
	maxCol int
	nextAt int
}

func newSheetRowReader(data []byte, shared []string) *sheetRowReader {
	return &sheetRowReader{dec: xml.NewDecoder(bytes.NewReader(data)), shared: shared}
}

func (r *sheetRowReader) Next() ([]string, bool) {
	inRow := false
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, false
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch {
			case se.Name.Local == "row":
				inRow = true
				r.curRow = nil
				r.maxCol = 0
				r.nextAt = 0
			case inRow && se.Name.Local == "c":
				var ref, typ string
				for _, a := range se.Attr {
					switch a.Name.Local {
					case "r":
						ref = a.Value
					case "t":
						typ = a.Value
					}
				}
				col := r.nextAt
				if ref != "" {
					if ci := colIndexFromRef(ref); ci >= 0 {
						col = ci
					}
				}
				r.nextAt = col + 1
				if col+1 > r.maxCol {
					r.maxCol = col + 1
				}
				val := r.readCellValue(typ)
				if len(r.curRow) <= col {
					grown := make([]string, col+1)
					copy(grown, r.curRow)
					r.curRow = grown
				}
				r.curRow[col] = val
			}
		case xml.EndElement:
			if se.Name.Local == "row" {
				if len(r.curRow) < r.maxCol {
					grown := make([]string, r.maxCol)
					copy(grown, r.curRow)
					r.curRow = grown
				}
				return r.curRow, true
			}
		}
	}
}

// readCellValue consumes tokens until </c>, capturing <v> (or inline <is><t>)
// text and resolving shared-string and boolean cell types.
func (r *sheetRowReader) readCellValue(typ string) string {
	var val string
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return val
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "v" || se.Name.Local == "t" {
				var sb strings.Builder
				for {
					inner, err := r.dec.Token()
					if err != nil {
						break
					}
					if end, ok := inner.(xml.EndElement); ok &&
						(end.Name.Local == "v" || end.Name.Local == "t") {
						break
					}
					if ch, ok := inner.(xml.CharData); ok {
						sb.Write([]byte(ch))
					}
				}
				val = sb.String()
			}
		case xml.EndElement:
			if se.Name.Local == "c" {
				switch typ {
				case "s":
					idx, err := strconv.Atoi(val)
					if err != nil || idx < 0 || idx >= len(r.shared) {
						return ""
					}
					return r.shared[idx]
				case "b":
					if val == "1" {
						return "true"
					}
					return "false"
				default:
					return val
				}
			}
		}
	}
}

// colIndexFromRef converts a reference like "C12" to the 0-based column
// index 2.
func colIndexFromRef(ref string) int {
	i := 0
	for i < len(ref) {
		c := ref[i]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
			i++
			continue
		}
		break
	}
	idx := 0
	for _, c := range strings.ToUpper(ref[:i]) {
		idx = idx*26 + int(c-'A'+1)
	}
	return idx - 1
}
