package loader

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"dataprof/internal/table"
)

// LoadHTML extracts the first <table> element of an HTML document. Headers
// come from <th> cells when present, otherwise from the first row.
func LoadHTML(path string) (*table.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: read html: %w", err)
	}
	return ParseHTML(data)
}

// ParseHTML parses raw HTML bytes.
func ParseHTML(data []byte) (*table.Table, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("loader: parse html: %w", err)
	}
	tbl := doc.Find("table").First()
	if tbl.Length() == 0 {
		return nil, fmt.Errorf("loader: html document has no table")
	}

	var header []string
	var records [][]string
	tbl.Find("tr").Each(func(_ int, row *goquery.Selection) {
		ths := row.Find("th")
		if header == nil && ths.Length() > 0 {
			ths.Each(func(_ int, cell *goquery.Selection) {
				header = append(header, strings.TrimSpace(cell.Text()))
			})
			return
		}
		var rec []string
		row.Find("td").Each(func(_ int, cell *goquery.Selection) {
			rec = append(rec, strings.TrimSpace(cell.Text()))
		})
		if len(rec) == 0 {
			return
		}
		if header == nil {
			header = rec
			return
		}
		records = append(records, rec)
	})
	if len(header) == 0 {
		return nil, fmt.Errorf("loader: html table has no header row")
	}
	return build(header, records)
}
