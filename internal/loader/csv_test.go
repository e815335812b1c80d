package loader

import (
	"os"
	"path/filepath"
	"testing"

	"dataprof/internal/table"
)

// TestParseCSVDelimiters verifies the sniffer picks up each supported
// separator from the header line.
func TestParseCSVDelimiters(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		data string
	}{
		{name: "comma", data: "name,amount\nalice,10\n"},
		{name: "semicolon", data: "name;amount\nalice;10\n"},
		{name: "tab", data: "name\tamount\nalice\t10\n"},
		{name: "pipe", data: "name|amount\nalice|10\n"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseCSV([]byte(tc.data))
			if err != nil {
				t.Fatalf("ParseCSV: %v", err)
			}
			if len(got.Columns) != 2 || got.Columns[0].Name != "name" || got.Columns[1].Name != "amount" {
				t.Fatalf("columns = %+v", got.Columns)
			}
			if got.Columns[0].Values[0] != "alice" {
				t.Fatalf("name[0] = %v", got.Columns[0].Values[0])
			}
		})
	}
}

// TestParseCSVEncodings verifies BOM-tagged and legacy encodings normalize to
// the same table.
func TestParseCSVEncodings(t *testing.T) {
	t.Parallel()

	check := func(t *testing.T, data []byte) {
		t.Helper()
		got, err := ParseCSV(data)
		if err != nil {
			t.Fatalf("ParseCSV: %v", err)
		}
		if got.Columns[0].Name != "city" {
			t.Fatalf("header = %q", got.Columns[0].Name)
		}
		if got.Columns[0].Values[0] != "tromsø" {
			t.Fatalf("city[0] = %q", got.Columns[0].Values[0])
		}
	}

	t.Run("utf8 bom", func(t *testing.T) {
		t.Parallel()
		check(t, append([]byte{0xEF, 0xBB, 0xBF}, []byte("city\ntromsø\n")...))
	})
	t.Run("utf16 le", func(t *testing.T) {
		t.Parallel()
		src := "city\ntromsø\n"
		enc := []byte{0xFF, 0xFE}
		for _, r := range src {
			enc = append(enc, byte(r), byte(r>>8))
		}
		check(t, enc)
	})
	t.Run("latin1", func(t *testing.T) {
		t.Parallel()
		// ø is 0xF8 in ISO 8859-1, which is invalid as standalone UTF-8.
		check(t, []byte("city\ntroms\xf8\n"))
	})
}

// TestParseCSVQuotedFields verifies embedded delimiters survive quoting.
func TestParseCSVQuotedFields(t *testing.T) {
	t.Parallel()

	got, err := ParseCSV([]byte("name,notes\nalice,\"likes a, b\"\n"))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if got.Columns[1].Values[0] != "likes a, b" {
		t.Fatalf("notes[0] = %q", got.Columns[1].Values[0])
	}
}

// TestParseCSVEmpty verifies an empty body errors instead of producing a
// headerless table.
func TestParseCSVEmpty(t *testing.T) {
	t.Parallel()

	if _, err := ParseCSV(nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}

// TestLoadCSV round-trips through the filesystem entry point.
func TestLoadCSV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte("n\n1\n2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if got.Columns[0].Kind != table.Int || len(got.Columns[0].Values) != 2 {
		t.Fatalf("table = %+v", got.Columns[0])
	}

	if _, err := LoadCSV(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

// TestSniffDelimiter pins the tie-break: comma wins when counts are equal.
func TestSniffDelimiter(t *testing.T) {
	t.Parallel()

	if got := sniffDelimiter([]byte("a;b;c,d\nx;y;z\n")); got != ';' {
		t.Fatalf("delimiter = %q, want ';'", got)
	}
	if got := sniffDelimiter([]byte("a,b|c\n")); got != ',' {
		t.Fatalf("delimiter = %q, want comma on tie", got)
	}
	if got := sniffDelimiter([]byte("plain")); got != ',' {
		t.Fatalf("delimiter = %q, want comma default", got)
	}
}
