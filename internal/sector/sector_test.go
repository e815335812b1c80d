package sector

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDetectFinance runs the canonical finance header set.
func TestDetectFinance(t *testing.T) {
	t.Parallel()

	cols := []string{"account_id", "balance", "loan_amount", "credit_score", "payment_date"}
	if got := Detect(cols, Defaults()); got != "Finance / Banking" {
		t.Fatalf("Detect = %q, want Finance / Banking", got)
	}
}

// TestDetectWholeToken verifies keyword matching is whole-token: "age" must
// not match inside "mortgage".
func TestDetectWholeToken(t *testing.T) {
	t.Parallel()

	if got := Detect([]string{"mortgage_total"}, Defaults()); got != General {
		t.Fatalf("Detect = %q, want %q (no whole-token hit)", got, General)
	}
	if got := Detect([]string{"customer_age"}, Defaults()); got != "Customer / Marketing" {
		t.Fatalf("Detect = %q, want Customer / Marketing", got)
	}
}

// TestDetectTieFirstWins verifies a challenger needs a strictly higher score:
// on a tie, the earlier declared sector keeps the win.
func TestDetectTieFirstWins(t *testing.T) {
	t.Parallel()

	// One keyword from Customer / Marketing ("income") and one from
	// Finance / Banking ("loan"): tie at 1, first declaration wins.
	cols := []string{"income", "loan"}
	if got := Detect(cols, Defaults()); got != "Customer / Marketing" {
		t.Fatalf("Detect = %q, want first-declared winner", got)
	}
}

// TestDetectNoMatches verifies the fallback floor.
func TestDetectNoMatches(t *testing.T) {
	t.Parallel()

	if got := Detect([]string{"alpha", "beta"}, Defaults()); got != General {
		t.Fatalf("Detect = %q, want %q", got, General)
	}
	if got := Detect(nil, Defaults()); got != General {
		t.Fatalf("Detect(nil) = %q, want %q", got, General)
	}
}

// TestLoadCatalogue verifies a YAML catalogue replaces the defaults and bad
// inputs error.
func TestLoadCatalogue(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "sectors.yaml")
	doc := `
- name: Logistics
  keywords: [shipment, carrier, route]
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	sectors, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(sectors) != 1 || sectors[0].Name != "Logistics" {
		t.Fatalf("sectors = %+v", sectors)
	}
	if got := Detect([]string{"shipment_id", "carrier"}, sectors); got != "Logistics" {
		t.Fatalf("Detect = %q, want Logistics", got)
	}

	if _, err := Load(filepath.Join(dir, "absent.yaml")); err == nil {
		t.Fatal("missing file should error")
	}

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(empty); err == nil {
		t.Fatal("empty catalogue should error")
	}

	// Empty path means defaults.
	defs, err := Load("")
	if err != nil || len(defs) != len(Defaults()) {
		t.Fatalf("Load(\"\") = %v, %v", defs, err)
	}
}

// TestRecommendations verifies sector names map to their suggestion lists
// and unknown sectors get the general list.
func TestRecommendations(t *testing.T) {
	t.Parallel()

	fin := Recommendations("Finance / Banking")
	if len(fin) != 4 || fin[0] != "Revenue forecasting & risk modeling" {
		t.Fatalf("finance recommendations = %v", fin)
	}
	gen := Recommendations("Something Else")
	if len(gen) != 4 || gen[0] != "Predictive modeling & forecasting" {
		t.Fatalf("general recommendations = %v", gen)
	}
	if got := Recommendations(General); got[0] != "Predictive modeling & forecasting" {
		t.Fatalf("general floor recommendations = %v", got)
	}
}
