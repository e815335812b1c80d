// Package sector infers a dataset's business domain from its column names.
// The heuristic is keyword voting: each sector carries a keyword list, and the
// sector whose keywords hit the most distinct column-name tokens wins.
package sector

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// General is the fallback sector when no keyword list scores a hit.
const General = "General / Other"

// Sector pairs a display name with its keyword list. Order matters: on equal
// scores, the earlier declared sector wins (a challenger must score strictly
// higher to displace the current leader).
type Sector struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Defaults returns the built-in sector catalogue. Callers get a fresh copy
// each time; mutating the result does not affect later calls.
func Defaults() []Sector {
	return []Sector{
		{Name: "Customer / Marketing", Keywords: []string{"gender", "age", "income", "spending", "customer", "segment", "region"}},
		{Name: "Finance / Banking", Keywords: []string{"balance", "loan", "credit", "account", "transaction", "payment", "interest"}},
		{Name: "Healthcare / Medical", Keywords: []string{"patient", "disease", "symptom", "diagnosis", "hospital", "treatment"}},
		{Name: "Sales / Retail", Keywords: []string{"product", "sales", "revenue", "profit", "store", "quantity", "price"}},
		{Name: "Human Resources", Keywords: []string{"employee", "salary", "department", "hired", "position", "performance"}},
		{Name: "Education / Academics", Keywords: []string{"student", "grade", "exam", "score", "subject", "school"}},
		{Name: "Technology / Usage", Keywords: []string{"user", "device", "click", "app", "session", "usage"}},
	}
}

// Load reads a sector catalogue from a YAML file: a top-level list of
// {name, keywords} entries replacing the defaults entirely. An empty path
// returns the defaults.
func Load(path string) ([]Sector, error) {
	if path == "" {
		return Defaults(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sector: read catalogue: %w", err)
	}
	var sectors []Sector
	if err := yaml.Unmarshal(data, &sectors); err != nil {
		return nil, fmt.Errorf("sector: parse catalogue: %w", err)
	}
	if len(sectors) == 0 {
		return nil, fmt.Errorf("sector: catalogue %s defines no sectors", path)
	}
	return sectors, nil
}

// Detect scores each sector against the column names and returns the winner.
// Column names are expected in normalized form (lowercase, underscore
// separated); matching is whole-token, so "age" matches "customer_age" but
// not "mortgage".
func Detect(columns []string, sectors []Sector) string {
	tokens := make(map[string]struct{})
	for _, name := range columns {
		for _, tok := range strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
			return r == '_' || r == ' '
		}) {
			tokens[tok] = struct{}{}
		}
	}

	best := General
	bestScore := 0
	for _, s := range sectors {
		score := 0
		for _, kw := range s.Keywords {
			if _, ok := tokens[kw]; ok {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = s.Name
		}
	}
	return best
}

// Recommendations returns the next-step analysis suggestions for a detected
// sector. Matching is by substring of the lowercased sector name, so
// "Finance / Banking" selects the finance list. Unrecognized sectors get the
// general list.
func Recommendations(sector string) []string {
	s := strings.ToLower(sector)
	switch {
	case strings.Contains(s, "marketing") || strings.Contains(s, "customer"):
		return []string{
			"Customer segmentation & targeting",
			"Campaign performance prediction",
			"Churn and retention analysis",
			"Ad spend optimization",
		}
	case strings.Contains(s, "finance") || strings.Contains(s, "banking"):
		return []string{
			"Revenue forecasting & risk modeling",
			"Portfolio performance optimization",
			"Expense anomaly detection",
			"Profitability and KPI tracking",
		}
	case strings.Contains(s, "retail") || strings.Contains(s, "sales"):
		return []string{
			"Product demand forecasting",
			"Dynamic pricing optimization",
			"Inventory trend prediction",
			"Sales region clustering",
		}
	case strings.Contains(s, "health"):
		return []string{
			"Patient outcome prediction",
			"Treatment effectiveness analysis",
			"Operational efficiency optimization",
			"Cost-benefit modeling",
		}
	default:
		return []string{
			"Predictive modeling & forecasting",
			"Clustering and segmentation analysis",
			"Automated dashboard reporting",
			"KPI correlation and trend detection",
		}
	}
}
