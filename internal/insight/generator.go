package insight

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"dataprof/internal/classify"
	"dataprof/internal/profile"
	"dataprof/internal/sector"
)

// fallbackInsights is returned whenever the collaborator is unavailable or
// misbehaves. Order is stable so reports stay comparable across runs.
var fallbackInsights = []string{
	"Explore feature distributions and categorical balance",
	"Check correlations among numerical variables",
	"Identify segmentation or clustering opportunities",
}

// Chatter is the collaborator surface the generator needs. *Client satisfies
// it; tests substitute a stub.
type Chatter interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// Generator produces summaries, insights and guided chat answers for a
// profiled dataset.
type Generator struct {
	client Chatter
	logger *zap.Logger
}

// NewGenerator builds a Generator. A nil client disables the collaborator:
// insights and chat fall back to local answers.
func NewGenerator(client Chatter, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{client: client, logger: logger}
}

// Summary renders the deterministic local dataset summary: shape, the full
// column partition, quality metrics, and the detected sector. It never calls
// the collaborator and never fails.
func (g *Generator) Summary(rows, cols int, cls classify.Classification, m profile.Metrics, sectorName string) string {
	features := func(names []string) string {
		if len(names) == 0 {
			return "None detected"
		}
		return strings.Join(names, ", ")
	}
	if sectorName == "" {
		sectorName = sector.General
	}
	return fmt.Sprintf(
		"Dataset contains %d rows and %d columns.\n\n"+
			"Categorical features: %s\n"+
			"Numerical features: %s\n"+
			"Datetime features: %s\n\n"+
			"Data quality: %.1f%% cells missing, %d duplicate rows removed, "+
			"average correlation %.2f.\n\n"+
			"This dataset is suitable for exploratory analysis and insight discovery in the %s domain.",
		rows, cols,
		features(cls.Categorical), features(cls.Numerical), features(cls.Datetime),
		m.MissingPct, m.DuplicateCount, m.AvgCorrelation,
		sectorName)
}

// Insights asks the collaborator for short analytical directions based on the
// summary. Any failure (no client, network, bad status, empty answer) yields
// the fixed fallback list plus fromFallback true.
func (g *Generator) Insights(ctx context.Context, summary, sectorName string) (insights []string, fromFallback bool) {
	if g.client == nil {
		return fallbackInsights, true
	}
	prompt := fmt.Sprintf(
		"You are a professional data analyst. Based on the dataset summary below, "+
			"provide 4 short insights or directions for analysis (no code).\n\n"+
			"Dataset Sector: %s\nDataset Summary:\n%s", sectorName, summary)
	text, err := g.client.Chat(ctx, []Message{
		{Role: "system", Content: "You generate concise, relevant analytical insights for data summaries."},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		g.logger.Warn("insight generation failed, using fallback", zap.Error(err))
		return fallbackInsights, true
	}
	lines := splitInsights(text)
	if len(lines) == 0 {
		g.logger.Warn("insight response was empty, using fallback")
		return fallbackInsights, true
	}
	return lines, false
}

// splitInsights breaks a bullet-list style answer into trimmed lines,
// dropping empties and leading list markers.
func splitInsights(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "•-* \t")
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Question is one of the guided chat entry points offered to users.
type Question struct {
	Label  string `json:"label"`
	Prompt string `json:"prompt"`
}

// Questions returns the guided chat options in display order.
func Questions() []Question {
	return []Question{
		{Label: "Summarize dataset", Prompt: "Give a brief summary of this dataset."},
		{Label: "Explain correlations", Prompt: "What correlations exist in this dataset?"},
		{Label: "Describe patterns", Prompt: "Describe any patterns or trends you observed."},
		{Label: "Segmentation hints", Prompt: "What do the segment or group differences show?"},
		{Label: "Next steps", Prompt: "Show advanced analysis recommendations."},
	}
}

// Answer responds to a guided chat question. "Next steps" is answered locally
// from the sector recommendation table; everything else goes through the
// collaborator with the summary and insights as context, falling back to the
// summary itself when the collaborator fails.
func (g *Generator) Answer(ctx context.Context, label, summary, sectorName string, insights []string) string {
	if strings.EqualFold(label, "Next steps") {
		recs := sector.Recommendations(sectorName)
		var b strings.Builder
		fmt.Fprintf(&b, "Next steps for the %s domain:\n", sectorName)
		for _, r := range recs {
			b.WriteString("- ")
			b.WriteString(r)
			b.WriteString("\n")
		}
		return b.String()
	}

	prompt := ""
	for _, q := range Questions() {
		if strings.EqualFold(q.Label, label) {
			prompt = q.Prompt
			break
		}
	}
	if prompt == "" {
		prompt = label
	}

	if g.client != nil {
		system := fmt.Sprintf(
			"You are a polite, friendly data assistant. You are chatting about a dataset "+
				"that has already been cleaned and profiled.\n\n"+
				"Dataset Sector: %s\nDataset Summary:\n%s\nKey Insights:\n- %s",
			sectorName, summary, strings.Join(insights, "\n- "))
		text, err := g.client.Chat(ctx, []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		})
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
		g.logger.Warn("guided chat failed, answering locally", zap.String("label", label), zap.Error(err))
	}
	return summary
}
