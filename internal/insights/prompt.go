package insights

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wonny/ainavigator/backend/internal/contracts"
)

// ScoreScale is the maximum construct score on the survey
const ScoreScale = 7

const systemPrompt = "You are an expert AI capability consultant who provides detailed, " +
	"actionable insights for improving organizational AI maturity. Always respond in valid JSON format."

// buildPrompt renders the user prompt. Interventions are listed by code
// under a heading per level so the model can reference them by code.
func buildPrompt(req InsightRequest, catalogue []contracts.Intervention) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Analyze these weak AI capability dimensions for %s:\n\n", req.CompanyContext.Name)
	for _, d := range req.WeakDimensions {
		fmt.Fprintf(&sb, "- %s: %.1f/%d (Benchmark: %.1f)\n", d.Name, d.Average, ScoreScale, d.Benchmark)
	}

	sb.WriteString("\nCompany Context:\n")
	fmt.Fprintf(&sb, "- Industry: %s\n", orUnknown(req.CompanyContext.Industry))
	fmt.Fprintf(&sb, "- Size: %s\n", orUnknown(req.CompanyContext.Size))
	fmt.Fprintf(&sb, "- AI Maturity: %s\n", orUnknown(req.CompanyContext.AIMaturity))

	if len(req.Filters) > 0 {
		keys := make([]string, 0, len(req.Filters))
		for k := range req.Filters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString("\nBenchmark peer group:\n")
		for _, k := range keys {
			fmt.Fprintf(&sb, "- %s: %s\n", k, req.Filters[k])
		}
	}

	if len(catalogue) > 0 {
		sb.WriteString("\nAVAILABLE STRATEGIC INTERVENTIONS (reference these by code):\n")
		level := ""
		for _, iv := range sortedCatalogue(catalogue) {
			if iv.Level != level {
				level = iv.Level
				fmt.Fprintf(&sb, "\n%s:\n", orUnknown(level))
			}
			fmt.Fprintf(&sb, "- %s: %s - %s\n", iv.Code, iv.Name, iv.Description)
		}
		sb.WriteString("\nGenerate 3-5 actionable insights. For EACH insight, recommend 2-3 specific interventions from the list above by code.\n")
	} else {
		sb.WriteString("\nGenerate 3-5 actionable insights.\n")
	}

	sb.WriteString(`
Return JSON with this structure:
{
  "insights": [
    {
      "dimension": "dimension name",
      "priority": "critical|high|medium",
      "gap_analysis": "detailed explanation of the gap",
      "business_impact": "how this affects the organization",
      "recommended_interventions": ["A1", "B2"],
      "intervention_rationale": "why these interventions address this gap",
      "quick_wins": ["quick win 1", "quick win 2"],
      "long_term_strategy": "strategic approach",
      "estimated_effort": "low|medium|high",
      "estimated_timeline": "time estimate"
    }
  ]
}`)

	return sb.String()
}

func sortedCatalogue(catalogue []contracts.Intervention) []contracts.Intervention {
	out := make([]contracts.Intervention, len(catalogue))
	copy(out, catalogue)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Code < out[j].Code
	})
	return out
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}
