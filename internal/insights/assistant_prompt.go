package insights

import (
	"fmt"
	"sort"
	"strings"
)

// OpenEndedPromptLimit caps the free-text answers quoted in a summary prompt
const OpenEndedPromptLimit = 50

// Severity bands by heatmap rank
const (
	SeverityCritical = "CRITICAL"
	SeverityHigh     = "HIGH"
	SeverityMedium   = "MEDIUM"
)

const (
	analyzeSystemPrompt = "You are an expert AI adoption consultant who creates insightful problem categories " +
		"from survey data. Always respond in valid JSON format."
	interventionsSystemPrompt = "You are an expert at designing creative, actionable interventions for " +
		"organizational AI adoption challenges. Always respond in valid JSON format."
	executiveSystemPrompt = "You are an executive consultant writing board-ready AI readiness summaries. " +
		"Always respond in valid JSON format."
	openEndedSystemPrompt = "You are an expert at synthesizing qualitative survey data into actionable insights. " +
		"Always respond in valid JSON format."
)

const chatSystemPrompt = `You are the AI Navigator Assistant, an analytical partner embedded in an enterprise AI readiness assessment platform.

The platform measures two things:
- Sentiment: a heatmap of 5 levels x 5 categories (25 cells) scored 1-5. Higher scores mean stronger resistance to AI.
  Levels: Personal, Collaboration, Professional Trust, Career, Organizational.
  Categories: Too Autonomous, Too Inflexible, Emotionless, Too Opaque, Prefer Human.
- Capability: 8 dimensions of organizational AI maturity scored 1-7 and compared against peer benchmarks.

Cite specific numbers from the context you are given and end with a concrete next step.
To ask the dashboard to act, write [ACTION:navigate:/page] or [ACTION:filter:type=value].
If the data needed to answer is not loaded, say so instead of guessing.`

// Severity returns the severity band of a heatmap rank (25 is worst)
func Severity(rank int) string {
	switch {
	case rank >= 23:
		return SeverityCritical
	case rank >= 20:
		return SeverityHigh
	default:
		return SeverityMedium
	}
}

func buildAnalyzePrompt(req AnalyzeRequest) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Analyze these AI adoption concerns for %s.\n", req.CompanyContext.Name)
	fmt.Fprintf(&sb, "Scores are on a 1-%d scale; rank 25 of 25 is the area of greatest concern.\n\n", SentimentScale)
	sb.WriteString("AREAS OF GREATEST CONCERN:\n")
	for i, c := range req.LowestCells {
		fmt.Fprintf(&sb, "%d. %s x %s: Score %.2f/%d.0 (rank #%d of 25), %d respondents, severity %s\n",
			i+1, c.LevelName, c.CategoryName, c.Score, SentimentScale, c.Rank, c.Count, Severity(c.Rank))
	}

	writeCompany(&sb, req.CompanyContext)
	writeFilters(&sb, req.Filters)

	sb.WriteString(`
Group these concerns into 3-5 problem categories that leadership can act on.

Return JSON with this structure:
{
  "problem_categories": [
    {
      "category_id": "short-slug",
      "category_name": "name",
      "reason": "the heatmap cell(s) behind this category",
      "level": "level name",
      "score": 3.8,
      "affected_count": 120,
      "rank": 25,
      "severity": "CRITICAL|HIGH|MEDIUM",
      "description": "what is going on",
      "business_impact": "why it matters",
      "examples": ["example 1", "example 2"]
    }
  ]
}`)
	return sb.String()
}

func buildInterventionsPrompt(req InterventionRequest) string {
	pc := req.ProblemCategory
	var sb strings.Builder

	fmt.Fprintf(&sb, "Design interventions for %s addressing this AI adoption problem:\n\n", req.CompanyContext.Name)
	fmt.Fprintf(&sb, "Problem: %s\n", pc.CategoryName)
	if pc.Level != "" {
		fmt.Fprintf(&sb, "Level: %s\n", pc.Level)
	}
	if pc.Severity != "" {
		fmt.Fprintf(&sb, "Severity: %s\n", pc.Severity)
	}
	if pc.Score > 0 {
		fmt.Fprintf(&sb, "Score: %.2f/%d.0\n", pc.Score, SentimentScale)
	}
	if pc.AffectedCount > 0 {
		fmt.Fprintf(&sb, "Affected respondents: %d\n", pc.AffectedCount)
	}
	if pc.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", pc.Description)
	}
	if pc.BusinessImpact != "" {
		fmt.Fprintf(&sb, "Business impact: %s\n", pc.BusinessImpact)
	}

	writeCompany(&sb, req.CompanyContext)

	sb.WriteString(`
Design 3 interventions, ordered from quickest to most strategic.

Return JSON with this structure:
{
  "interventions": [
    {
      "number": 1,
      "title": "short title",
      "what_to_do": "concrete steps",
      "why_it_works": "mechanism",
      "effort": "low|medium|high",
      "impact": "low|medium|high",
      "timeframe": "e.g. 4-6 weeks",
      "budget_estimate": "rough range",
      "required_resources": ["resource"],
      "key_stakeholders": ["stakeholder"],
      "success_metrics": ["metric"],
      "quick_wins": ["quick win"]
    }
  ]
}`)
	return sb.String()
}

func buildExecutivePrompt(req SummaryRequest) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Write an executive summary of AI readiness for %s.\n", req.CompanyContext.Name)
	writeCompany(&sb, *req.CompanyContext)

	s := req.SentimentData
	fmt.Fprintf(&sb, "\nSENTIMENT (1-%d, higher means more resistance):\n", SentimentScale)
	fmt.Fprintf(&sb, "- Overall average: %.2f (std dev %.2f) across %d respondents\n",
		s.Stats.OverallAverage, s.Stats.StandardDeviation, s.Stats.TotalRespondents)
	for i, c := range s.Cells {
		if i == 5 {
			break
		}
		fmt.Fprintf(&sb, "- Concern %d: %s x %s (%.2f)\n", i+1, c.LevelName, c.CategoryName, c.Score)
	}

	c := req.CapabilityData
	fmt.Fprintf(&sb, "\nCAPABILITY (1-%d):\n", ScoreScale)
	fmt.Fprintf(&sb, "- Overall average: %.2f\n", c.Overall.Average)
	for _, d := range []struct {
		label string
		dim   *DimensionSummary
	}{
		{"Strongest", c.Overall.Highest},
		{"Weakest", c.Overall.Lowest},
		{"Biggest gap", c.Overall.BiggestGap},
	} {
		if d.dim != nil {
			fmt.Fprintf(&sb, "- %s: %s (%.2f)\n", d.label, d.dim.Name, d.dim.Average)
		}
	}
	for _, d := range c.Dimensions {
		fmt.Fprintf(&sb, "- %s: %.2f\n", d.Name, d.Average)
	}

	writeFilters(&sb, req.Filters)

	sb.WriteString(`
Return JSON with this structure:
{
  "executive_summary": "two or three paragraphs for the board",
  "key_priorities": ["priority 1", "priority 2", "priority 3"],
  "recommended_first_step": "one concrete action for the next 30 days"
}`)
	return sb.String()
}

func buildOpenEndedPrompt(req SummaryRequest) string {
	var sb strings.Builder

	sb.WriteString("Synthesize these open-ended survey responses about AI adoption.\n")
	if req.DimensionContext != "" {
		fmt.Fprintf(&sb, "Context: %s\n", req.DimensionContext)
	}
	if req.CompanyContext != nil {
		writeCompany(&sb, *req.CompanyContext)
	}

	sb.WriteString("\nRESPONSES:\n")
	for i, r := range req.OpenEndedResponses {
		if i == OpenEndedPromptLimit {
			fmt.Fprintf(&sb, "... and %d more responses\n", len(req.OpenEndedResponses)-OpenEndedPromptLimit)
			break
		}
		fmt.Fprintf(&sb, "%d. %s\n", i+1, strings.TrimSpace(r))
	}

	sb.WriteString(`
Return JSON with this structure:
{
  "overall_picture": "what the responses say as a whole",
  "achievements": "what is already working",
  "challenges": "recurring obstacles",
  "milestones": "goals respondents are aiming for"
}`)
	return sb.String()
}

// buildChatPrompt folds the platform context and the most recent turns of
// history into a single user prompt ahead of the new message
func buildChatPrompt(req ChatRequest) string {
	var sb strings.Builder
	pc := req.Context

	sb.WriteString("=== CURRENT SESSION CONTEXT ===\n")
	if pc.CurrentPage != "" {
		fmt.Fprintf(&sb, "Current page: %s\n", pc.CurrentPage)
	}
	if pc.UserInfo.Name != "" || pc.UserInfo.Organization != "" {
		fmt.Fprintf(&sb, "User: %s at %s\n", orUnknown(pc.UserInfo.Name), orUnknown(pc.UserInfo.Organization))
	}
	if pc.DataState.HasSentimentData {
		fmt.Fprintf(&sb, "Sentiment data: %d responses\n", pc.DataState.SentimentCount)
	} else {
		sb.WriteString("Sentiment data: not loaded\n")
	}
	if pc.DataState.HasCapabilityData {
		fmt.Fprintf(&sb, "Capability data: %d responses\n", pc.DataState.CapabilityCount)
	} else {
		sb.WriteString("Capability data: not loaded\n")
	}
	writeFilters(&sb, pc.ActiveFilters)
	sb.WriteString("=== END CONTEXT ===\n")

	history := req.ConversationHistory
	if len(history) > ChatHistoryLimit {
		history = history[len(history)-ChatHistoryLimit:]
	}
	if len(history) > 0 {
		sb.WriteString("\nConversation so far:\n")
		for _, m := range history {
			fmt.Fprintf(&sb, "%s: %s\n", m.Role, strings.TrimSpace(m.Content))
		}
	}

	fmt.Fprintf(&sb, "\nuser: %s\n", strings.TrimSpace(req.Message))
	return sb.String()
}

func writeCompany(sb *strings.Builder, cc CompanyContext) {
	sb.WriteString("\nCompany Context:\n")
	fmt.Fprintf(sb, "- Industry: %s\n", orUnknown(cc.Industry))
	fmt.Fprintf(sb, "- Size: %s\n", orUnknown(cc.Size))
}

func writeFilters(sb *strings.Builder, filters map[string]string) {
	keys := make([]string, 0, len(filters))
	for k, v := range filters {
		if v != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return
	}
	sort.Strings(keys)
	sb.WriteString("\nActive filters:\n")
	for _, k := range keys {
		fmt.Fprintf(sb, "- %s: %s\n", k, filters[k])
	}
}
