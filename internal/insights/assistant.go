package insights

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// SentimentScale is the maximum sentiment cell score
const SentimentScale = 5

// Summary kinds
const (
	SummaryExecutive = "executive"
	SummaryOpenEnded = "open_ended"
)

// Chat limits
const (
	ChatHistoryLimit = 15
	MaxSuggestions   = 3
)

// LowestCell is one heatmap cell handed to problem analysis. Rank 25 is the
// cell of greatest concern.
type LowestCell struct {
	LevelName    string  `json:"levelName" validate:"required"`
	CategoryName string  `json:"categoryName" validate:"required"`
	Score        float64 `json:"score" validate:"gte=0"`
	Rank         int     `json:"rank" validate:"gte=1,lte=25"`
	Count        int     `json:"count" validate:"gte=0"`
}

// AnalyzeRequest asks for problem categories behind the worst cells
type AnalyzeRequest struct {
	LowestCells    []LowestCell      `json:"lowest_cells" validate:"required,min=1,dive"`
	CompanyContext CompanyContext    `json:"company_context" validate:"required"`
	Filters        map[string]string `json:"filters,omitempty"`
}

// ProblemCategory groups related concerns into one addressable problem
type ProblemCategory struct {
	CategoryID     string   `json:"category_id"`
	CategoryName   string   `json:"category_name" validate:"required"`
	Reason         string   `json:"reason"`
	Level          string   `json:"level"`
	Score          float64  `json:"score"`
	AffectedCount  int      `json:"affected_count"`
	Rank           int      `json:"rank"`
	Severity       string   `json:"severity"`
	Description    string   `json:"description"`
	BusinessImpact string   `json:"business_impact"`
	Examples       []string `json:"examples"`
}

// InterventionRequest asks for interventions against one problem category
type InterventionRequest struct {
	ProblemCategory ProblemCategory `json:"problem_category" validate:"required"`
	CompanyContext  CompanyContext  `json:"company_context" validate:"required"`
}

// DesignedIntervention is a model-designed action plan for a problem
type DesignedIntervention struct {
	Number            int      `json:"number"`
	Title             string   `json:"title"`
	WhatToDo          string   `json:"what_to_do"`
	WhyItWorks        string   `json:"why_it_works"`
	Effort            string   `json:"effort"`
	Impact            string   `json:"impact"`
	Timeframe         string   `json:"timeframe"`
	BudgetEstimate    string   `json:"budget_estimate"`
	RequiredResources []string `json:"required_resources"`
	KeyStakeholders   []string `json:"key_stakeholders"`
	SuccessMetrics    []string `json:"success_metrics"`
	QuickWins         []string `json:"quick_wins"`
}

// SentimentCellSummary is a heatmap cell in an executive summary request
type SentimentCellSummary struct {
	LevelName    string  `json:"levelName"`
	CategoryName string  `json:"categoryName"`
	Score        float64 `json:"score"`
}

// SentimentStats are the heatmap's headline numbers
type SentimentStats struct {
	OverallAverage    float64 `json:"overallAverage"`
	StandardDeviation float64 `json:"standardDeviation"`
	TotalRespondents  int     `json:"totalRespondents"`
}

// SentimentSummaryData lists cells from greatest to least concern
type SentimentSummaryData struct {
	Cells []SentimentCellSummary `json:"cells"`
	Stats SentimentStats         `json:"stats"`
}

// DimensionSummary is one capability dimension in a summary request
type DimensionSummary struct {
	Name    string  `json:"name"`
	Average float64 `json:"average"`
}

// CapabilityOverall are the capability headline numbers
type CapabilityOverall struct {
	Average    float64           `json:"average"`
	Highest    *DimensionSummary `json:"highest,omitempty"`
	Lowest     *DimensionSummary `json:"lowest,omitempty"`
	BiggestGap *DimensionSummary `json:"biggestGap,omitempty"`
}

// CapabilitySummaryData feeds the capability half of an executive summary
type CapabilitySummaryData struct {
	Dimensions []DimensionSummary `json:"dimensions,omitempty"`
	Overall    CapabilityOverall  `json:"overall"`
}

// SummaryRequest asks for an executive or open-ended summary. Which fields
// are required depends on Type.
type SummaryRequest struct {
	Type               string                 `json:"type"`
	SentimentData      *SentimentSummaryData  `json:"sentiment_data,omitempty"`
	CapabilityData     *CapabilitySummaryData `json:"capability_data,omitempty"`
	CompanyContext     *CompanyContext        `json:"company_context,omitempty" validate:"omitempty"`
	Filters            map[string]string      `json:"filters,omitempty"`
	OpenEndedResponses []string               `json:"open_ended_responses,omitempty"`
	DimensionContext   string                 `json:"dimension_context,omitempty"`
}

// ExecutiveSummary is a board-ready readiness summary
type ExecutiveSummary struct {
	ExecutiveSummary     string   `json:"executive_summary"`
	KeyPriorities        []string `json:"key_priorities"`
	RecommendedFirstStep string   `json:"recommended_first_step"`
}

// OpenEndedSummary synthesizes the free-text answers
type OpenEndedSummary struct {
	OverallPicture string `json:"overall_picture"`
	Achievements   string `json:"achievements"`
	Challenges     string `json:"challenges"`
	Milestones     string `json:"milestones"`
}

// ChatMessage is one turn of an assistant conversation
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// DataState tells the assistant what the dashboard has loaded
type DataState struct {
	HasSentimentData  bool `json:"has_sentiment_data"`
	HasCapabilityData bool `json:"has_capability_data"`
	SentimentCount    int  `json:"sentiment_count"`
	CapabilityCount   int  `json:"capability_count"`
}

// UserInfo identifies who is asking
type UserInfo struct {
	Name         string `json:"name,omitempty"`
	Organization string `json:"organization,omitempty"`
}

// PlatformContext is the dashboard state sent with a chat message
type PlatformContext struct {
	CurrentPage   string            `json:"current_page,omitempty"`
	UserInfo      UserInfo          `json:"user_info"`
	DataState     DataState         `json:"data_state"`
	ActiveFilters map[string]string `json:"active_filters,omitempty"`
}

// ChatRequest is one assistant message with its history
type ChatRequest struct {
	Message             string          `json:"message" validate:"required"`
	ConversationHistory []ChatMessage   `json:"conversation_history,omitempty" validate:"omitempty,dive"`
	Context             PlatformContext `json:"context"`
	Stream              bool            `json:"stream"`
}

// ChatAction is a dashboard action the assistant asked for with an
// [ACTION:type:data] marker
type ChatAction struct {
	Type        string            `json:"type"`
	Payload     map[string]string `json:"payload"`
	Description string            `json:"description"`
}

// ChatMetadata accompanies an assistant answer
type ChatMetadata struct {
	Actions     []ChatAction `json:"actions,omitempty"`
	Suggestions []string     `json:"suggestions"`
	Confidence  float64      `json:"confidence"`
}

// ChatAnswer is the assistant's reply
type ChatAnswer struct {
	Response  string       `json:"response"`
	Metadata  ChatMetadata `json:"metadata"`
	ModelUsed string       `json:"model_used"`
	Timestamp time.Time    `json:"timestamp"`
}

// ProblemCategories groups the worst heatmap cells into problem categories
func (g *Generator) ProblemCategories(ctx context.Context, req AnalyzeRequest) (*Generated[[]ProblemCategory], error) {
	if !g.Enabled() {
		return nil, ErrDisabled
	}
	gen, err := cachedCompletion(ctx, g, analyzeSystemPrompt, buildAnalyzePrompt(req), parseProblemCategories)
	if err != nil {
		return nil, err
	}
	g.logger.WithFields(map[string]interface{}{
		"company":    req.CompanyContext.Name,
		"cells":      len(req.LowestCells),
		"categories": len(gen.Data),
		"cached":     gen.Cached,
	}).Info("Analyzed problem categories")
	return gen, nil
}

// DesignInterventions proposes interventions for one problem category
func (g *Generator) DesignInterventions(ctx context.Context, req InterventionRequest) (*Generated[[]DesignedIntervention], error) {
	if !g.Enabled() {
		return nil, ErrDisabled
	}
	return cachedCompletion(ctx, g, interventionsSystemPrompt, buildInterventionsPrompt(req), parseDesignedInterventions)
}

// ExecutiveSummary writes a board-ready summary of both surveys
func (g *Generator) ExecutiveSummary(ctx context.Context, req SummaryRequest) (*Generated[ExecutiveSummary], error) {
	if !g.Enabled() {
		return nil, ErrDisabled
	}
	if req.SentimentData == nil || req.CapabilityData == nil {
		return nil, fmt.Errorf("%w: sentiment_data and capability_data required", ErrInvalidRequest)
	}
	if req.CompanyContext == nil {
		return nil, fmt.Errorf("%w: company_context required", ErrInvalidRequest)
	}
	return cachedCompletion(ctx, g, executiveSystemPrompt, buildExecutivePrompt(req), parseObject[ExecutiveSummary])
}

// OpenEndedSummary synthesizes the free-text survey answers
func (g *Generator) OpenEndedSummary(ctx context.Context, req SummaryRequest) (*Generated[OpenEndedSummary], error) {
	if !g.Enabled() {
		return nil, ErrDisabled
	}
	if len(req.OpenEndedResponses) == 0 {
		return nil, fmt.Errorf("%w: open_ended_responses required", ErrInvalidRequest)
	}
	return cachedCompletion(ctx, g, openEndedSystemPrompt, buildOpenEndedPrompt(req), parseObject[OpenEndedSummary])
}

// Chat answers one assistant message. Conversations are not cached.
func (g *Generator) Chat(ctx context.Context, req ChatRequest) (*ChatAnswer, error) {
	if !g.Enabled() {
		return nil, ErrDisabled
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%w: message required", ErrInvalidRequest)
	}

	answer, err := g.completer.Complete(ctx, chatSystemPrompt, buildChatPrompt(req))
	if err != nil {
		return nil, err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, ErrEmptyResponse
	}

	return &ChatAnswer{
		Response:  answer,
		Metadata:  chatMetadata(answer, req.Context),
		ModelUsed: g.completer.Model(),
		Timestamp: g.now().UTC(),
	}, nil
}

var actionMarker = regexp.MustCompile(`\[ACTION:([^:\]]+):([^\]]+)\]`)

// chatMetadata extracts action markers and derives follow-up suggestions
func chatMetadata(answer string, pc PlatformContext) ChatMetadata {
	var meta ChatMetadata

	for _, m := range actionMarker.FindAllStringSubmatch(answer, -1) {
		kind, data := m[1], m[2]
		switch kind {
		case "navigate":
			meta.Actions = append(meta.Actions, ChatAction{
				Type:        kind,
				Payload:     map[string]string{"page": data},
				Description: "Navigate to " + data,
			})
		case "filter":
			key, value, _ := strings.Cut(data, "=")
			meta.Actions = append(meta.Actions, ChatAction{
				Type:        kind,
				Payload:     map[string]string{"type": key, "value": value},
				Description: fmt.Sprintf("Filter by %s: %s", key, value),
			})
		}
	}

	suggestions := make([]string, 0, MaxSuggestions+2)
	switch pc.CurrentPage {
	case "/dashboard":
		suggestions = append(suggestions, "Show me detailed capability analysis", "Which department needs attention?")
	case "/assessment":
		suggestions = append(suggestions, "Compare dimensions side by side", "Generate intervention recommendations")
	}
	if pc.DataState.HasSentimentData {
		suggestions = append(suggestions, "What are the top 3 sentiment concerns?")
	}
	if pc.DataState.HasCapabilityData {
		suggestions = append(suggestions, "Which capability dimension is weakest?")
	}
	if strings.Contains(strings.ToLower(answer), "problem") {
		suggestions = append(suggestions, "What interventions would address this?", "Show me the business impact")
	}
	if len(suggestions) > MaxSuggestions {
		suggestions = suggestions[:MaxSuggestions]
	}
	meta.Suggestions = suggestions

	confidence := 0.5
	if pc.DataState.HasSentimentData {
		confidence += 0.2
	}
	if pc.DataState.HasCapabilityData {
		confidence += 0.2
	}
	if pc.DataState.SentimentCount > 100 {
		confidence += 0.05
	}
	if pc.DataState.CapabilityCount > 100 {
		confidence += 0.05
	}
	if confidence > 1 {
		confidence = 1
	}
	meta.Confidence = confidence

	return meta
}

func parseProblemCategories(answer string) ([]ProblemCategory, error) {
	wrapped, err := parseObject[struct {
		ProblemCategories []ProblemCategory `json:"problem_categories"`
	}](answer)
	if err != nil {
		return nil, err
	}
	if wrapped.ProblemCategories == nil {
		return nil, fmt.Errorf("%w: missing problem_categories", ErrBadCompletion)
	}
	return wrapped.ProblemCategories, nil
}

func parseDesignedInterventions(answer string) ([]DesignedIntervention, error) {
	wrapped, err := parseObject[struct {
		Interventions []DesignedIntervention `json:"interventions"`
	}](answer)
	if err != nil {
		return nil, err
	}
	if wrapped.Interventions == nil {
		return nil, fmt.Errorf("%w: missing interventions", ErrBadCompletion)
	}
	return wrapped.Interventions, nil
}
