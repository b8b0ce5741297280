// Package insights asks an LLM for recommendations, summaries and chat answers
// about capability and sentiment results.
package insights

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/ainavigator/backend/internal/contracts"
	"github.com/wonny/ainavigator/backend/pkg/logger"
	"github.com/wonny/ainavigator/backend/pkg/redis"
)

// Request and answer errors
var (
	ErrBadCompletion  = errors.New("llm answer is not valid insights json")
	ErrInvalidRequest = errors.New("invalid input")
)

// WeakDimension is a dimension where the company trails its benchmark
type WeakDimension struct {
	ID        int     `json:"id,omitempty" validate:"omitempty,min=1,max=8"`
	Name      string  `json:"name" validate:"required"`
	Average   float64 `json:"average" validate:"gte=0"`
	Benchmark float64 `json:"benchmark" validate:"gte=0"`
}

// CompanyContext describes the company to the model
type CompanyContext struct {
	Name       string `json:"name" validate:"required"`
	Industry   string `json:"industry,omitempty"`
	Size       string `json:"size,omitempty"`
	AIMaturity string `json:"aiMaturity,omitempty"`
}

// InsightRequest is the body of a capability insights request. Without
// weak dimensions the handler derives them from the stored benchmark.
type InsightRequest struct {
	WeakDimensions []WeakDimension   `json:"weak_dimensions,omitempty" validate:"omitempty,dive"`
	CompanyContext CompanyContext    `json:"company_context" validate:"required"`
	Filters        map[string]string `json:"filters,omitempty"`
}

// Insight is one recommendation
type Insight struct {
	Dimension                string   `json:"dimension"`
	Priority                 string   `json:"priority"`
	GapAnalysis              string   `json:"gap_analysis"`
	BusinessImpact           string   `json:"business_impact"`
	RecommendedInterventions []string `json:"recommended_interventions"`
	InterventionRationale    string   `json:"intervention_rationale"`
	QuickWins                []string `json:"quick_wins"`
	LongTermStrategy         string   `json:"long_term_strategy"`
	EstimatedEffort          string   `json:"estimated_effort"`
	EstimatedTimeline        string   `json:"estimated_timeline"`
}

// InsightResponse is returned to the dashboard
type InsightResponse struct {
	Insights    []Insight `json:"insights"`
	GeneratedAt time.Time `json:"generated_at"`
	ModelUsed   string    `json:"model_used"`
	Cached      bool      `json:"cached"`
}

// WeakDimensionsFrom converts a benchmark result's failing dimensions
func WeakDimensionsFrom(result *contracts.BenchmarkResult) []WeakDimension {
	weak := result.WeakDimensions()
	out := make([]WeakDimension, 0, len(weak))
	for _, d := range weak {
		out = append(out, WeakDimension{
			ID:        d.DimensionID,
			Name:      d.Name,
			Average:   d.CompanyAverage,
			Benchmark: *d.PeerAverage,
		})
	}
	return out
}

// Generator builds prompts, calls the completer and caches answers
// ⭐ SSOT: LLM prompt construction and answer caching
type Generator struct {
	completer     Completer
	interventions contracts.InterventionRepository
	cache         *redis.Cache
	ttl           time.Duration
	logger        *logger.Logger
	now           func() time.Time
}

// NewGenerator creates a generator. completer may be nil, which disables it.
func NewGenerator(completer Completer, interventions contracts.InterventionRepository, cache *redis.Cache, log *logger.Logger) *Generator {
	return &Generator{
		completer:     completer,
		interventions: interventions,
		cache:         cache,
		ttl:           redis.TTLLong,
		logger:        log,
		now:           time.Now,
	}
}

// Enabled reports whether a completer is configured
func (g *Generator) Enabled() bool {
	return g.completer != nil
}

// Model returns the completer's model name, empty when disabled
func (g *Generator) Model() string {
	if g.completer == nil {
		return ""
	}
	return g.completer.Model()
}

// CapabilityInsights returns recommendations for the request's weak dimensions
func (g *Generator) CapabilityInsights(ctx context.Context, req InsightRequest) (*InsightResponse, error) {
	if !g.Enabled() {
		return nil, ErrDisabled
	}
	if len(req.WeakDimensions) == 0 {
		return nil, fmt.Errorf("%w: weak_dimensions required", ErrInvalidRequest)
	}

	var catalogue []contracts.Intervention
	if g.interventions != nil {
		list, err := g.interventions.List(ctx)
		if err != nil {
			g.logger.WithError(err).Warn("Intervention catalogue unavailable, prompting without it")
		} else {
			catalogue = list
		}
	}

	gen, err := cachedCompletion(ctx, g, systemPrompt, buildPrompt(req, catalogue), parseInsights)
	if err != nil {
		return nil, err
	}

	if !gen.Cached {
		g.logger.WithFields(map[string]interface{}{
			"company":  req.CompanyContext.Name,
			"weak":     len(req.WeakDimensions),
			"insights": len(gen.Data),
		}).Info("Generated capability insights")
	}

	return &InsightResponse{
		Insights:    gen.Data,
		GeneratedAt: gen.GeneratedAt,
		ModelUsed:   gen.ModelUsed,
		Cached:      gen.Cached,
	}, nil
}

// Generated wraps a parsed model answer with its provenance
type Generated[T any] struct {
	Data        T         `json:"data"`
	GeneratedAt time.Time `json:"generated_at"`
	ModelUsed   string    `json:"model_used"`
	Cached      bool      `json:"cached"`
}

// cachedCompletion asks the model once per distinct (model, system, prompt)
// and caches the parsed answer. Cache failures only cost a model call.
func cachedCompletion[T any](ctx context.Context, g *Generator, system, prompt string, parse func(string) (T, error)) (*Generated[T], error) {
	key := redis.InsightKey(promptHash(g.completer.Model(), system, prompt))

	if g.cache != nil {
		var cached Generated[T]
		found, err := g.cache.Get(ctx, key, &cached)
		if err != nil {
			g.logger.WithError(err).Warn("Insight cache read failed")
		}
		if found {
			cached.Cached = true
			return &cached, nil
		}
	}

	answer, err := g.completer.Complete(ctx, system, prompt)
	if err != nil {
		return nil, err
	}

	data, err := parse(answer)
	if err != nil {
		return nil, err
	}

	gen := &Generated[T]{
		Data:        data,
		GeneratedAt: g.now().UTC(),
		ModelUsed:   g.completer.Model(),
	}

	if g.cache != nil {
		if err := g.cache.Set(ctx, key, gen, g.ttl); err != nil {
			g.logger.WithError(err).Warn("Insight cache write failed")
		}
	}

	return gen, nil
}

func promptHash(model, system, prompt string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + system + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}

// stripFence removes a markdown code fence around a JSON answer
func stripFence(answer string) string {
	s := strings.TrimSpace(answer)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	return s
}

// parseObject decodes a fenced or bare JSON object answer into T
func parseObject[T any](answer string) (T, error) {
	var out T
	s := stripFence(answer)
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return out, fmt.Errorf("%w: %.80q", ErrBadCompletion, s)
	}
	return out, nil
}

// parseInsights accepts {"insights": [...]} or a bare array, optionally in a code fence
func parseInsights(answer string) ([]Insight, error) {
	s := stripFence(answer)

	var wrapped struct {
		Insights []Insight `json:"insights"`
	}
	if err := json.Unmarshal([]byte(s), &wrapped); err == nil && wrapped.Insights != nil {
		return wrapped.Insights, nil
	}

	var bare []Insight
	if err := json.Unmarshal([]byte(s), &bare); err == nil {
		return bare, nil
	}

	return nil, fmt.Errorf("%w: %.80q", ErrBadCompletion, s)
}
