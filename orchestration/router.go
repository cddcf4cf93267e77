package orchestration

import (
	"strings"

	"github.com/stockmind/stockmind/core"
)

// Router matches a query to a workflow pattern or, failing that, scores
// capabilities by keyword overlap. It never errors: a query matching nothing
// yields an empty, low-complexity decision.
//
// Routing is pure and idempotent - the same query against the same registry
// always yields an identical decision, so routers are safe to share across
// concurrent requests.
type Router struct {
	registry  *Registry
	catalog   *PatternCatalog
	extractor *Extractor
	logger    core.Logger
}

// NewRouter creates a router over the given registry and pattern catalog.
func NewRouter(registry *Registry, catalog *PatternCatalog) *Router {
	return &Router{
		registry:  registry,
		catalog:   catalog,
		extractor: NewExtractor(),
	}
}

// SetLogger sets the logger provider
func (r *Router) SetLogger(logger core.Logger) {
	if logger == nil {
		r.logger = &core.NoOpLogger{}
	} else {
		r.logger = logger
	}
}

// Route analyzes a query and decides which capabilities it requires.
//
// Workflow patterns are consulted first, in declared catalog order; the first
// match supplies the required list verbatim and scoring is skipped. Otherwise
// every capability whose lexicon overlaps the query is included (no relative
// cutoff), and multi-capability lists are sorted ascending by tier so
// foundation analysis always precedes dependent tiers even when a dependent
// tier scored higher.
func (r *Router) Route(query string) RoutingDecision {
	decision := RoutingDecision{
		Query:    query,
		Entities: r.extractor.Extract(query),
	}

	if pattern := r.catalog.Match(query); pattern != nil {
		decision.MatchedWorkflow = pattern.ID
		decision.Required = append([]string(nil), pattern.Sequence...)
		decision.Complexity = complexityFor(decision.Required)

		if r.logger != nil {
			r.logger.Debug("Query matched workflow pattern", map[string]interface{}{
				"operation":  "route_workflow_match",
				"workflow":   pattern.ID,
				"required":   decision.Required,
				"complexity": decision.Complexity,
			})
		}
		return decision
	}

	decision.Scores = r.scoreCapabilities(query)
	for _, cap := range r.registry.All() {
		if _, ok := decision.Scores[cap.ID]; ok {
			decision.Required = append(decision.Required, cap.ID)
		}
	}
	// registry.All is tier-ordered, so Required already satisfies the
	// foundation-first invariant; sort again for explicitness when the list
	// has more than one entry.
	if len(decision.Required) > 1 {
		decision.Required = r.registry.SortByTier(decision.Required)
	}
	decision.Complexity = complexityFor(decision.Required)

	if r.logger != nil {
		r.logger.Debug("Query routed via keyword scoring", map[string]interface{}{
			"operation":  "route_keyword_scoring",
			"required":   decision.Required,
			"complexity": decision.Complexity,
		})
	}
	return decision
}

// scoreCapabilities counts lexicon keywords present in the query as
// case-insensitive substrings. Capabilities with zero matches are omitted.
func (r *Router) scoreCapabilities(query string) map[string]CapabilityScore {
	lowered := strings.ToLower(query)
	scores := make(map[string]CapabilityScore)

	for _, cap := range r.registry.All() {
		var matched []string
		for _, keyword := range cap.Keywords {
			if strings.Contains(lowered, strings.ToLower(keyword)) {
				matched = append(matched, keyword)
			}
		}
		if len(matched) == 0 {
			continue
		}

		confidence := float64(len(matched)) / float64(len(cap.Keywords))
		if confidence > 1.0 {
			confidence = 1.0
		}
		scores[cap.ID] = CapabilityScore{
			MatchCount:      len(matched),
			MatchedKeywords: matched,
			Confidence:      confidence,
		}
	}

	return scores
}
