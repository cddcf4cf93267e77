package orchestration

import (
	"regexp"
	"strings"
)

// ExtractedEntities holds the structured references found in a query. Each
// field preserves order of first appearance; identifier matches are not
// deduplicated (parameter synthesis later takes only the first of each).
type ExtractedEntities struct {
	Items      []string `json:"items,omitempty"`
	Suppliers  []string `json:"suppliers,omitempty"`
	Categories []string `json:"categories,omitempty"`
	DateRanges []string `json:"date_ranges,omitempty"`
	Metrics    []string `json:"metrics,omitempty"`
}

// Empty reports whether no entities were found at all.
func (e ExtractedEntities) Empty() bool {
	return len(e.Items) == 0 && len(e.Suppliers) == 0 && len(e.Categories) == 0 &&
		len(e.DateRanges) == 0 && len(e.Metrics) == 0
}

var (
	itemPattern     = regexp.MustCompile(`(?i)\bITEM_(\d{3})\b`)
	supplierPattern = regexp.MustCompile(`(?i)\bSUP_(\d{3})\b`)

	// ISO calendar dates plus the three supported relative phrase shapes,
	// matched in one pass so results come back in appearance order.
	datePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}|last \d+ days?|next \d+ days?|past \d+ months?`)
)

// Category vocabulary recognized in queries. Matching is case-insensitive
// substring; all entries present in the text are included.
var categoryVocabulary = []string{"Electronics", "Clothing", "Home & Garden", "Sports", "Books"}

// Metric vocabulary recognized in queries.
var metricVocabulary = []string{"service level", "budget", "forecast period", "lead time"}

// Extractor parses a query into structured entity references. It is
// stateless and never fails; absence of matches yields empty fields.
type Extractor struct{}

// NewExtractor creates an entity extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract runs every rule independently over the query.
func (x *Extractor) Extract(query string) ExtractedEntities {
	lowered := strings.ToLower(query)

	var entities ExtractedEntities

	for _, m := range itemPattern.FindAllStringSubmatch(query, -1) {
		entities.Items = append(entities.Items, "ITEM_"+m[1])
	}
	for _, m := range supplierPattern.FindAllStringSubmatch(query, -1) {
		entities.Suppliers = append(entities.Suppliers, "SUP_"+m[1])
	}

	entities.Categories = vocabularyMatches(lowered, categoryVocabulary)
	entities.DateRanges = datePattern.FindAllString(lowered, -1)
	entities.Metrics = vocabularyMatches(lowered, metricVocabulary)

	return entities
}

// vocabularyMatches returns vocabulary entries present in the lowered text,
// ordered by first appearance. Each entry is included at most once.
func vocabularyMatches(lowered string, vocabulary []string) []string {
	type hit struct {
		entry string
		pos   int
	}
	var hits []hit
	for _, entry := range vocabulary {
		if pos := strings.Index(lowered, strings.ToLower(entry)); pos >= 0 {
			hits = append(hits, hit{entry: entry, pos: pos})
		}
	}
	// Insertion sort by position; the vocabulary is tiny.
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].pos < hits[j-1].pos; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}

	var out []string
	for _, h := range hits {
		out = append(out, h.entry)
	}
	return out
}
