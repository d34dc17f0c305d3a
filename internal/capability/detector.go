// Package capability inspects a structural summary for site affordances:
// navigation, pagination, search, category listings, content tables. Each
// kind has its own independent detector; capabilities do not depend on
// each other or on the classified site type.
package capability

import (
	"regexp"
	"strings"

	"SiteProfiler/internal/domain"
)

const (
	minTopNavLinks   = 5
	minSideNavLinks  = 4
	minCategoryLinks = 6
	minTableLinks    = 5
	maxNavAnchorLen  = 30
)

var (
	nextPrevExpr = regexp.MustCompile(`(?i)\b(next|previous|prev|older|newer)\b`)
	pageParam    = regexp.MustCompile(`(?i)[?&](page|p|skip|offset)=\d+`)
	numericExpr  = regexp.MustCompile(`^\d+$`)

	categoryWords = []string{"category", "subject", "topic", "chapter", "past", "paper"}
	contentWords  = []string{"mcq", "quiz", "test", "paper", "question", "exam"}
)

// Signal is one independent piece of evidence for a capability.
type Signal struct {
	Name  string
	Check func(*domain.StructuralSummary) bool
}

// Detector bundles the signals checked for one region kind. Confidence is
// the fraction of positive signals, so evidence degrades gracefully
// instead of flipping between 0 and 1.
type Detector struct {
	Kind    domain.RegionKind
	Signals []Signal
}

// Confidence evaluates every signal against the summary.
func (d Detector) Confidence(summary *domain.StructuralSummary) float64 {
	if len(d.Signals) == 0 {
		return 0
	}
	hits := 0
	for _, sig := range d.Signals {
		if sig.Check(summary) {
			hits++
		}
	}
	return float64(hits) / float64(len(d.Signals))
}

// Registry keeps the detector per region kind. The default set is built
// once at startup; Register replaces a detector for its kind.
type Registry struct {
	detectors []Detector
}

// NewRegistry returns a registry populated with the default detectors.
func NewRegistry() *Registry {
	r := &Registry{}
	for _, d := range defaultDetectors() {
		r.Register(d)
	}
	return r
}

// Register adds or replaces the detector for its kind.
func (r *Registry) Register(d Detector) {
	for i := range r.detectors {
		if r.detectors[i].Kind == d.Kind {
			r.detectors[i] = d
			return
		}
	}
	r.detectors = append(r.detectors, d)
}

// Detect runs every registered detector and returns per-kind confidences.
// All values are on [0,1]; an empty summary yields all zeroes.
func (r *Registry) Detect(summary *domain.StructuralSummary) map[domain.RegionKind]float64 {
	result := make(map[domain.RegionKind]float64, len(r.detectors))
	for _, d := range r.detectors {
		if summary.Empty() {
			result[d.Kind] = 0
			continue
		}
		result[d.Kind] = d.Confidence(summary)
	}
	return result
}

func defaultDetectors() []Detector {
	return []Detector{
		{
			Kind: domain.RegionNavTop,
			Signals: []Signal{
				{Name: "region", Check: regionPresent(domain.RegionNavTop)},
				{Name: "link-count", Check: regionLinkCount(domain.RegionNavTop, minTopNavLinks)},
				{Name: "short-anchors", Check: shortAnchors(domain.RegionNavTop)},
			},
		},
		{
			Kind: domain.RegionNavSide,
			Signals: []Signal{
				{Name: "region", Check: regionPresent(domain.RegionNavSide)},
				{Name: "link-count", Check: regionLinkCount(domain.RegionNavSide, minSideNavLinks)},
			},
		},
		{
			Kind: domain.RegionPagination,
			Signals: []Signal{
				{Name: "region", Check: regionPresent(domain.RegionPagination)},
				{Name: "next-prev-tail", Check: nextPrevNearEnd},
				{Name: "numbered-links", Check: numberedLinks},
			},
		},
		{
			Kind: domain.RegionSearchForm,
			Signals: []Signal{
				{Name: "region", Check: regionPresent(domain.RegionSearchForm)},
				{Name: "search-token", Check: tokenPresent("search")},
				{Name: "search-anchor", Check: anchorContains("search")},
			},
		},
		{
			Kind: domain.RegionCategoryList,
			Signals: []Signal{
				{Name: "region", Check: regionPresent(domain.RegionCategoryList)},
				{Name: "link-count", Check: regionLinkCount(domain.RegionCategoryList, minCategoryLinks)},
				{Name: "category-anchors", Check: anchorsContainAny(categoryWords)},
			},
		},
		{
			Kind: domain.RegionContentTable,
			Signals: []Signal{
				{Name: "region", Check: regionPresent(domain.RegionContentTable)},
				{Name: "link-count", Check: regionLinkCount(domain.RegionContentTable, minTableLinks)},
				{Name: "content-anchors", Check: anchorsContainAny(contentWords)},
			},
		},
	}
}

func regionPresent(kind domain.RegionKind) func(*domain.StructuralSummary) bool {
	return func(s *domain.StructuralSummary) bool {
		return s.HasRegion(kind)
	}
}

func regionLinkCount(kind domain.RegionKind, min int) func(*domain.StructuralSummary) bool {
	return func(s *domain.StructuralSummary) bool {
		count := 0
		for _, link := range s.Links {
			if link.Region == kind {
				count++
			}
		}
		return count >= min
	}
}

func shortAnchors(kind domain.RegionKind) func(*domain.StructuralSummary) bool {
	return func(s *domain.StructuralSummary) bool {
		total, count := 0, 0
		for _, link := range s.Links {
			if link.Region == kind {
				total += len(link.AnchorText)
				count++
			}
		}
		return count > 0 && total/count <= maxNavAnchorLen
	}
}

// nextPrevNearEnd looks for next/previous anchors in the trailing half of
// the link list, where pagination controls sit.
func nextPrevNearEnd(s *domain.StructuralSummary) bool {
	start := len(s.Links) / 2
	for _, link := range s.Links[start:] {
		if nextPrevExpr.MatchString(link.AnchorText) {
			return true
		}
	}
	return false
}

func numberedLinks(s *domain.StructuralSummary) bool {
	numeric := 0
	for _, link := range s.Links {
		if numericExpr.MatchString(strings.TrimSpace(link.AnchorText)) {
			numeric++
			if numeric >= 3 {
				return true
			}
		}
		if pageParam.MatchString(link.Href) {
			return true
		}
	}
	return false
}

func tokenPresent(token string) func(*domain.StructuralSummary) bool {
	return func(s *domain.StructuralSummary) bool {
		return s.Frequencies[token] > 0
	}
}

func anchorContains(word string) func(*domain.StructuralSummary) bool {
	return anchorsContainAny([]string{word})
}

func anchorsContainAny(words []string) func(*domain.StructuralSummary) bool {
	return func(s *domain.StructuralSummary) bool {
		for _, link := range s.Links {
			anchor := strings.ToLower(link.AnchorText)
			for _, word := range words {
				if strings.Contains(anchor, word) {
					return true
				}
			}
		}
		return false
	}
}
