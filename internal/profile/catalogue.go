// Package profile holds the static site-type catalogue: a data-driven table
// of weighted keyword and structural signals. Adding a site type means
// adding a catalogue entry, not a code branch. The catalogue is built once
// at process start and never mutated.
package profile

import "SiteProfiler/internal/domain"

// Keyword is a weighted phrase matched against the page's normalized text.
type Keyword struct {
	Text   string
	Weight float64
}

// Signal is a weighted structural region whose presence supports the type.
type Signal struct {
	Kind   domain.RegionKind
	Weight float64
}

// TypeProfile is one catalogue entry. Declaration order in Catalogue is the
// final classification tie-breaker, so the order below is meaningful.
type TypeProfile struct {
	Type       domain.SiteType
	Keywords   []Keyword
	Structural []Signal
}

// KeywordWeightTotal sums the keyword weights, the denominator for
// weighted-coverage scoring.
func (p *TypeProfile) KeywordWeightTotal() float64 {
	var total float64
	for _, kw := range p.Keywords {
		total += kw.Weight
	}
	return total
}

// StructuralWeightTotal sums the structural weights.
func (p *TypeProfile) StructuralWeightTotal() float64 {
	var total float64
	for _, sig := range p.Structural {
		total += sig.Weight
	}
	return total
}

var catalogue = []TypeProfile{
	{
		Type: domain.TypeMCQPlatform,
		Keywords: []Keyword{
			{Text: "mcq", Weight: 3},
			{Text: "quiz", Weight: 2},
			{Text: "multiple choice", Weight: 2},
			{Text: "question", Weight: 1.5},
			{Text: "answer", Weight: 1},
			{Text: "practice", Weight: 1},
		},
		Structural: []Signal{
			{Kind: domain.RegionContentTable, Weight: 3},
			{Kind: domain.RegionCategoryList, Weight: 1},
			{Kind: domain.RegionPagination, Weight: 1},
		},
	},
	{
		Type: domain.TypeExamPrep,
		Keywords: []Keyword{
			{Text: "exam", Weight: 3},
			{Text: "past paper", Weight: 2.5},
			{Text: "preparation", Weight: 2},
			{Text: "ppsc", Weight: 1.5},
			{Text: "fpsc", Weight: 1.5},
			{Text: "nts", Weight: 1},
			{Text: "competitive", Weight: 1},
			{Text: "syllabus", Weight: 1},
		},
		Structural: []Signal{
			{Kind: domain.RegionCategoryList, Weight: 2},
			{Kind: domain.RegionContentTable, Weight: 2},
			{Kind: domain.RegionPagination, Weight: 1},
		},
	},
	{
		Type: domain.TypeEducational,
		Keywords: []Keyword{
			{Text: "education", Weight: 2},
			{Text: "learning", Weight: 2},
			{Text: "course", Weight: 2},
			{Text: "lesson", Weight: 1.5},
			{Text: "tutorial", Weight: 1.5},
			{Text: "study", Weight: 1},
			{Text: "subject", Weight: 1},
		},
		Structural: []Signal{
			{Kind: domain.RegionCategoryList, Weight: 2},
			{Kind: domain.RegionNavTop, Weight: 1},
		},
	},
	{
		Type: domain.TypeNewsPortal,
		Keywords: []Keyword{
			{Text: "news", Weight: 3},
			{Text: "breaking", Weight: 2},
			{Text: "headline", Weight: 2},
			{Text: "latest", Weight: 1.5},
			{Text: "article", Weight: 1},
			{Text: "journalist", Weight: 1},
		},
		Structural: []Signal{
			{Kind: domain.RegionPagination, Weight: 2},
			{Kind: domain.RegionNavTop, Weight: 1},
			{Kind: domain.RegionContentTable, Weight: 1},
		},
	},
	{
		Type: domain.TypeBlog,
		Keywords: []Keyword{
			{Text: "blog", Weight: 3},
			{Text: "post", Weight: 2},
			{Text: "author", Weight: 1.5},
			{Text: "comment", Weight: 1.5},
			{Text: "published", Weight: 1},
			{Text: "archive", Weight: 1},
		},
		Structural: []Signal{
			{Kind: domain.RegionPagination, Weight: 2},
			{Kind: domain.RegionNavSide, Weight: 1},
			{Kind: domain.RegionCategoryList, Weight: 1},
		},
	},
	{
		Type: domain.TypeECommerce,
		Keywords: []Keyword{
			{Text: "shop", Weight: 2.5},
			{Text: "cart", Weight: 2.5},
			{Text: "price", Weight: 2},
			{Text: "product", Weight: 2},
			{Text: "checkout", Weight: 1.5},
			{Text: "buy", Weight: 1.5},
			{Text: "order", Weight: 1},
		},
		Structural: []Signal{
			{Kind: domain.RegionSearchForm, Weight: 2},
			{Kind: domain.RegionCategoryList, Weight: 2},
			{Kind: domain.RegionPagination, Weight: 1},
		},
	},
	{
		Type: domain.TypeForum,
		Keywords: []Keyword{
			{Text: "forum", Weight: 3},
			{Text: "thread", Weight: 2.5},
			{Text: "reply", Weight: 2},
			{Text: "discussion", Weight: 1.5},
			{Text: "member", Weight: 1.5},
			{Text: "topic", Weight: 1},
		},
		Structural: []Signal{
			{Kind: domain.RegionPagination, Weight: 2},
			{Kind: domain.RegionContentTable, Weight: 1},
			{Kind: domain.RegionSearchForm, Weight: 1},
		},
	},
	{
		Type: domain.TypeGovernment,
		Keywords: []Keyword{
			{Text: "government", Weight: 3},
			{Text: "ministry", Weight: 2},
			{Text: "department", Weight: 2},
			{Text: "official", Weight: 1.5},
			{Text: "public service", Weight: 1.5},
			{Text: "notification", Weight: 1},
		},
		Structural: []Signal{
			{Kind: domain.RegionNavTop, Weight: 1},
			{Kind: domain.RegionContentTable, Weight: 1},
		},
	},
}

// Catalogue returns the full profile list in declaration order. The backing
// array is shared; callers must treat it as read-only.
func Catalogue() []TypeProfile {
	return catalogue
}

// ByType looks a profile up by its site type.
func ByType(t domain.SiteType) (*TypeProfile, bool) {
	for i := range catalogue {
		if catalogue[i].Type == t {
			return &catalogue[i], true
		}
	}
	return nil, false
}
