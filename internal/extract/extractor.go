// Package extract turns raw markup into a normalized StructuralSummary.
// Extraction is a pure function of the markup: region detection relies on
// structural heuristics (element ancestry, repeated sibling list items),
// never on selectors tied to one site.
package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"SiteProfiler/internal/domain"
)

const (
	// minListLinks is how many linked items a list needs before it counts
	// as a navigation or category group.
	minListLinks = 4
	// minTableRows is how many linked rows a table needs to count as a
	// content table.
	minTableRows = 3
	// minNumericAnchors is how many purely numeric anchors form a
	// pagination group.
	minNumericAnchors = 3

	maxDescriptionLen = 300
	minDescriptionLen = 50
)

var (
	sideClassExpr = regexp.MustCompile(`(?i)side|sidebar|widget`)
	navClassExpr  = regexp.MustCompile(`(?i)\bnav|menu|navbar`)
	pageClassExpr = regexp.MustCompile(`(?i)paginat|pager|page-`)

	nextPrevExpr = regexp.MustCompile(`(?i)^(next|previous|prev|older|newer)\b|\b(next|previous)\s+page$`)

	titleSuffixes = []string{" - Home", " | Home", " - Official Site", " - Official Website"}
)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "of": true,
	"to": true, "in": true, "for": true, "on": true, "with": true, "is": true,
	"are": true, "this": true, "that": true, "at": true, "by": true,
	"from": true, "as": true, "it": true, "be": true,
}

// Extract parses markup into a structural summary. It fails with
// domain.ErrMalformedInput only when the input cannot be parsed as a
// document at all; unexpected structure yields a partial summary.
func Extract(markup string) (*domain.StructuralSummary, error) {
	if strings.TrimSpace(markup) == "" {
		return nil, domain.ErrMalformedInput
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedInput, err)
	}

	summary := &domain.StructuralSummary{
		Frequencies: map[string]int{},
		Regions:     map[domain.RegionKind]bool{},
	}

	summary.Title = cleanTitle(doc.Find("title").First().Text())
	summary.SiteName = extractSiteName(doc, summary.Title)
	summary.Description = extractDescription(doc)

	text := normalizeText(doc.Find("body").Text())
	if text == "" {
		text = normalizeText(doc.Text())
	}
	summary.Text = text
	for _, token := range strings.Fields(text) {
		if stopWords[token] {
			continue
		}
		summary.Tokens = append(summary.Tokens, token)
		summary.Frequencies[token]++
	}

	regions := classifyAnchors(doc, summary.Regions)

	doc.Find("a[href]").Each(func(_ int, anchor *goquery.Selection) {
		href, _ := anchor.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		summary.Links = append(summary.Links, domain.LinkCandidate{
			Href:       href,
			AnchorText: strings.TrimSpace(anchor.Text()),
			Region:     regionOf(anchor, regions),
		})
	})

	return summary, nil
}

// classifyAnchors walks list groups, tables, forms, and pagination hints,
// records the region set, and maps each anchor node to its region.
func classifyAnchors(doc *goquery.Document, set map[domain.RegionKind]bool) map[*html.Node]domain.RegionKind {
	regions := map[*html.Node]domain.RegionKind{}

	// Repeated sibling list items with links: the first such group is the
	// top navigation, aside-positioned groups are side navigation, and any
	// later group is a category listing.
	seenFirstGroup := false
	doc.Find("ul, ol").Each(func(_ int, list *goquery.Selection) {
		anchors := list.Find("li a[href]")
		if anchors.Length() < minListLinks {
			return
		}

		kind := domain.RegionCategoryList
		switch {
		case hasAncestor(list, "nav", "header") || classMatches(list, navClassExpr):
			kind = domain.RegionNavTop
		case hasAncestor(list, "aside") || classMatches(list, sideClassExpr) || ancestorClassMatches(list, sideClassExpr):
			kind = domain.RegionNavSide
		case !seenFirstGroup:
			kind = domain.RegionNavTop
		}
		seenFirstGroup = true

		set[kind] = true
		anchors.Each(func(_ int, a *goquery.Selection) {
			markRegion(regions, a, kind)
		})
	})

	// Tables whose rows carry links are content tables (question banks,
	// paper listings).
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		linkedRows := 0
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			if row.Find("a[href]").Length() > 0 {
				linkedRows++
			}
		})
		if linkedRows < minTableRows {
			return
		}
		set[domain.RegionContentTable] = true
		table.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			markRegion(regions, a, domain.RegionContentTable)
		})
	})

	// Forms with a text-like input are search affordances.
	doc.Find("form").Each(func(_ int, form *goquery.Selection) {
		form.Find("input").EachWithBreak(func(_ int, input *goquery.Selection) bool {
			t, _ := input.Attr("type")
			name, _ := input.Attr("name")
			t = strings.ToLower(t)
			name = strings.ToLower(name)
			if t == "search" || t == "text" || t == "" ||
				name == "q" || name == "s" || strings.Contains(name, "search") {
				set[domain.RegionSearchForm] = true
				return false
			}
			return true
		})
	})

	detectPagination(doc, set, regions)

	return regions
}

// detectPagination flags next/previous anchors, runs of numeric anchors,
// and pagination-classed containers. Pagination wins over any region
// assigned earlier: a "next" link inside a table is still pagination.
func detectPagination(doc *goquery.Document, set map[domain.RegionKind]bool, regions map[*html.Node]domain.RegionKind) {
	var numericAnchors []*goquery.Selection
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		text := strings.TrimSpace(a.Text())
		rel, _ := a.Attr("rel")

		switch {
		case nextPrevExpr.MatchString(text), rel == "next", rel == "prev":
			set[domain.RegionPagination] = true
			forceRegion(regions, a, domain.RegionPagination)
		case classMatches(a, pageClassExpr) || ancestorClassMatches(a, pageClassExpr):
			set[domain.RegionPagination] = true
			forceRegion(regions, a, domain.RegionPagination)
		case isNumeric(text):
			numericAnchors = append(numericAnchors, a)
		}
	})

	// A lone number is a year or a count; only a run of numeric anchors
	// reads as a pager.
	if len(numericAnchors) >= minNumericAnchors {
		set[domain.RegionPagination] = true
		for _, a := range numericAnchors {
			forceRegion(regions, a, domain.RegionPagination)
		}
	}
}

func regionOf(anchor *goquery.Selection, regions map[*html.Node]domain.RegionKind) domain.RegionKind {
	if node := anchor.Get(0); node != nil {
		if kind, ok := regions[node]; ok {
			return kind
		}
	}
	// Fall back to ancestry for anchors outside any detected group.
	switch {
	case hasAncestor(anchor, "nav", "header"):
		return domain.RegionNavTop
	case hasAncestor(anchor, "aside"):
		return domain.RegionNavSide
	case hasAncestor(anchor, "table"):
		return domain.RegionContentTable
	default:
		return domain.RegionBody
	}
}

func markRegion(regions map[*html.Node]domain.RegionKind, a *goquery.Selection, kind domain.RegionKind) {
	node := a.Get(0)
	if node == nil {
		return
	}
	if _, taken := regions[node]; !taken {
		regions[node] = kind
	}
}

func forceRegion(regions map[*html.Node]domain.RegionKind, a *goquery.Selection, kind domain.RegionKind) {
	if node := a.Get(0); node != nil {
		regions[node] = kind
	}
}

func hasAncestor(sel *goquery.Selection, names ...string) bool {
	for _, name := range names {
		if sel.ParentsFiltered(name).Length() > 0 {
			return true
		}
	}
	return false
}

func classMatches(sel *goquery.Selection, expr *regexp.Regexp) bool {
	class, _ := sel.Attr("class")
	id, _ := sel.Attr("id")
	return expr.MatchString(class) || expr.MatchString(id)
}

func ancestorClassMatches(sel *goquery.Selection, expr *regexp.Regexp) bool {
	matched := false
	sel.Parents().EachWithBreak(func(_ int, parent *goquery.Selection) bool {
		if classMatches(parent, expr) {
			matched = true
			return false
		}
		return true
	})
	return matched
}

func isNumeric(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// normalizeText lower-cases, strips punctuation, and collapses whitespace.
func normalizeText(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	lastSpace := true
	for _, r := range strings.ToLower(raw) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case !lastSpace:
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

func cleanTitle(title string) string {
	title = strings.TrimSpace(title)
	for _, suffix := range titleSuffixes {
		title = strings.TrimSuffix(title, suffix)
	}
	return strings.TrimSpace(title)
}

func extractSiteName(doc *goquery.Document, title string) string {
	if name, ok := doc.Find(`meta[property="og:site_name"]`).Attr("content"); ok {
		if name = strings.TrimSpace(name); name != "" {
			return name
		}
	}
	if title != "" && len(title) < 100 {
		return title
	}
	if alt, ok := doc.Find(`img[alt*="logo"], img[alt*="Logo"]`).Attr("alt"); ok {
		if alt = strings.TrimSpace(alt); alt != "" {
			return alt
		}
	}
	return ""
}

func extractDescription(doc *goquery.Document) string {
	for _, selector := range []string{`meta[name="description"]`, `meta[property="og:description"]`} {
		if desc, ok := doc.Find(selector).Attr("content"); ok {
			desc = strings.TrimSpace(desc)
			if len(desc) >= minDescriptionLen/2 && len(desc) <= maxDescriptionLen {
				return desc
			}
		}
	}
	var fallback string
	doc.Find("p").EachWithBreak(func(i int, p *goquery.Selection) bool {
		if i >= 5 {
			return false
		}
		text := strings.TrimSpace(p.Text())
		if len(text) >= minDescriptionLen && len(text) <= maxDescriptionLen {
			fallback = text
			return false
		}
		return true
	})
	return fallback
}
