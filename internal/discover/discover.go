// Package discover walks a page's link list, filters it to same-origin
// content-bearing candidates, scores each by heuristics, and optionally
// expands one bounded hop through the injected fetch capability.
package discover

import (
	"context"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/net/publicsuffix"

	"SiteProfiler/internal/domain"
	"SiteProfiler/internal/extract"
	"SiteProfiler/internal/ports"
	"SiteProfiler/internal/profile"
)

const (
	// maxExpandPerPass bounds the fan-out of one recursion step: only the
	// highest-scoring unvisited candidates get fetched.
	maxExpandPerPass = 10
	// maxCandidates caps the accumulated result set across all passes.
	maxCandidates = 100

	anchorShare = 0.5
	pathShare   = 0.2
	regionShare = 0.3

	// anchorSaturation is the matched keyword weight at which the anchor
	// component maxes out; a single strong keyword gets there.
	anchorSaturation = 3.0

	lowValuePenalty = 0.2
)

var lowValueWords = []string{"home", "about", "contact", "privacy", "login", "register", "terms"}

var regionBonus = map[domain.RegionKind]float64{
	domain.RegionCategoryList: 1.0,
	domain.RegionContentTable: 1.0,
	domain.RegionNavTop:       0.6,
	domain.RegionNavSide:      0.6,
	domain.RegionPagination:   0.6,
	domain.RegionBody:         0.2,
}

// Options configures one discovery run.
type Options struct {
	// MaxDepth 0 means first-pass links only; each extra level costs one
	// fetch+extract cycle per expanded candidate.
	MaxDepth int
	// AllowedDomains lists registrable domains beyond the source's own
	// whose links are kept as CROSS_DOMAIN candidates.
	AllowedDomains []string
}

// Discoverer ranks candidate URLs. Safe for concurrent use; all per-run
// state lives on the stack of Discover.
type Discoverer struct {
	fetcher ports.Fetcher
	logger  *slog.Logger
}

// New wires the fetch capability used for bounded-depth expansion.
func New(fetcher ports.Fetcher, logger *slog.Logger) *Discoverer {
	return &Discoverer{fetcher: fetcher, logger: logger}
}

// Discover returns deduplicated candidates sorted by descending score;
// equal scores keep first-discovered order. The summary's own links form
// the first pass; depth > 0 expands the best candidates one hop at a time.
func (d *Discoverer) Discover(ctx context.Context, summary *domain.StructuralSummary, sourceURL string, siteType domain.SiteType, opts Options) ([]domain.CandidateURL, error) {
	base, err := url.Parse(sourceURL)
	if err != nil {
		return nil, err
	}

	prof, _ := profile.ByType(siteType)

	run := &runState{
		sourceDomain: registrableDomain(base.Hostname()),
		sourceNorm:   normalizeParsed(base),
		allowed:      normalizeAllowed(opts.AllowedDomains),
		prof:         prof,
		byURL:        map[string]int{},
		visited:      map[string]bool{},
	}
	run.visited[run.sourceNorm] = true

	run.merge(summary, base)

	for depth := opts.MaxDepth; depth > 0 && d.fetcher != nil; depth-- {
		expanded := false
		for _, candidate := range run.expansionFrontier() {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			run.visited[candidate.URL] = true

			body, fetchErr := d.fetcher.Fetch(ctx, candidate.URL)
			if fetchErr != nil {
				d.debug("skip expansion", "url", candidate.URL, "error", fetchErr)
				continue
			}
			hopSummary, exErr := extract.Extract(string(body))
			if exErr != nil {
				d.debug("skip expansion", "url", candidate.URL, "error", exErr)
				continue
			}
			hopBase, parseErr := url.Parse(candidate.URL)
			if parseErr != nil {
				continue
			}
			run.merge(hopSummary, hopBase)
			expanded = true
		}
		if !expanded {
			break
		}
	}

	return run.ranked(), nil
}

func (d *Discoverer) debug(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}

// runState accumulates candidates for one discovery run. byURL indexes the
// ordered slice so duplicates keep their first-seen position and the
// highest score observed.
type runState struct {
	sourceDomain string
	sourceNorm   string
	allowed      map[string]bool
	prof         *profile.TypeProfile

	ordered []domain.CandidateURL
	byURL   map[string]int
	visited map[string]bool
}

func (r *runState) merge(summary *domain.StructuralSummary, base *url.URL) {
	for _, link := range summary.Links {
		normalized, ok := normalizeHref(link.Href, base)
		if !ok || normalized == r.sourceNorm {
			continue
		}

		origin, keep := r.originOf(normalized)
		if !keep {
			continue
		}

		score := r.score(link, normalized)
		if idx, seen := r.byURL[normalized]; seen {
			if score > r.ordered[idx].Score {
				r.ordered[idx].Score = score
				r.ordered[idx].AnchorText = link.AnchorText
			}
			continue
		}
		if len(r.ordered) >= maxCandidates {
			continue
		}
		r.byURL[normalized] = len(r.ordered)
		r.ordered = append(r.ordered, domain.CandidateURL{
			URL:        normalized,
			AnchorText: link.AnchorText,
			Score:      score,
			Origin:     origin,
		})
	}
}

func (r *runState) originOf(normalized string) (domain.Origin, bool) {
	parsed, err := url.Parse(normalized)
	if err != nil {
		return "", false
	}
	dom := registrableDomain(parsed.Hostname())
	if dom == r.sourceDomain {
		return domain.OriginSameDomain, true
	}
	if r.allowed[dom] {
		return domain.OriginCrossDomain, true
	}
	return "", false
}

// score blends anchor keyword overlap with the site type's profile, path
// shallowness (index and listing pages sit high), and the containing
// region, then applies the low-value-page penalty.
func (r *runState) score(link domain.LinkCandidate, normalized string) float64 {
	anchor := strings.ToLower(link.AnchorText)

	var anchorScore float64
	if r.prof != nil {
		var matched float64
		for _, kw := range r.prof.Keywords {
			if strings.Contains(anchor, kw.Text) || strings.Contains(strings.ToLower(normalized), kw.Text) {
				matched += kw.Weight
			}
		}
		anchorScore = matched / anchorSaturation
		if anchorScore > 1 {
			anchorScore = 1
		}
	}

	pathScore := 1.0 / float64(1+pathSegments(normalized))

	bonus, ok := regionBonus[link.Region]
	if !ok {
		bonus = regionBonus[domain.RegionBody]
	}

	score := anchorShare*anchorScore + pathShare*pathScore + regionShare*bonus
	for _, word := range lowValueWords {
		if strings.Contains(anchor, word) {
			score -= lowValuePenalty
			break
		}
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// expansionFrontier picks the best unvisited candidates for the next hop.
func (r *runState) expansionFrontier() []domain.CandidateURL {
	frontier := make([]domain.CandidateURL, 0, len(r.ordered))
	for _, c := range r.ordered {
		if !r.visited[c.URL] && c.Origin == domain.OriginSameDomain {
			frontier = append(frontier, c)
		}
	}
	sort.SliceStable(frontier, func(i, j int) bool {
		return frontier[i].Score > frontier[j].Score
	})
	if len(frontier) > maxExpandPerPass {
		frontier = frontier[:maxExpandPerPass]
	}
	return frontier
}

// ranked returns the accumulated set in descending score order; the
// stable sort preserves first-seen order between equal scores.
func (r *runState) ranked() []domain.CandidateURL {
	out := make([]domain.CandidateURL, len(r.ordered))
	copy(out, r.ordered)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// normalizeHref resolves href against base and normalizes the result:
// fragment dropped, trailing slash stripped, host lower-cased. Non-content
// schemes (mailto, javascript, tel) and bare fragments are rejected.
func normalizeHref(href string, base *url.URL) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	lower := strings.ToLower(href)
	for _, scheme := range []string{"mailto:", "javascript:", "tel:", "data:"} {
		if strings.HasPrefix(lower, scheme) {
			return "", false
		}
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	return normalizeParsed(resolved), true
}

func normalizeParsed(u *url.URL) string {
	clone := *u
	clone.Fragment = ""
	clone.Host = strings.ToLower(clone.Host)
	if clone.Path != "/" {
		clone.Path = strings.TrimSuffix(clone.Path, "/")
	}
	return clone.String()
}

func pathSegments(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}
	segments := 0
	for _, part := range strings.Split(u.Path, "/") {
		if part != "" {
			segments++
		}
	}
	return segments
}

func normalizeAllowed(domains []string) map[string]bool {
	allowed := make(map[string]bool, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			allowed[registrableDomain(d)] = true
		}
	}
	return allowed
}

// registrableDomain reduces a hostname to its eTLD+1; hosts the public
// suffix list cannot resolve (IPs, localhost, test servers) compare as
// themselves.
func registrableDomain(host string) string {
	host = strings.ToLower(host)
	if dom, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return dom
	}
	return host
}
