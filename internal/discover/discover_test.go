package discover

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SiteProfiler/internal/domain"
)

type stubFetcher struct {
	calls atomic.Int64
	pages map[string]string
}

func (f *stubFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.calls.Add(1)
	if body, ok := f.pages[url]; ok {
		return []byte(body), nil
	}
	return nil, &domain.NetworkError{URL: url, Status: 404}
}

func frontSummary() *domain.StructuralSummary {
	return &domain.StructuralSummary{
		Tokens: []string{"mcq"},
		Links: []domain.LinkCandidate{
			{Href: "/mcqs/math", AnchorText: "Math MCQs", Region: domain.RegionCategoryList},
			{Href: "/mcqs/math/", AnchorText: "Math MCQs again", Region: domain.RegionBody},
			{Href: "/mcqs/math#top", AnchorText: "Math MCQs anchor", Region: domain.RegionBody},
			{Href: "/about", AnchorText: "About us", Region: domain.RegionBody},
			{Href: "https://other.example.org/mcqs", AnchorText: "External MCQs", Region: domain.RegionBody},
			{Href: "mailto:admin@example.com", AnchorText: "Mail", Region: domain.RegionBody},
			{Href: "javascript:void(0)", AnchorText: "Popup", Region: domain.RegionBody},
			{Href: "#top", AnchorText: "Back to top", Region: domain.RegionBody},
		},
		Regions: map[domain.RegionKind]bool{domain.RegionCategoryList: true},
	}
}

func TestDiscoverDeduplicatesNormalizedURLs(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{}
	candidates, err := New(fetcher, nil).Discover(context.Background(), frontSummary(),
		"https://www.example.com/", domain.TypeMCQPlatform, Options{MaxDepth: 0})
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, c := range candidates {
		assert.Falsef(t, seen[c.URL], "duplicate candidate %s", c.URL)
		seen[c.URL] = true
	}
	// Slash and fragment variants collapse into one candidate.
	assert.True(t, seen["https://www.example.com/mcqs/math"])
}

func TestDiscoverFiltersNonContentAndCrossDomain(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{}
	candidates, err := New(fetcher, nil).Discover(context.Background(), frontSummary(),
		"https://www.example.com/", domain.TypeMCQPlatform, Options{MaxDepth: 0})
	require.NoError(t, err)

	for _, c := range candidates {
		assert.Equal(t, domain.OriginSameDomain, c.Origin)
		assert.NotContains(t, c.URL, "mailto")
		assert.NotContains(t, c.URL, "javascript")
		assert.NotContains(t, c.URL, "other.example.org")
	}
}

func TestDiscoverAllowListAdmitsCrossDomain(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{}
	candidates, err := New(fetcher, nil).Discover(context.Background(), frontSummary(),
		"https://www.example.com/", domain.TypeMCQPlatform, Options{
			MaxDepth:       0,
			AllowedDomains: []string{"example.org"},
		})
	require.NoError(t, err)

	var external *domain.CandidateURL
	for i := range candidates {
		if candidates[i].URL == "https://other.example.org/mcqs" {
			external = &candidates[i]
		}
	}
	require.NotNil(t, external, "allow-listed cross-domain link missing")
	assert.Equal(t, domain.OriginCrossDomain, external.Origin)
}

func TestDiscoverOrderingIsStableDescending(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{}
	candidates, err := New(fetcher, nil).Discover(context.Background(), frontSummary(),
		"https://www.example.com/", domain.TypeMCQPlatform, Options{MaxDepth: 0})
	require.NoError(t, err)
	require.NotEmpty(t, candidates)

	for i := 1; i < len(candidates); i++ {
		assert.LessOrEqual(t, candidates[i].Score, candidates[i-1].Score)
	}
	// The category-region MCQ link outranks the generic about page.
	assert.Equal(t, "https://www.example.com/mcqs/math", candidates[0].URL)
}

func TestDiscoverDepthZeroNeverFetches(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{}
	_, err := New(fetcher, nil).Discover(context.Background(), frontSummary(),
		"https://www.example.com/", domain.TypeMCQPlatform, Options{MaxDepth: 0})
	require.NoError(t, err)

	assert.Zero(t, fetcher.calls.Load())
}

func TestDiscoverDepthOneExpandsBestCandidates(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{
		pages: map[string]string{
			"https://www.example.com/mcqs/math": `<html><body>
				<table>
				<tr><td><a href="/mcqs/math/algebra">Algebra MCQ Quiz</a></td></tr>
				<tr><td><a href="/mcqs/math/geometry">Geometry MCQ Quiz</a></td></tr>
				<tr><td><a href="/mcqs/math/calculus">Calculus MCQ Quiz</a></td></tr>
				</table>
				</body></html>`,
		},
	}

	candidates, err := New(fetcher, nil).Discover(context.Background(), frontSummary(),
		"https://www.example.com/", domain.TypeMCQPlatform, Options{MaxDepth: 1})
	require.NoError(t, err)

	urls := map[string]bool{}
	for _, c := range candidates {
		urls[c.URL] = true
	}
	assert.True(t, urls["https://www.example.com/mcqs/math/algebra"], "hop candidate missing")

	// Every same-domain first-pass candidate is fetched once, nothing more.
	assert.LessOrEqual(t, fetcher.calls.Load(), int64(maxExpandPerPass))
	assert.Greater(t, fetcher.calls.Load(), int64(0))
}

func TestDiscoverKeepsHighestScoreForDuplicates(t *testing.T) {
	t.Parallel()

	summary := &domain.StructuralSummary{
		Links: []domain.LinkCandidate{
			{Href: "/mcqs/past-papers", AnchorText: "link", Region: domain.RegionBody},
			{Href: "/mcqs/past-papers", AnchorText: "MCQ Quiz Papers", Region: domain.RegionCategoryList},
		},
		Regions: map[domain.RegionKind]bool{domain.RegionCategoryList: true},
	}

	fetcher := &stubFetcher{}
	candidates, err := New(fetcher, nil).Discover(context.Background(), summary,
		"https://www.example.com/", domain.TypeMCQPlatform, Options{MaxDepth: 0})
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, "MCQ Quiz Papers", candidates[0].AnchorText)
}
