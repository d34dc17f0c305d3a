// Package classify scores a structural summary against the site-type
// catalogue. Keyword matching runs over an Aho-Corasick automaton built
// once from every profile's keyword set, so one pass over the page text
// finds the hits for all profiles.
package classify

import (
	"math"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"SiteProfiler/internal/domain"
	"SiteProfiler/internal/profile"
)

// Scoring constants. The base shares sum to 1; the co-occurrence boost
// can push a raw total past 1, and the reported confidence clamps to
// [0,1]. Winner selection compares raw totals, so the clamp never
// changes which profile wins.
const (
	tfShare       = 0.4
	coverageShare = 0.3
	structShare   = 0.3

	// coBoostShare rewards keyword and structural evidence appearing on
	// the same page. A question bank whose text says "mcq" AND whose
	// markup carries a content table is a far stronger match than either
	// signal alone; the boost scales with both, so it vanishes when
	// either side is absent.
	coBoostShare = 0.15

	// tfNormalization divides log1p(total hits); hits beyond e^2-1 saturate.
	tfNormalization = 2.0
	// freqCap bounds a single keyword's contribution to the hit total.
	freqCap = 5

	// TieEpsilon is the window within which two profile scores count as
	// tied; structural evidence, then catalogue order, breaks the tie.
	TieEpsilon = 0.01
	// MinConfidence is the floor under which classification reports
	// UNKNOWN with the raw low score.
	MinConfidence = 0.25
)

type keywordRef struct {
	profileIdx int
	keywordIdx int
}

// Classifier is immutable after New and safe for concurrent use.
type Classifier struct {
	profiles []profile.TypeProfile
	matcher  *ahocorasick.Matcher
	patterns []string
	refs     map[string][]keywordRef
}

// New builds the automaton from the static catalogue.
func New() *Classifier {
	profiles := profile.Catalogue()

	c := &Classifier{
		profiles: profiles,
		refs:     map[string][]keywordRef{},
	}
	for pi := range profiles {
		for ki, kw := range profiles[pi].Keywords {
			if _, seen := c.refs[kw.Text]; !seen {
				c.patterns = append(c.patterns, kw.Text)
			}
			c.refs[kw.Text] = append(c.refs[kw.Text], keywordRef{profileIdx: pi, keywordIdx: ki})
		}
	}
	if len(c.patterns) > 0 {
		c.matcher = ahocorasick.NewStringMatcher(c.patterns)
	}
	return c
}

type profileScore struct {
	total      float64
	structural float64
}

// Classify returns the winning site type and its confidence on [0,1].
// Identical summaries always produce identical results: the only inputs
// are the summary and the fixed catalogue.
func (c *Classifier) Classify(summary *domain.StructuralSummary) (domain.SiteType, float64) {
	if summary.Empty() || c.matcher == nil {
		return domain.TypeUnknown, 0
	}

	scores := c.score(summary)

	best := -1
	for i := range scores {
		if best < 0 || scores[i].total > scores[best].total {
			best = i
		}
	}
	if best < 0 {
		return domain.TypeUnknown, 0
	}

	// Profiles within epsilon of the leader compete on structural
	// evidence; catalogue order wins remaining ties because the loop
	// only replaces on strict improvement.
	winner := best
	for i := range scores {
		if scores[i].total >= scores[best].total-TieEpsilon && scores[i].structural > scores[winner].structural {
			winner = i
		}
	}

	confidence := clamp01(scores[winner].total)
	if confidence < MinConfidence {
		return domain.TypeUnknown, confidence
	}
	return c.profiles[winner].Type, confidence
}

func (c *Classifier) score(summary *domain.StructuralSummary) []profileScore {
	totalHits := make([]float64, len(c.profiles))
	matchedWeight := make([]float64, len(c.profiles))

	for _, hit := range c.matcher.Match([]byte(summary.Text)) {
		if hit >= len(c.patterns) {
			continue
		}
		pattern := c.patterns[hit]
		freq := phraseFrequency(summary, pattern)
		if freq == 0 {
			continue
		}
		if freq > freqCap {
			freq = freqCap
		}
		for _, ref := range c.refs[pattern] {
			kw := c.profiles[ref.profileIdx].Keywords[ref.keywordIdx]
			totalHits[ref.profileIdx] += float64(freq)
			matchedWeight[ref.profileIdx] += kw.Weight
		}
	}

	scores := make([]profileScore, len(c.profiles))
	for i := range c.profiles {
		p := &c.profiles[i]

		logTF := math.Min(1, math.Log1p(totalHits[i])/tfNormalization)

		var coverage float64
		if total := p.KeywordWeightTotal(); total > 0 {
			coverage = matchedWeight[i] / total
		}

		var structural float64
		if total := p.StructuralWeightTotal(); total > 0 {
			var present float64
			for _, sig := range p.Structural {
				if summary.HasRegion(sig.Kind) {
					present += sig.Weight
				}
			}
			structural = present / total
		}

		scores[i] = profileScore{
			total: tfShare*logTF + coverageShare*coverage + structShare*structural +
				coBoostShare*logTF*structural,
			structural: structural,
		}
	}
	return scores
}

// phraseFrequency counts pattern occurrences in the normalized text. The
// automaton reports each pattern at most once, so counting happens here;
// substring counting also covers inflected forms ("questions").
func phraseFrequency(summary *domain.StructuralSummary, pattern string) int {
	if pattern == "" {
		return 0
	}
	return strings.Count(summary.Text, pattern)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
