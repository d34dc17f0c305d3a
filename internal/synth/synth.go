// Package synth assembles the final SiteConfiguration from the detection
// result and the ranked candidate list. Pure data shaping: no network or
// persistence side effects happen here.
package synth

import (
	"time"

	"SiteProfiler/internal/domain"
)

// FlagThreshold is the capability confidence at or above which the
// corresponding derived flag switches on. One tunable place, no scattered
// literals.
const FlagThreshold = 0.5

var flagRules = []struct {
	Flag   domain.FlagName
	Region domain.RegionKind
}{
	{domain.FlagHasTopNav, domain.RegionNavTop},
	{domain.FlagHasSideBar, domain.RegionNavSide},
	{domain.FlagHasPagination, domain.RegionPagination},
	{domain.FlagHasSearch, domain.RegionSearchForm},
	{domain.FlagHasCategories, domain.RegionCategoryList},
	{domain.FlagHasContentGrid, domain.RegionContentTable},
}

// Synthesize combines classifier output, capability confidences, and the
// ranked candidates into one immutable configuration value. Candidates are
// assumed already sorted by descending score.
func Synthesize(sourceURL string, summary *domain.StructuralSummary, detection domain.DetectionResult, candidates []domain.CandidateURL, now time.Time) domain.SiteConfiguration {
	flags := make(map[domain.FlagName]bool, len(flagRules))
	for _, rule := range flagRules {
		flags[rule.Flag] = detection.Capabilities[rule.Region] >= FlagThreshold
	}

	cfg := domain.SiteConfiguration{
		SourceURL:   sourceURL,
		Detection:   detection,
		Candidates:  candidates,
		Flags:       flags,
		GeneratedAt: now,
	}
	if summary != nil {
		cfg.SiteName = summary.SiteName
		cfg.Description = summary.Description
	}
	return cfg
}
