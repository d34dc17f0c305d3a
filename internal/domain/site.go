package domain

import "time"

// RegionKind labels a structural area of a page that links can belong to.
type RegionKind string

const (
	RegionNavTop       RegionKind = "NAV_TOP"
	RegionNavSide      RegionKind = "NAV_SIDE"
	RegionPagination   RegionKind = "PAGINATION"
	RegionSearchForm   RegionKind = "SEARCH_FORM"
	RegionCategoryList RegionKind = "CATEGORY_LIST"
	RegionContentTable RegionKind = "CONTENT_TABLE"
	// RegionBody marks links found in generic body text outside any
	// detected region.
	RegionBody RegionKind = "BODY"
)

// SiteType is the coarse content-category label assigned to a website.
type SiteType string

const (
	TypeMCQPlatform SiteType = "MCQ_PLATFORM"
	TypeExamPrep    SiteType = "EXAM_PREP"
	TypeEducational SiteType = "EDUCATIONAL"
	TypeNewsPortal  SiteType = "NEWS_PORTAL"
	TypeBlog        SiteType = "BLOG"
	TypeECommerce   SiteType = "E_COMMERCE"
	TypeForum       SiteType = "FORUM"
	TypeGovernment  SiteType = "GOVERNMENT"
	TypeUnknown     SiteType = "UNKNOWN"
)

// LinkCandidate is a raw anchor extracted from the page before
// normalization and ranking.
type LinkCandidate struct {
	Href       string
	AnchorText string
	Region     RegionKind
}

// StructuralSummary is the normalized view of one fetched page. It is
// created fresh per fetch and never mutated afterwards.
type StructuralSummary struct {
	Title       string
	SiteName    string
	Description string

	// Tokens preserves document order; Frequencies counts each token with
	// stop-words already removed. Text is the normalized full text used
	// for phrase matching.
	Tokens      []string
	Frequencies map[string]int
	Text        string

	Links   []LinkCandidate
	Regions map[RegionKind]bool
}

// Empty reports whether the summary carries no usable signals, which is
// what a malformed or blank document degrades to.
func (s *StructuralSummary) Empty() bool {
	return s == nil || (len(s.Tokens) == 0 && len(s.Links) == 0 && len(s.Regions) == 0)
}

// HasRegion is a nil-safe region lookup.
func (s *StructuralSummary) HasRegion(kind RegionKind) bool {
	return s != nil && s.Regions[kind]
}

// DetectionResult pairs the winning site type with its confidence and the
// per-capability confidences. Confidences always stay within [0,1] and
// SiteType is a catalogue member or TypeUnknown, never empty.
type DetectionResult struct {
	SiteType     SiteType
	Confidence   float64
	Capabilities map[RegionKind]float64
}

// Origin distinguishes candidates on the source's registrable domain from
// explicitly allow-listed external ones.
type Origin string

const (
	OriginSameDomain  Origin = "SAME_DOMAIN"
	OriginCrossDomain Origin = "CROSS_DOMAIN"
)

// CandidateURL is one link judged worth deeper extraction. URLs are unique
// in normalized form within a single discovery run.
type CandidateURL struct {
	URL        string
	AnchorText string
	Score      float64
	Origin     Origin
}

// FlagName identifies a derived processing flag on a configuration.
type FlagName string

const (
	FlagHasTopNav      FlagName = "HAS_TOP_NAV"
	FlagHasSideBar     FlagName = "HAS_SIDE_BAR"
	FlagHasPagination  FlagName = "HAS_PAGINATION"
	FlagHasSearch      FlagName = "HAS_SEARCH"
	FlagHasCategories  FlagName = "HAS_CATEGORY_LIST"
	FlagHasContentGrid FlagName = "HAS_CONTENT_TABLE"
)

// SiteConfiguration is the synthesized output of one analysis run: the
// immutable value handed to the persistence collaborator. Candidates are
// ordered by descending score.
type SiteConfiguration struct {
	SourceURL   string
	SiteName    string
	Description string
	Detection   DetectionResult
	Candidates  []CandidateURL
	Flags       map[FlagName]bool
	GeneratedAt time.Time
}

// RunStage enumerates pipeline milestones for one analysis run.
type RunStage string

const (
	StageFetched      RunStage = "fetched"
	StageExtracted    RunStage = "extracted"
	StageClassified   RunStage = "classified"
	StageCapabilities RunStage = "capabilities_detected"
	StageDiscovered   RunStage = "urls_discovered"
	StageSynthesized  RunStage = "synthesized"
	StageFailed       RunStage = "failed"
)

// AnalysisReport is the terminal outcome of a run: either a configuration
// (StageSynthesized) or a failure cause (StageFailed, fetch errors only).
type AnalysisReport struct {
	RunID      string
	SourceURL  string
	Stage      RunStage
	Config     *SiteConfiguration
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}
