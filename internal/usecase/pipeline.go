package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"SiteProfiler/internal/capability"
	"SiteProfiler/internal/classify"
	"SiteProfiler/internal/discover"
	"SiteProfiler/internal/domain"
	"SiteProfiler/internal/extract"
	"SiteProfiler/internal/ports"
	"SiteProfiler/internal/synth"
)

// PipelineDeps wires the analysis components into the orchestration
// pipeline.
type PipelineDeps struct {
	Fetcher      ports.Fetcher
	Classifier   *classify.Classifier
	Capabilities *capability.Registry
	Discoverer   *discover.Discoverer
	Logger       *slog.Logger

	// MaxRetries bounds re-fetch attempts for the initial page; 0 means a
	// single attempt.
	MaxRetries int
}

// RunOptions carries the per-run knobs a caller may override.
type RunOptions struct {
	MaxDepth       int
	AllowedDomains []string
}

// Pipeline implements one analysis run as the stage sequence
// fetch → extract → classify → detect → discover → synthesize. Only the
// initial fetch can fail a run; every later stage degrades into the
// output value instead.
type Pipeline struct {
	fetcher      ports.Fetcher
	classifier   *classify.Classifier
	capabilities *capability.Registry
	discoverer   *discover.Discoverer
	logger       *slog.Logger
	maxRetries   int
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		fetcher:      deps.Fetcher,
		classifier:   deps.Classifier,
		capabilities: deps.Capabilities,
		discoverer:   deps.Discoverer,
		logger:       deps.Logger,
		maxRetries:   deps.MaxRetries,
	}
}

// Analyze runs the full pipeline for one source URL and always returns a
// terminal report: StageSynthesized with a configuration, or StageFailed
// carrying the fetch error.
func (p *Pipeline) Analyze(ctx context.Context, sourceURL string, opts RunOptions) domain.AnalysisReport {
	report := domain.AnalysisReport{
		RunID:     uuid.NewString(),
		SourceURL: sourceURL,
		StartedAt: time.Now(),
	}

	body, err := p.fetchWithRetry(ctx, sourceURL)
	if err != nil {
		p.debug("run failed at fetch", "run_id", report.RunID, "url", sourceURL, "error", err)
		report.Stage = domain.StageFailed
		report.Err = err
		report.FinishedAt = time.Now()
		return report
	}
	p.stage(report.RunID, domain.StageFetched)

	summary, err := extract.Extract(string(body))
	if err != nil {
		// Malformed markup degrades to an empty summary, which cascades
		// to UNKNOWN type, zero capabilities, zero candidates.
		p.debug("extraction degraded", "run_id", report.RunID, "url", sourceURL, "error", err)
		summary = &domain.StructuralSummary{
			Frequencies: map[string]int{},
			Regions:     map[domain.RegionKind]bool{},
		}
	}
	p.stage(report.RunID, domain.StageExtracted)

	siteType, confidence := p.classifier.Classify(summary)
	p.stage(report.RunID, domain.StageClassified, "site_type", string(siteType), "confidence", confidence)

	detection := domain.DetectionResult{
		SiteType:     siteType,
		Confidence:   confidence,
		Capabilities: p.capabilities.Detect(summary),
	}
	p.stage(report.RunID, domain.StageCapabilities)

	var candidates []domain.CandidateURL
	if !summary.Empty() && p.discoverer != nil {
		candidates, err = p.discoverer.Discover(ctx, summary, sourceURL, siteType, discover.Options{
			MaxDepth:       opts.MaxDepth,
			AllowedDomains: opts.AllowedDomains,
		})
		if err != nil {
			if ctx.Err() != nil {
				report.Stage = domain.StageFailed
				report.Err = ctx.Err()
				report.FinishedAt = time.Now()
				return report
			}
			p.debug("discovery degraded", "run_id", report.RunID, "url", sourceURL, "error", err)
			candidates = nil
		}
	}
	p.stage(report.RunID, domain.StageDiscovered, "candidates", len(candidates))

	cfg := synth.Synthesize(sourceURL, summary, detection, candidates, time.Now())
	report.Stage = domain.StageSynthesized
	report.Config = &cfg
	report.FinishedAt = time.Now()
	p.stage(report.RunID, domain.StageSynthesized)
	return report
}

// fetchWithRetry retries the initial fetch with bounded exponential
// backoff; cancellation cuts the retry loop immediately.
func (p *Pipeline) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	op := func() error {
		b, err := p.fetcher.Fetch(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		body = b
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(p.maxRetries)), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return body, nil
}

func (p *Pipeline) stage(runID string, stage domain.RunStage, args ...any) {
	if p.logger != nil {
		p.logger.Debug("stage reached", append([]any{"run_id", runID, "stage", string(stage)}, args...)...)
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
