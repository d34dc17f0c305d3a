package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"SiteProfiler/internal/domain"
	"SiteProfiler/internal/ports"
)

// Site is one entry of the batch input sequence. The list of websites to
// analyze is owned by the caller; the batch holds no state between runs.
type Site struct {
	URL            string
	AllowedDomains []string
}

// BatchDeps wires the pipeline with its downstream collaborators.
type BatchDeps struct {
	Pipeline   *Pipeline
	Repository ports.ConfigurationRepository
	Notifier   ports.Notifier
	Logger     *slog.Logger

	// Workers bounds concurrent runs; PerHostDelay is the politeness gap
	// between run starts against the same host.
	Workers      int
	PerHostDelay time.Duration
	MaxDepth     int
}

// BatchSummary reports the outcome of one batch invocation.
type BatchSummary struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
	Reports   []domain.AnalysisReport
}

// Batch runs independent analyses over a fixed worker pool. Runs share
// nothing mutable; a failed run never aborts the rest of the batch.
type Batch struct {
	pipeline     *Pipeline
	repository   ports.ConfigurationRepository
	notifier     ports.Notifier
	logger       *slog.Logger
	workers      int
	maxDepth     int
	perHostDelay time.Duration
}

// NewBatch constructs the batch runner.
func NewBatch(deps BatchDeps) *Batch {
	workers := deps.Workers
	if workers < 1 {
		workers = 1
	}
	return &Batch{
		pipeline:     deps.Pipeline,
		repository:   deps.Repository,
		notifier:     deps.Notifier,
		logger:       deps.Logger,
		workers:      workers,
		maxDepth:     deps.MaxDepth,
		perHostDelay: deps.PerHostDelay,
	}
}

// Run analyzes every site, persists synthesized configurations, and
// publishes a digest of the outcomes.
func (b *Batch) Run(ctx context.Context, sites []Site) BatchSummary {
	summary := BatchSummary{Total: len(sites)}
	if b.pipeline == nil || len(sites) == 0 {
		return summary
	}

	jobs := make(chan Site)
	limiter := newHostLimiter(b.perHostDelay)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for site := range jobs {
				outcome := b.runOne(ctx, site, limiter)

				mu.Lock()
				switch outcome.result {
				case runSkipped:
					summary.Skipped++
				case runSucceeded:
					summary.Succeeded++
					summary.Reports = append(summary.Reports, outcome.report)
				default:
					summary.Failed++
					summary.Reports = append(summary.Reports, outcome.report)
				}
				mu.Unlock()
			}
		}()
	}

	for _, site := range sites {
		select {
		case jobs <- site:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	if b.notifier != nil && summary.Total > summary.Skipped {
		if err := b.notifier.PublishDigest(ctx, b.buildDigest(summary)); err != nil {
			b.warn("publish digest", "error", err)
		}
	}
	return summary
}

type runResult int

const (
	runSucceeded runResult = iota
	runFailed
	runSkipped
)

type runOutcome struct {
	result runResult
	report domain.AnalysisReport
}

func (b *Batch) runOne(ctx context.Context, site Site, limiter *hostLimiter) runOutcome {
	if b.repository != nil {
		exists, err := b.repository.Exists(ctx, site.URL)
		if err != nil {
			b.warn("existence check", "url", site.URL, "error", err)
		} else if exists {
			b.debug("already analyzed, skipping", "url", site.URL)
			return runOutcome{result: runSkipped}
		}
	}

	limiter.wait(ctx, hostOf(site.URL))

	report := b.pipeline.Analyze(ctx, site.URL, RunOptions{
		MaxDepth:       b.maxDepth,
		AllowedDomains: site.AllowedDomains,
	})
	if report.Stage != domain.StageSynthesized || report.Config == nil {
		return runOutcome{result: runFailed, report: report}
	}

	if b.repository != nil {
		if err := b.repository.SaveConfiguration(ctx, *report.Config); err != nil {
			b.warn("persist configuration", "url", site.URL, "error", err)
			report.Err = err
			return runOutcome{result: runFailed, report: report}
		}
	}
	return runOutcome{result: runSucceeded, report: report}
}

func (b *Batch) buildDigest(summary BatchSummary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Site analysis batch: %d analyzed, %d ok, %d failed, %d skipped\n\n",
		summary.Total-summary.Skipped, summary.Succeeded, summary.Failed, summary.Skipped)

	for _, report := range summary.Reports {
		if report.Config == nil {
			fmt.Fprintf(&sb, "- %s\nFAILED: %v\n\n", report.SourceURL, report.Err)
			continue
		}
		cfg := report.Config
		fmt.Fprintf(&sb, "- %s\nType: %s (%.0f%%)\nCandidates: %d\n%s\n\n",
			cfg.SiteName,
			cfg.Detection.SiteType,
			cfg.Detection.Confidence*100,
			len(cfg.Candidates),
			cfg.SourceURL)
	}
	return strings.TrimSpace(sb.String())
}

func (b *Batch) debug(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Debug(msg, args...)
	}
}

func (b *Batch) warn(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Warn(msg, args...)
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return strings.ToLower(u.Hostname())
}

// hostLimiter enforces a minimum delay between run starts against one
// host, since depth-1 discovery already issues extra requests there.
type hostLimiter struct {
	delay time.Duration
	mu    sync.Mutex
	last  map[string]time.Time
}

func newHostLimiter(delay time.Duration) *hostLimiter {
	return &hostLimiter{delay: delay, last: map[string]time.Time{}}
}

func (l *hostLimiter) wait(ctx context.Context, host string) {
	if l.delay <= 0 || host == "" {
		return
	}

	l.mu.Lock()
	now := time.Now()
	next := l.last[host].Add(l.delay)
	if next.Before(now) {
		next = now
	}
	l.last[host] = next
	l.mu.Unlock()

	if sleep := time.Until(next); sleep > 0 {
		select {
		case <-time.After(sleep):
		case <-ctx.Done():
		}
	}
}
