package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SiteProfiler/internal/capability"
	"SiteProfiler/internal/classify"
	"SiteProfiler/internal/domain"
)

// routingFetcher serves per-URL bodies; unknown URLs fail with a network
// error so a bad site never blocks its batch.
type routingFetcher struct {
	pages map[string]string
}

func (f *routingFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	if body, ok := f.pages[url]; ok {
		return []byte(body), nil
	}
	return nil, &domain.NetworkError{URL: url, Status: 500}
}

type fakeRepository struct {
	mu        sync.Mutex
	existing  map[string]bool
	saveErr   error
	saved     []domain.SiteConfiguration
	existErrs map[string]error
}

func (r *fakeRepository) Exists(_ context.Context, url string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.existErrs[url]; err != nil {
		return false, err
	}
	return r.existing[url], nil
}

func (r *fakeRepository) SaveConfiguration(_ context.Context, cfg domain.SiteConfiguration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, cfg)
	return nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	digests []string
}

func (n *fakeNotifier) PublishDigest(_ context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.digests = append(n.digests, text)
	return nil
}

func newTestBatch(fetcher *routingFetcher, repo *fakeRepository, notifier *fakeNotifier, workers int) *Batch {
	pipeline := NewPipeline(PipelineDeps{
		Fetcher:      fetcher,
		Classifier:   classify.New(),
		Capabilities: capability.NewRegistry(),
	})
	deps := BatchDeps{
		Pipeline: pipeline,
		Workers:  workers,
	}
	// Assign only non-nil fakes so a nil pointer does not become a
	// non-nil interface value inside BatchDeps.
	if repo != nil {
		deps.Repository = repo
	}
	if notifier != nil {
		deps.Notifier = notifier
	}
	return NewBatch(deps)
}

func TestBatchRunPersistsConfigurations(t *testing.T) {
	t.Parallel()

	fetcher := &routingFetcher{pages: map[string]string{
		"https://alpha.test/": mcqFrontPage,
		"https://beta.test/":  mcqFrontPage,
	}}
	repo := &fakeRepository{}

	summary := newTestBatch(fetcher, repo, nil, 2).Run(context.Background(), []Site{
		{URL: "https://alpha.test/"},
		{URL: "https://beta.test/"},
	})

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Zero(t, summary.Failed)
	assert.Len(t, repo.saved, 2)
}

func TestBatchSkipsAlreadyAnalyzed(t *testing.T) {
	t.Parallel()

	fetcher := &routingFetcher{pages: map[string]string{
		"https://alpha.test/": mcqFrontPage,
		"https://beta.test/":  mcqFrontPage,
	}}
	repo := &fakeRepository{existing: map[string]bool{"https://beta.test/": true}}

	summary := newTestBatch(fetcher, repo, nil, 1).Run(context.Background(), []Site{
		{URL: "https://alpha.test/"},
		{URL: "https://beta.test/"},
	})

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, repo.saved, 1)
	assert.Equal(t, "https://alpha.test/", repo.saved[0].SourceURL)
}

func TestBatchFailureDoesNotAbortOthers(t *testing.T) {
	t.Parallel()

	// beta.test is not routed, so its fetch fails every attempt.
	fetcher := &routingFetcher{pages: map[string]string{
		"https://alpha.test/": mcqFrontPage,
	}}
	repo := &fakeRepository{}

	summary := newTestBatch(fetcher, repo, nil, 2).Run(context.Background(), []Site{
		{URL: "https://beta.test/"},
		{URL: "https://alpha.test/"},
	})

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Len(t, repo.saved, 1)
	assert.Len(t, summary.Reports, 2)
}

func TestBatchSaveErrorCountsAsFailure(t *testing.T) {
	t.Parallel()

	fetcher := &routingFetcher{pages: map[string]string{
		"https://alpha.test/": mcqFrontPage,
	}}
	repo := &fakeRepository{saveErr: errors.New("connection reset")}

	summary := newTestBatch(fetcher, repo, nil, 1).Run(context.Background(), []Site{
		{URL: "https://alpha.test/"},
	})

	assert.Zero(t, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Reports, 1)
	assert.Error(t, summary.Reports[0].Err)
}

func TestBatchPublishesDigest(t *testing.T) {
	t.Parallel()

	fetcher := &routingFetcher{pages: map[string]string{
		"https://alpha.test/": mcqFrontPage,
	}}
	notifier := &fakeNotifier{}

	newTestBatch(fetcher, nil, notifier, 1).Run(context.Background(), []Site{
		{URL: "https://alpha.test/"},
		{URL: "https://gone.test/"},
	})

	require.Len(t, notifier.digests, 1)
	assert.Contains(t, notifier.digests[0], "2 analyzed")
	assert.Contains(t, notifier.digests[0], "1 ok")
	assert.Contains(t, notifier.digests[0], "1 failed")
	assert.Contains(t, notifier.digests[0], "MCQ_PLATFORM")
	assert.Contains(t, notifier.digests[0], "FAILED")
}

func TestBatchExistenceCheckErrorStillAnalyzes(t *testing.T) {
	t.Parallel()

	fetcher := &routingFetcher{pages: map[string]string{
		"https://alpha.test/": mcqFrontPage,
	}}
	repo := &fakeRepository{
		existErrs: map[string]error{"https://alpha.test/": errors.New("timeout")},
	}

	summary := newTestBatch(fetcher, repo, nil, 1).Run(context.Background(), []Site{
		{URL: "https://alpha.test/"},
	})

	// A flaky dedup lookup degrades to re-analysis, not to a dropped site.
	assert.Equal(t, 1, summary.Succeeded)
	assert.Len(t, repo.saved, 1)
}
