package ports

import (
	"context"
	"time"

	"SiteProfiler/internal/domain"
)

// Fetcher is the injected page-fetch capability. Implementations own the
// transport (client, timeouts, redirects); failures surface as
// *domain.NetworkError. Retry policy belongs to the orchestration layer,
// not here.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ConfigurationRepository persists synthesized site configurations for the
// downstream collectors; Exists lets batch runs skip known sites.
type ConfigurationRepository interface {
	Exists(ctx context.Context, sourceURL string) (bool, error)
	SaveConfiguration(ctx context.Context, cfg domain.SiteConfiguration) error
}

// Notifier streams analysis digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when recurring analyses execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
