package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/raphaelguye/srrc-calendar-scraper/internal/event"
	"github.com/raphaelguye/srrc-calendar-scraper/internal/logger"
	"github.com/raphaelguye/srrc-calendar-scraper/internal/metrics"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultEndpoint  = "https://srrc.ch/wp-admin/admin-ajax.php"
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
	DefaultTimeout   = 10 * time.Second
	DefaultMaxOffset = 20
)

// Options configures a Scraper. Zero values fall back to the defaults above.
type Options struct {
	Endpoint    string
	UserAgent   string
	Timeout     time.Duration
	Retries     int
	MaxOffset   int
	Concurrency int

	// Fetcher replaces the HTTP fetcher built from Endpoint/UserAgent/Timeout/Retries
	Fetcher PageFetcher
	Metrics *metrics.Recorder
}

// Scraper collects events from the SRRC calendar
type Scraper struct {
	fetcher     PageFetcher
	maxOffset   int
	concurrency int
	metrics     *metrics.Recorder
}

// New creates a new Scraper instance
func New(opts Options) *Scraper {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxOffset <= 0 {
		opts.MaxOffset = DefaultMaxOffset
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Fetcher == nil {
		opts.Fetcher = NewFetcher(FetcherOptions{
			Endpoint:  opts.Endpoint,
			UserAgent: opts.UserAgent,
			Timeout:   opts.Timeout,
			Retries:   opts.Retries,
		})
	}

	return &Scraper{
		fetcher:     opts.Fetcher,
		maxOffset:   opts.MaxOffset,
		concurrency: opts.Concurrency,
		metrics:     opts.Metrics,
	}
}

// Collect scans every window and returns the events in window order, then page
// order within a window. Windows may be fetched in parallel; each fills its own
// buffer and buffers are joined in window order afterwards.
//
// Only cancellation of ctx is returned as an error; fetch failures end a single
// window.
func (s *Scraper) Collect(ctx context.Context, windows []string) ([]*event.Event, error) {
	results := make([][]*event.Event, len(windows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, start := range windows {
		g.Go(func() error {
			events, err := s.CollectWindow(gctx, start)
			results[i] = events
			return err
		})
	}
	err := g.Wait()

	all := make([]*event.Event, 0)
	for _, events := range results {
		all = append(all, events...)
	}
	return all, err
}

// CollectWindow pages through one window until the endpoint reports it
// exhausted, a fetch fails, or the offset passes the safety cap.
func (s *Scraper) CollectWindow(ctx context.Context, start string) ([]*event.Event, error) {
	events := make([]*event.Event, 0)

	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return events, err
		}

		page, err := s.fetcher.FetchPage(ctx, start, offset)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return events, ctxErr
			}
			s.metrics.FetchFailures.Inc()
			break
		}
		s.metrics.PagesFetched.Inc()

		if strings.TrimSpace(page.HTML) != "" {
			parsed, err := s.parseEvents(strings.NewReader(page.HTML))
			if err != nil {
				logger.Warn("Error parsing page", logger.Fields{
					"window": start,
					"offset": offset,
					"error":  err.Error(),
				})
			} else {
				events = append(events, parsed...)
			}
		}

		if page.Exhausted() {
			break
		}

		offset++
		if offset > s.maxOffset {
			s.metrics.SafetyCapHits.Inc()
			logger.Warn(fmt.Sprintf("Warning: Reached max offset for %s", start), logger.Fields{
				"window": start,
				"offset": offset,
			})
			break
		}
	}

	s.metrics.WindowsScanned.Inc()
	if len(events) > 0 {
		logger.Info(fmt.Sprintf("✓ %s: Found %d events", start, len(events)), logger.Fields{
			"window": start,
			"events": len(events),
		})
	}
	return events, nil
}
