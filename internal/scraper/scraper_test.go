package scraper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/raphaelguye/srrc-calendar-scraper/internal/metrics"
)

// scriptedFetcher replays pages per window and records every request
type scriptedFetcher struct {
	mu       sync.Mutex
	pages    map[string][]*Page // window -> page per offset
	fail     map[string]int     // window -> offset that fails
	requests map[string][]int
}

func newScriptedFetcher() *scriptedFetcher {
	return &scriptedFetcher{
		pages:    make(map[string][]*Page),
		fail:     make(map[string]int),
		requests: make(map[string][]int),
	}
}

func (f *scriptedFetcher) FetchPage(ctx context.Context, start string, offset int) (*Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests[start] = append(f.requests[start], offset)

	if failAt, ok := f.fail[start]; ok && failAt == offset {
		return nil, fmt.Errorf("%w: scripted failure", ErrNoResult)
	}
	pages := f.pages[start]
	if offset < len(pages) {
		return pages[offset], nil
	}
	// Endless endpoint: always claims more
	return &Page{Count: 1, HasMore: 1}, nil
}

func pageWith(ids []string, count, hasMore int) *Page {
	html := ""
	for _, id := range ids {
		html += article("01", "Jan", "", id, "/"+id, "Event "+id, "")
	}
	return &Page{HTML: html, Count: Number(count), HasMore: Number(hasMore)}
}

func TestCollectWindow_Termination(t *testing.T) {
	tests := []struct {
		name         string
		pages        []*Page
		wantRequests int
		wantEvents   int
	}{
		{
			name:         "stops when has_more_event is 0",
			pages:        []*Page{pageWith([]string{"1", "2"}, 2, 1), pageWith([]string{"3"}, 1, 0), pageWith([]string{"4"}, 1, 1)},
			wantRequests: 2,
			wantEvents:   3,
		},
		{
			name:         "stops when count is 0 despite has_more_event",
			pages:        []*Page{pageWith([]string{"1"}, 1, 1), {Count: 0, HasMore: 1}},
			wantRequests: 2,
			wantEvents:   1,
		},
		{
			name:         "single empty page",
			pages:        []*Page{{}},
			wantRequests: 1,
			wantEvents:   0,
		},
		{
			name:         "safety cap after offset 20",
			pages:        nil,
			wantRequests: 21,
			wantEvents:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newScriptedFetcher()
			f.pages["2025-01-01"] = tt.pages
			rec := metrics.New()
			s := New(Options{Fetcher: f, Metrics: rec})

			events, err := s.CollectWindow(context.Background(), "2025-01-01")
			if err != nil {
				t.Fatalf("CollectWindow() error = %v", err)
			}

			reqs := f.requests["2025-01-01"]
			if len(reqs) != tt.wantRequests {
				t.Errorf("requests = %d (%v), want %d", len(reqs), reqs, tt.wantRequests)
			}
			for i, offset := range reqs {
				if offset != i {
					t.Errorf("request %d used offset %d", i, offset)
				}
			}
			if len(events) != tt.wantEvents {
				t.Errorf("events = %d, want %d", len(events), tt.wantEvents)
			}
		})
	}
}

func TestCollectWindow_SafetyCapMetric(t *testing.T) {
	f := newScriptedFetcher()
	rec := metrics.New()
	s := New(Options{Fetcher: f, Metrics: rec, MaxOffset: 3})

	if _, err := s.CollectWindow(context.Background(), "2025-02-01"); err != nil {
		t.Fatalf("CollectWindow() error = %v", err)
	}

	if n := len(f.requests["2025-02-01"]); n != 4 {
		t.Errorf("requests = %d, want 4 (offsets 0..3)", n)
	}
	if got := testutil.ToFloat64(rec.SafetyCapHits); got != 1 {
		t.Errorf("SafetyCapHits = %v, want 1", got)
	}
}

func TestCollectWindow_FetchFailureEndsWindow(t *testing.T) {
	f := newScriptedFetcher()
	f.pages["2025-03-01"] = []*Page{pageWith([]string{"1"}, 1, 1), pageWith([]string{"2"}, 1, 1)}
	f.fail["2025-03-01"] = 1
	rec := metrics.New()
	s := New(Options{Fetcher: f, Metrics: rec})

	events, err := s.CollectWindow(context.Background(), "2025-03-01")
	if err != nil {
		t.Fatalf("fetch failures must not surface as errors, got %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected events collected before the failure, got %d", len(events))
	}
	if n := len(f.requests["2025-03-01"]); n != 2 {
		t.Errorf("requests = %d, want 2", n)
	}
	if got := testutil.ToFloat64(rec.FetchFailures); got != 1 {
		t.Errorf("FetchFailures = %v, want 1", got)
	}
}

func TestCollect_Order(t *testing.T) {
	windows := Windows(mustDate(t, "2025-01-01"), 6)

	for _, concurrency := range []int{1, 4} {
		t.Run(fmt.Sprintf("concurrency %d", concurrency), func(t *testing.T) {
			f := newScriptedFetcher()
			for i, w := range windows {
				a := fmt.Sprintf("%d-a", i)
				b := fmt.Sprintf("%d-b", i)
				c := fmt.Sprintf("%d-c", i)
				f.pages[w] = []*Page{pageWith([]string{a, b}, 2, 1), pageWith([]string{c}, 1, 0)}
			}
			rec := metrics.New()
			s := New(Options{Fetcher: f, Metrics: rec, Concurrency: concurrency})

			events, err := s.Collect(context.Background(), windows)
			if err != nil {
				t.Fatalf("Collect() error = %v", err)
			}

			if len(events) != len(windows)*3 {
				t.Fatalf("events = %d, want %d", len(events), len(windows)*3)
			}
			for i := range windows {
				for j, suffix := range []string{"a", "b", "c"} {
					want := fmt.Sprintf("%d-%s", i, suffix)
					if got := events[i*3+j].EventID; got != want {
						t.Errorf("events[%d] = %s, want %s", i*3+j, got, want)
					}
				}
			}
			if got := testutil.ToFloat64(rec.WindowsScanned); got != float64(len(windows)) {
				t.Errorf("WindowsScanned = %v, want %d", got, len(windows))
			}
			if got := testutil.ToFloat64(rec.EventsParsed); got != float64(len(windows)*3) {
				t.Errorf("EventsParsed = %v, want %d", got, len(windows)*3)
			}
		})
	}
}

func TestCollect_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := newScriptedFetcher()
	s := New(Options{Fetcher: f})

	_, err := s.Collect(ctx, Windows(mustDate(t, "2025-01-01"), 3))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Collect() error = %v, want context.Canceled", err)
	}
	if len(f.requests) != 0 {
		t.Errorf("no requests expected after cancellation, got %v", f.requests)
	}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(WindowLayout, s)
	if err != nil {
		t.Fatalf("parsing %q: %v", s, err)
	}
	return d
}
