package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/raphaelguye/srrc-calendar-scraper/internal/logger"
)

const (
	// LoadMoreAction is the admin-ajax action behind the calendar's "load more" button
	LoadMoreAction = "mec_list_load_more"

	formContentType = "application/x-www-form-urlencoded; charset=UTF-8"
	retryWait       = 500 * time.Millisecond
	retryMaxWait    = 2 * time.Second
)

// ErrNoResult marks a page that could not be fetched or decoded. It ends the
// window without failing the run.
var ErrNoResult = errors.New("no result")

// Page is one decoded "load more" response
type Page struct {
	HTML    string `json:"html"`
	Count   Number `json:"count"`
	HasMore Number `json:"has_more_event"`
}

// Exhausted reports whether no further page should be requested for the window.
// A zero count stops the window even when has_more_event claims otherwise.
func (p *Page) Exhausted() bool {
	return p.HasMore == 0 || p.Count == 0
}

// Number decodes JSON numbers, booleans and numeric strings into an int
type Number int

// UnmarshalJSON implements json.Unmarshaler
func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	switch s {
	case "null", "false", `""`:
		*n = 0
		return nil
	case "true":
		*n = 1
		return nil
	}

	f, err := strconv.ParseFloat(strings.Trim(s, `"`), 64)
	if err != nil {
		return fmt.Errorf("invalid number %s", s)
	}
	*n = Number(f)
	return nil
}

// PageFetcher fetches one page of one window
type PageFetcher interface {
	FetchPage(ctx context.Context, start string, offset int) (*Page, error)
}

// FetcherOptions configures a Fetcher
type FetcherOptions struct {
	Endpoint  string
	UserAgent string
	Timeout   time.Duration
	Retries   int
}

// Fetcher posts "load more" requests to the calendar endpoint
type Fetcher struct {
	client   *resty.Client
	endpoint string
}

// NewFetcher creates a Fetcher. Retries, when enabled, cover transport errors
// and 5xx responses only.
func NewFetcher(opts FetcherOptions) *Fetcher {
	client := resty.New().
		SetTimeout(opts.Timeout).
		SetLogger(restyLogger{}).
		SetHeader("X-Requested-With", "XMLHttpRequest").
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Accept", "application/json, text/javascript, */*; q=0.01").
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(retryWait).
		SetRetryMaxWaitTime(retryMaxWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || (r != nil && r.StatusCode() >= 500)
		})

	return &Fetcher{
		client:   client,
		endpoint: opts.Endpoint,
	}
}

// LoadMoreForm builds the form body for one page of a window
func LoadMoreForm(start string, offset int) url.Values {
	form := url.Values{}
	form.Set("action", LoadMoreAction)
	form.Set("mec_start_date", start)
	form.Set("mec_offset", strconv.Itoa(offset))
	form.Set("atts[id]", "0")
	form.Set("current_month_divider", MonthDivider(start))
	form.Set("apply_sf_date", "0")
	return form
}

// FetchPage requests the page at offset for the window starting at start.
// Failures are logged as warnings and returned wrapping ErrNoResult.
func (f *Fetcher) FetchPage(ctx context.Context, start string, offset int) (*Page, error) {
	page, err := f.fetch(ctx, start, offset)
	if err != nil {
		logger.Warn(fmt.Sprintf("Error fetching %s (offset %d)", start, offset), logger.Fields{
			"window": start,
			"offset": offset,
			"error":  err.Error(),
		})
		return nil, fmt.Errorf("%w: %s offset %d: %v", ErrNoResult, start, offset, err)
	}
	return page, nil
}

func (f *Fetcher) fetch(ctx context.Context, start string, offset int) (*Page, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", formContentType).
		SetBody(LoadMoreForm(start, offset).Encode()).
		Post(f.endpoint)
	if err != nil {
		return nil, fmt.Errorf("posting load more request: %w", err)
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode())
	}

	var page Page
	if err := json.Unmarshal(resp.Body(), &page); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &page, nil
}

// restyLogger routes resty's internal messages to the debug log
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...interface{}) {
	logger.Debug("resty: "+fmt.Sprintf(format, v...), nil)
}

func (restyLogger) Warnf(format string, v ...interface{}) {
	logger.Debug("resty: "+fmt.Sprintf(format, v...), nil)
}

func (restyLogger) Debugf(format string, v ...interface{}) {
	logger.Debug("resty: "+fmt.Sprintf(format, v...), nil)
}
