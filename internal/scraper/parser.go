package scraper

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/raphaelguye/srrc-calendar-scraper/internal/event"
	"github.com/raphaelguye/srrc-calendar-scraper/internal/logger"
	nethtml "golang.org/x/net/html"
)

// Selectors of the Modern Events Calendar list skin
const (
	articleSelector  = "article.mec-event-article"
	dateSelector     = "div.mec-event-date"
	daySelector      = "div.event-d"
	monthSelector    = "div.event-f"
	weekdaySelector  = "div.event-da"
	titleSelector    = "h4.mec-event-title"
	locationSelector = "div.mec-event-loc-place"

	jsonLDType = "application/ld+json"
)

// documentIndex is the element list of a fragment in document order
type documentIndex struct {
	position map[*nethtml.Node]int
	scripts  []*nethtml.Node // JSON-LD scripts, in document order
}

func indexDocument(root *nethtml.Node) *documentIndex {
	idx := &documentIndex{position: make(map[*nethtml.Node]int)}
	var walk func(n *nethtml.Node)
	walk = func(n *nethtml.Node) {
		if n.Type == nethtml.ElementNode {
			idx.position[n] = len(idx.position)
			if n.Data == "script" && isJSONLD(n) {
				idx.scripts = append(idx.scripts, n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return idx
}

func isJSONLD(n *nethtml.Node) bool {
	for _, attr := range n.Attr {
		if attr.Key == "type" {
			return strings.EqualFold(strings.TrimSpace(attr.Val), jsonLDType)
		}
	}
	return false
}

// precedingScript returns the last JSON-LD script that starts before n, or nil.
// Several articles may resolve to the same script.
func (idx *documentIndex) precedingScript(n *nethtml.Node) *nethtml.Node {
	pos, ok := idx.position[n]
	if !ok {
		return nil
	}
	i := sort.Search(len(idx.scripts), func(i int) bool {
		return idx.position[idx.scripts[i]] >= pos
	})
	if i == 0 {
		return nil
	}
	return idx.scripts[i-1]
}

// parseEvents extracts events from a "load more" HTML fragment in document order.
// An article that fails to parse is logged and skipped.
func (s *Scraper) parseEvents(r io.Reader) ([]*event.Event, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	var idx *documentIndex
	if len(doc.Nodes) > 0 {
		idx = indexDocument(doc.Nodes[0])
	} else {
		idx = &documentIndex{position: map[*nethtml.Node]int{}}
	}

	events := make([]*event.Event, 0)
	doc.Find(articleSelector).Each(func(i int, sel *goquery.Selection) {
		evt, err := parseArticle(sel, idx)
		if err != nil {
			s.metrics.ParseFailures.Inc()
			logger.Warn("Error parsing event", logger.Fields{
				"article": i,
				"error":   err.Error(),
			})
			return
		}
		s.metrics.EventsParsed.Inc()
		events = append(events, evt)
	})

	return events, nil
}

// parseArticle builds one event. Missing elements yield empty fields.
func parseArticle(sel *goquery.Selection, idx *documentIndex) (evt *event.Event, err error) {
	defer func() {
		if r := recover(); r != nil {
			evt, err = nil, fmt.Errorf("malformed article: %v", r)
		}
	}()

	evt = &event.Event{}

	date := sel.Find(dateSelector).First()
	evt.DateDisplay = text(date.Find(daySelector))
	evt.Month = text(date.Find(monthSelector))
	evt.Weekday = text(date.Find(weekdaySelector))

	link := sel.Find(titleSelector).First().Find("a").First()
	if link.Length() > 0 {
		// goquery decodes entities once; titles from WordPress are often double encoded
		evt.Title = html.UnescapeString(strings.TrimSpace(link.Text()))
		evt.URL = link.AttrOr("href", "")
		evt.EventID = link.AttrOr("data-event-id", "")
	}

	evt.Location = text(sel.Find(locationSelector))

	if len(sel.Nodes) > 0 {
		if script := idx.precedingScript(sel.Nodes[0]); script != nil {
			evt.Apply(parseStructuredData(nodeText(script)))
		}
	}

	return evt, nil
}

// text returns the trimmed text of the first matched element
func text(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(sel.First().Text())
}

func nodeText(n *nethtml.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == nethtml.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

// parseStructuredData decodes a schema.org Event block. It returns nil when the
// block is not a JSON object.
func parseStructuredData(raw string) *event.StructuredData {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &doc); err != nil || doc == nil {
		return nil
	}

	sd := &event.StructuredData{
		StartDate:   jsonString(doc["startDate"]),
		EndDate:     jsonString(doc["endDate"]),
		Description: jsonString(doc["description"]),
	}

	if rawOrganizer, ok := doc["organizer"]; ok {
		var organizer map[string]json.RawMessage
		if err := json.Unmarshal(rawOrganizer, &organizer); err == nil && organizer != nil {
			sd.Organizer = event.String(jsonString(organizer["name"]))
		}
	}

	return sd
}

// jsonString renders a JSON value as text: strings unquoted, null or missing as "",
// anything else as its compact JSON form.
func jsonString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "null" {
		return ""
	}
	return trimmed
}
