package infosoud

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// timelineHeading marks the proceeding-history section on the case page.
const timelineHeading = "Průběh řízení"

// Client fetches case timelines over HTTP.
type Client struct {
	http      *http.Client
	userAgent string
}

// NewClient creates a timeline fetcher. A zero timeout defaults to 15s.
func NewClient(timeout time.Duration, userAgent string) *Client {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if userAgent == "" {
		userAgent = "infosoud-enricher/1.0"
	}
	return &Client{
		http: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		userAgent: userAgent,
	}
}

// FetchTimeline GETs a case page and extracts its proceeding timeline.
// Transport errors and non-2xx statuses are returned as errors. A page
// without the timeline heading or table is not an error: the case may
// simply have no published history yet, so the result is an empty
// Timeline.
func (c *Client) FetchTimeline(ctx context.Context, rawURL string) (Timeline, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{code: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", rawURL, err)
	}

	return ExtractTimeline(doc), nil
}

// ExtractTimeline pulls the event/date pairs out of a parsed case page.
// It locates the heading text node, takes the first table following it
// in document order, skips the header row, and keeps rows of exactly
// two cells whose first cell holds a link naming an allow-listed event.
func ExtractTimeline(doc *goquery.Document) Timeline {
	timeline := Timeline{}

	root := doc.Get(0)
	marker := findTextNode(root, timelineHeading)
	if marker == nil {
		return timeline
	}
	tableNode := nextTableAfter(root, marker)
	if tableNode == nil {
		return timeline
	}

	table := doc.FindNodes(tableNode)
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return // header row
		}
		cells := row.Find("td")
		if cells.Length() != 2 {
			return
		}
		link := cells.Eq(0).Find("a")
		if link.Length() == 0 {
			return
		}
		event := strings.TrimSpace(link.First().Text())
		if !ImportantEvent(event) {
			return
		}
		timeline[event] = strings.TrimSpace(cells.Eq(1).Text())
	})

	return timeline
}

// findTextNode returns the first text node whose trimmed content equals
// want, in document order.
func findTextNode(n *html.Node, want string) *html.Node {
	if n.Type == html.TextNode && strings.TrimSpace(n.Data) == want {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findTextNode(c, want); found != nil {
			return found
		}
	}
	return nil
}

// nextTableAfter returns the first table element appearing after the
// marker node in document order.
func nextTableAfter(root, marker *html.Node) *html.Node {
	seen := false
	var walk func(n *html.Node) *html.Node
	walk = func(n *html.Node) *html.Node {
		if n == marker {
			seen = true
		} else if seen && n.Type == html.ElementNode && n.Data == "table" {
			return n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if found := walk(c); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(root)
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d (%s)", e.code, http.StatusText(e.code))
}
