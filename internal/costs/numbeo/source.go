// Package numbeo implements the costs.Source adapter against the Numbeo
// cost-of-living pages. The page layout is consumed positionally: table rows
// are sliced into fixed per-category windows, so a layout change on the source
// side is absorbed here and never reaches the repository or normalization code.
package numbeo

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/net/html"

	"github.com/shakespr/cost-data-service/internal/costs"
)

const maxBodyBytes = 2 << 20

// Config carries the adapter's request policy.
type Config struct {
	// BaseURL is the city page prefix, without a trailing slash.
	BaseURL string
	// UserAgent is sent on every request.
	UserAgent string
	// MinDelay/MaxDelay bound the randomized politeness delay taken before
	// each request.
	MinDelay time.Duration
	MaxDelay time.Duration
}

// Source fetches and parses cost data for a city.
type Source struct {
	name    string
	cfg     Config
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewSource creates a Numbeo-backed source using the shared HTTP client.
func NewSource(client *http.Client, cfg Config) *Source {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "numbeo",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Source{
		name: "numbeo",
		cfg:  cfg,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      1,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
	}
}

func (s *Source) Name() string {
	return s.name
}

// Fetch issues one request for the city page and extracts the raw cost bag.
// It fails with costs.ErrNetwork on transport errors, costs.ErrNotFound when
// the page has no parsable rows, and costs.ErrNoData when no category yields
// a single numeric value.
func (s *Source) Fetch(ctx context.Context, cityName string) (costs.RawCostBag, error) {
	if err := s.politenessDelay(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", costs.ErrNetwork, err)
	}

	buildRequest := func() (*http.Request, error) {
		u := fmt.Sprintf("%s/%s?displayCurrency=USD", s.cfg.BaseURL, citySlug(cityName))
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		if s.cfg.UserAgent != "" {
			req.Header.Set("User-Agent", s.cfg.UserAgent)
		}
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, s.httpCfg, s.circuit, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", costs.ErrNetwork, err)
	}
	defer resp.Body.Close()

	doc, err := html.Parse(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", costs.ErrNotFound, err)
	}

	rows := collectRows(doc)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows for %q", costs.ErrNotFound, cityName)
	}

	bag := costs.RawCostBag{}
	for _, cs := range categorySlices {
		vals := extractCosts(sliceRows(rows, cs.lo, cs.hi))
		if len(vals) > 0 {
			bag[cs.cat] = vals
		}
	}

	if !hasAnyValue(bag) {
		return nil, fmt.Errorf("%w: no values for %q", costs.ErrNoData, cityName)
	}
	return bag, nil
}

// politenessDelay sleeps for a random duration within the configured bounds
// so repeated fetches do not hammer the source.
func (s *Source) politenessDelay(ctx context.Context) error {
	d := s.cfg.MinDelay
	if s.cfg.MaxDelay > s.cfg.MinDelay {
		d += time.Duration(rand.Int63n(int64(s.cfg.MaxDelay - s.cfg.MinDelay)))
	}
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// categorySlices maps fixed row windows of the city page onto categories.
var categorySlices = []struct {
	cat    costs.Category
	lo, hi int
}{
	{costs.CategoryRestaurant, 2, 10},
	{costs.CategoryMarket, 11, 30},
	{costs.CategoryTransportation, 31, 39},
	{costs.CategoryUtilities, 40, 43},
	{costs.CategoryLeisure, 44, 47},
	{costs.CategoryClothing, 51, 55},
	{costs.CategoryRent, 56, 60},
}

// citySlug canonicalizes a city name into its page path segment:
// title-cased words joined by dashes.
func citySlug(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[:1])) + strings.ToLower(string(r[1:]))
	}
	return strings.Join(words, "-")
}

// collectRows returns all <tr> nodes in document order.
func collectRows(doc *html.Node) []*html.Node {
	var rows []*html.Node
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			rows = append(rows, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	return rows
}

func sliceRows(rows []*html.Node, lo, hi int) []*html.Node {
	if lo >= len(rows) {
		return nil
	}
	if hi > len(rows) {
		hi = len(rows)
	}
	return rows[lo:hi]
}

// extractCosts pulls the price cell out of each row. Rows without a price
// cell contribute nothing; cells that fail numeric coercion become nil.
func extractCosts(rows []*html.Node) []*float64 {
	var vals []*float64
	for _, row := range rows {
		cell, ok := findPriceCell(row)
		if !ok {
			continue
		}
		vals = append(vals, cleanCostValue(textContent(cell)))
	}
	return vals
}

func findPriceCell(row *html.Node) (*html.Node, bool) {
	var found *html.Node
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "td" && hasClass(n, "priceValue") {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(row)
	return found, found != nil
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var traverse func(*html.Node)
	traverse = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(n)
	return sb.String()
}

// cleanCostValue coerces a price cell's text to a number, stripping currency
// symbols, thousands separators, and non-breaking spaces. A cell that cannot
// be coerced yields nil rather than failing the category.
func cleanCostValue(text string) *float64 {
	cleaned := strings.ReplaceAll(text, "\u00a0", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.Trim(cleaned, " $€£\t\n")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &v
}

func hasAnyValue(bag costs.RawCostBag) bool {
	for _, vals := range bag {
		for _, v := range vals {
			if v != nil {
				return true
			}
		}
	}
	return false
}
