package smoothcomp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/pfrederiksen/tourna-events/internal/event"
	"github.com/pfrederiksen/tourna-events/internal/logger"
)

const (
	DefaultEventsURL = "https://smoothcomp.com/en/events/upcoming"
	DefaultMirrorURL = "https://compseek.net/events/smoothcomp"
	DefaultTimeout   = 20 * time.Second
	UserAgent        = "tourna-events/1.0 (github.com/pfrederiksen/tourna-events)"

	// Listing pages are required input, so they get a couple of retries.
	// Event sub-pages never retry: a failed sub-page is just "no data".
	listingRetries = 2
)

// Client fetches and interprets Smoothcomp listing and event pages. All
// fetches go through a shared rate limiter so sub-page fan-out stays
// polite; calls are sequential within a single resolution.
type Client struct {
	httpClient *http.Client
	eventsURL  string
	mirrorURL  string
	limiter    *rate.Limiter
}

// New creates a client for the given listing URLs. Empty URLs and a zero
// timeout fall back to the package defaults.
func New(eventsURL, mirrorURL string, timeout time.Duration) *Client {
	if eventsURL == "" {
		eventsURL = DefaultEventsURL
	}
	if mirrorURL == "" {
		mirrorURL = DefaultMirrorURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		eventsURL:  eventsURL,
		mirrorURL:  mirrorURL,
		limiter:    rate.NewLimiter(rate.Every(200*time.Millisecond), 3),
	}
}

// fetchPage issues one paced GET. It returns the final URL after redirects
// together with the body; any non-2xx status is an error.
func (c *Client) fetchPage(url string) (finalURL, body string, err error) {
	if err := c.limiter.Wait(context.Background()); err != nil {
		return "", "", fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("reading body: %w", err)
	}
	return resp.Request.URL.String(), string(data), nil
}

// fetchListing fetches a required listing page with bounded retries.
func (c *Client) fetchListing(url string) (string, error) {
	var body string
	op := func() error {
		_, b, err := c.fetchPage(url)
		if err != nil {
			logger.Debug("listing fetch attempt failed", logger.Fields{"url": url})
			return err
		}
		body = b
		return nil
	}
	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), listingRetries)
	if err := backoff.Retry(op, bo); err != nil {
		return "", fmt.Errorf("fetching listing %s: %w", url, err)
	}
	return body, nil
}

// tier is one priority class of the discovery cascade. Lower values win.
type tier int

const (
	tierCountryYear      tier = iota // country matched, start year matched
	tierCountryNoYear                // country matched, no parseable date
	tierCountryOtherYear             // country matched, some other year
	tierYearOnly                     // year matched, country did not
	tierNoYear                       // no parseable date, country did not match
	tierRest                         // everything else

	tierCount
)

func classify(inCountry bool, eventYear, wantYear int) tier {
	switch {
	case inCountry && eventYear == wantYear:
		return tierCountryYear
	case inCountry && eventYear == 0:
		return tierCountryNoYear
	case inCountry:
		return tierCountryOtherYear
	case eventYear == wantYear:
		return tierYearOnly
	case eventYear == 0:
		return tierNoYear
	default:
		return tierRest
	}
}

// FetchEvents discovers events on the primary listing page and returns the
// highest-priority non-empty tier union for the given year and country.
// Past events are excluded before classification. When every primary tier
// is empty the mirror source is consulted; an empty slice after that means
// there is genuinely nothing to show.
func (c *Client) FetchEvents(year int, country string) ([]*event.Event, error) {
	today := time.Now()

	html, err := c.fetchListing(c.eventsURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing listing HTML: %w", err)
	}

	candidates := collectCandidates(doc, html)

	buckets := make([][]*event.Event, tierCount)
	for url, cand := range candidates {
		name := strings.TrimSpace(cand.name)
		if name == "" {
			name = nameFromURL(url)
		}
		blob := strings.Join(cand.contexts, " ")
		dates := event.ParseDates(blob)
		eventYear := 0
		if len(dates) > 0 {
			eventYear = dates[0].Year()
		}

		ev := &event.Event{
			ID:       event.IDFromURL(url),
			Name:     name,
			URL:      url,
			Location: event.ExtractLocation(blob, country),
		}
		if len(dates) > 0 {
			ev.StartDate = &dates[0]
		}
		if len(dates) > 1 {
			ev.EndDate = &dates[1]
		}
		inCountry := event.MatchesCountry(blob, country)
		if inCountry {
			ev.Country = country
		}
		if ev.IsPast(today) {
			continue
		}

		t := classify(inCountry, eventYear, year)
		buckets[t] = append(buckets[t], ev)
	}
	for _, bucket := range buckets {
		event.SortByStart(bucket)
	}

	if len(buckets[tierCountryYear]) > 0 || len(buckets[tierCountryNoYear]) > 0 {
		picked := append(buckets[tierCountryYear], buckets[tierCountryNoYear]...)
		logger.Info("events discovered", logger.Fields{
			"country_year":    len(buckets[tierCountryYear]),
			"country_no_year": len(buckets[tierCountryNoYear]),
		})
		return picked, nil
	}
	if len(buckets[tierCountryOtherYear]) > 0 {
		logger.Info("no country+year matches, falling back to country events from other years", logger.Fields{
			"count": len(buckets[tierCountryOtherYear]),
		})
		return buckets[tierCountryOtherYear], nil
	}
	if len(buckets[tierYearOnly]) > 0 || len(buckets[tierNoYear]) > 0 {
		picked := append(buckets[tierYearOnly], buckets[tierNoYear]...)
		logger.Info("no country-tagged matches, falling back to non-country events", logger.Fields{
			"count": len(picked),
		})
		return picked, nil
	}

	logger.Info("zero candidates from primary listing, trying mirror source", nil)
	return c.fetchEventsFromMirror(year, country, false)
}

// fetchEventsFromMirror scans the mirror listing page and applies its own
// tiered preference: upcoming country events first (outside search mode),
// then country+year, year-only, country-only, and finally everything. In
// search mode no date filtering is applied, trading precision for the
// recall a fuzzy name query needs.
func (c *Client) fetchEventsFromMirror(year int, country string, searchMode bool) ([]*event.Event, error) {
	today := time.Now()

	html, err := c.fetchListing(c.mirrorURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing mirror HTML: %w", err)
	}

	all := make(map[string]*event.Event)
	yearOnly := make(map[string]*event.Event)
	countryOnly := make(map[string]*event.Event)
	countryYear := make(map[string]*event.Event)
	strict := make(map[string]*event.Event)

	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		url := normalizeEventURL(strings.TrimSpace(href))
		if url == "" {
			return
		}

		rowText := stripText(link.Parent())
		if tr := link.Closest("tr"); tr.Length() > 0 {
			rowText = stripText(tr)
		}
		inCountry := event.MatchesCountry(rowText, country)
		dates := event.ParseDates(rowText)

		ev := &event.Event{
			ID:       event.IDFromURL(url),
			Name:     extractNameFromLink(link, rowText, url),
			URL:      url,
			Location: event.ExtractLocation(rowText, country),
		}
		if len(dates) > 0 {
			ev.StartDate = &dates[0]
		}
		if len(dates) > 1 {
			ev.EndDate = &dates[1]
		}
		if inCountry {
			ev.Country = country
		}

		all[url] = ev
		if len(dates) > 0 && dates[0].Year() == year {
			yearOnly[url] = ev
		}
		if inCountry {
			countryOnly[url] = ev
			if len(dates) > 0 && dates[0].Year() == year {
				countryYear[url] = ev
			}
			// The strict tier keeps country events that are either
			// undated or dated for the wanted year and not yet past.
			if len(dates) > 0 {
				if dates[0].Year() != year || ev.IsPast(today) {
					return
				}
			}
			strict[url] = ev
		}
	})

	var chosen map[string]*event.Event
	switch {
	case !searchMode && len(strict) > 0:
		chosen = strict
	case len(countryYear) > 0:
		logger.Info("mirror: no upcoming country matches, returning country+year results", nil)
		chosen = countryYear
	case len(yearOnly) > 0:
		logger.Info("mirror: no country-tagged year matches, returning year-only results", nil)
		chosen = yearOnly
	case len(countryOnly) > 0:
		logger.Info("mirror: no year-tagged results, returning country-only results", nil)
		chosen = countryOnly
	default:
		logger.Info("mirror: no country matches, returning all mirror results", nil)
		chosen = all
	}

	events := make([]*event.Event, 0, len(chosen))
	for _, ev := range chosen {
		events = append(events, ev)
	}
	event.SortByStart(events)
	return events, nil
}

// primaryBase is the scheme+host of the primary listing URL, the host
// canonical event URLs live on.
func (c *Client) primaryBase() string {
	u, err := url.Parse(c.eventsURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "https://smoothcomp.com"
	}
	return u.Scheme + "://" + u.Host
}

// FetchEventByID resolves a bare numeric id by trying canonical URL
// guesses plus any URLs carrying that exact id observed on the listing
// pages, confirming that the resolved event's id matches. A nil event with
// a nil error means the id could not be confirmed anywhere.
func (c *Client) FetchEventByID(eventID, defaultCountry string) (*event.Event, error) {
	for _, url := range c.candidateURLsForID(eventID) {
		ev, err := c.FetchEventByURL(url, defaultCountry)
		if err != nil {
			return nil, err
		}
		if ev != nil && ev.ID == eventID {
			return ev, nil
		}
	}
	return nil, nil
}

// candidateURLsForID returns canonical guesses first, then id-bearing URLs
// scraped from the listing and mirror pages, preserving first-seen order.
func (c *Client) candidateURLsForID(eventID string) []string {
	base := c.primaryBase()
	urls := []string{
		base + "/en/event/" + eventID,
		base + "/event/" + eventID,
	}
	seen := map[string]bool{urls[0]: true, urls[1]: true}

	absPattern := regexp.MustCompile(
		`(?i)https?://[A-Za-z0-9.-]*smoothcomp\.com/[A-Za-z0-9/_-]*/?event/` +
			regexp.QuoteMeta(eventID) + `(?:/[A-Za-z0-9_-]+)?`)
	relPattern := regexp.MustCompile(
		`(?i)/(?:[a-z]{2}/)?event/` + regexp.QuoteMeta(eventID) + `(?:/[A-Za-z0-9_-]+)?`)

	for _, page := range []string{c.eventsURL, c.mirrorURL} {
		finalURL, html, err := c.fetchPage(page)
		if err != nil {
			logger.Debug("id scan page fetch failed", logger.Fields{"url": page})
			continue
		}
		for _, m := range absPattern.FindAllString(html, -1) {
			u := strings.SplitN(m, "?", 2)[0]
			if !seen[u] {
				seen[u] = true
				urls = append(urls, u)
			}
		}
		for _, m := range relPattern.FindAllString(html, -1) {
			u := resolveHref(finalURL, strings.SplitN(m, "?", 2)[0])
			if u != "" && !seen[u] {
				seen[u] = true
				urls = append(urls, u)
			}
		}
	}
	return urls
}

// FetchEventByURL fetches a single event page and builds an Event from it.
// Transport failures resolve to (nil, nil): for a single-page resolution
// "could not fetch" and "no such event" are the same answer.
func (c *Client) FetchEventByURL(eventURL, defaultCountry string) (*event.Event, error) {
	finalURL, html, err := c.fetchPage(eventURL)
	if err != nil {
		logger.Debug("event page fetch failed", logger.Fields{"url": eventURL})
		return nil, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, nil
	}

	canonical := event.CanonicalURL(finalURL)
	blob := stripText(doc.Selection)
	dates := event.ParseDates(blob)

	ev := &event.Event{
		ID:       event.IDFromURL(canonical),
		Name:     extractEventNameFromPage(doc, html, canonical),
		URL:      canonical,
		Location: event.ExtractLocation(blob, defaultCountry),
	}
	if len(dates) > 0 {
		ev.StartDate = &dates[0]
	}
	if len(dates) > 1 {
		ev.EndDate = &dates[1]
	}
	if event.MatchesCountry(blob, defaultCountry) {
		ev.Country = defaultCountry
	}
	return ev, nil
}

// SearchEventsByName fuzzy-matches a free-text query against the union of
// primary discovery and an unfiltered mirror sweep. The union is keyed by
// URL with primary results winning, so the query can still hit events the
// primary year/country filter would have excluded.
func (c *Client) SearchEventsByName(query string, year int, country string, limit int) ([]*event.Event, error) {
	if limit <= 0 {
		limit = 10
	}

	primary, err := c.FetchEvents(year, country)
	if err != nil {
		return nil, err
	}
	broad, err := c.fetchEventsFromMirror(year, country, true)
	if err != nil {
		logger.Debug("mirror sweep for search failed", logger.Fields{"error": err.Error()})
		broad = nil
	}

	merged := make(map[string]*event.Event, len(primary)+len(broad))
	ordered := make([]*event.Event, 0, len(primary)+len(broad))
	for _, ev := range primary {
		if _, ok := merged[ev.URL]; !ok {
			merged[ev.URL] = ev
			ordered = append(ordered, ev)
		}
	}
	for _, ev := range broad {
		if _, ok := merged[ev.URL]; !ok {
			merged[ev.URL] = ev
			ordered = append(ordered, ev)
		}
	}

	normalized := event.NormalizeName(query)
	if normalized == "" {
		if len(ordered) > limit {
			ordered = ordered[:limit]
		}
		return ordered, nil
	}

	scored := scoreEvents(ordered, normalized, year)
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

type scoredEvent struct {
	score int
	ev    *event.Event
}

// scoreEvents ranks events against a normalized query. Exact normalized
// match scores 1000, query-in-name 600, name-in-query 250, each matching
// query token +30, and a literal year string in the raw name +40.
// Zero-score events are dropped.
func scoreEvents(events []*event.Event, normalizedQuery string, year int) []*event.Event {
	tokens := strings.Fields(normalizedQuery)
	yearStr := fmt.Sprintf("%d", year)

	scored := make([]scoredEvent, 0, len(events))
	for _, ev := range events {
		name := event.NormalizeName(ev.Name)
		score := 0
		switch {
		case name == normalizedQuery:
			score += 1000
		case strings.Contains(name, normalizedQuery):
			score += 600
		case name != "" && strings.Contains(normalizedQuery, name):
			score += 250
		}
		for _, token := range tokens {
			if strings.Contains(name, token) {
				score += 30
			}
		}
		if strings.Contains(ev.Name, yearStr) {
			score += 40
		}
		if score > 0 {
			scored = append(scored, scoredEvent{score: score, ev: ev})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		di, dj := scored[i].ev.StartOrMax(), scored[j].ev.StartOrMax()
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return strings.ToLower(scored[i].ev.Name) < strings.ToLower(scored[j].ev.Name)
	})

	out := make([]*event.Event, len(scored))
	for i, s := range scored {
		out[i] = s.ev
	}
	return out
}

// DebugDiscovery fetches the primary listing and reports raw match counts,
// candidate totals, and a mirror summary as operator-facing text.
func (c *Client) DebugDiscovery(year int, country string) (string, error) {
	html, err := c.fetchListing(c.eventsURL)
	if err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing listing HTML: %w", err)
	}

	anchorHits := 0
	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if eventLinkPattern.MatchString(href) {
			anchorHits++
		}
	})
	regexHits := len(eventURLPattern.FindAllString(html, -1))
	candidates := collectCandidates(doc, html)

	urls := make([]string, 0, len(candidates))
	for url := range candidates {
		urls = append(urls, url)
	}
	sort.Strings(urls)

	countryHits, yearHits := 0, 0
	var sample []string
	for _, url := range urls {
		blob := strings.Join(candidates[url].contexts, " ")
		if event.MatchesCountry(blob, country) {
			countryHits++
		}
		if dates := event.ParseDates(blob); len(dates) > 0 && dates[0].Year() == year {
			yearHits++
		}
		if len(sample) < 10 {
			sample = append(sample, url)
		}
	}

	lines := []string{
		fmt.Sprintf("Base URL: %s", c.eventsURL),
		fmt.Sprintf("Anchor matches: %d", anchorHits),
		fmt.Sprintf("Regex matches: %d", regexHits),
		fmt.Sprintf("Unique candidates: %d", len(candidates)),
		fmt.Sprintf("Country hits (%s): %d", country, countryHits),
		fmt.Sprintf("Year hits (%d): %d", year, yearHits),
		"Sample candidate URLs:",
	}
	if len(sample) > 0 {
		for _, url := range sample {
			lines = append(lines, "- "+url)
		}
	} else {
		lines = append(lines, "- none")
	}

	mirror, err := c.fetchEventsFromMirror(year, country, false)
	if err != nil {
		lines = append(lines, fmt.Sprintf("Mirror source (%s) failed: %v", c.mirrorURL, err))
	} else {
		lines = append(lines, fmt.Sprintf("Mirror source (%s) events: %d", c.mirrorURL, len(mirror)))
		for i, ev := range mirror {
			if i >= 5 {
				break
			}
			lines = append(lines, fmt.Sprintf("- %s | %s", ev.Name, ev.URL))
		}
	}
	return strings.Join(lines, "\n"), nil
}
