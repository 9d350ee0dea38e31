package smoothcomp

import (
	stdhtml "html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	xhtml "golang.org/x/net/html"

	"github.com/pfrederiksen/tourna-events/internal/event"
	"github.com/pfrederiksen/tourna-events/internal/logger"
)

var (
	profileLinkPattern = regexp.MustCompile(`(?i)/(?:[a-z]{2}/)?profile/\d+`)
	// scriptObjectPattern matches brace-delimited JSON-shaped chunks.
	// Payloads outside the 20-2000 char window are either too small to
	// hold a record or too big to be one object. The window is split in
	// two because RE2 caps a single repeat count at 1000.
	scriptObjectPattern = regexp.MustCompile(`\{[^{}]{20,1000}[^{}]{0,1000}\}`)
)

// Synonym key sets for JSON-shaped script payloads. Different event
// templates name the same logical field differently.
var (
	nameFieldKeys      = []string{"name", "competitor_name", "athlete_name", "fighter_name"}
	affiliateFieldKeys = []string{"academy", "affiliate", "team", "club"}
	divisionFieldKeys  = []string{"division", "category", "weight_class", "weight"}
	matFieldKeys       = []string{"mat", "ring", "area"}
	timeFieldKeys      = []string{"time", "start_time", "schedule_time"}
	opponentFieldKeys  = []string{"opponent", "versus", "vs", "enemy"}
)

// blockSelectors are the generic DOM shapes the last-resort strategy
// scans, roughly in order of how often they hold competitor cards.
var blockSelectors = []string{
	"[class*='participant']",
	"[class*='competitor']",
	"[class*='athlete']",
	"[class*='fighter']",
	"[class*='entry']",
	"[class*='card']",
	"[class*='row']",
	"li",
	"article",
}

// blockScanCap bounds the generic DOM scan across all selectors so a
// pathological page cannot stall extraction.
const blockScanCap = 2200

// page is one fetched sub-page ready for extraction.
type page struct {
	url string
	doc *goquery.Document
}

// accumulator folds strategy output through the shared seen-key set. The
// first strategy to record a key wins; later observations of the same
// (name, division, time, mat) tuple are dropped no matter which strategy
// or page produced them.
type accumulator struct {
	seen map[[4]string]bool
	rows []*event.CompetitorSchedule
}

func newAccumulator() *accumulator {
	return &accumulator{seen: make(map[[4]string]bool)}
}

func (a *accumulator) add(row *event.CompetitorSchedule) bool {
	key := row.Key()
	if a.seen[key] {
		return false
	}
	a.seen[key] = true
	a.rows = append(a.rows, row)
	return true
}

// An extractor is one stateless extraction strategy: it scans a page and
// offers CompetitorSchedule candidates to the shared accumulator. With an
// empty keyword list nothing is filtered out, which is how hint detection
// reuses the same strategies.
type extractor interface {
	name() string
	extract(p *page, keywords []string, acc *accumulator)
}

// extractors run in a fixed order; order matters because the accumulator
// is first-writer-wins per key.
var extractors = []extractor{
	bracketRowExtractor{},
	profileCardExtractor{},
	tableExtractor{},
	scriptExtractor{},
	domBlockExtractor{},
}

// FetchCompetitors fetches every sub-page variant of the event and runs
// all extraction strategies over each, deduplicated by the shared seen-key
// set. Sub-pages that fail to fetch contribute nothing; the result is
// never an error, just possibly fewer rows.
func (c *Client) FetchCompetitors(ev *event.Event, keywords []string) []*event.CompetitorSchedule {
	pages := eventPagesToTry(ev.URL)

	acc := newAccumulator()
	fetched := 0
	for _, url := range pages {
		_, body, err := c.fetchPage(url)
		if err != nil {
			logger.Debug("sub-page fetch failed", logger.Fields{"url": url})
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
		if err != nil {
			continue
		}
		fetched++
		p := &page{url: url, doc: doc}
		for _, ex := range extractors {
			before := len(acc.rows)
			ex.extract(p, keywords, acc)
			if n := len(acc.rows) - before; n > 0 {
				logger.Debug("strategy yielded rows", logger.Fields{
					"strategy": ex.name(),
					"page":     url,
					"rows":     n,
				})
			}
		}
	}
	logger.Info("competitor extraction finished", logger.Fields{
		"event_id":      ev.ID,
		"pages_tried":   len(pages),
		"pages_fetched": fetched,
		"rows":          len(acc.rows),
	})
	return acc.rows
}

// orSentinel returns the first non-empty value, falling back to sentinel.
func orSentinel(sentinel string, values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return sentinel
}

// bracketRowExtractor reads schedule/bracket table rows, which mix
// division, time, mat, and one or more names into a single row, and the
// bracket modal payloads embedded in scripts, which carry "X vs Y" pairs.
type bracketRowExtractor struct{}

func (bracketRowExtractor) name() string { return "schedule_brackets" }

func (bracketRowExtractor) extract(p *page, keywords []string, acc *accumulator) {
	p.doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		rowText := stripText(tr)
		if rowText == "" {
			return
		}
		if !strings.Contains(rowText, "/") && !strings.Contains(strings.ToLower(rowText), "bracket") {
			return
		}

		division := orSentinel(event.UnknownField, extractDivisionishText(rowText), guessDivision([]string{rowText}))
		matchTime := orSentinel(event.UnknownField, guessTime([]string{rowText}))
		mat := orSentinel(event.UnknownField, guessMat([]string{rowText}))

		if !matchesAffiliate(rowText, keywords) {
			return
		}
		for _, name := range extractPeopleFromText(rowText) {
			acc.add(&event.CompetitorSchedule{
				CompetitorName: name,
				Academy:        orSentinel(event.UnknownAffiliate, extractAffiliateLabel(rowText, keywords)),
				Division:       division,
				Opponent:       event.UnknownField,
				MatchTime:      matchTime,
				Mat:            mat,
				SourceURL:      p.url,
			})
		}
	})

	p.doc.Find("script").Each(func(_ int, script *goquery.Selection) {
		text := script.Text()
		if text == "" {
			return
		}
		lower := strings.ToLower(text)
		if !strings.Contains(lower, "semifinal") && !strings.Contains(lower, "bracket") && !strings.Contains(lower, "final") {
			return
		}
		if !matchesAffiliate(text, keywords) {
			return
		}

		division := orSentinel(event.UnknownField, extractDivisionishText(text))
		matchTime := orSentinel(event.UnknownField, guessTime([]string{text}))
		mat := orSentinel(event.UnknownField, guessMat([]string{text}))

		for _, m := range vsPairPattern.FindAllStringSubmatch(text, -1) {
			left, right := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
			// Emit both directions so each fighter gets a row naming
			// the other as opponent.
			for _, pair := range [][2]string{{left, right}, {right, left}} {
				name, opponent := pair[0], pair[1]
				if !isPlausiblePersonName(name) {
					continue
				}
				acc.add(&event.CompetitorSchedule{
					CompetitorName: name,
					Academy:        orSentinel(event.UnknownAffiliate, extractAffiliateLabel(text, keywords)),
					Division:       division,
					Opponent:       opponent,
					MatchTime:      matchTime,
					Mat:            mat,
					SourceURL:      p.url,
				})
			}
		}
	})
}

// profileCardExtractor reads profile links: the link text is the
// competitor name and the enclosing card supplies everything else.
type profileCardExtractor struct{}

func (profileCardExtractor) name() string { return "profile_cards" }

func (profileCardExtractor) extract(p *page, keywords []string, acc *accumulator) {
	p.doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if !profileLinkPattern.MatchString(href) {
			return
		}

		name := event.CollapseSpace(strings.ReplaceAll(stripText(link), "...", ""))
		if !isPlausiblePersonName(name) {
			return
		}

		card := link.Closest("article, li, div")
		if card.Length() == 0 {
			return
		}
		cardText := stripText(card)
		if len(cardText) < 8 {
			return
		}
		if !matchesAffiliate(cardText, keywords) {
			return
		}

		acc.add(&event.CompetitorSchedule{
			CompetitorName: name,
			Academy:        orSentinel(event.UnknownAffiliate, extractAffiliateLabel(cardText, keywords)),
			Division:       orSentinel(event.UnknownField, nearestDivisionHeading(card), guessDivision([]string{cardText})),
			Opponent:       extractOpponent([]string{cardText}, name),
			MatchTime:      orSentinel(event.UnknownField, guessTime([]string{cardText})),
			Mat:            orSentinel(event.UnknownField, guessMat([]string{cardText})),
			SourceURL:      p.url,
		})
	})
}

// nearestDivisionHeading walks backwards through document order from the
// card and returns the first h1-h4 text, provided it looks like a division
// label (contains a slash and is at least 8 characters).
func nearestDivisionHeading(card *goquery.Selection) string {
	if len(card.Nodes) == 0 {
		return ""
	}
	for n := prevInDocument(card.Nodes[0]); n != nil; n = prevInDocument(n) {
		if n.Type != xhtml.ElementNode {
			continue
		}
		switch n.Data {
		case "h1", "h2", "h3", "h4":
			text := nodeText(n)
			if strings.Contains(text, "/") && len(text) >= 8 {
				return text
			}
			return ""
		}
	}
	return ""
}

// prevInDocument returns the node immediately before n in document order:
// the deepest last descendant of the previous sibling, else the parent.
func prevInDocument(n *xhtml.Node) *xhtml.Node {
	if n.PrevSibling != nil {
		m := n.PrevSibling
		for m.LastChild != nil {
			m = m.LastChild
		}
		return m
	}
	return n.Parent
}

func nodeText(n *xhtml.Node) string {
	var b strings.Builder
	var walk func(*xhtml.Node)
	walk = func(m *xhtml.Node) {
		if m.Type == xhtml.TextNode {
			if t := strings.TrimSpace(m.Data); t != "" {
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(event.CollapseSpace(t))
			}
		}
		for c := m.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// tableExtractor reads generic competitor tables: header-keyword lookup
// first, positional/content-shape guessing second.
type tableExtractor struct{}

func (tableExtractor) name() string { return "tables" }

func (tableExtractor) extract(p *page, keywords []string, acc *accumulator) {
	p.doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, stripText(cell))
		})
		if len(cells) < 2 {
			return
		}

		// Narrow rows full of header words are column headers, not data.
		if len(cells) < 4 {
			joined := strings.ToLower(strings.Join(cells, " | "))
			for _, token := range []string{"name", "academy", "team", "division"} {
				if strings.Contains(joined, token) {
					return
				}
			}
		}

		affiliate := firstMatch(cells, affiliateFieldKeys)
		if affiliate == "" {
			affiliate = guessAffiliate(cells)
		}
		if affiliate == "" {
			return
		}
		if !matchesAffiliate(affiliate, keywords) {
			return
		}

		name := guessName(cells)
		if name == "" {
			return
		}

		division := firstMatch(cells, []string{"division", "category", "weight", "belt"})
		if division == "" {
			division = guessDivision(cells)
		}
		matchTime := firstMatch(cells, []string{"time", "start", "schedule"})
		if matchTime == "" {
			matchTime = guessTime(cells)
		}
		mat := firstMatch(cells, matFieldKeys)
		if mat == "" {
			mat = guessMat(cells)
		}

		acc.add(&event.CompetitorSchedule{
			CompetitorName: name,
			Academy:        affiliate,
			Division:       orSentinel(event.UnknownField, division),
			Bracket:        firstMatch(cells, []string{"bracket", "pool"}),
			Opponent:       extractOpponent(cells, name),
			MatchTime:      orSentinel(event.UnknownField, matchTime),
			Mat:            orSentinel(event.UnknownField, mat),
			SourceURL:      p.url,
		})
	})
}

// scriptExtractor reads JSON-shaped object literals out of script blocks,
// plus a keyword-window pass for payloads that are not even JSON-shaped.
type scriptExtractor struct{}

func (scriptExtractor) name() string { return "scripts" }

func (scriptExtractor) extract(p *page, keywords []string, acc *accumulator) {
	p.doc.Find("script").Each(func(_ int, script *goquery.Selection) {
		text := script.Text()
		if text == "" {
			return
		}
		if len(keywords) > 0 && !matchesAffiliate(text, keywords) {
			return
		}

		for _, obj := range scriptObjectPattern.FindAllString(text, -1) {
			if len(keywords) > 0 && !matchesAffiliate(obj, keywords) {
				continue
			}
			affiliate := jsonField(obj, affiliateFieldKeys)
			if affiliate == "" && len(keywords) > 0 {
				affiliate = extractAffiliateLabel(obj, keywords)
			}
			if affiliate == "" {
				affiliate = event.UnknownAffiliate
			}
			if len(keywords) > 0 && !matchesAffiliate(affiliate, keywords) {
				continue
			}
			name := jsonField(obj, nameFieldKeys)
			if name == "" {
				continue
			}

			acc.add(&event.CompetitorSchedule{
				CompetitorName: stdhtml.UnescapeString(name),
				Academy:        stdhtml.UnescapeString(affiliate),
				Division:       stdhtml.UnescapeString(orSentinel(event.UnknownField, jsonField(obj, divisionFieldKeys))),
				Opponent:       stdhtml.UnescapeString(orSentinel(event.UnknownField, jsonField(obj, opponentFieldKeys))),
				MatchTime:      stdhtml.UnescapeString(orSentinel(event.UnknownField, jsonField(obj, timeFieldKeys), guessTime([]string{obj}))),
				Mat:            stdhtml.UnescapeString(orSentinel(event.UnknownField, jsonField(obj, matFieldKeys), guessMat([]string{obj}))),
				SourceURL:      p.url,
			})
		}

		extractKeywordWindows(text, keywords, p.url, acc)
	})
}

// extractKeywordWindows inspects a ±500-character window around every
// occurrence of each affiliate keyword. Some payloads never form a
// brace-delimited object, so this is the only way to reach them.
func extractKeywordWindows(text string, keywords []string, sourceURL string, acc *accumulator) {
	if len(keywords) == 0 {
		return
	}
	lower := strings.ToLower(text)
	for _, keyword := range keywords {
		kw := strings.ToLower(strings.TrimSpace(keyword))
		if kw == "" {
			continue
		}
		start := 0
		for {
			idx := strings.Index(lower[start:], kw)
			if idx < 0 {
				break
			}
			idx += start

			winStart := idx - 500
			if winStart < 0 {
				winStart = 0
			}
			winEnd := idx + 500
			if winEnd > len(text) {
				winEnd = len(text)
			}
			snippet := text[winStart:winEnd]

			name := jsonField(snippet, nameFieldKeys)
			if name == "" {
				name = extractPersonName(snippet)
			}
			if name != "" && isPlausiblePersonName(name) {
				acc.add(&event.CompetitorSchedule{
					CompetitorName: stdhtml.UnescapeString(name),
					Academy:        stdhtml.UnescapeString(orSentinel(keyword, extractAffiliateLabel(snippet, keywords))),
					Division:       stdhtml.UnescapeString(orSentinel(event.UnknownField, jsonField(snippet, divisionFieldKeys))),
					Opponent:       stdhtml.UnescapeString(orSentinel(event.UnknownField, jsonField(snippet, opponentFieldKeys))),
					MatchTime:      stdhtml.UnescapeString(orSentinel(event.UnknownField, jsonField(snippet, timeFieldKeys), guessTime([]string{snippet}))),
					Mat:            stdhtml.UnescapeString(orSentinel(event.UnknownField, jsonField(snippet, matFieldKeys), guessMat([]string{snippet}))),
					SourceURL:      sourceURL,
				})
			}
			start = idx + len(kw)
		}
	}
}

// domBlockExtractor is the lowest-precision pass: generic card/list/row
// selectors, one heuristically-identified name per block, with a hard scan
// cap so huge pages terminate.
type domBlockExtractor struct{}

func (domBlockExtractor) name() string { return "dom_blocks" }

func (domBlockExtractor) extract(p *page, keywords []string, acc *accumulator) {
	scanned := 0
	for _, selector := range blockSelectors {
		capped := false
		p.doc.Find(selector).EachWithBreak(func(_ int, node *goquery.Selection) bool {
			scanned++
			if scanned > blockScanCap {
				capped = true
				return false
			}
			text := stripText(node)
			if len(text) < 10 {
				return true
			}
			if !matchesAffiliate(text, keywords) {
				return true
			}
			name := extractPersonName(text)
			if name == "" || !isPlausiblePersonName(name) {
				return true
			}
			acc.add(&event.CompetitorSchedule{
				CompetitorName: name,
				Academy:        orSentinel(event.TeamMatch, extractAffiliateLabel(text, keywords)),
				Division:       orSentinel(event.UnknownField, guessDivision([]string{text})),
				Opponent:       extractOpponent([]string{text}, name),
				MatchTime:      orSentinel(event.UnknownField, guessTime([]string{text})),
				Mat:            orSentinel(event.UnknownField, guessMat([]string{text})),
				SourceURL:      p.url,
			})
			return true
		})
		if capped {
			return
		}
	}
}
