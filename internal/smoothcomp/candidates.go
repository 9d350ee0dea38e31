package smoothcomp

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pfrederiksen/tourna-events/internal/event"
)

var (
	// eventLinkPattern matches the bare event path in an anchor href.
	eventLinkPattern = regexp.MustCompile(`(?i)/(?:[a-z]{2}/)?event/\d+`)
	// eventURLPattern additionally allows a trailing slug, for raw-markup
	// scans where the path arrives embedded in script or JSON text.
	eventURLPattern = regexp.MustCompile(`(?i)/(?:[a-z]{2}/)?event/\d+(?:/[A-Za-z0-9\-_]+)?`)

	jsonNamePattern   = regexp.MustCompile(`"name"\s*:\s*"([^"]{4,120})"`)
	titleAttrPattern  = regexp.MustCompile(`title="([^"]{4,120})"`)
	siteSuffixPattern = regexp.MustCompile(`(?i)\s*\|\s*Smoothcomp.*$`)

	monthsAlternation = `January|February|March|April|May|June|July|August|September|October|November|December|` +
		`Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec`
	blobCountryNamePattern = regexp.MustCompile(`(?i)([A-Za-z0-9&'().,\- ]{8,140}?)\s+[A-Za-z .-]+,\s*Philippines\b`)
	blobDateNamePattern    = regexp.MustCompile(`(?i)([A-Za-z0-9&'().,\- ]{8,140}?)\s+(?:` + monthsAlternation + `)\s+\d{1,2}\b`)
)

// genericEventNames is link text that names nothing: "view", "details" and
// friends force the name lookup to fall through to context extraction.
var genericEventNames = map[string]bool{
	"smoothcomp": true,
	"event":      true,
	"details":    true,
	"read more":  true,
	"open":       true,
	"view":       true,
}

// candidate is a not-yet-confirmed event reference: a normalized URL, the
// best display name seen so far, and every textual context window the URL
// was observed in.
type candidate struct {
	name     string
	contexts []string
}

// collectCandidates scans both the parsed document's anchors and the raw
// markup for event URLs. The raw pass catches links embedded in script or
// JSON payloads that no DOM walk reaches. Each distinct normalized URL
// maps to exactly one record.
func collectCandidates(doc *goquery.Document, rawHTML string) map[string]*candidate {
	candidates := make(map[string]*candidate)

	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if !eventLinkPattern.MatchString(href) {
			return
		}
		url := normalizeEventURL(href)
		if url == "" {
			return
		}
		context := stripText(link.Parent())
		name := stripText(link)
		if isGenericEventName(name) {
			name = extractNameFromLink(link, context, url)
		}
		record := candidates[url]
		if record == nil {
			record = &candidate{}
			candidates[url] = record
		}
		if name != "" && record.name == "" {
			record.name = name
		}
		if context != "" {
			record.contexts = append(record.contexts, context)
		}
	})

	for _, loc := range eventURLPattern.FindAllStringIndex(rawHTML, -1) {
		url := normalizeEventURL(rawHTML[loc[0]:loc[1]])
		if url == "" {
			continue
		}
		start := loc[0] - 260
		if start < 0 {
			start = 0
		}
		end := loc[1] + 260
		if end > len(rawHTML) {
			end = len(rawHTML)
		}
		context := event.CollapseSpace(rawHTML[start:end])
		record := candidates[url]
		if record == nil {
			record = &candidate{}
			candidates[url] = record
		}
		record.contexts = append(record.contexts, context)
		if record.name == "" {
			if extracted := extractNameFromContext(context, url); extracted != "" {
				record.name = extracted
			}
		}
	}
	return candidates
}

// normalizeEventURL strips the query string and resolves relative event
// paths against the primary host. Hrefs that do not carry an event path
// normalize to "".
func normalizeEventURL(href string) string {
	if !eventLinkPattern.MatchString(href) {
		return ""
	}
	return resolveHref("https://smoothcomp.com", strings.SplitN(href, "?", 2)[0])
}

// resolveHref resolves href against base, tolerating junk by returning "".
func resolveHref(base, href string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(ref).String()
}

func isGenericEventName(name string) bool {
	normalized := strings.ToLower(event.CollapseSpace(name))
	return normalized == "" || genericEventNames[normalized]
}

// nameFromURL derives a last-resort display name from the URL tail: a slug
// becomes title-cased words, a bare id becomes "Event <id>".
func nameFromURL(url string) string {
	trimmed := strings.TrimRight(url, "/")
	tail := trimmed
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		tail = trimmed[idx+1:]
	}
	if tail != "" && strings.Trim(tail, "0123456789") == "" {
		return "Event " + tail
	}
	name := titleWords(strings.NewReplacer("-", " ", "_", " ").Replace(tail))
	if name == "" {
		return "Unnamed event"
	}
	return name
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		// Slicing w[:1] would split a multibyte first rune.
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// extractNameFromContext pulls a display name out of a raw-markup context
// window: a JSON "name" field first, then a title attribute, then the
// free-text heuristics, then the URL tail.
func extractNameFromContext(context, url string) string {
	if m := jsonNamePattern.FindStringSubmatch(context); m != nil {
		if name := strings.TrimSpace(m[1]); !isGenericEventName(name) {
			return name
		}
	}
	if m := titleAttrPattern.FindStringSubmatch(context); m != nil {
		if name := strings.TrimSpace(m[1]); !isGenericEventName(name) {
			return name
		}
	}
	if name := extractNameFromTextBlob(context); name != "" {
		return name
	}
	return nameFromURL(url)
}

// extractNameFromTextBlob guesses an event name from free text by looking
// for a name-like run directly before a "City, Philippines" location or a
// month-and-day date, the two shapes listing rows reliably lead with.
func extractNameFromTextBlob(text string) string {
	cleaned := event.CollapseSpace(text)
	if cleaned == "" {
		return ""
	}
	for _, pattern := range []*regexp.Regexp{blobCountryNamePattern, blobDateNamePattern} {
		if m := pattern.FindStringSubmatch(cleaned); m != nil {
			name := strings.Trim(m[1], " -|")
			if !isGenericEventName(name) {
				return name
			}
		}
	}
	return ""
}

// extractNameFromLink builds a candidate-name pool from the link itself
// (text, then title/aria-label/data-title attributes), the headings and
// image alt text of its enclosing card, and finally the row text, and
// returns the first entry that is long enough and not generic.
func extractNameFromLink(link *goquery.Selection, rowText, url string) string {
	var pool []string

	if text := stripText(link); text != "" {
		pool = append(pool, text)
	}
	for _, attr := range []string{"title", "aria-label", "data-title"} {
		if v, ok := link.Attr(attr); ok {
			if v = strings.TrimSpace(v); v != "" {
				pool = append(pool, v)
			}
		}
	}

	scopes := []*goquery.Selection{}
	if container := link.Closest("article, li, tr, section, div"); container.Length() > 0 {
		scopes = append(scopes, container)
	}
	if parent := link.Parent(); parent.Length() > 0 {
		scopes = append(scopes, parent)
	}
	for _, scope := range scopes {
		scope.Find("h1, h2, h3, h4, h5, strong, b").Each(func(_ int, heading *goquery.Selection) {
			if text := stripText(heading); text != "" {
				pool = append(pool, text)
			}
		})
		scope.Find("img[alt]").Each(func(_ int, img *goquery.Selection) {
			if alt, _ := img.Attr("alt"); strings.TrimSpace(alt) != "" {
				pool = append(pool, strings.TrimSpace(alt))
			}
		})
	}

	if blobName := extractNameFromTextBlob(rowText); blobName != "" {
		pool = append(pool, blobName)
	}

	for _, cand := range pool {
		normalized := event.CollapseSpace(cand)
		if len(normalized) < 6 || isGenericEventName(normalized) {
			continue
		}
		return normalized
	}
	return nameFromURL(url)
}

// extractEventNameFromPage resolves an event page's display name from its
// headings, og:title, or title tag (with the site suffix stripped), then
// the raw-markup heuristics, then the URL tail.
func extractEventNameFromPage(doc *goquery.Document, rawHTML, url string) string {
	for _, selector := range []string{"h1", "h2"} {
		if tag := doc.Find(selector).First(); tag.Length() > 0 {
			name := strings.TrimSpace(siteSuffixPattern.ReplaceAllString(stripText(tag), ""))
			if !isGenericEventName(name) {
				return name
			}
		}
	}
	if meta := doc.Find("meta[property='og:title']").First(); meta.Length() > 0 {
		if content, ok := meta.Attr("content"); ok {
			if name := strings.TrimSpace(content); !isGenericEventName(name) {
				return name
			}
		}
	}
	if title := doc.Find("title").First(); title.Length() > 0 {
		name := event.CollapseSpace(title.Text())
		name = strings.TrimSpace(siteSuffixPattern.ReplaceAllString(name, ""))
		if !isGenericEventName(name) {
			return name
		}
	}
	if name := extractNameFromContext(rawHTML, url); !isGenericEventName(name) {
		return name
	}
	return nameFromURL(url)
}

// stripText returns the selection's text content with each text node
// trimmed and joined by single spaces, so words in adjacent elements never
// fuse together.
func stripText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(event.CollapseSpace(t))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return b.String()
}
