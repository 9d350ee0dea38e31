package smoothcomp

import (
	"regexp"
	"strings"

	"github.com/pfrederiksen/tourna-events/internal/event"
)

var (
	personNamePattern  = regexp.MustCompile("\\b([A-Z][A-Za-z'`.\\-]+(?:\\s+[A-Z][A-Za-z'`.\\-]+){1,4})\\b")
	personShapePattern = regexp.MustCompile("^[A-Za-z'`.\\-]+(?:\\s+[A-Za-z'`.\\-]+){1,4}$")
	personKeyedPattern = regexp.MustCompile("(?i:name|athlete|competitor|fighter)\\s*[:\"'= ]+\\s*([A-Z][A-Za-z'`.\\-]+(?:\\s+[A-Z][A-Za-z'`.\\-]+){1,4})")
	vsPairPattern      = regexp.MustCompile("([A-Z][A-Za-z'`.\\-]+(?:\\s+[A-Z][A-Za-z'`.\\-]+){1,4})\\s*(?:(?i:vs\\.?|versus))\\s*([A-Z][A-Za-z'`.\\-]+(?:\\s+[A-Z][A-Za-z'`.\\-]+){1,4})")

	clockPattern     = regexp.MustCompile(`(?i)\b\d{1,2}:\d{2}\s*(?:am|pm)?\b`)
	clockAmPmPattern = regexp.MustCompile(`(?i)\b\d{1,2}:\d{2}\s*(?:am|pm)\b`)
	matPattern       = regexp.MustCompile(`(?i)\b(?:mat|ring|area)\s*#?\s*[A-Za-z0-9]+`)
	vsCellPattern    = regexp.MustCompile(`(?i)(.+?)\s+vs\.?\s+(.+)`)
	nameCellPattern  = regexp.MustCompile(`^[A-Za-z\-.,'\s]{5,}$`)

	affiliateLinePattern = regexp.MustCompile(`(?i)[A-Za-z].*(?:Jiu|Jitsu|BJJ|Team|Academy|Atos|DeBlass|TDBJJ)`)
	divisionLinePattern  = regexp.MustCompile(`(?i)((?:Male|Female)\s+[^\n]{3,120}?(?:Gi|No-?Gi)[^\n]{0,120})`)

	keywordTokenPattern = regexp.MustCompile(`[^a-z0-9]+`)
	cellSplitPattern    = regexp.MustCompile(`\s{2,}|\|`)
)

// jsonFieldPatterns holds one compiled field matcher per known synonym key
// so jsonField does not recompile inside the extractor loops.
var jsonFieldPatterns = func() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp)
	for _, keys := range [][]string{
		nameFieldKeys, affiliateFieldKeys, divisionFieldKeys,
		matFieldKeys, timeFieldKeys, opponentFieldKeys,
	} {
		for _, key := range keys {
			patterns[key] = jsonFieldPattern(key)
		}
	}
	return patterns
}()

func jsonFieldPattern(key string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)"` + regexp.QuoteMeta(key) + `"\s*:\s*"([^"]+)"`)
}

// isPlausiblePersonName filters out short strings and page chrome that the
// capitalized-word pattern would otherwise accept as names.
func isPlausiblePersonName(name string) bool {
	n := strings.TrimSpace(name)
	if len(n) < 5 {
		return false
	}
	lower := strings.ToLower(n)
	for _, blocked := range []string{"philippines", "smoothcomp", "novice", "championship", "participants"} {
		if strings.Contains(lower, blocked) {
			return false
		}
	}
	return personShapePattern.MatchString(n)
}

// extractPersonName pulls one person name out of a text blob, preferring
// an explicit name/athlete/competitor key over the first capitalized run.
func extractPersonName(text string) string {
	if m := personKeyedPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := personNamePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// extractPeopleFromText returns every distinct plausible person name in
// the text, in order of first appearance.
func extractPeopleFromText(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range personNamePattern.FindAllStringSubmatch(text, -1) {
		name := event.CollapseSpace(m[1])
		if !isPlausiblePersonName(name) {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}

// matchesAffiliate reports whether text matches at least one configured
// keyword: an exact substring, at least two of the keyword's tokens, or
// the sole token of a single-word keyword. An empty keyword list matches
// everything, which is what hint-detection mode relies on.
func matchesAffiliate(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	hay := strings.ToLower(event.CollapseSpace(text))
	if hay == "" {
		return false
	}
	for _, keyword := range keywords {
		kw := strings.ToLower(strings.TrimSpace(keyword))
		if kw == "" {
			continue
		}
		if strings.Contains(hay, kw) {
			return true
		}
		var tokens []string
		for _, t := range keywordTokenPattern.Split(kw, -1) {
			if len(t) >= 3 {
				tokens = append(tokens, t)
			}
		}
		if len(tokens) == 0 {
			continue
		}
		hits := 0
		for _, token := range tokens {
			if strings.Contains(hay, token) {
				hits++
			}
		}
		if hits >= 2 || (hits >= 1 && len(tokens) == 1) {
			return true
		}
	}
	return false
}

// extractAffiliateLabel guesses the academy/team label inside a text blob.
// A configured keyword that appears verbatim wins; otherwise the first
// line that looks like a martial-arts team name, then the first line with
// an academy/team marker word, then the last line as a shrug.
func extractAffiliateLabel(text string, keywords []string) string {
	lowerText := strings.ToLower(text)
	for _, keyword := range keywords {
		if strings.Contains(lowerText, strings.ToLower(keyword)) {
			return keyword
		}
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = event.CollapseSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) <= 1 {
		var parts []string
		for _, p := range cellSplitPattern.Split(text, -1) {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) > 0 {
			lines = parts
		}
	}

	for _, line := range lines {
		if affiliateLinePattern.MatchString(line) {
			return event.Clamp(line, 120)
		}
	}
	for _, line := range lines {
		lower := strings.ToLower(line)
		for _, marker := range []string{"academy", "affiliate", "team", "club"} {
			if strings.Contains(lower, marker) {
				return event.Clamp(line, 120)
			}
		}
	}
	if len(lines) > 0 {
		return event.Clamp(lines[len(lines)-1], 120)
	}
	return ""
}

// isLikelyAffiliateLabel rejects strings that cannot be a team name: too
// short or long, clock times, division-looking lines, and page chrome.
func isLikelyAffiliateLabel(text string) bool {
	t := event.CollapseSpace(text)
	lower := strings.ToLower(t)
	if len(t) < 3 || len(t) > 120 {
		return false
	}
	if clockAmPmPattern.MatchString(lower) {
		return false
	}
	if strings.Contains(t, "/") {
		for _, marker := range []string{"kg", "adult", "master", "female", "male", "white", "blue", "brown", "black"} {
			if strings.Contains(lower, marker) {
				return false
			}
		}
	}
	for _, chrome := range []string{"participants", "ranking", "membership", "home events", "approved registrations"} {
		if strings.Contains(lower, chrome) {
			return false
		}
	}
	return true
}

// extractDivisionishText finds a division-shaped line: something with a
// slash plus an age/weight/gender marker, or a "Male ... Gi" style run.
func extractDivisionishText(text string) string {
	for _, raw := range strings.Split(text, "\n") {
		line := event.CollapseSpace(raw)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		if !strings.Contains(line, "/") {
			continue
		}
		for _, marker := range []string{"male", "female", "adult", "master", "gi", "no-gi", "kg"} {
			if strings.Contains(lower, marker) {
				return event.Clamp(line, 120)
			}
		}
	}
	if m := divisionLinePattern.FindStringSubmatch(text); m != nil {
		return event.Clamp(event.CollapseSpace(m[1]), 120)
	}
	return ""
}

// firstMatch scans cells for a marker word and returns its value: the text
// after a colon in the same cell, or the following cell.
func firstMatch(cells []string, markers []string) string {
	for i, cell := range cells {
		lower := strings.ToLower(cell)
		for _, marker := range markers {
			if !strings.Contains(lower, marker) {
				continue
			}
			if idx := strings.Index(cell, ":"); idx >= 0 {
				return strings.TrimSpace(cell[idx+1:])
			}
			if i+1 < len(cells) {
				return strings.TrimSpace(cells[i+1])
			}
			return ""
		}
	}
	return ""
}

// guessAffiliate falls back to the cell carrying a team marker word, then
// the second cell, the conventional academy column.
func guessAffiliate(cells []string) string {
	for _, cell := range cells {
		lower := strings.ToLower(cell)
		for _, marker := range []string{"academy", "affiliate", "team", "club"} {
			if strings.Contains(lower, marker) {
				return cell
			}
		}
	}
	if len(cells) > 1 {
		return cells[1]
	}
	return ""
}

// guessName picks the first name-shaped cell, skipping header-ish values.
func guessName(cells []string) string {
	var candidates []string
	for _, cell := range cells {
		if nameCellPattern.MatchString(cell) {
			candidates = append(candidates, cell)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	for _, c := range candidates {
		lower := strings.ToLower(c)
		headerish := false
		for _, marker := range []string{"academy", "division", "bracket", "mat", "ring", "time"} {
			if strings.Contains(lower, marker) {
				headerish = true
				break
			}
		}
		if !headerish {
			return strings.TrimSpace(c)
		}
	}
	return strings.TrimSpace(candidates[0])
}

func guessDivision(cells []string) string {
	for _, cell := range cells {
		lower := strings.ToLower(cell)
		for _, marker := range []string{"adult", "master", "juvenile", "kg", "lb", "white", "blue", "purple", "brown", "black"} {
			if strings.Contains(lower, marker) {
				return cell
			}
		}
	}
	return ""
}

func guessTime(cells []string) string {
	for _, cell := range cells {
		if m := clockPattern.FindString(cell); m != "" {
			// The pattern's optional am/pm can leave the match with a
			// trailing space, which would poison dedup keys downstream.
			return strings.TrimSpace(m)
		}
	}
	return ""
}

func guessMat(cells []string) string {
	for _, cell := range cells {
		if m := matPattern.FindString(cell); m != "" {
			return m
		}
	}
	return ""
}

// extractOpponent finds an "X vs Y" run in the cells and returns the side
// that is not the competitor. Without one the opponent stays TBD.
func extractOpponent(cells []string, competitorName string) string {
	lowerName := strings.ToLower(competitorName)
	for _, cell := range cells {
		m := vsCellPattern.FindStringSubmatch(cell)
		if m == nil {
			continue
		}
		left, right := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		if strings.Contains(strings.ToLower(left), lowerName) {
			return right
		}
		if strings.Contains(strings.ToLower(right), lowerName) {
			return left
		}
	}
	return event.UnknownField
}

// jsonField finds the first `"key": "value"` field for any of the synonym
// keys inside a JSON-like text chunk. The chunk does not need to parse as
// JSON; many of the site's script payloads are only JSON-shaped.
func jsonField(objText string, keys []string) string {
	for _, key := range keys {
		pattern, ok := jsonFieldPatterns[key]
		if !ok {
			pattern = jsonFieldPattern(key)
		}
		if m := pattern.FindStringSubmatch(objText); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}
