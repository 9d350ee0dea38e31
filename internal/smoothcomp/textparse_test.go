package smoothcomp

import (
	"reflect"
	"testing"
)

func TestMatchesAffiliate(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		keywords []string
		expected bool
	}{
		{
			name:     "empty keyword list matches everything",
			text:     "anything at all",
			keywords: nil,
			expected: true,
		},
		{
			name:     "exact substring",
			text:     "Alice Santos - Alpha Academy Manila",
			keywords: []string{"alpha academy"},
			expected: true,
		},
		{
			name:     "two of three tokens",
			text:     "Deftac Ribeiro team roster",
			keywords: []string{"deftac ribeiro cebu"},
			expected: true,
		},
		{
			name:     "single-word keyword single hit",
			text:     "representing atos philippines",
			keywords: []string{"atos"},
			expected: true,
		},
		{
			name:     "one of three tokens is not enough",
			text:     "only ribeiro is mentioned",
			keywords: []string{"deftac cebuano grappling"},
			expected: false,
		},
		{
			name:     "empty text never matches",
			text:     "   ",
			keywords: []string{"alpha"},
			expected: false,
		},
		{
			name:     "short tokens are ignored",
			text:     "bj academy",
			keywords: []string{"bj x"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesAffiliate(tt.text, tt.keywords); got != tt.expected {
				t.Errorf("matchesAffiliate(%q, %v) = %v, want %v", tt.text, tt.keywords, got, tt.expected)
			}
		})
	}
}

func TestExtractAffiliateLabel(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		keywords []string
		expected string
	}{
		{
			name:     "configured keyword wins",
			text:     "Alice Santos fighting for Alpha Academy this weekend",
			keywords: []string{"alpha academy"},
			expected: "alpha academy",
		},
		{
			name:     "team-looking line",
			text:     "Adult / -70kg\nCarpe Diem BJJ\n10:30 AM",
			keywords: nil,
			expected: "Carpe Diem BJJ",
		},
		{
			name:     "marker word line",
			text:     "Row one\nHome club of champions\nRow three",
			keywords: nil,
			expected: "Home club of champions",
		},
		{
			name:     "single line splits on pipes",
			text:     "Alice Santos | Atos Manila",
			keywords: nil,
			expected: "Atos Manila",
		},
		{
			name:     "empty input",
			text:     "",
			keywords: nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractAffiliateLabel(tt.text, tt.keywords); got != tt.expected {
				t.Errorf("extractAffiliateLabel(%q) = %q, want %q", tt.text, got, tt.expected)
			}
		})
	}
}

func TestIsLikelyAffiliateLabel(t *testing.T) {
	tests := []struct {
		label    string
		expected bool
	}{
		{"Alpha Academy", true},
		{"x", false},
		{"10:30 am weigh-in", false},
		{"Adult / -70kg / Male", false},
		{"Approved registrations", false},
		{"Participants list", false},
		{"Deftac Ribeiro Cebu", true},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := isLikelyAffiliateLabel(tt.label); got != tt.expected {
				t.Errorf("isLikelyAffiliateLabel(%q) = %v, want %v", tt.label, got, tt.expected)
			}
		})
	}
}

func TestIsPlausiblePersonName(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"Alice Santos", true},
		{"Jo", false},
		{"Philippines Open", false},
		{"Smoothcomp Admin", false},
		{"Novice Bracket", false},
		{"Juan Miguel de la Cruz", true},
		{"SingleWord", false},
		{"Alice Santos 123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isPlausiblePersonName(tt.name); got != tt.expected {
				t.Errorf("isPlausiblePersonName(%q) = %v, want %v", tt.name, got, tt.expected)
			}
		})
	}
}

func TestExtractPersonName(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "keyed form preferred",
			text:     `something Competitor: Alice Santos also Bob Reyes nearby`,
			expected: "Alice Santos",
		},
		{
			name:     "first capitalized run",
			text:     "weigh-in for Maria Clara Reyes at noon",
			expected: "Maria Clara Reyes",
		},
		{
			name:     "nothing name-like",
			text:     "1234 --- !!!",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractPersonName(tt.text); got != tt.expected {
				t.Errorf("extractPersonName(%q) = %q, want %q", tt.text, got, tt.expected)
			}
		})
	}
}

func TestExtractPeopleFromText(t *testing.T) {
	text := "bracket Adult / -70kg Alice Santos vs Jane Cruz weigh-in 10:30 Alice Santos"
	got := extractPeopleFromText(text)
	expected := []string{"Alice Santos", "Jane Cruz"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("extractPeopleFromText() = %v, want %v", got, expected)
	}
}

func TestExtractDivisionishText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "slash plus marker line",
			text:     "Header\nAdult / Male / -70kg\nFooter",
			expected: "Adult / Male / -70kg",
		},
		{
			name:     "gender-to-gi run",
			text:     "schedule Female Adult Blue Belt No-Gi starts soon",
			expected: "Female Adult Blue Belt No-Gi starts soon",
		},
		{
			name:     "nothing divisionish",
			text:     "just some text",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractDivisionishText(tt.text); got != tt.expected {
				t.Errorf("extractDivisionishText(%q) = %q, want %q", tt.text, got, tt.expected)
			}
		})
	}
}

func TestFirstMatch(t *testing.T) {
	tests := []struct {
		name     string
		cells    []string
		markers  []string
		expected string
	}{
		{
			name:     "colon value in same cell",
			cells:    []string{"Academy: Alpha Academy", "other"},
			markers:  []string{"academy"},
			expected: "Alpha Academy",
		},
		{
			name:     "value in next cell",
			cells:    []string{"Division", "Adult / -70kg"},
			markers:  []string{"division"},
			expected: "Adult / -70kg",
		},
		{
			name:     "no marker",
			cells:    []string{"Alice Santos", "Alpha"},
			markers:  []string{"division"},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := firstMatch(tt.cells, tt.markers); got != tt.expected {
				t.Errorf("firstMatch(%v, %v) = %q, want %q", tt.cells, tt.markers, got, tt.expected)
			}
		})
	}
}

func TestCellGuesses(t *testing.T) {
	cells := []string{"Alice Santos", "Alpha Academy", "Adult -70kg", "10:30 AM", "Mat 2", "Alice Santos vs Jane Cruz"}

	if got := guessName(cells); got != "Alice Santos" {
		t.Errorf("guessName() = %q, want %q", got, "Alice Santos")
	}
	if got := guessAffiliate(cells); got != "Alpha Academy" {
		t.Errorf("guessAffiliate() = %q, want %q", got, "Alpha Academy")
	}
	if got := guessDivision(cells); got != "Adult -70kg" {
		t.Errorf("guessDivision() = %q, want %q", got, "Adult -70kg")
	}
	if got := guessTime(cells); got != "10:30 AM" {
		t.Errorf("guessTime() = %q, want %q", got, "10:30 AM")
	}
	if got := guessTime([]string{"Starts 10:30 sharp"}); got != "10:30" {
		t.Errorf("guessTime() without am/pm = %q, want %q", got, "10:30")
	}
	if got := guessMat(cells); got != "Mat 2" {
		t.Errorf("guessMat() = %q, want %q", got, "Mat 2")
	}
	if got := extractOpponent(cells, "Alice Santos"); got != "Jane Cruz" {
		t.Errorf("extractOpponent() = %q, want %q", got, "Jane Cruz")
	}
	if got := extractOpponent(cells, "Jane Cruz"); got != "Alice Santos" {
		t.Errorf("extractOpponent() reversed = %q, want %q", got, "Alice Santos")
	}
	if got := extractOpponent([]string{"no pairing here"}, "Alice Santos"); got != "TBD" {
		t.Errorf("extractOpponent() without vs = %q, want TBD", got)
	}
}

func TestJSONField(t *testing.T) {
	obj := `{"athlete_name": "Alice Santos", "division": "Adult -70kg", "Mat": "Mat 2"}`

	if got := jsonField(obj, nameFieldKeys); got != "Alice Santos" {
		t.Errorf("jsonField(name keys) = %q, want %q", got, "Alice Santos")
	}
	if got := jsonField(obj, divisionFieldKeys); got != "Adult -70kg" {
		t.Errorf("jsonField(division keys) = %q, want %q", got, "Adult -70kg")
	}
	if got := jsonField(obj, matFieldKeys); got != "Mat 2" {
		t.Errorf("jsonField(mat keys, case-insensitive) = %q, want %q", got, "Mat 2")
	}
	if got := jsonField(obj, opponentFieldKeys); got != "" {
		t.Errorf("jsonField(missing keys) = %q, want empty", got)
	}
	if got := jsonField(obj, []string{"athlete_name"}); got != "Alice Santos" {
		t.Errorf("jsonField(single key) = %q, want %q", got, "Alice Santos")
	}
	if got := jsonField(obj, []string{"Division"}); got != "Adult -70kg" {
		t.Errorf("jsonField(key outside synonym lists) = %q, want %q", got, "Adult -70kg")
	}
}
