package assistant

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pbaille/gardenlog/internal/catalog"
	"github.com/pbaille/gardenlog/internal/textnorm"
)

// Phrase lists are normalized and cover both locales; the answer language
// does not restrict which phrasing is understood.
var (
	lastYearPhrases     = []string{"last year", "ano pasado"}
	thisYearPhrases     = []string{"this year", "este ano"}
	thisMonthPhrases    = []string{"this month", "este mes"}
	listTreesPhrases    = []string{"which trees", "what trees", "which tree", "what tree", "que arboles", "cuales arboles", "que arbol", "cual arbol"}
	howManyPhrases      = []string{"how many", "how much", "cuantos", "cuantas", "cuanto", "cuanta"}
	howManyTimesPhrases = []string{"how many times", "how often", "cuantas veces", "con que frecuencia"}
	lastTimePhrases     = []string{"last time", "ultima vez"}

	lastMarkers = map[string]bool{
		"last": true, "latest": true, "past": true,
		"ultima": true, "ultimas": true, "ultimo": true, "ultimos": true, "pasada": true, "pasadas": true,
	}
	weekMarkers = map[string]bool{"week": true, "weeks": true, "semana": true, "semanas": true}
)

const (
	minYear = 1900
	maxYear = 2100

	// maxWeeks bounds "last N weeks" ranges to roughly two centuries.
	maxWeeks = 10000
)

// Intent is what a question asks for.
type Intent int

const (
	IntentLatest Intent = iota
	IntentListTrees
	IntentCountTrees
	IntentCountPlants
	IntentCountOccurrences
	IntentYesNo
)

func (i Intent) String() string {
	switch i {
	case IntentListTrees:
		return "list-trees"
	case IntentCountTrees:
		return "count-trees"
	case IntentCountPlants:
		return "count-plants"
	case IntentCountOccurrences:
		return "count-occurrences"
	case IntentYesNo:
		return "yes-no"
	default:
		return "latest"
	}
}

// DateRange is an inclusive time interval.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Query is the parsed form of a question.
type Query struct {
	Question   string
	Normalized string
	TagIDs     []string
	// Year is the year filter, 0 when none was given.
	Year     int
	Range    *DateRange
	Intent   Intent
	LastTime bool
}

// Parse interprets a question relative to the assistant's clock.
func (a *Assistant) Parse(question string) Query {
	trimmed := strings.TrimSpace(question)
	q := textnorm.Normalize(trimmed)
	tokens := strings.Fields(q)
	now := a.now()

	query := Query{
		Question:   trimmed,
		Normalized: q,
		TagIDs:     a.tagger.ExtractTagIDs(trimmed),
		Year:       parseYear(q, tokens, now),
		LastTime:   textnorm.ContainsAnyPhrase(q, lastTimePhrases),
	}
	query.Range = parseRange(q, tokens, query.Year, now)
	query.Intent = parseIntent(trimmed, q, tokens)

	return query
}

func parseYear(q string, tokens []string, now time.Time) int {
	switch {
	case textnorm.ContainsAnyPhrase(q, lastYearPhrases):
		return now.Year() - 1
	case textnorm.ContainsAnyPhrase(q, thisYearPhrases):
		return now.Year()
	}

	for _, tok := range tokens {
		if len(tok) != 4 {
			continue
		}
		y, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		if y >= minYear && y <= maxYear {
			return y
		}
	}
	return 0
}

func parseRange(q string, tokens []string, year int, now time.Time) *DateRange {
	loc := now.Location()

	if weeks, ok := parseWeeks(tokens); ok {
		return &DateRange{Start: now.AddDate(0, 0, -7*weeks), End: now}
	}

	if textnorm.ContainsAnyPhrase(q, thisMonthPhrases) {
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return &DateRange{Start: start, End: start.AddDate(0, 1, 0).Add(-time.Nanosecond)}
	}

	if year != 0 {
		return &DateRange{
			Start: time.Date(year, time.January, 1, 0, 0, 0, 0, loc),
			End:   time.Date(year, time.December, 31, 23, 59, 59, 0, loc),
		}
	}

	return nil
}

// parseIntent runs the intent cascade; the first match wins.
func parseIntent(raw, q string, tokens []string) Intent {
	howMany := textnorm.ContainsAnyPhrase(q, howManyPhrases)

	switch {
	case textnorm.ContainsAnyPhrase(q, listTreesPhrases):
		return IntentListTrees
	case howMany && hasAny(tokens, catalog.TreeWords):
		return IntentCountTrees
	case howMany && hasAny(tokens, catalog.PlantWords):
		return IntentCountPlants
	case textnorm.ContainsAnyPhrase(q, howManyTimesPhrases):
		return IntentCountOccurrences
	case strings.Contains(raw, "?"):
		return IntentYesNo
	default:
		return IntentLatest
	}
}

// parseWeeks finds a "last [N] weeks" phrase: a last-marker directly before
// the week word, optionally with a count in between ("last 3 weeks",
// "ultimas 2 semanas"), or directly after it ("semana pasada"). Without a
// count the phrase means one week.
func parseWeeks(tokens []string) (int, bool) {
	for i, tok := range tokens {
		if !weekMarkers[tok] {
			continue
		}
		weeks := 1
		j := i - 1
		if j >= 0 {
			if n, ok := positiveInt(tokens[j]); ok {
				weeks = n
				j--
			}
		}
		if (j >= 0 && lastMarkers[tokens[j]]) || (i+1 < len(tokens) && lastMarkers[tokens[i+1]]) {
			return min(weeks, maxWeeks), true
		}
	}
	return 0, false
}

func hasAny(tokens []string, set map[string]bool) bool {
	for _, tok := range tokens {
		if set[tok] {
			return true
		}
	}
	return false
}

// positiveInt parses an all-digit token. Values too large for an int
// saturate at math.MaxInt.
func positiveInt(tok string) (int, bool) {
	if tok == "" {
		return 0, false
	}
	for _, r := range tok {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(tok)
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxInt, true
	}
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
