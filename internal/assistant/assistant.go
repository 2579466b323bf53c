// Package assistant answers natural-language questions about the activity
// logs with a fixed set of rules: date phrases narrow the period, catalog tags
// narrow the entries, and phrase patterns pick what kind of answer to give.
package assistant

import (
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pbaille/gardenlog/internal/catalog"
	"github.com/pbaille/gardenlog/internal/domain"
)

// LogSource provides the entries to reason about, most recent first.
type LogSource interface {
	SortedLogs() []domain.LogEntry
}

// Tagger derives catalog tag ids from text.
type Tagger interface {
	ExtractTagIDs(text string) []string
}

// Assistant answers questions about a LogSource
type Assistant struct {
	logs   LogSource
	tagger Tagger
	logger *zap.Logger
	now    func() time.Time
}

// Option configures an Assistant
type Option func(*Assistant)

// WithClock sets the time source that relative dates are resolved against
func WithClock(now func() time.Time) Option {
	return func(a *Assistant) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(a *Assistant) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Assistant
func New(logs LogSource, tagger Tagger, opts ...Option) *Assistant {
	a := &Assistant{
		logs:   logs,
		tagger: tagger,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Answer replies to question in the given language. It always returns a
// message, whatever the input.
func (a *Assistant) Answer(question string, lang domain.Language) string {
	if strings.TrimSpace(question) == "" {
		return render(lang, msgAskPrompt)
	}

	all := a.logs.SortedLogs()
	if len(all) == 0 {
		return render(lang, msgNoLogs)
	}

	q := a.Parse(question)
	a.logger.Debug("question parsed",
		zap.String("normalized", q.Normalized),
		zap.Strings("tags", q.TagIDs),
		zap.Int("year", q.Year),
		zap.Stringer("intent", q.Intent))

	period := all
	if q.Range != nil {
		period = nil
		for _, e := range all {
			if q.Range.Contains(e.CreatedAt) {
				period = append(period, e)
			}
		}
	}
	if len(period) == 0 {
		if q.Year != 0 {
			return render(lang, msgNoLogsInYear, strconv.Itoa(q.Year))
		}
		return render(lang, msgNoLogsInPeriod)
	}

	strict, soft := partition(period, q.TagIDs)
	candidates := period
	if len(q.TagIDs) > 0 {
		switch {
		case len(strict) > 0:
			candidates = strict
		case len(soft) > 0:
			candidates = soft
		default:
			candidates = nil
		}
	}

	switch q.Intent {
	case IntentListTrees:
		ids := treeSpecies(treeLogs(candidates))
		if len(ids) == 0 {
			return render(lang, msgNoTrees)
		}
		names := make([]string, 0, len(ids))
		for _, id := range ids {
			name, _ := catalog.Name(id, lang)
			names = append(names, name)
		}
		return render(lang, msgTreesFound, strings.Join(names, ", "))

	case IntentCountTrees:
		total := quantity(treeLogs(candidates), catalog.TreeWords)
		if total == 0 {
			return render(lang, msgNoTrees)
		}
		return render(lang, msgTreeCount, total)

	case IntentCountPlants:
		total := quantity(candidates, catalog.PlantWords)
		if total == 0 {
			return render(lang, msgNoPlants)
		}
		return render(lang, msgPlantCount, total)

	case IntentCountOccurrences:
		count := len(strict)
		if count == 0 {
			count = len(soft)
		}
		if count == 0 {
			return render(lang, msgNoOccurrences)
		}
		return render(lang, msgOccurrences, count)

	case IntentYesNo:
		if len(candidates) == 0 {
			return render(lang, msgNoMatches)
		}
		latest := candidates[0]
		return render(lang, msgYesMatches, len(candidates), FormatDate(latest.CreatedAt, lang), latest.Text)
	}

	if len(candidates) == 0 {
		return render(lang, msgNoMatchingLog)
	}
	latest := candidates[0]
	tags := localizedTags(latest, lang)
	if tags == "" {
		tags = render(lang, msgNoTagsPlacehold)
	}
	key := msgMostRecent
	if len(q.TagIDs) > 0 || q.LastTime {
		key = msgLastTime
	}
	return render(lang, key, FormatDate(latest.CreatedAt, lang), latest.Text, tags)
}

// partition splits logs into those carrying every query tag and those
// carrying at least one.
func partition(logs []domain.LogEntry, tagIDs []string) (strict, soft []domain.LogEntry) {
	for _, e := range logs {
		hits := 0
		for _, id := range tagIDs {
			if e.HasTag(id) {
				hits++
			}
		}
		if hits == len(tagIDs) {
			strict = append(strict, e)
		}
		if hits > 0 {
			soft = append(soft, e)
		}
	}
	return strict, soft
}

func localizedTags(e domain.LogEntry, lang domain.Language) string {
	var names []string
	for _, id := range e.TagIDs {
		if name, ok := catalog.Name(id, lang); ok {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}
