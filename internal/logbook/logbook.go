// Package logbook owns the collection of activity log entries and keeps it
// persisted in a key-value byte store after every change.
package logbook

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/pbaille/gardenlog/internal/catalog"
	"github.com/pbaille/gardenlog/internal/domain"
	"github.com/pbaille/gardenlog/internal/textnorm"
)

// StorageKey is the key the serialized collection lives under.
const StorageKey = "activity_logs_v1"

// KV is the durable byte store the book writes through to.
type KV interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
}

// Tagger derives tag ids from entry text.
type Tagger interface {
	ExtractTagIDs(text string) []string
}

// Book is the single owner of the log collection. Entries are kept in
// insertion order; read methods present them newest first.
type Book struct {
	mu     sync.Mutex
	logs   []domain.LogEntry
	kv     KV
	tagger Tagger
	logger *zap.Logger
	now    func() time.Time
	newID  func() string

	reconcileOnLoad bool
}

// Option configures a Book
type Option func(*Book)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(b *Book) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithClock sets the time source used to stamp new entries
func WithClock(now func() time.Time) Option {
	return func(b *Book) {
		if now != nil {
			b.now = now
		}
	}
}

// WithIDGenerator sets the function producing entry ids
func WithIDGenerator(gen func() string) Option {
	return func(b *Book) {
		if gen != nil {
			b.newID = gen
		}
	}
}

// WithReconcileOnLoad controls whether Open recomputes every entry's tags from
// its text. It defaults to true.
func WithReconcileOnLoad(enabled bool) Option {
	return func(b *Book) {
		b.reconcileOnLoad = enabled
	}
}

// Open loads the collection from kv. Undecodable data is treated as an empty
// collection and overwritten. When reconciling (the default), tags not
// derivable from an entry's text are dropped; see ReconcileTagsFromText.
func Open(kv KV, tagger Tagger, opts ...Option) (*Book, error) {
	b := &Book{
		kv:              kv,
		tagger:          tagger,
		logger:          zap.NewNop(),
		now:             time.Now,
		newID:           func() string { return uuid.New().String() },
		reconcileOnLoad: true,
	}
	for _, opt := range opts {
		opt(b)
	}

	if err := b.load(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Book) load() error {
	data, ok, err := b.kv.Get(StorageKey)
	if err != nil {
		return fmt.Errorf("load logs: %w", err)
	}
	if !ok {
		b.logs = nil
		return nil
	}

	var decoded []domain.LogEntry
	if err := json.Unmarshal(data, &decoded); err != nil {
		b.logger.Warn("discarding undecodable logs", zap.Error(err), zap.Int("bytes", len(data)))
		b.logs = nil
		return b.persist(nil)
	}
	b.logs = decoded
	b.logger.Debug("logs loaded", zap.Int("count", len(decoded)))

	if b.reconcileOnLoad {
		return b.commit(b.reconciled())
	}
	return b.persist(b.logs)
}

// ReconcileTagsFromText replaces every entry's tags with the tags derived from
// its text and persists the result. Custom tags and catalog tags that no longer
// match are dropped; derivable tags that were removed by hand come back.
func (b *Book) ReconcileTagsFromText() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.commit(b.reconciled())
}

// reconciled returns a copy of the entries with tags derived from their text.
func (b *Book) reconciled() []domain.LogEntry {
	next := make([]domain.LogEntry, len(b.logs))
	changed := 0
	for i, e := range b.logs {
		tags := orEmpty(b.tagger.ExtractTagIDs(e.Text))
		if !slices.Equal(tags, e.TagIDs) {
			changed++
		}
		e.TagIDs = tags
		next[i] = e
	}
	b.logger.Debug("tags reconciled", zap.Int("entries", len(next)), zap.Int("changed", changed))
	return next
}

// commit persists next and only then makes it the current collection, so a
// failed write leaves the book as it was.
func (b *Book) commit(next []domain.LogEntry) error {
	if err := b.persist(next); err != nil {
		return err
	}
	b.logs = next
	return nil
}

func (b *Book) persist(logs []domain.LogEntry) error {
	if logs == nil {
		logs = []domain.LogEntry{}
	}
	data, err := json.Marshal(logs)
	if err != nil {
		return fmt.Errorf("encode logs: %w", err)
	}
	if err := b.kv.Set(StorageKey, data); err != nil {
		return fmt.Errorf("save logs: %w", err)
	}
	return nil
}

func (b *Book) indexOf(id string) int {
	return slices.IndexFunc(b.logs, func(e domain.LogEntry) bool { return e.ID == id })
}

// AddLog creates an entry from text, tagging it automatically. Blank text is
// ignored and yields a nil entry.
func (b *Book) AddLog(text string) (*domain.LogEntry, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	entry := domain.LogEntry{
		ID:        b.newID(),
		Text:      trimmed,
		CreatedAt: b.now(),
		TagIDs:    orEmpty(b.tagger.ExtractTagIDs(trimmed)),
	}
	if err := b.commit(append(slices.Clone(b.logs), entry)); err != nil {
		return nil, err
	}
	b.logger.Debug("log added", zap.String("id", entry.ID), zap.Strings("tags", entry.TagIDs))
	return &entry, nil
}

// DeleteLog removes the entry with the given id
func (b *Book) DeleteLog(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := slices.DeleteFunc(slices.Clone(b.logs), func(e domain.LogEntry) bool { return e.ID == id })
	return b.commit(next)
}

// AddTag appends a normalized tag id to an entry unless already present
func (b *Book) AddTag(tagID, logID string) error {
	tag := textnorm.Normalize(tagID)
	if tag == "" {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(logID)
	if i < 0 {
		return nil
	}
	if b.logs[i].HasTag(tag) {
		return nil
	}

	return b.replace(i, func(e *domain.LogEntry) {
		e.TagIDs = append(slices.Clone(e.TagIDs), tag)
	})
}

// RemoveTag removes a tag id from an entry. The collection is written even
// when the entry did not carry the tag.
func (b *Book) RemoveTag(tagID, logID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(logID)
	if i < 0 {
		return nil
	}
	tag := textnorm.Normalize(tagID)

	return b.replace(i, func(e *domain.LogEntry) {
		kept := make([]string, 0, len(e.TagIDs))
		for _, t := range e.TagIDs {
			if t != tag {
				kept = append(kept, t)
			}
		}
		e.TagIDs = kept
	})
}

// UpdateLogDate changes an entry's creation time
func (b *Book) UpdateLogDate(id string, date time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return nil
	}
	return b.replace(i, func(e *domain.LogEntry) {
		e.CreatedAt = date
	})
}

// replace commits a copy of the collection with entry i edited by fn.
func (b *Book) replace(i int, fn func(*domain.LogEntry)) error {
	next := slices.Clone(b.logs)
	updated := cloneEntry(next[i])
	fn(&updated)
	next[i] = updated
	return b.commit(next)
}

// Log returns the entry with the given id
func (b *Book) Log(id string) (domain.LogEntry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return domain.LogEntry{}, false
	}
	return cloneEntry(b.logs[i]), true
}

// FindByPrefix returns the newest entry whose id starts with prefix
func (b *Book) FindByPrefix(prefix string) (domain.LogEntry, bool) {
	if prefix == "" {
		return domain.LogEntry{}, false
	}
	for _, e := range b.SortedLogs() {
		if strings.HasPrefix(e.ID, prefix) {
			return e, true
		}
	}
	return domain.LogEntry{}, false
}

// Len returns the number of entries
func (b *Book) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.logs)
}

// SortedLogs returns a copy of the entries, most recent first
func (b *Book) SortedLogs() []domain.LogEntry {
	b.mu.Lock()
	out := make([]domain.LogEntry, len(b.logs))
	for i, e := range b.logs {
		out[i] = cloneEntry(e)
	}
	b.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// LogsWithTag returns the entries carrying tagID, most recent first
func (b *Book) LogsWithTag(tagID string) []domain.LogEntry {
	var out []domain.LogEntry
	for _, e := range b.SortedLogs() {
		if e.HasTag(tagID) {
			out = append(out, e)
		}
	}
	return out
}

// TagName returns the localized name of a catalog tag
func (b *Book) TagName(id string, lang domain.Language) (string, bool) {
	return catalog.Name(id, lang)
}

// LocalizedTags maps an entry's tag ids to display names, skipping ids that
// are not in the catalog
func (b *Book) LocalizedTags(e domain.LogEntry, lang domain.Language) []string {
	var names []string
	for _, id := range e.TagIDs {
		if name, ok := catalog.Name(id, lang); ok {
			names = append(names, name)
		}
	}
	return names
}

// AvailableTagIDs returns the distinct tag ids in use, sorted by display name
func (b *Book) AvailableTagIDs(lang domain.Language) []string {
	b.mu.Lock()
	seen := make(map[string]bool)
	var ids []string
	for _, e := range b.logs {
		for _, id := range e.TagIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	b.mu.Unlock()

	sortByName(ids, lang)
	return ids
}

// AllSuggestedTagIDs returns every catalog tag id, sorted by display name
func (b *Book) AllSuggestedTagIDs(lang domain.Language) []string {
	ids := catalog.IDs()
	sortByName(ids, lang)
	return ids
}

// sortByName orders ids by their localized name, falling back to the id
// itself for custom tags. Comparison ignores case and follows the locale.
func sortByName(ids []string, lang domain.Language) {
	tag := language.English
	if lang == domain.Spanish {
		tag = language.Spanish
	}
	c := collate.New(tag, collate.IgnoreCase)

	name := func(id string) string {
		if n, ok := catalog.Name(id, lang); ok {
			return n
		}
		return id
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return c.CompareString(name(ids[i]), name(ids[j])) < 0
	})
}

func cloneEntry(e domain.LogEntry) domain.LogEntry {
	e.TagIDs = slices.Clone(e.TagIDs)
	return e
}

func orEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
