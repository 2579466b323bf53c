// Package tagger classifies free text into catalog tag ids by keyword matching.
package tagger

import (
	"strings"

	"go.uber.org/zap"

	"github.com/pbaille/gardenlog/internal/domain"
	"github.com/pbaille/gardenlog/internal/textnorm"
)

// prefixMinLen is the shortest keyword allowed to match as a token prefix.
const prefixMinLen = 5

// Expander yields extra normalized candidate tokens for a raw text, typically
// word forms and lemmas of its nouns, verbs and adjectives. Implementations
// return nil when they have nothing to add or are unavailable.
type Expander interface {
	Expand(text string) []string
}

// NopExpander adds no tokens.
type NopExpander struct{}

// Expand implements Expander.
func (NopExpander) Expand(string) []string { return nil }

type compiledTag struct {
	id       string
	keywords []string
}

// Tagger matches texts against an ordered list of tag definitions
type Tagger struct {
	tags     []compiledTag
	expander Expander
	logger   *zap.Logger
}

// Option configures a Tagger
type Option func(*Tagger)

// WithExpander sets the linguistic expansion backend
func WithExpander(e Expander) Option {
	return func(t *Tagger) {
		if e != nil {
			t.expander = e
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(t *Tagger) {
		if l != nil {
			t.logger = l
		}
	}
}

// New creates a Tagger for the given definitions, keeping their order
func New(defs []domain.TagDefinition, opts ...Option) *Tagger {
	t := &Tagger{
		expander: NopExpander{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}

	for _, d := range defs {
		ct := compiledTag{id: d.ID}
		for _, k := range d.Keywords {
			if nk := textnorm.Normalize(k); nk != "" {
				ct.keywords = append(ct.keywords, nk)
			}
		}
		t.tags = append(t.tags, ct)
	}

	return t
}

// ExtractTagIDs returns the ids of every tag whose keywords match text, in
// definition order and without duplicates.
func (t *Tagger) ExtractTagIDs(text string) []string {
	normalized := textnorm.Normalize(text)

	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(normalized) {
		tokens[tok] = struct{}{}
	}
	expanded := t.expander.Expand(text)
	for _, tok := range expanded {
		if tok = textnorm.Normalize(tok); tok != "" {
			tokens[tok] = struct{}{}
		}
	}
	t.logger.Debug("tagging text",
		zap.Int("tokens", len(tokens)),
		zap.Int("expanded", len(expanded)))

	padded := " " + normalized + " "

	var detected []string
	for _, tag := range t.tags {
		for _, k := range tag.keywords {
			if matches(k, tokens, normalized, padded) {
				detected = append(detected, tag.id)
				break
			}
		}
	}

	return detected
}

// matches applies the keyword precedence: phrase, exact token, distinctive
// prefix, then whole word.
func matches(keyword string, tokens map[string]struct{}, normalized, padded string) bool {
	if keyword == "" {
		return false
	}

	if strings.Contains(keyword, " ") {
		return strings.Contains(normalized, keyword)
	}

	if _, ok := tokens[keyword]; ok {
		return true
	}

	if len([]rune(keyword)) >= prefixMinLen {
		for tok := range tokens {
			if strings.HasPrefix(tok, keyword) {
				return true
			}
		}
	}

	return strings.Contains(padded, " "+keyword+" ")
}
