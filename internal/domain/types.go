package domain

import (
	"strings"
	"time"
)

// LogEntry represents a single diary entry with its derived tags
type LogEntry struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	TagIDs    []string  `json:"tagIDs"`
}

// HasTag reports whether the entry carries the given tag id
func (e LogEntry) HasTag(id string) bool {
	for _, t := range e.TagIDs {
		if t == id {
			return true
		}
	}
	return false
}

// TagDefinition is a catalog entry: a stable slug, its display names and the keywords that trigger it
type TagDefinition struct {
	ID       string   `json:"id"`
	English  string   `json:"english"`
	Spanish  string   `json:"spanish"`
	Keywords []string `json:"keywords"`
}

// Name returns the display name for the given language
func (d TagDefinition) Name(lang Language) string {
	if lang == Spanish {
		return d.Spanish
	}
	return d.English
}

// Language selects one of the two supported locales
type Language int

const (
	English Language = iota
	Spanish
)

// Code returns the short language code ("en" or "es")
func (l Language) Code() string {
	if l == Spanish {
		return "es"
	}
	return "en"
}

func (l Language) String() string {
	return l.Code()
}

// ParseLanguage maps a code such as "es", "es-CR" or "english" to a Language.
// Anything that does not look Spanish is English.
func ParseLanguage(s string) Language {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(s, "es") || s == "spanish" {
		return Spanish
	}
	return English
}
