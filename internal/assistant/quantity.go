package assistant

import (
	"math"
	"strings"

	"github.com/pbaille/gardenlog/internal/catalog"
	"github.com/pbaille/gardenlog/internal/domain"
	"github.com/pbaille/gardenlog/internal/textnorm"
)

// quantity estimates how many of the nouns in vocab the logs mention. A number
// immediately before a noun counts as that many units, an unqualified mention
// as one. Each log contributes at least one unit, even without any mention.
func quantity(logs []domain.LogEntry, vocab map[string]bool) int {
	total := 0
	for _, e := range logs {
		tokens := textnorm.Tokens(e.Text)
		explicit := 0
		for i, tok := range tokens {
			if !vocab[tok] {
				continue
			}
			if i > 0 {
				if n, ok := positiveInt(tokens[i-1]); ok {
					explicit = addSat(explicit, n)
					continue
				}
			}
			explicit = addSat(explicit, 1)
		}
		total = addSat(total, max(explicit, 1))
	}
	return total
}

// addSat adds two non-negative ints, saturating at math.MaxInt.
func addSat(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

// isTreeLog reports whether an entry is about trees: tagged as a tree or a
// tree species, or mentioning a tree word.
func isTreeLog(e domain.LogEntry) bool {
	for _, id := range e.TagIDs {
		if id == catalog.TreeTagID || catalog.IsTreeSpecies(id) {
			return true
		}
	}
	return hasAny(textnorm.Tokens(e.Text), catalog.TreeWords)
}

func treeLogs(logs []domain.LogEntry) []domain.LogEntry {
	var out []domain.LogEntry
	for _, e := range logs {
		if isTreeLog(e) {
			out = append(out, e)
		}
	}
	return out
}

// treeSpecies lists the distinct tree species mentioned by logs in first-seen
// order, from species tags and from "tree of <species>" phrasing in the text.
func treeSpecies(logs []domain.LogEntry) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	for _, e := range logs {
		for _, id := range e.TagIDs {
			if catalog.IsTreeSpecies(id) {
				add(id)
			}
		}
		for _, id := range speciesPhrases(textnorm.Tokens(e.Text)) {
			add(id)
		}
	}
	return ids
}

// Words allowed between "of"/"de" and the species name.
var articles = map[string]bool{"the": true, "el": true, "la": true, "los": true, "las": true}

// speciesWindow bounds how far after a tree word "of"/"de" may appear.
const speciesWindow = 3

func speciesPhrases(tokens []string) []string {
	var ids []string
	for i, tok := range tokens {
		if !catalog.TreeWords[tok] {
			continue
		}
		for j := i + 1; j < len(tokens) && j <= i+speciesWindow; j++ {
			if tokens[j] != "of" && tokens[j] != "de" {
				continue
			}
			k := j + 1
			for k < len(tokens) && articles[tokens[k]] {
				k++
			}
			if k < len(tokens) {
				if id, ok := resolveSpecies(tokens[k]); ok {
					ids = append(ids, id)
				}
			}
			break
		}
	}
	return ids
}

// resolveSpecies maps a word to a tree-species id using the catalog keywords,
// allowing inflected forms of keywords of five or more letters.
func resolveSpecies(word string) (string, bool) {
	for _, id := range catalog.TreeSpeciesIDs() {
		def, _ := catalog.Lookup(id)
		for _, k := range def.Keywords {
			k = textnorm.Normalize(k)
			if word == k || (len([]rune(k)) >= 5 && strings.HasPrefix(word, k)) {
				return id, true
			}
		}
	}
	return "", false
}
