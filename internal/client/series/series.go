// Package series derives series buckets from a list snapshot. Keys come
// from titles through an ordered rule table; buckets keep first-appearance
// order and members keep list order.
package series

import (
	"strings"

	"github.com/dmitrijs2005/docarchive/internal/client/models"
)

// Grouper applies one rule table.
type Grouper struct {
	rules Rules
}

// NewGrouper returns a Grouper using rules.
func NewGrouper(rules Rules) *Grouper {
	return &Grouper{rules: rules}
}

var defaultGrouper = NewGrouper(DefaultRules)

// KeyOf returns the series key of title under DefaultRules.
func KeyOf(title string) string {
	return defaultGrouper.KeyOf(title)
}

// Group buckets docs under DefaultRules.
func Group(docs []models.Document) []models.Series {
	return defaultGrouper.Group(docs)
}

// KeyOf returns the series key of title.
func (g *Grouper) KeyOf(title string) string {
	if key, ok := g.rules.Fixed[title]; ok {
		return key
	}

	for _, r := range g.rules.Substrings {
		if strings.Contains(title, r.Trigger) {
			return r.Key
		}
	}

	for _, r := range g.rules.Compounds {
		if containsAll(title, r.All) {
			return r.Key
		}
	}

	if g.rules.Delimiter != "" {
		if before, _, found := strings.Cut(title, g.rules.Delimiter); found {
			return before
		}
	}

	return title
}

func containsAll(s string, subs []string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return len(subs) > 0
}

// Group returns one Series per distinct key, in order of first appearance.
// Documents keep their input order inside each Series. docs is not modified.
func (g *Grouper) Group(docs []models.Document) []models.Series {
	var out []models.Series
	index := make(map[string]int)

	for _, d := range docs {
		key := g.KeyOf(d.Title)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, models.Series{Key: key})
		}
		out[i].Documents = append(out[i].Documents, d)
	}

	return out
}

// Flatten concatenates the documents of every series in series order.
func Flatten(series []models.Series) []models.Document {
	var n int
	for _, s := range series {
		n += len(s.Documents)
	}

	out := make([]models.Document, 0, n)
	for _, s := range series {
		out = append(out, s.Documents...)
	}
	return out
}
