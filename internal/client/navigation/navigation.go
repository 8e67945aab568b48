// Package navigation computes the previous and next document relative to
// the one being viewed, either in list order or in series order.
package navigation

import (
	"github.com/dmitrijs2005/docarchive/internal/client/models"
	"github.com/dmitrijs2005/docarchive/internal/client/series"
)

// Previous returns the document before id in list order.
func Previous(list []models.Document, id int64) (models.Document, bool) {
	return step(list, id, -1)
}

// Next returns the document after id in list order.
func Next(list []models.Document, id int64) (models.Document, bool) {
	return step(list, id, +1)
}

func step(list []models.Document, id int64, delta int) (models.Document, bool) {
	i := models.DocumentList(list).IndexOf(id)
	if i < 0 {
		return models.Document{}, false
	}
	j := i + delta
	if j < 0 || j >= len(list) {
		return models.Document{}, false
	}
	return list[j], true
}

// locate returns the bucket and member position of id.
func locate(ss []models.Series, id int64) (int, int, bool) {
	for b, s := range ss {
		for m, d := range s.Documents {
			if d.ID == id {
				return b, m, true
			}
		}
	}
	return 0, 0, false
}

// PreviousInSeries returns the member before id in its series, or the last
// member of the preceding series.
func PreviousInSeries(ss []models.Series, id int64) (models.Document, bool) {
	b, m, ok := locate(ss, id)
	if !ok {
		return models.Document{}, false
	}
	if m > 0 {
		return ss[b].Documents[m-1], true
	}
	for b--; b >= 0; b-- {
		if n := len(ss[b].Documents); n > 0 {
			return ss[b].Documents[n-1], true
		}
	}
	return models.Document{}, false
}

// NextInSeries returns the member after id in its series, or the first
// member of the following series.
func NextInSeries(ss []models.Series, id int64) (models.Document, bool) {
	b, m, ok := locate(ss, id)
	if !ok {
		return models.Document{}, false
	}
	if m < len(ss[b].Documents)-1 {
		return ss[b].Documents[m+1], true
	}
	for b++; b < len(ss); b++ {
		if len(ss[b].Documents) > 0 {
			return ss[b].Documents[0], true
		}
	}
	return models.Document{}, false
}

// Navigator dispatches Previous and Next on Mode. In grouped mode the list
// is bucketed with Group on every call.
type Navigator struct {
	Mode  models.Mode
	Group func([]models.Document) []models.Series
}

// NewNavigator returns a Navigator grouping with series.Group.
func NewNavigator(mode models.Mode) *Navigator {
	return &Navigator{Mode: mode, Group: series.Group}
}

// Previous returns the document before id in the current mode's order, or
// false when id is first or absent.
func (n *Navigator) Previous(list []models.Document, id int64) (models.Document, bool) {
	if n.Mode == models.ModeGrouped {
		return PreviousInSeries(n.group(list), id)
	}
	return Previous(list, id)
}

// Next returns the document after id in the current mode's order, or false
// when id is last or absent.
func (n *Navigator) Next(list []models.Document, id int64) (models.Document, bool) {
	if n.Mode == models.ModeGrouped {
		return NextInSeries(n.group(list), id)
	}
	return Next(list, id)
}

// Order returns the documents in the order Previous and Next walk them.
func (n *Navigator) Order(list []models.Document) []models.Document {
	if n.Mode == models.ModeGrouped {
		return series.Flatten(n.group(list))
	}
	return list
}

func (n *Navigator) group(list []models.Document) []models.Series {
	if n.Group == nil {
		return series.Group(list)
	}
	return n.Group(list)
}
