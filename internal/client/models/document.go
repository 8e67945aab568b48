// Package models defines the client-side data model of the document archive.
package models

// ListEntry is one row of the upstream document list, in server order.
type ListEntry struct {
	// Title is the display title; series keys are derived from it.
	Title string `json:"title"`
	// DocID is the stable, server-assigned document id.
	DocID int64 `json:"doc_id"`
}

// Detail is the per-document detail entry. Once cached it is treated as
// immutable for the life of the cache.
type Detail struct {
	// Datetime is display-formatted by the server and kept opaque.
	Datetime string `json:"datetime"`
	// Images is the number of images, addressed 1..Images.
	Images int `json:"images"`
	// Message is free-text commentary, possibly empty.
	Message string `json:"message"`
}

// Document joins a ListEntry with its Detail.
type Document struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Datetime   string `json:"datetime"`
	ImageCount int    `json:"images"`
	Message    string `json:"message"`
}

// NewDocument builds the Document for a list entry and its detail.
func NewDocument(e ListEntry, d Detail) Document {
	return Document{
		ID:         e.DocID,
		Title:      e.Title,
		Datetime:   d.Datetime,
		ImageCount: d.Images,
		Message:    d.Message,
	}
}

// DocumentList is a list snapshot: Documents in server list order.
type DocumentList []Document

// IndexOf returns the position of the document with the given id, or -1.
func (l DocumentList) IndexOf(id int64) int {
	for i, d := range l {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// Find returns the document with the given id.
func (l DocumentList) Find(id int64) (Document, bool) {
	i := l.IndexOf(id)
	if i < 0 {
		return Document{}, false
	}
	return l[i], true
}
