package models

// Series is a derived, never persisted group of documents sharing a series
// key. Documents keep the order in which they appeared in the list snapshot.
type Series struct {
	Key       string
	Documents []Document
}
