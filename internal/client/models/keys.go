package models

import "fmt"

// ListKey is the metadata key of the list snapshot.
func ListKey() string {
	return "docs"
}

// DetailKey is the metadata key of one document's detail entry.
func DetailKey(id int64) string {
	return fmt.Sprintf("docs/%d", id)
}

// DetailKeyPrefix is shared by every DetailKey.
func DetailKeyPrefix() string {
	return "docs/"
}

// ImageKey is the binary store key of one image; index starts at 1.
func ImageKey(id int64, index int) string {
	return fmt.Sprintf("docs/%d/images/%d", id, index)
}
