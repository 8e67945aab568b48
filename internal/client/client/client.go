package client

import (
	"context"

	"github.com/dmitrijs2005/docarchive/internal/client/models"
)

// Client is the upstream document API as seen by the cache layer.
type Client interface {
	// ListDocs returns the document list in server order.
	ListDocs(ctx context.Context) ([]models.ListEntry, error)
	// GetDetail returns the detail entry of one document.
	GetDetail(ctx context.Context, id int64) (models.Detail, error)
	// GetImage returns the raw bytes of image index (1-based) of a document.
	GetImage(ctx context.Context, id int64, index int) ([]byte, error)
}
