// Package services contains application services for the docarchive client.
// This file defines the document service: the cache-first read path over the
// upstream API, the metadata store and the image store.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/docarchive/internal/client/client"
	"github.com/dmitrijs2005/docarchive/internal/client/models"
	"github.com/dmitrijs2005/docarchive/internal/client/repositories/images"
	"github.com/dmitrijs2005/docarchive/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/docarchive/internal/common"
	"github.com/dmitrijs2005/docarchive/internal/logging"
)

// DefaultMinImageSize is the smallest payload accepted as real image data.
const DefaultMinImageSize = 100

// DocumentService defines the read operations used by the viewer.
//
// Contract:
//   - GetList: the list snapshot; from cache unless forceRefresh is set.
//   - GetDetail: one detail entry; fetched once, then always from cache.
//   - GetImage: one image payload; fetched once, then always from cache.
//   - Prefetch: warm the image cache for every image of a document.
//   - Purge: drop everything cached locally.
//   - Stats: what the local stores currently hold.
//
// Network failures are returned wrapped around common.ErrNetwork. Store
// write failures and undersized images are logged and never fail a read.
type DocumentService interface {
	GetList(ctx context.Context, forceRefresh bool) (models.DocumentList, error)
	GetDetail(ctx context.Context, id int64) (models.Detail, error)
	GetImage(ctx context.Context, id int64, index int) ([]byte, error)
	Prefetch(ctx context.Context, id int64) (int, error)
	Purge(ctx context.Context) error
	Stats(ctx context.Context) (CacheStats, error)
}

// CacheStats summarises the local stores.
type CacheStats struct {
	HasList    bool
	Details    int
	ImageBytes int64
}

type documentService struct {
	client client.Client
	meta   metadata.Repository
	images images.Repository
	log    logging.Logger

	detailConcurrency int
	minImageSize      int
	purge             func(ctx context.Context) error

	refresh singleflight.Group
}

// NewDocumentService constructs a DocumentService over the given fetcher and
// stores.
func NewDocumentService(c client.Client, meta metadata.Repository, imgs images.Repository, log logging.Logger, opts ...DocumentServiceOption) DocumentService {
	s := &documentService{
		client:            c,
		meta:              meta,
		images:            imgs,
		log:               log,
		detailConcurrency: 1,
		minImageSize:      DefaultMinImageSize,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *documentService) opLogger(op string) logging.Logger {
	return s.log.With("op", op, "op_id", uuid.NewString())
}

// GetList returns the cached list snapshot, or rebuilds it from the server
// when forceRefresh is set or nothing usable is cached. Rebuilding reuses
// cached detail entries.
func (s *documentService) GetList(ctx context.Context, forceRefresh bool) (models.DocumentList, error) {
	log := s.opLogger("get_list")

	if !forceRefresh {
		list, ok, err := s.cachedList(ctx, log)
		if err != nil {
			return nil, err
		}
		if ok {
			log.Debug(ctx, "list cache hit", "documents", len(list))
			return list, nil
		}
	}

	// The shared rebuild must outlive any single caller; each caller still
	// stops waiting when its own ctx is done.
	ch := s.refresh.DoChan(models.ListKey(), func() (any, error) {
		return s.rebuildList(context.WithoutCancel(ctx), log)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		if r.Shared {
			log.Debug(ctx, "joined in-flight refresh")
		}
		return slices.Clone(r.Val.(models.DocumentList)), nil
	}
}

func (s *documentService) cachedList(ctx context.Context, log logging.Logger) (models.DocumentList, bool, error) {
	raw, err := s.meta.Get(ctx, models.ListKey())
	if err != nil {
		return nil, false, fmt.Errorf("read list snapshot: %w", err)
	}
	if raw == nil {
		return nil, false, nil
	}

	var list models.DocumentList
	if err := json.Unmarshal(raw, &list); err != nil {
		log.Warn(ctx, "discarding cached list", "key", models.ListKey(), "error", fmt.Errorf("%w: %w", common.ErrCorruptEntry, err))
		s.discard(ctx, log, models.ListKey())
		return nil, false, nil
	}
	return list, true, nil
}

func (s *documentService) rebuildList(ctx context.Context, log logging.Logger) (models.DocumentList, error) {
	entries, err := s.client.ListDocs(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch list: %w", err)
	}

	list := make(models.DocumentList, len(entries))

	if s.detailConcurrency <= 1 {
		for i, e := range entries {
			d, err := s.GetDetail(ctx, e.DocID)
			if err != nil {
				return nil, err
			}
			list[i] = models.NewDocument(e, d)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.detailConcurrency)
		for i, e := range entries {
			g.Go(func() error {
				d, err := s.GetDetail(gctx, e.DocID)
				if err != nil {
					return err
				}
				list[i] = models.NewDocument(e, d)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	s.store(ctx, log, models.ListKey(), list)
	log.Info(ctx, "list refreshed", "documents", len(list))
	return list, nil
}

// GetDetail returns the detail entry for id, fetching it only on a miss.
func (s *documentService) GetDetail(ctx context.Context, id int64) (models.Detail, error) {
	log := s.opLogger("get_detail").With("doc_id", id)
	key := models.DetailKey(id)

	raw, err := s.meta.Get(ctx, key)
	if err != nil {
		return models.Detail{}, fmt.Errorf("read detail %d: %w", id, err)
	}
	if raw != nil {
		var d models.Detail
		err := json.Unmarshal(raw, &d)
		if err == nil {
			return d, nil
		}
		log.Warn(ctx, "discarding cached detail", "key", key, "error", fmt.Errorf("%w: %w", common.ErrCorruptEntry, err))
		s.discard(ctx, log, key)
	}

	d, err := s.client.GetDetail(ctx, id)
	if err != nil {
		return models.Detail{}, fmt.Errorf("fetch detail %d: %w", id, err)
	}

	s.store(ctx, log, key, d)
	return d, nil
}

// discard drops a metadata entry that could not be decoded.
func (s *documentService) discard(ctx context.Context, log logging.Logger, key string) {
	if err := s.meta.Delete(ctx, key); err != nil {
		log.Warn(ctx, "corrupt entry not removed", "key", key, "error", err)
	}
}

// store persists v as JSON under key. Failures are logged only.
func (s *documentService) store(ctx context.Context, log logging.Logger, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		log.Error(ctx, "encode cache entry", "key", key, "error", err)
		return
	}
	if err := s.meta.Set(ctx, key, raw); err != nil {
		log.Warn(ctx, "metadata not persisted", "key", key, "error", fmt.Errorf("%w: %w", common.ErrStoreWrite, err))
	}
}

// GetImage returns image index (1-based) of document id.
func (s *documentService) GetImage(ctx context.Context, id int64, index int) ([]byte, error) {
	data, _, err := s.image(ctx, s.opLogger("get_image"), id, index)
	return data, err
}

// image returns the payload and whether it came from the network.
func (s *documentService) image(ctx context.Context, log logging.Logger, id int64, index int) ([]byte, bool, error) {
	if index < 1 {
		return nil, false, fmt.Errorf("image index %d: %w", index, common.ErrInvalidArgument)
	}
	key := models.ImageKey(id, index)
	log = log.With("key", key)

	data, err := s.images.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("read image %s: %w", key, err)
	}
	switch {
	case data == nil:
	case len(data) < s.minImageSize:
		log.Warn(ctx, "discarding cached image", "size", len(data), "min_size", s.minImageSize, "error", common.ErrMalformedPayload)
		if err := s.images.Delete(ctx, key); err != nil {
			log.Warn(ctx, "undersized image not removed", "error", err)
		}
	default:
		log.Debug(ctx, "image cache hit", "size", len(data))
		return data, false, nil
	}

	data, err = s.client.GetImage(ctx, id, index)
	if err != nil {
		return nil, false, fmt.Errorf("fetch image %s: %w", key, err)
	}

	if len(data) < s.minImageSize {
		log.Warn(ctx, "image not persisted", "size", len(data), "min_size", s.minImageSize, "error", common.ErrMalformedPayload)
		return data, true, nil
	}

	if err := s.images.Set(ctx, key, data); err != nil {
		log.Warn(ctx, "image not persisted", "size", len(data), "error", fmt.Errorf("%w: %w", common.ErrStoreWrite, err))
	}
	return data, true, nil
}

// Prefetch makes sure every image of document id is cached and returns how
// many were fetched from the network.
func (s *documentService) Prefetch(ctx context.Context, id int64) (int, error) {
	log := s.opLogger("prefetch").With("doc_id", id)

	d, err := s.GetDetail(ctx, id)
	if err != nil {
		return 0, err
	}

	fetched := 0
	for i := 1; i <= d.Images; i++ {
		_, fromNetwork, err := s.image(ctx, log, id, i)
		if err != nil {
			return fetched, err
		}
		if fromNetwork {
			fetched++
		}
	}

	log.Info(ctx, "prefetch done", "images", d.Images, "fetched", fetched)
	return fetched, nil
}

// Purge clears the metadata and image stores.
func (s *documentService) Purge(ctx context.Context) error {
	log := s.opLogger("purge")

	if s.purge != nil {
		if err := s.purge(ctx); err != nil {
			return err
		}
	} else {
		if err := s.meta.Clear(ctx); err != nil {
			return fmt.Errorf("purge metadata: %w", err)
		}
		if err := s.images.Clear(ctx); err != nil {
			return fmt.Errorf("purge images: %w", err)
		}
	}

	log.Info(ctx, "local cache purged")
	return nil
}

// Stats reports the cached list snapshot, the number of cached detail entries
// and the bytes held by the image store.
func (s *documentService) Stats(ctx context.Context) (CacheStats, error) {
	var st CacheStats

	raw, err := s.meta.Get(ctx, models.ListKey())
	if err != nil {
		return st, fmt.Errorf("read list snapshot: %w", err)
	}
	st.HasList = raw != nil

	keys, err := s.meta.Keys(ctx, models.DetailKeyPrefix())
	if err != nil {
		return st, fmt.Errorf("list detail keys: %w", err)
	}
	st.Details = len(keys)

	if st.ImageBytes, err = s.images.TotalSize(ctx); err != nil {
		return st, fmt.Errorf("size images: %w", err)
	}
	return st, nil
}
