package services

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/docarchive/internal/client/client"
	"github.com/dmitrijs2005/docarchive/internal/client/models"
	"github.com/dmitrijs2005/docarchive/internal/client/repositories/images"
	"github.com/dmitrijs2005/docarchive/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/docarchive/internal/common"
)

type fixture struct {
	client *fakeClient
	meta   *metadata.MemoryRepository
	images *images.MemoryRepository
	log    *recordingLogger
}

func newFixture() *fixture {
	fc := newFakeClient()
	fc.addDoc(1, "ケルンの衝撃", models.Detail{Datetime: "2018-09-25", Images: 2, Message: "a"})
	fc.addDoc(2, "新たなるニコン", models.Detail{Datetime: "2018-09-26", Images: 1})
	fc.addDoc(3, "不明なタイトル", models.Detail{Datetime: "2018-09-27", Images: 3, Message: "c"})
	return &fixture{
		client: fc,
		meta:   metadata.NewMemoryRepository(),
		images: images.NewMemoryRepository(0),
		log:    newRecordingLogger(),
	}
}

func (f *fixture) service(opts ...DocumentServiceOption) DocumentService {
	return NewDocumentService(f.client, f.meta, f.images, f.log, opts...)
}

func TestGetList_ColdCacheBuildsSnapshotInServerOrder(t *testing.T) {
	f := newFixture()
	svc := f.service()

	list, err := svc.GetList(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, models.DocumentList{
		{ID: 1, Title: "ケルンの衝撃", Datetime: "2018-09-25", ImageCount: 2, Message: "a"},
		{ID: 2, Title: "新たなるニコン", Datetime: "2018-09-26", ImageCount: 1},
		{ID: 3, Title: "不明なタイトル", Datetime: "2018-09-27", ImageCount: 3, Message: "c"},
	}, list)
	assert.Equal(t, 1, f.client.listCalls)
	assert.Equal(t, 3, f.client.totalDetailCalls())

	raw, err := f.meta.Get(context.Background(), "docs")
	require.NoError(t, err)
	assert.NotNil(t, raw)
	for _, id := range []string{"docs/1", "docs/2", "docs/3"} {
		v, err := f.meta.Get(context.Background(), id)
		require.NoError(t, err)
		assert.NotNil(t, v, id)
	}
}

func TestGetList_CacheHitPurity(t *testing.T) {
	f := newFixture()
	svc := f.service()
	ctx := context.Background()

	first, err := svc.GetList(ctx, false)
	require.NoError(t, err)
	snapshot, err := f.meta.Get(ctx, "docs")
	require.NoError(t, err)

	listCalls, detailCalls := f.client.listCalls, f.client.totalDetailCalls()

	second, err := svc.GetList(ctx, false)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, listCalls, f.client.listCalls)
	assert.Equal(t, detailCalls, f.client.totalDetailCalls())

	after, err := f.meta.Get(ctx, "docs")
	require.NoError(t, err)
	assert.True(t, bytes.Equal(snapshot, after))
}

func TestGetList_RefreshOverwrite(t *testing.T) {
	f := newFixture()
	svc := f.service()
	ctx := context.Background()

	_, err := svc.GetList(ctx, false)
	require.NoError(t, err)

	f.client.addDoc(4, "カメラ買い替え", models.Detail{Images: 5})

	refreshed, err := svc.GetList(ctx, true)
	require.NoError(t, err)
	require.Len(t, refreshed, 4)
	assert.Equal(t, 2, f.client.listCalls)

	cached, err := svc.GetList(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, refreshed, cached)
	assert.Equal(t, 2, f.client.listCalls)
}

func TestGetDetail_Immutability(t *testing.T) {
	f := newFixture()
	svc := f.service()
	ctx := context.Background()

	d, err := svc.GetDetail(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Images)

	// upstream changes are never picked up once cached
	f.client.mu.Lock()
	f.client.details[1] = models.Detail{Images: 99}
	f.client.mu.Unlock()

	_, err = svc.GetList(ctx, true)
	require.NoError(t, err)
	list, err := svc.GetList(ctx, true)
	require.NoError(t, err)

	assert.Equal(t, 1, f.client.detailCalls[1])
	assert.Equal(t, 2, list[0].ImageCount)

	again, err := svc.GetDetail(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, d, again)
}

func TestGetImage_ColdCacheFailingStoreWrite(t *testing.T) {
	f := newFixture()
	payload := bytes.Repeat([]byte{0xD8}, 4096)
	f.client.images[models.ImageKey(5, 2)] = payload

	store := &countingImages{
		Repository: images.NewMemoryRepository(0),
		setErr:     images.ErrQuotaExceeded,
	}
	svc := NewDocumentService(f.client, f.meta, store, f.log)

	got, err := svc.GetImage(context.Background(), 5, 2)
	require.NoError(t, err)

	assert.Equal(t, payload, got)
	assert.Equal(t, 1, f.client.imageCalls["docs/5/images/2"])
	assert.Equal(t, 1, store.setCalls)
	assert.True(t, f.log.warned(common.ErrStoreWrite))
	assert.True(t, f.log.warned(images.ErrQuotaExceeded))
}

func TestGetImage_CachesAndServesFromStore(t *testing.T) {
	f := newFixture()
	svc := f.service()
	ctx := context.Background()

	first, err := svc.GetImage(ctx, 1, 1)
	require.NoError(t, err)
	second, err := svc.GetImage(ctx, 1, 1)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.client.imageCalls["docs/1/images/1"])
	assert.Equal(t, 1, f.images.Len())
}

func TestGetImage_MalformedPayloadNotPersisted(t *testing.T) {
	f := newFixture()
	f.client.images[models.ImageKey(1, 1)] = []byte("tiny")
	svc := f.service()
	ctx := context.Background()

	got, err := svc.GetImage(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte("tiny"), got)
	assert.Equal(t, 0, f.images.Len())
	assert.True(t, f.log.warned(common.ErrMalformedPayload))

	_, err = svc.GetImage(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, f.client.imageCalls["docs/1/images/1"])
}

func TestGetImage_UndersizedCachedPayloadIsReplaced(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.images.Set(ctx, "docs/1/images/1", []byte("stub")))

	got, err := f.service().GetImage(ctx, 1, 1)
	require.NoError(t, err)
	assert.Len(t, got, 256)
	assert.Equal(t, 1, f.client.imageCalls["docs/1/images/1"])
	assert.True(t, f.log.warned(common.ErrMalformedPayload))

	stored, err := f.images.Get(ctx, "docs/1/images/1")
	require.NoError(t, err)
	assert.Equal(t, got, stored)
}

func TestGetImage_MinImageSizeOption(t *testing.T) {
	f := newFixture()
	f.client.images[models.ImageKey(1, 1)] = []byte("tiny")
	svc := f.service(WithMinImageSize(4))

	_, err := svc.GetImage(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, f.images.Len())
	assert.False(t, f.log.warned(common.ErrMalformedPayload))
}

func TestGetImage_InvalidIndex(t *testing.T) {
	f := newFixture()
	_, err := f.service().GetImage(context.Background(), 1, 0)
	require.ErrorIs(t, err, common.ErrInvalidArgument)
	assert.Empty(t, f.client.imageCalls)
}

func TestGetImage_NetworkFailure(t *testing.T) {
	f := newFixture()
	f.client.imageErr = client.ErrUnavailable

	_, err := f.service().GetImage(context.Background(), 1, 1)
	require.ErrorIs(t, err, common.ErrNetwork)
	assert.Equal(t, 0, f.images.Len())
}

func TestGetList_NetworkFailurePropagates(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		f := newFixture()
		f.client.listErr = client.ErrUnavailable

		list, err := f.service().GetList(context.Background(), false)
		require.ErrorIs(t, err, common.ErrNetwork)
		assert.Nil(t, list)
	})

	t.Run("detail", func(t *testing.T) {
		f := newFixture()
		f.client.detailErr = client.ErrUnexpectedStatus

		_, err := f.service().GetList(context.Background(), false)
		require.ErrorIs(t, err, common.ErrNetwork)

		raw, err := f.meta.Get(context.Background(), "docs")
		require.NoError(t, err)
		assert.Nil(t, raw, "no partial snapshot is written")
	})
}

func TestGetList_CorruptSnapshotIsRefetched(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.meta.Set(ctx, "docs", []byte(`{not json`)))

	list, err := f.service().GetList(ctx, false)
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.Equal(t, 1, f.client.listCalls)
	assert.True(t, f.log.warned(common.ErrCorruptEntry))

	raw, err := f.meta.Get(ctx, "docs")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("[")))
}

func TestGetDetail_CorruptEntryIsRefetched(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.meta.Set(ctx, "docs/3", []byte(`"three"`)))

	d, err := f.service().GetDetail(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Images)
	assert.Equal(t, 1, f.client.detailCalls[3])
	assert.True(t, f.log.warned(common.ErrCorruptEntry))
}

func TestGetList_CorruptEntryIsDeletedWhenRefetchFails(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.meta.Set(ctx, "docs", []byte(`{not json`)))
	f.client.listErr = client.ErrUnavailable

	_, err := f.service().GetList(ctx, false)
	require.ErrorIs(t, err, common.ErrNetwork)

	raw, err := f.meta.Get(ctx, "docs")
	require.NoError(t, err)
	assert.Nil(t, raw, "undecodable snapshot is removed")
}

func TestGetDetail_CorruptEntryDeleteFailureIsLogged(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.meta.Set(ctx, "docs/2", []byte(`[`)))
	delErr := errors.New("read-only database")
	meta := &flakyMeta{Repository: f.meta, deleteErr: delErr}

	d, err := NewDocumentService(f.client, meta, f.images, f.log).GetDetail(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Images)
	assert.True(t, f.log.warned(delErr))
}

func TestGetList_MetadataWriteFailureStillReturns(t *testing.T) {
	f := newFixture()
	meta := &flakyMeta{Repository: f.meta, setErr: errors.New("disk full")}
	svc := NewDocumentService(f.client, meta, f.images, f.log)

	list, err := svc.GetList(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.True(t, f.log.warned(common.ErrStoreWrite))

	// nothing was cached, so the next read goes to the network again
	_, err = svc.GetList(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, f.client.listCalls)
}

func TestGetList_StoreReadErrorPropagates(t *testing.T) {
	f := newFixture()
	readErr := errors.New("database is locked")
	meta := &flakyMeta{Repository: f.meta, getErr: readErr}
	svc := NewDocumentService(f.client, meta, f.images, f.log)

	_, err := svc.GetList(context.Background(), false)
	require.ErrorIs(t, err, readErr)
	assert.NotErrorIs(t, err, common.ErrNetwork)
	assert.Equal(t, 0, f.client.listCalls)
}

func TestGetList_ConcurrentDetailsKeepServerOrder(t *testing.T) {
	f := newFixture()
	for id := int64(4); id <= 12; id++ {
		f.client.addDoc(id, "doc", models.Detail{Images: int(id)})
	}
	// later ids finish first
	f.client.detailDelay = func(id int64) time.Duration {
		return time.Duration(13-id) * time.Millisecond
	}

	list, err := f.service(WithDetailConcurrency(4)).GetList(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, list, 12)
	for i, d := range list {
		assert.Equal(t, int64(i+1), d.ID)
	}
}

func TestGetList_ConcurrentRefreshesShareOneFetch(t *testing.T) {
	f := newFixture()
	f.client.listGate = make(chan struct{})
	f.client.listStarted = make(chan struct{}, 2)
	svc := f.service()

	var wg sync.WaitGroup
	results := make([]models.DocumentList, 2)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			list, err := svc.GetList(context.Background(), true)
			assert.NoError(t, err)
			results[i] = list
		}()
		if i == 0 {
			<-f.client.listStarted
		}
	}

	time.Sleep(50 * time.Millisecond)
	close(f.client.listGate)
	wg.Wait()

	assert.Equal(t, 1, f.client.listCalls)
	assert.Equal(t, results[0], results[1])
}

func TestGetList_CancelledCallerDoesNotFailJoinedRefresh(t *testing.T) {
	f := newFixture()
	f.client.listGate = make(chan struct{})
	f.client.listStarted = make(chan struct{}, 2)
	svc := f.service()

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := svc.GetList(ctxA, true)
		errA <- err
	}()
	<-f.client.listStarted

	type result struct {
		list models.DocumentList
		err  error
	}
	resB := make(chan result, 1)
	go func() {
		list, err := svc.GetList(context.Background(), true)
		resB <- result{list, err}
	}()

	time.Sleep(50 * time.Millisecond)
	cancelA()
	require.ErrorIs(t, <-errA, context.Canceled)

	close(f.client.listGate)
	b := <-resB
	require.NoError(t, b.err)
	assert.Len(t, b.list, 3)
	assert.Equal(t, 1, f.client.listCalls)

	raw, err := f.meta.Get(context.Background(), "docs")
	require.NoError(t, err)
	assert.NotNil(t, raw, "the shared refresh still stores the snapshot")
}

func TestPrefetch(t *testing.T) {
	f := newFixture()
	svc := f.service()
	ctx := context.Background()

	_, err := svc.GetImage(ctx, 3, 2)
	require.NoError(t, err)

	n, err := svc.Prefetch(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 3, f.images.Len())

	n, err = svc.Prefetch(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestPrefetch_ImageErrorAborts(t *testing.T) {
	f := newFixture()
	f.client.imageErr = client.ErrUnavailable

	n, err := f.service().Prefetch(context.Background(), 1)
	require.ErrorIs(t, err, common.ErrNetwork)
	assert.Equal(t, 0, n)
	assert.Equal(t, 1, f.client.imageCalls["docs/1/images/1"])
	assert.Zero(t, f.client.imageCalls["docs/1/images/2"])
}

func TestPurge(t *testing.T) {
	f := newFixture()
	svc := f.service()
	ctx := context.Background()

	_, err := svc.GetList(ctx, false)
	require.NoError(t, err)
	_, err = svc.GetImage(ctx, 1, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Purge(ctx))

	keys, err := f.meta.Keys(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.Equal(t, 0, f.images.Len())

	_, err = svc.GetList(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, f.client.listCalls)
}

func TestStats(t *testing.T) {
	f := newFixture()
	svc := f.service()
	ctx := context.Background()

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, CacheStats{}, st)

	_, err = svc.GetList(ctx, false)
	require.NoError(t, err)
	_, err = svc.Prefetch(ctx, 1)
	require.NoError(t, err)

	st, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, CacheStats{HasList: true, Details: 3, ImageBytes: 512}, st)
}

func TestStats_StoreErrorWrapped(t *testing.T) {
	f := newFixture()
	readErr := errors.New("database is locked")
	meta := &flakyMeta{Repository: f.meta, getErr: readErr}

	_, err := NewDocumentService(f.client, meta, f.images, f.log).Stats(context.Background())
	require.ErrorIs(t, err, readErr)
	require.ErrorContains(t, err, "read list snapshot")
}

func TestPurge_CustomPurger(t *testing.T) {
	f := newFixture()
	called := false
	svc := f.service(WithPurge(func(context.Context) error {
		called = true
		return nil
	}))

	require.NoError(t, f.meta.Set(context.Background(), "docs", []byte(`[]`)))
	require.NoError(t, svc.Purge(context.Background()))

	assert.True(t, called)
	v, err := f.meta.Get(context.Background(), "docs")
	require.NoError(t, err)
	assert.NotNil(t, v)
}
