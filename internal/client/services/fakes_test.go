package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/docarchive/internal/client/client"
	"github.com/dmitrijs2005/docarchive/internal/client/models"
	"github.com/dmitrijs2005/docarchive/internal/client/repositories/images"
	"github.com/dmitrijs2005/docarchive/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/docarchive/internal/logging"
)

// fakeClient serves a fixed archive and counts every request.
type fakeClient struct {
	client.Client

	mu      sync.Mutex
	list    []models.ListEntry
	details map[int64]models.Detail
	images  map[string][]byte

	listErr   error
	detailErr error
	imageErr  error

	// detailDelay, when set, stalls GetDetail per id to shuffle completion order.
	detailDelay func(id int64) time.Duration
	// listGate, when set, is closed to release ListDocs; listStarted is
	// signalled when ListDocs is entered.
	listGate    chan struct{}
	listStarted chan struct{}

	listCalls   int
	detailCalls map[int64]int
	imageCalls  map[string]int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		details:     map[int64]models.Detail{},
		images:      map[string][]byte{},
		detailCalls: map[int64]int{},
		imageCalls:  map[string]int{},
	}
}

func (f *fakeClient) addDoc(id int64, title string, d models.Detail) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.list = append(f.list, models.ListEntry{Title: title, DocID: id})
	f.details[id] = d
}

func (f *fakeClient) ListDocs(ctx context.Context) ([]models.ListEntry, error) {
	f.mu.Lock()
	f.listCalls++
	started, gate := f.listStarted, f.listGate
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.ListEntry(nil), f.list...), nil
}

func (f *fakeClient) GetDetail(ctx context.Context, id int64) (models.Detail, error) {
	if f.detailDelay != nil {
		time.Sleep(f.detailDelay(id))
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls[id]++
	if f.detailErr != nil {
		return models.Detail{}, f.detailErr
	}
	d, ok := f.details[id]
	if !ok {
		return models.Detail{}, fmt.Errorf("%w: 404", client.ErrUnexpectedStatus)
	}
	return d, nil
}

func (f *fakeClient) GetImage(ctx context.Context, id int64, index int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := models.ImageKey(id, index)
	f.imageCalls[key]++
	if f.imageErr != nil {
		return nil, f.imageErr
	}
	b, ok := f.images[key]
	if !ok {
		b = bytes.Repeat([]byte{0xFF}, 256)
	}
	return b, nil
}

func (f *fakeClient) totalDetailCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.detailCalls {
		n += c
	}
	return n
}

// countingImages wraps an images.Repository and can fail writes.
type countingImages struct {
	images.Repository
	setCalls int
	setErr   error
}

func (c *countingImages) Set(ctx context.Context, key string, data []byte) error {
	c.setCalls++
	if c.setErr != nil {
		return c.setErr
	}
	return c.Repository.Set(ctx, key, data)
}

// flakyMeta wraps a metadata.Repository and can fail reads, writes or
// deletes.
type flakyMeta struct {
	metadata.Repository
	getErr    error
	setErr    error
	deleteErr error
}

func (f *flakyMeta) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.Repository.Delete(ctx, key)
}

func (f *flakyMeta) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.Repository.Get(ctx, key)
}

func (f *flakyMeta) Set(ctx context.Context, key string, value []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.Repository.Set(ctx, key, value)
}

type logRecord struct {
	Level string
	Msg   string
	Args  []any
}

// recordingLogger keeps every record; children share the parent's sink.
type recordingLogger struct {
	mu      *sync.Mutex
	records *[]logRecord
	with    []any
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{mu: &sync.Mutex{}, records: &[]logRecord{}}
}

func (l *recordingLogger) add(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	all := append(append([]any{}, l.with...), args...)
	*l.records = append(*l.records, logRecord{Level: level, Msg: msg, Args: all})
}

func (l *recordingLogger) Debug(_ context.Context, msg string, args ...any) { l.add("DEBUG", msg, args) }
func (l *recordingLogger) Info(_ context.Context, msg string, args ...any)  { l.add("INFO", msg, args) }
func (l *recordingLogger) Warn(_ context.Context, msg string, args ...any)  { l.add("WARN", msg, args) }
func (l *recordingLogger) Error(_ context.Context, msg string, args ...any) { l.add("ERROR", msg, args) }

func (l *recordingLogger) With(args ...any) logging.Logger {
	return &recordingLogger{mu: l.mu, records: l.records, with: append(append([]any{}, l.with...), args...)}
}

// warnings returns the "error" values of every WARN record.
func (l *recordingLogger) warnings() []error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []error
	for _, r := range *l.records {
		if r.Level != "WARN" {
			continue
		}
		for i := 0; i+1 < len(r.Args); i += 2 {
			if r.Args[i] == "error" {
				if err, ok := r.Args[i+1].(error); ok {
					out = append(out, err)
				}
			}
		}
	}
	return out
}

func (l *recordingLogger) warned(target error) bool {
	for _, err := range l.warnings() {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
