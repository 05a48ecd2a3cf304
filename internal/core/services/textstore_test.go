package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfsift/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/logger"
)

func TestTextStore_LoadAll(t *testing.T) {
	repo := memory.NewEntryRepositoryWith(map[string]domain.Entry{
		"a.pdf": {Text: "Договор", TextStatus: domain.StatusOK},
		"c.pdf": {},
	})
	store := NewTextStore(repo)

	loaded, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
	assert.Equal(t, 2, store.Len())
	assert.Equal(t, 0, store.Added())

	entry, ok := store.Get("c.pdf")
	require.True(t, ok)
	assert.Equal(t, "c.pdf", entry.Key)
	assert.Equal(t, "", entry.Text)
	assert.Equal(t, "", entry.OCR)
}

func TestTextStore_LoadAll_CorruptStartsEmpty(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetLevel(logger.LevelWarn)
	t.Cleanup(func() {
		logger.SetOutput(os.Stderr)
		logger.SetLevel(logger.LevelError)
	})

	repo := memory.NewEntryRepositoryWith(map[string]domain.Entry{"a.pdf": {Text: "x"}})
	repo.FailLoad(fmt.Errorf("%w: unexpected end of JSON input", domain.ErrCacheCorrupt))
	store := NewTextStore(repo)

	loaded, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
	assert.Equal(t, 0, store.Len())
	assert.Contains(t, buf.String(), "[WARN] cache")
}

// recoveringRepository reports corruption alongside recovered entries.
type recoveringRepository struct {
	*memory.EntryRepository
}

func (r recoveringRepository) Load(ctx context.Context) (map[string]domain.Entry, error) {
	entries, _ := r.EntryRepository.Load(ctx)
	return entries, fmt.Errorf("%w: snapshot moved aside", domain.ErrCacheCorrupt)
}

func TestTextStore_LoadAll_CorruptKeepsRecovered(t *testing.T) {
	repo := recoveringRepository{memory.NewEntryRepositoryWith(map[string]domain.Entry{
		"a.pdf": {Text: "Договор", TextStatus: domain.StatusOK},
	})}
	store := NewTextStore(repo)

	loaded, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
	entry, ok := store.Get("a.pdf")
	require.True(t, ok)
	assert.Equal(t, "a.pdf", entry.Key)
}

func TestTextStore_LoadAll_OtherErrorsFail(t *testing.T) {
	repo := memory.NewEntryRepository()
	repo.FailLoad(errors.New("permission denied"))
	store := NewTextStore(repo)

	_, err := store.LoadAll(context.Background())
	assert.Error(t, err)
}

func TestTextStore_PutJournals(t *testing.T) {
	repo := memory.NewEntryRepository()
	store := NewTextStore(repo)

	entry := domain.Entry{Key: "a.pdf", Text: "", OCR: "", TextStatus: domain.StatusEmpty}
	require.NoError(t, store.Put(context.Background(), entry))

	got, ok := store.Get("a.pdf")
	require.True(t, ok)
	assert.Equal(t, entry, got)
	assert.True(t, store.Fresh("a.pdf"))
	assert.Equal(t, 1, store.Added())
	assert.Equal(t, 1, repo.Appends())
}

func TestTextStore_PutAfterCancelStillJournals(t *testing.T) {
	repo := memory.NewEntryRepository()
	store := NewTextStore(repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, store.Put(ctx, domain.Entry{Key: "a.pdf"}))
	assert.Equal(t, 1, repo.Appends())
}

func TestTextStore_FlushOnlyWhenDirty(t *testing.T) {
	repo := memory.NewEntryRepository()
	store := NewTextStore(repo)
	ctx := context.Background()

	require.NoError(t, store.Flush(ctx))
	assert.Equal(t, 0, repo.Saves())

	require.NoError(t, store.Put(ctx, domain.Entry{Key: "a.pdf", Text: "x"}))
	require.NoError(t, store.Flush(ctx))
	assert.Equal(t, 1, repo.Saves())

	require.NoError(t, store.Flush(ctx))
	assert.Equal(t, 1, repo.Saves())
}

// gatedRepository holds Save open until released.
type gatedRepository struct {
	*memory.EntryRepository
	saving  chan struct{}
	release chan struct{}
}

func (r *gatedRepository) Save(ctx context.Context, entries map[string]domain.Entry) error {
	close(r.saving)
	<-r.release
	return r.EntryRepository.Save(ctx, entries)
}

func TestTextStore_PutDuringFlushSurvivesSnapshot(t *testing.T) {
	repo := &gatedRepository{
		EntryRepository: memory.NewEntryRepository(),
		saving:          make(chan struct{}),
		release:         make(chan struct{}),
	}
	store := NewTextStore(repo)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, domain.Entry{Key: "a.pdf", Text: "a"}))

	flushed := make(chan error, 1)
	go func() { flushed <- store.Flush(ctx) }()
	<-repo.saving

	put := make(chan error, 1)
	go func() { put <- store.Put(ctx, domain.Entry{Key: "b.pdf", Text: "b"}) }()

	select {
	case <-put:
		t.Fatal("Put journalled while a snapshot was being written")
	case <-time.After(50 * time.Millisecond):
	}
	close(repo.release)

	require.NoError(t, <-flushed)
	require.NoError(t, <-put)

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Contains(t, loaded, "a.pdf")
	assert.Contains(t, loaded, "b.pdf")
}

func TestTextStore_FlushAfterCancel(t *testing.T) {
	repo := memory.NewEntryRepository()
	store := NewTextStore(repo)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, store.Put(ctx, domain.Entry{Key: "a.pdf", Text: "x"}))
	cancel()

	require.NoError(t, store.Flush(ctx))
	assert.Equal(t, 1, repo.Saves())

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "x", loaded["a.pdf"].Text)
}

func TestTextStore_Resolve(t *testing.T) {
	ctx := context.Background()
	store := NewTextStore(memory.NewEntryRepositoryWith(map[string]domain.Entry{
		"cached.pdf": {Text: "cached"},
	}))
	_, err := store.LoadAll(ctx)
	require.NoError(t, err)

	missing := func(_ domain.Entry, found bool) bool { return !found }
	produce := func() (domain.Entry, error) { return domain.Entry{Text: "new"}, nil }

	entry, produced, err := store.Resolve(ctx, "cached.pdf", missing, produce)
	require.NoError(t, err)
	assert.False(t, produced)
	assert.Equal(t, "cached", entry.Text)

	entry, produced, err = store.Resolve(ctx, "new.pdf", missing, produce)
	require.NoError(t, err)
	assert.True(t, produced)
	assert.Equal(t, "new.pdf", entry.Key)
	assert.Equal(t, "new", entry.Text)
	assert.True(t, store.Fresh("new.pdf"))
}

func TestTextStore_ResolveErrorCachesNothing(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewEntryRepository()
	store := NewTextStore(repo)

	_, _, err := store.Resolve(ctx, "a.pdf",
		func(_ domain.Entry, found bool) bool { return !found },
		func() (domain.Entry, error) { return domain.Entry{}, context.Canceled },
	)
	assert.ErrorIs(t, err, context.Canceled)

	_, ok := store.Get("a.pdf")
	assert.False(t, ok)
	assert.Equal(t, 0, repo.Appends())
}

func TestTextStore_ResolveConcurrentProducesOnce(t *testing.T) {
	ctx := context.Background()
	store := NewTextStore(memory.NewEntryRepository())

	var calls atomic.Int32
	missing := func(_ domain.Entry, found bool) bool { return !found }
	produce := func() (domain.Entry, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return domain.Entry{Text: "shared"}, nil
	}

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entry, _, err := store.Resolve(ctx, "a.pdf", missing, produce)
			assert.NoError(t, err)
			assert.Equal(t, "shared", entry.Text)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestTextStore_Snapshot(t *testing.T) {
	store := NewTextStore(memory.NewEntryRepository())
	require.NoError(t, store.Put(context.Background(), domain.Entry{Key: "a.pdf"}))

	snap := store.Snapshot()
	delete(snap, "a.pdf")

	assert.Equal(t, 1, store.Len())
	assert.Equal(t, "", store.Path())
}
