package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
)

func TestEntryRepository_Empty(t *testing.T) {
	r := NewEntryRepository()

	entries, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, r.Path())
	assert.NoError(t, r.Close())
}

func TestEntryRepository_AppendAndLoad(t *testing.T) {
	r := NewEntryRepository()
	ctx := context.Background()

	entry := domain.Entry{
		Key:         "docs/a.pdf",
		Text:        "Договор №1",
		OCR:         "",
		TextStatus:  domain.StatusOK,
		OCRStatus:   domain.StatusSkipped,
		ExtractedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, r.Append(ctx, entry))

	entries, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, entry, entries["docs/a.pdf"])
	assert.Equal(t, 1, r.Appends())
}

func TestEntryRepository_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	r := NewEntryRepositoryWith(map[string]domain.Entry{"old.pdf": {Text: "old"}})

	require.NoError(t, r.Save(ctx, map[string]domain.Entry{"new.pdf": {Text: "new"}}))

	entries, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "new", entries["new.pdf"].Text)
	assert.Equal(t, "new.pdf", entries["new.pdf"].Key)
	assert.Equal(t, 1, r.Saves())
}

func TestEntryRepository_LoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	r := NewEntryRepositoryWith(map[string]domain.Entry{"a.pdf": {Text: "a"}})

	entries, err := r.Load(ctx)
	require.NoError(t, err)
	delete(entries, "a.pdf")

	again, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, again, 1)
}

func TestEntryRepository_FailLoad(t *testing.T) {
	r := NewEntryRepository()
	r.FailLoad(domain.ErrCacheCorrupt)

	_, err := r.Load(context.Background())
	assert.True(t, errors.Is(err, domain.ErrCacheCorrupt))
}
