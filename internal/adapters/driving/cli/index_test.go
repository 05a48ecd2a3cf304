package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
)

func TestIndexCmd_Use(t *testing.T) {
	assert.Equal(t, "index <dir>", indexCmd.Use)
	assert.NotNil(t, indexCmd.Flags().Lookup("watch"))
}

func TestIndexCmd_CachesEveryDocument(t *testing.T) {
	f := setupTestServices(t, contractTexts, contractOCR)
	dir := writeCorpus(t, "a.pdf", "b.pdf")

	stdout, stderr, err := execute(t, "index", dir)

	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Indexed 2 documents")

	entries, err := f.repo.Load(t.Context())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// The text layer answers a.pdf, so its recognition is deferred.
	assert.Equal(t, domain.StatusOK, entries["a.pdf"].TextStatus)
	assert.Equal(t, domain.StatusSkipped, entries["a.pdf"].OCRStatus)
	assert.Equal(t, domain.StatusOK, entries["b.pdf"].OCRStatus)
	assert.Equal(t, "ДОГОВОР, аренды", entries["b.pdf"].OCR)
}

func TestIndexCmd_OCRAlways(t *testing.T) {
	f := setupTestServices(t, contractTexts, contractOCR)
	dir := writeCorpus(t, "a.pdf", "b.pdf")

	_, _, err := execute(t, "index", "--ocr", "always", dir)

	require.NoError(t, err)
	assert.Equal(t, 2, f.ocr.Calls())
}

func TestIndexCmd_SecondRunIsCached(t *testing.T) {
	f := setupTestServices(t, contractTexts, contractOCR)
	dir := writeCorpus(t, "a.pdf", "b.pdf")

	_, _, err := execute(t, "index", dir)
	require.NoError(t, err)
	calls := f.text.Calls()

	_, stderr, err := execute(t, "index", dir)

	require.NoError(t, err)
	assert.Equal(t, calls, f.text.Calls())
	assert.Contains(t, stderr, "2 cached, 0 extracted")
}

func TestIndexCmd_InvalidRoot(t *testing.T) {
	setupTestServices(t, nil, nil)

	_, _, err := execute(t, "index", "/definitely/not/here")

	assert.ErrorIs(t, err, domain.ErrInvalidRoot)
}
