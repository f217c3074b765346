package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileName(t *testing.T) {
	date := time.Date(2025, time.September, 18, 14, 25, 0, 0, time.UTC)

	assert.Equal(t, "24.06-2025-09-18-tripid.pdf", FileName("24.06", date, "tripid"))
	assert.Equal(t, "unknown-2025-09-18-tripid.pdf", FileName(PlaceholderAmount, date, "tripid"))
}

func TestHasReceipt(t *testing.T) {
	dir := t.TempDir()
	store, err := NewReceiptStore(dir, zerolog.Nop())
	require.NoError(t, err)

	tripID := "1003c9ae-bd1c-48eb-b751-e260c336f7fa"
	assert.False(t, store.HasReceipt(tripID))

	// Presence is keyed on the trip ID suffix, whatever the amount part says.
	path := filepath.Join(dir, "24.06-2025-09-18-"+tripID+".pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0644))

	assert.True(t, store.HasReceipt(tripID))
	assert.False(t, store.HasReceipt("deadbeef"))
}

func TestCommitRenamesArtifact(t *testing.T) {
	dir := t.TempDir()
	store, err := NewReceiptStore(dir, zerolog.Nop())
	require.NoError(t, err)

	artifact := filepath.Join(dir, "guid-1234")
	require.NoError(t, os.WriteFile(artifact, []byte("%PDF-1.4 first"), 0644))

	require.NoError(t, store.Commit(artifact, "24.06-2025-09-18-tripid.pdf"))

	got, err := os.ReadFile(filepath.Join(dir, "24.06-2025-09-18-tripid.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 first", string(got))

	_, err = os.Stat(artifact)
	assert.True(t, os.IsNotExist(err), "artifact is moved, not copied")
}

func TestCommitFirstArtifactWins(t *testing.T) {
	dir := t.TempDir()
	store, err := NewReceiptStore(dir, zerolog.Nop())
	require.NoError(t, err)

	first := filepath.Join(dir, "guid-1")
	require.NoError(t, os.WriteFile(first, []byte("first"), 0644))
	require.NoError(t, store.Commit(first, "24.06-2025-09-18-tripid.pdf"))

	second := filepath.Join(dir, "guid-2")
	require.NoError(t, os.WriteFile(second, []byte("second"), 0644))
	require.NoError(t, store.Commit(second, "24.06-2025-09-18-tripid.pdf"))

	got, err := os.ReadFile(filepath.Join(dir, "24.06-2025-09-18-tripid.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(got), "duplicate artifact must not overwrite the original")

	_, err = os.Stat(second)
	assert.True(t, os.IsNotExist(err), "duplicate artifact is cleaned up")
}

func TestNewReceiptStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "receipts")

	store, err := NewReceiptStore(dir, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
