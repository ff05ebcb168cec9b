package state

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/fsops"
)

func sampleRegistry() *Registry {
	reg := NewRegistry(ModeCopy, []string{"Finance/Invoices/2024", "_ToSort"}, "_ToSort")
	reg.Root = "/home/user/OneDrive/Downloads"
	item := NewFileItem("invoice_2024_03.pdf", "invoice_2024_03.pdf", ".pdf", 2048, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))
	item.Preview = &Preview{Kind: KindPDF, Text: "Invoice #123 dated 2024-03-01", Size: 2048}
	item.Suggestion = &Suggestion{
		SuggestedName:   "Invoice_2024-03-01.pdf",
		SuggestedFolder: "Finance/Invoices/2024",
		Confidence:      0.9,
		Reason:          "dated invoice",
	}
	item.EditedName = item.Suggestion.SuggestedName
	item.EditedFolder = item.Suggestion.SuggestedFolder
	item.Approved = true
	reg.Items[item.RelPath] = item
	return reg
}

func TestFileStateStore(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStateStore(fsops.NewRealFS(), filepath.Join(dir, "state.json"))

	t.Run("load before save", func(t *testing.T) {
		_, err := store.Load()
		assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)
	})

	t.Run("round trip", func(t *testing.T) {
		want := sampleRegistry()
		require.NoError(t, store.Save(want))

		got, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("save replaces everything", func(t *testing.T) {
		require.NoError(t, store.Save(sampleRegistry()))
		empty := NewRegistry(ModeMove, []string{"_ToSort"}, "_ToSort")
		require.NoError(t, store.Save(empty))

		got, err := store.Load()
		require.NoError(t, err)
		assert.Empty(t, got.Items)
		assert.Equal(t, ModeMove, got.Mode)
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
		_, err := NewFileStateStore(fsops.NewRealFS(), path).Load()
		require.Error(t, err)
		assert.False(t, errors.Is(err, os.ErrNotExist))
	})
}

func TestSQLiteStateStore(t *testing.T) {
	store, err := OpenSQLiteStateStore(filepath.Join(t.TempDir(), "nested", "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.Load()
	assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)

	want := sampleRegistry()
	require.NoError(t, store.Save(want))
	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	want.Items["invoice_2024_03.pdf"].Status = StatusDone
	want.Items["invoice_2024_03.pdf"].DoneDestination = "/dl/Finance/Invoices/2024/Invoice_2024-03-01.pdf"
	require.NoError(t, store.Save(want))
	got, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, StatusDone, got.Items["invoice_2024_03.pdf"].Status)

	var rows int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM registry`).Scan(&rows))
	assert.Equal(t, 1, rows)
}
