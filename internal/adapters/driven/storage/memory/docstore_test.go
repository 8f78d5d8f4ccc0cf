package memory

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/trove/internal/core/domain"
)

func saveDocs(t *testing.T, store *DocumentStore, docs ...domain.Document) {
	t.Helper()
	for i := range docs {
		require.NoError(t, store.SaveDocument(context.Background(), &docs[i]))
	}
}

func TestNewDocumentStore(t *testing.T) {
	store := NewDocumentStore()

	require.NotNil(t, store)
	assert.NotNil(t, store.documents)
	assert.NotNil(t, store.chunks)
	assert.NotNil(t, store.chunkDoc)
	assert.NotNil(t, store.meta)
}

func TestDocumentStore_Documents(t *testing.T) {
	ctx := context.Background()

	t.Run("save and load", func(t *testing.T) {
		store := NewDocumentStore()
		now := time.Now()
		saveDocs(t, store, domain.Document{
			ID:        "doc-1",
			Path:      "/data/report.pdf",
			Filename:  "report.pdf",
			Title:     "Test Document",
			CreatedAt: now,
			UpdatedAt: now,
		})

		saved, err := store.GetDocument(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, "doc-1", saved.ID)
		assert.Equal(t, "/data/report.pdf", saved.Path)
		assert.Equal(t, "Test Document", saved.Title)
	})

	t.Run("empty id rejected", func(t *testing.T) {
		store := NewDocumentStore()

		err := store.SaveDocument(ctx, &domain.Document{Path: "/data/a.txt"})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("second save replaces", func(t *testing.T) {
		store := NewDocumentStore()
		saveDocs(t, store,
			domain.Document{ID: "doc-1", Title: "Original"},
			domain.Document{ID: "doc-1", Title: "Updated"},
		)

		saved, err := store.GetDocument(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, "Updated", saved.Title)
	})

	t.Run("missing id not found", func(t *testing.T) {
		doc, err := NewDocumentStore().GetDocument(ctx, "nonexistent")

		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Nil(t, doc)
	})

	t.Run("lookup by path", func(t *testing.T) {
		store := NewDocumentStore()
		saveDocs(t, store, domain.Document{ID: "doc-1", Path: "/data/report.pdf"})

		doc, err := store.GetDocumentByPath(ctx, "/data/report.pdf")
		require.NoError(t, err)
		assert.Equal(t, "doc-1", doc.ID)

		_, err = store.GetDocumentByPath(ctx, "/data/missing.pdf")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("path lookup skips sheet sub-documents", func(t *testing.T) {
		store := NewDocumentStore()
		parentID := "doc-parent"
		// Sheets share the parent workbook's path.
		saveDocs(t, store,
			domain.Document{ID: parentID, Path: "/data/book.xlsx"},
			domain.Document{ID: "doc-sheet", Path: "/data/book.xlsx", ParentID: &parentID},
		)

		doc, err := store.GetDocumentByPath(ctx, "/data/book.xlsx")
		require.NoError(t, err)
		assert.Equal(t, parentID, doc.ID)
	})
}

func TestDocumentStore_SubDocuments_RegistrationOrder(t *testing.T) {
	store := NewDocumentStore()
	parentID := "doc-parent"
	saveDocs(t, store, domain.Document{ID: parentID})
	for _, title := range []string{"Summary", "Budget", "Archive"} {
		saveDocs(t, store, domain.Document{
			ID:       "sheet-" + title,
			Title:    title,
			ParentID: &parentID,
		})
	}

	subs, err := store.GetSubDocuments(context.Background(), parentID)

	require.NoError(t, err)
	require.Len(t, subs, 3)
	assert.Equal(t, "Summary", subs[0].Title)
	assert.Equal(t, "Budget", subs[1].Title)
	assert.Equal(t, "Archive", subs[2].Title)
}

func TestDocumentStore_Chunks(t *testing.T) {
	ctx := context.Background()

	t.Run("stored sorted by position", func(t *testing.T) {
		store := NewDocumentStore()
		require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{
			{ID: "c-2", DocumentID: "doc-1", Position: 2, Content: "third"},
			{ID: "c-0", DocumentID: "doc-1", Position: 0, Content: "first"},
			{ID: "c-1", DocumentID: "doc-1", Position: 1, Content: "second"},
		}))

		got, err := store.GetChunks(ctx, "doc-1")
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "first", got[0].Content)
		assert.Equal(t, "second", got[1].Content)
		assert.Equal(t, "third", got[2].Content)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		store := NewDocumentStore()

		assert.NoError(t, store.SaveChunks(ctx, nil))
		assert.NoError(t, store.SaveChunks(ctx, []domain.Chunk{}))
	})

	t.Run("chunk by id", func(t *testing.T) {
		store := NewDocumentStore()
		require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{
			{ID: "c-1", DocumentID: "doc-1", Content: "hello"},
		}))

		chunk, err := store.GetChunk(ctx, "c-1")
		require.NoError(t, err)
		assert.Equal(t, "hello", chunk.Content)

		_, err = store.GetChunk(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("replacing a batch forgets the old chunk ids", func(t *testing.T) {
		store := NewDocumentStore()
		require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{
			{ID: "old-1", DocumentID: "doc-1"},
		}))

		require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{
			{ID: "new-1", DocumentID: "doc-1"},
		}))

		_, err := store.GetChunk(ctx, "old-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		chunk, err := store.GetChunk(ctx, "new-1")
		require.NoError(t, err)
		assert.Equal(t, "doc-1", chunk.DocumentID)
	})
}

func TestDocumentStore_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("document cascades to sheets and chunks", func(t *testing.T) {
		store := NewDocumentStore()
		parentID := "doc-parent"
		saveDocs(t, store,
			domain.Document{ID: parentID},
			domain.Document{ID: "doc-sheet", ParentID: &parentID},
		)
		require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{
			{ID: "c-1", DocumentID: "doc-sheet"},
		}))

		require.NoError(t, store.DeleteDocument(ctx, parentID))

		_, err := store.GetDocument(ctx, "doc-sheet")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = store.GetChunk(ctx, "c-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("chunks only", func(t *testing.T) {
		store := NewDocumentStore()
		require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{
			{ID: "c-1", DocumentID: "doc-1"},
		}))

		require.NoError(t, store.DeleteChunks(ctx, "doc-1"))

		got, err := store.GetChunks(ctx, "doc-1")
		require.NoError(t, err)
		assert.Empty(t, got)
		_, err = store.GetChunk(ctx, "c-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestDocumentStore_ListDocuments_RootsOnlySortedByFilename(t *testing.T) {
	store := NewDocumentStore()
	parentID := "doc-b"
	saveDocs(t, store,
		domain.Document{ID: "doc-b", Filename: "zebra.txt"},
		domain.Document{ID: "doc-a", Filename: "Apple.txt"},
		domain.Document{ID: "doc-s", Filename: "sheet", ParentID: &parentID},
	)

	docs, err := store.ListDocuments(context.Background())

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "Apple.txt", docs[0].Filename)
	assert.Equal(t, "zebra.txt", docs[1].Filename)
}

func TestDocumentStore_CountChunks(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	count, err := store.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{
		{ID: "c-1", DocumentID: "doc-1"},
		{ID: "c-2", DocumentID: "doc-1"},
	}))
	require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{
		{ID: "c-3", DocumentID: "doc-2"},
	}))

	count, err = store.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestDocumentStore_Meta(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	_, err := store.GetMeta(ctx, "index_model")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.SetMeta(ctx, "index_model", "all-MiniLM-L6-v2"))

	val, err := store.GetMeta(ctx, "index_model")
	require.NoError(t, err)
	assert.Equal(t, "all-MiniLM-L6-v2", val)
}

func TestDocumentStore_Clear_KeepsMeta(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	saveDocs(t, store, domain.Document{ID: "doc-1"})
	require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{{ID: "c-1", DocumentID: "doc-1"}}))
	require.NoError(t, store.SetMeta(ctx, "index_model", "all-MiniLM-L6-v2"))

	require.NoError(t, store.Clear(ctx))

	_, err := store.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	count, err := store.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	val, err := store.GetMeta(ctx, "index_model")
	require.NoError(t, err)
	assert.Equal(t, "all-MiniLM-L6-v2", val)
}

func TestDocumentStore_Concurrency(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := "doc-" + strconv.Itoa(i)
			_ = store.SaveDocument(ctx, &domain.Document{ID: id, Filename: id})
			_, _ = store.GetDocument(ctx, id)
			_, _ = store.ListDocuments(ctx)
		}()
	}
	wg.Wait()

	docs, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 10)
}
