package xlsx

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driven"
)

// createTestWorkbook builds a workbook through the given function and
// saves it to a temp file.
func createTestWorkbook(t *testing.T, name string, build func(f *excelize.File)) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	build(f)

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestNew(t *testing.T) {
	extractor := New()
	require.NotNil(t, extractor)
	assert.IsType(t, &Extractor{}, extractor)
}

func TestExtensions(t *testing.T) {
	extractor := New()
	assert.ElementsMatch(t, []string{"xlsx", "xls"}, extractor.Extensions())
}

func TestExtract_Success(t *testing.T) {
	extractor := New()
	ctx := context.Background()

	path := createTestWorkbook(t, "head_count.xlsx", func(f *excelize.File) {
		require.NoError(t, f.SetCellValue("Sheet1", "A1", "team"))
		require.NoError(t, f.SetCellValue("Sheet1", "B1", "size"))
		require.NoError(t, f.SetCellValue("Sheet1", "A2", "Platform"))
		require.NoError(t, f.SetCellValue("Sheet1", "B2", 12))
	})

	extractions, err := extractor.Extract(ctx, path)
	require.NoError(t, err)
	require.Len(t, extractions, 1)

	ext := extractions[0]
	assert.Equal(t, "head count", ext.Title)
	assert.Equal(t, "Sheet1", ext.Sheet)
	require.Len(t, ext.Segments, 2)
	assert.Equal(t, "team | size", ext.Segments[0].Text)
	assert.Equal(t, "row 1", ext.Segments[0].Location)
	assert.Equal(t, "Platform | 12", ext.Segments[1].Text)
}

func TestExtract_MultipleSheets(t *testing.T) {
	extractor := New()
	ctx := context.Background()

	path := createTestWorkbook(t, "ledger.xlsx", func(f *excelize.File) {
		require.NoError(t, f.SetCellValue("Sheet1", "A1", "january"))
		_, err := f.NewSheet("Inventory")
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Inventory", "A1", "widgets"))
		require.NoError(t, f.SetCellValue("Inventory", "A2", "gadgets"))
	})

	extractions, err := extractor.Extract(ctx, path)
	require.NoError(t, err)
	require.Len(t, extractions, 2)

	// Workbook order is preserved
	assert.Equal(t, "Sheet1", extractions[0].Sheet)
	assert.Equal(t, "Inventory", extractions[1].Sheet)
	assert.Len(t, extractions[1].Segments, 2)

	// Both sheets share the workbook title
	assert.Equal(t, "ledger", extractions[0].Title)
	assert.Equal(t, "ledger", extractions[1].Title)
}

func TestExtract_EmptySheetsDropped(t *testing.T) {
	extractor := New()
	ctx := context.Background()

	path := createTestWorkbook(t, "sparse.xlsx", func(f *excelize.File) {
		_, err := f.NewSheet("Data")
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Data", "A1", "value"))
		// Sheet1 stays empty
	})

	extractions, err := extractor.Extract(ctx, path)
	require.NoError(t, err)
	require.Len(t, extractions, 1)
	assert.Equal(t, "Data", extractions[0].Sheet)
}

func TestExtract_BlankRowNumbering(t *testing.T) {
	extractor := New()
	ctx := context.Background()

	path := createTestWorkbook(t, "gaps.xlsx", func(f *excelize.File) {
		require.NoError(t, f.SetCellValue("Sheet1", "A1", "first"))
		require.NoError(t, f.SetCellValue("Sheet1", "A3", "third"))
	})

	extractions, err := extractor.Extract(ctx, path)
	require.NoError(t, err)
	require.Len(t, extractions, 1)

	segments := extractions[0].Segments
	require.Len(t, segments, 2)
	assert.Equal(t, "row 1", segments[0].Location)
	assert.Equal(t, "row 3", segments[1].Location)
}

func TestExtract_EmptyWorkbook(t *testing.T) {
	extractor := New()
	ctx := context.Background()

	path := createTestWorkbook(t, "empty.xlsx", func(_ *excelize.File) {})

	extractions, err := extractor.Extract(ctx, path)
	require.NoError(t, err)
	assert.Empty(t, extractions)
}

func TestExtract_LegacyXls(t *testing.T) {
	extractor := New()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "ancient.xls")
	require.NoError(t, os.WriteFile(path, []byte{0xD0, 0xCF, 0x11, 0xE0}, 0o644))

	extractions, err := extractor.Extract(ctx, path)
	require.Error(t, err)
	assert.Nil(t, extractions)
	assert.ErrorIs(t, err, domain.ErrExtraction)

	var extErr *domain.ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Contains(t, extErr.Reason, "legacy binary .xls")
}

func TestExtract_Corrupt(t *testing.T) {
	extractor := New()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "mangled.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a workbook"), 0o644))

	extractions, err := extractor.Extract(ctx, path)
	require.Error(t, err)
	assert.Nil(t, extractions)
	assert.ErrorIs(t, err, domain.ErrExtraction)

	var extErr *domain.ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, path, extErr.Path)
}

func TestExtract_CancelledContext(t *testing.T) {
	extractor := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := createTestWorkbook(t, "data.xlsx", func(f *excelize.File) {
		require.NoError(t, f.SetCellValue("Sheet1", "A1", "value"))
	})

	_, err := extractor.Extract(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Extractor = (*Extractor)(nil)
}
