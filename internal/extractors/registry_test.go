package extractors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driven"
)

// stubExtractor is a minimal extractor for registry tests.
type stubExtractor struct {
	exts []string
}

func (s *stubExtractor) Extensions() []string { return s.exts }
func (s *stubExtractor) Extract(_ context.Context, _ string) ([]domain.Extraction, error) {
	return nil, nil
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	require.NotNil(t, r)
	assert.Empty(t, r.SupportedExtensions())
}

func TestRegistry_ForPath(t *testing.T) {
	r := NewRegistry()
	wordStub := &stubExtractor{exts: []string{"docx", "doc"}}
	csvStub := &stubExtractor{exts: []string{"csv"}}
	r.Register(wordStub)
	r.Register(csvStub)

	tests := []struct {
		name     string
		path     string
		expected driven.Extractor
	}{
		{"docx", "/files/report.docx", wordStub},
		{"legacy doc", "/files/report.doc", wordStub},
		{"csv", "/files/data.csv", csvStub},
		{"uppercase extension", "/files/REPORT.DOCX", wordStub},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e, err := r.ForPath(tc.path)
			require.NoError(t, err)
			assert.Same(t, tc.expected, e)
		})
	}
}

func TestRegistry_ForPath_Unsupported(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubExtractor{exts: []string{"csv"}})

	tests := []string{
		"/files/notes.txt",
		"/files/archive.zip",
		"/files/no-extension",
	}

	for _, path := range tests {
		_, err := r.ForPath(path)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	}
}

func TestRegistry_SupportedExtensions(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubExtractor{exts: []string{"xlsx", "xls"}})
	r.Register(&stubExtractor{exts: []string{"csv"}})

	assert.Equal(t, []string{"csv", "xls", "xlsx"}, r.SupportedExtensions())
}

func TestRegisterDefaults(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	// The built-in set covers exactly the ingestible extensions
	assert.ElementsMatch(t, domain.AllowedExtensions(), r.SupportedExtensions())

	for _, ext := range domain.AllowedExtensions() {
		e, err := r.ForPath("/files/sample." + ext)
		require.NoError(t, err, "extension %s", ext)
		assert.NotNil(t, e)
	}
}
