package extractors

import (
	"github.com/custodia-labs/trove/internal/extractors/csv"
	"github.com/custodia-labs/trove/internal/extractors/docx"
	"github.com/custodia-labs/trove/internal/extractors/pdf"
	"github.com/custodia-labs/trove/internal/extractors/xlsx"
)

// RegisterDefaults registers all built-in extractors with the registry.
// Call this during application initialisation.
func RegisterDefaults(r *Registry) {
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(xlsx.New())
	r.Register(csv.New())
}
