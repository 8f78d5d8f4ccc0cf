package embedding

import (
	"context"

	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driven"
)

// Ensure Validator implements the interface.
var _ driven.EmbeddingValidator = (*Validator)(nil)

// Validator checks embedding configurations by constructing the provider
// and pinging it. Used by the settings service.
type Validator struct{}

// NewValidator creates an embedding configuration validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateEmbedding constructs the configured provider and pings it.
func (Validator) ValidateEmbedding(ctx context.Context, settings domain.EmbeddingSettings) error {
	svc, err := CreateService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}
