// Package cli implements the command-line interface for Trove.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/trove/internal/adapters/driven/config/file"
	"github.com/custodia-labs/trove/internal/adapters/driven/embedding"
	"github.com/custodia-labs/trove/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/trove/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driving"
	"github.com/custodia-labs/trove/internal/core/services"
	"github.com/custodia-labs/trove/internal/extractors"
	"github.com/custodia-labs/trove/internal/logger"
	"github.com/custodia-labs/trove/internal/postprocessors"
)

// version is set at build time via ldflags.
var version = "dev"

// verbose enables pipeline logging to stderr.
var verbose bool

// Services wired by initServices. Commands nil-check before use so a
// partial wiring (for example a missing API key) only disables the
// commands that need the broken piece.
var (
	ingestService      driving.IngestService
	searchService      driving.SearchService
	documentService    driving.DocumentService
	settingsService    driving.SettingsService
	maintenanceService driving.MaintenanceService
	actionService      driving.FileActionService

	// appSettings is the snapshot the services were wired with.
	appSettings *domain.AppSettings

	// closers releases wired resources after the command finishes.
	closers []func() error
)

var rootCmd = &cobra.Command{
	Use:   "trove",
	Short: "Semantic search over your local documents",
	Long: `Trove indexes local documents (PDF, Word, Excel, CSV) and answers
free-text queries by meaning rather than keywords.

Add files with 'trove add', then search with 'trove search'. Documents
stay on your machine; the built-in embedding provider works offline.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute wires the services and runs the root command. Cancelling ctx
// aborts in-flight ingestion and search.
func Execute(ctx context.Context) error {
	if err := initServices(); err != nil {
		return err
	}
	defer closeServices()

	return rootCmd.ExecuteContext(ctx)
}

// initServices builds the adapter stack and the core services.
// A failing embedding provider is not fatal: settings and document
// commands still work, and the settings wizard can repair the
// configuration.
func initServices() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config store: %w", err)
	}

	settingsSvc := services.NewSettingsService(configStore, embedding.NewValidator())
	settingsService = settingsSvc

	settings, err := settingsSvc.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	appSettings = settings

	if err := os.MkdirAll(settings.DataDir, 0o700); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	store, err := sqlite.NewStore(settings.DatabasePath)
	if err != nil {
		return fmt.Errorf("open document registry: %w", err)
	}
	closers = append(closers, store.Close)
	docStore := store.DocumentStore()

	index, err := flat.Open(settings.VectorDBPath, settings.Embedding.Model, settings.Embedding.Dimensions())
	if err != nil {
		return fmt.Errorf("open vector index: %w", err)
	}
	closers = append(closers, index.Close)

	if index.NeedsRebuild() {
		// The on-disk index was built under different settings and was
		// discarded on load.
		if err := settingsSvc.MarkIndexStale(); err != nil {
			logger.Warn("Could not flag index as stale: %v", err)
		}
		logger.Warn("Vector index does not match current settings; run 'trove index rebuild'")
	}

	documentService = services.NewDocumentService(docStore)
	actionService = services.NewFileActionService(settings.DataDir)

	embedder, err := embedding.CreateService(settings.Embedding)
	if err != nil {
		// Search and ingestion stay disabled until settings are fixed.
		logger.Error("Embedding provider unavailable: %v", err)
		return nil
	}
	closers = append(closers, embedder.Close)

	registry := extractors.NewRegistry()
	extractors.RegisterDefaults(registry)

	procRegistry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(procRegistry)
	chunkProc, err := procRegistry.Build("chunker", postprocessors.Settings{
		"chunk_size": settings.Chunker.ChunkSize,
		"overlap":    settings.Chunker.Overlap,
	})
	if err != nil {
		return fmt.Errorf("build chunker: %w", err)
	}
	pipeline := postprocessors.NewPipeline(chunkProc)

	ingestSvc := services.NewIngestService(docStore, index, registry, pipeline, embedder, *settings)
	ingestService = ingestSvc
	searchService = services.NewSearchService(docStore, index, embedder, settings.Search, settingsSvc)
	maintenanceService = services.NewMaintenanceService(docStore, index, ingestSvc, settingsSvc, *settings)

	// A crashed ingest can leave vectors whose document is gone from the
	// registry; drop them before any command runs.
	if dropped, err := ingestSvc.Reconcile(context.Background()); err != nil {
		logger.Warn("Index reconciliation failed: %v", err)
	} else if dropped > 0 {
		logger.Info("Dropped %d orphaned index entries", dropped)
	}

	return nil
}

// closeServices releases wired resources in reverse order.
func closeServices() {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			logger.Warn("Close error: %v", err)
		}
	}
	closers = nil
}
