// Package driven declares the outbound contracts of the core: the
// interfaces services call to reach storage, extraction, embedding,
// and configuration. Adapters under internal/adapters/driven supply
// the implementations.
//
// The ingestion and search pipeline needs all of these wired:
//
//   - Extractor and ExtractorRegistry pull text out of source files
//   - PostProcessor and PostProcessorPipeline cut that text into chunks
//   - EmbeddingService turns chunks and queries into vectors
//   - VectorIndex stores vectors and answers nearest-neighbour queries
//   - DocumentStore keeps the registry and chunk text
//   - ConfigStore persists settings between runs
//
// The package imports domain and nothing else, so the contracts stay
// free of adapter concerns.
package driven
