package driving

import "context"

// IngestService manages document registration and indexing.
type IngestService interface {
	// Add copies files into the data directory and indexes them.
	// Per-file failures appear in the results; the batch continues.
	Add(ctx context.Context, paths []string) ([]IngestResult, error)

	// Register ingests a single file already inside the data directory.
	// Unchanged files (same content hash) are skipped.
	Register(ctx context.Context, path string) (*IngestResult, error)

	// Scan walks the data directory, indexing new and changed files and
	// dropping registry entries whose files no longer exist.
	Scan(ctx context.Context) (*IngestReport, error)

	// Remove deletes a document: registry entry, chunks, and vectors.
	// After it returns no vector for the document remains queryable.
	Remove(ctx context.Context, path string) error

	// Reconcile drops index entries whose document is no longer in the
	// registry. Run at startup so a crashed ingest cannot leave orphaned
	// vectors queryable. Returns the number of entries dropped.
	Reconcile(ctx context.Context) (int, error)
}

// IngestOutcome classifies the result of ingesting one file.
type IngestOutcome string

// Ingest outcomes.
const (
	// IngestIndexed means the file was extracted, chunked, embedded,
	// and added to the index.
	IngestIndexed IngestOutcome = "indexed"

	// IngestSkipped means the content hash was unchanged.
	IngestSkipped IngestOutcome = "skipped"

	// IngestFailed means this file errored; the batch continued.
	IngestFailed IngestOutcome = "failed"
)

// IngestResult reports the outcome for one file.
type IngestResult struct {
	// Path is the file's location inside the data directory.
	Path string

	// Outcome classifies what happened.
	Outcome IngestOutcome

	// Chunks is the number of chunks indexed (zero unless indexed).
	Chunks int

	// Err is the per-file failure, nil otherwise.
	Err error
}

// IngestReport summarises a batch operation.
type IngestReport struct {
	// Indexed, Skipped, and Failed count per-file outcomes.
	Indexed int
	Skipped int
	Failed  int

	// Removed counts registry entries dropped for vanished files.
	Removed int

	// Results holds the per-file details in processing order.
	Results []IngestResult
}

// Add merges one result into the report's counters.
func (r *IngestReport) Add(res IngestResult) {
	r.Results = append(r.Results, res)
	switch res.Outcome {
	case IngestIndexed:
		r.Indexed++
	case IngestSkipped:
		r.Skipped++
	case IngestFailed:
		r.Failed++
	}
}
