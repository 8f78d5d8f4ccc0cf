package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/trove/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driven"
)

// Registry DSN pragmas: WAL keeps readers unblocked during ingestion
// writes, the busy timeout rides out short lock contention.
const dsnOptions = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

// Store is the SQLite-backed document registry. It owns the database
// handle; DocumentStore returns the port-shaped view of it.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the registry database at dbPath.
// An empty dbPath defaults to trove.db under the per-OS app data
// directory.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		dbPath = filepath.Join(domain.AppDataDir(), "trove.db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+dsnOptions)
	if err != nil {
		return nil, fmt.Errorf("opening registry: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.prepare(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) prepare() error {
	if _, err := s.db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enabling foreign keys: %w", err)
	}
	if err := s.migrate(migrations.FS); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path reports where the database file lives.
func (s *Store) Path() string {
	return s.path
}

// DocumentStore exposes the document tables behind the port interface.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

type migration struct {
	version int
	name    string
}

// migrate brings the schema up to the newest bundled version.
func (s *Store) migrate(fsys embed.FS) error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRow(
		"SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	pending, err := pendingMigrations(fsys, current)
	if err != nil {
		return err
	}
	for _, m := range pending {
		if err := s.apply(fsys, m); err != nil {
			return err
		}
	}
	return nil
}

// pendingMigrations lists the bundled .up.sql files newer than the
// given schema version, oldest first. File names start with the
// version number, as in 001_initial.up.sql.
func pendingMigrations(fsys embed.FS, after int) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading migrations: %w", err)
	}

	var pending []migration
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version > after {
			pending = append(pending, migration{version: version, name: name})
		}
	}

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].version < pending[j].version
	})
	return pending, nil
}

// apply runs one migration script and records its version in the same
// transaction, so a failed script leaves the recorded version intact.
func (s *Store) apply(fsys embed.FS, m migration) error {
	script, err := fs.ReadFile(fsys, m.name)
	if err != nil {
		return fmt.Errorf("reading migration %s: %w", m.name, err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning migration %s: %w", m.name, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(string(script)); err != nil {
		return fmt.Errorf("applying migration %s: %w", m.name, err)
	}
	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
		return fmt.Errorf("recording migration %s: %w", m.name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing migration %s: %w", m.name, err)
	}
	return nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

const documentColumns = `id, path, filename, extension, file_type, title, content,
	size, modified_at, content_hash, status, error, parent_id, chunk_count,
	created_at, updated_at, indexed_at`

// SaveDocument stores or updates a document. Timestamps are the
// caller's responsibility.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path = excluded.path,
			filename = excluded.filename,
			extension = excluded.extension,
			file_type = excluded.file_type,
			title = excluded.title,
			content = excluded.content,
			size = excluded.size,
			modified_at = excluded.modified_at,
			content_hash = excluded.content_hash,
			status = excluded.status,
			error = excluded.error,
			parent_id = excluded.parent_id,
			chunk_count = excluded.chunk_count,
			updated_at = excluded.updated_at,
			indexed_at = excluded.indexed_at
	`, doc.ID, doc.Path, doc.Filename, doc.Extension, string(doc.FileType),
		doc.Title, doc.Content, doc.Size, doc.ModifiedAt, doc.ContentHash,
		string(doc.Status), doc.Error, doc.ParentID, doc.ChunkCount,
		doc.CreatedAt, doc.UpdatedAt, doc.IndexedAt)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// SaveChunks stores chunks for a document in one transaction.
func (s *documentStore) SaveChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning chunk transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, position, start_offset, end_offset, content, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_id = excluded.document_id,
			position = excluded.position,
			start_offset = excluded.start_offset,
			end_offset = excluded.end_offset,
			content = excluded.content,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing chunk upsert: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID,
			chunk.Position, chunk.StartOffset, chunk.EndOffset,
			chunk.Content, encodeVector(chunk.Embedding)); err != nil {
			return fmt.Errorf("saving chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chunks: %w", err)
	}
	return nil
}

// GetDocument looks up a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	return scanDocument(row)
}

// GetDocumentByPath retrieves a root document by its absolute path.
// Sheet sub-documents share their parent's path and are excluded.
func (s *documentStore) GetDocumentByPath(ctx context.Context, path string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE path = ? AND parent_id IS NULL`, path)
	return scanDocument(row)
}

// GetSubDocuments retrieves sheet sub-documents of a root document in
// registration order. Upserts keep a row's rowid, so rowid order is
// insertion order.
func (s *documentStore) GetSubDocuments(ctx context.Context, parentID string) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE parent_id = ? ORDER BY rowid`, parentID)
	if err != nil {
		return nil, fmt.Errorf("querying sub-documents: %w", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

const chunkColumns = `id, document_id, position, start_offset, end_offset, content, embedding`

// GetChunk looks up a single chunk by ID.
func (s *documentStore) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+chunkColumns+` FROM chunks WHERE id = ?`, id)
	return scanChunk(row)
}

// GetChunks retrieves all chunks for a document, ordered by position.
func (s *documentStore) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+chunkColumns+` FROM chunks WHERE document_id = ? ORDER BY position`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	return collectChunks(rows)
}

// DeleteDocument removes a document, its sub-documents, and all their
// chunks via the parent_id and document_id cascades.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	if _, err := s.store.db.ExecContext(ctx,
		"DELETE FROM documents WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// DeleteChunks removes all chunks for a document.
func (s *documentStore) DeleteChunks(ctx context.Context, documentID string) error {
	if _, err := s.store.db.ExecContext(ctx,
		"DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	return nil
}

// ListDocuments returns all root documents ordered by filename.
func (s *documentStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+documentColumns+`
		FROM documents WHERE parent_id IS NULL
		ORDER BY filename COLLATE NOCASE, path
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

// CountChunks returns the total number of stored chunks.
func (s *documentStore) CountChunks(ctx context.Context) (int, error) {
	var count int
	if err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// GetMeta reads a registry metadata value.
func (s *documentStore) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := s.store.db.QueryRowContext(ctx,
		"SELECT value FROM registry_meta WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading meta %q: %w", key, err)
	}
	return value, nil
}

// SetMeta writes a registry metadata value.
func (s *documentStore) SetMeta(ctx context.Context, key, value string) error {
	if _, err := s.store.db.ExecContext(ctx, `
		INSERT INTO registry_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value); err != nil {
		return fmt.Errorf("writing meta %q: %w", key, err)
	}
	return nil
}

// Clear empties documents and chunks, keeping metadata.
func (s *documentStore) Clear(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM documents"); err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}
	// The document_id cascade removes chunks with their documents, but
	// orphans from a crashed ingest would survive it.
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}
	return nil
}

// Close releases the underlying database.
func (s *documentStore) Close() error {
	return s.store.Close()
}

// ==================== Row Codecs ====================

// encodeVector packs an embedding into little-endian float32 bytes for
// the chunk blob column. A nil or empty vector stores as NULL.
func encodeVector(vec []float32) []byte {
	if len(vec) == 0 {
		return nil
	}
	buf := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

// decodeVector unpacks a chunk blob back into an embedding.
func decodeVector(blob []byte) []float32 {
	if len(blob) < 4 {
		return nil
	}
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[4*i:]))
	}
	return vec
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDocument scans one document row.
func scanDocument(sc rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var fileType, status string
	var parentID sql.NullString
	var modifiedAt, createdAt, updatedAt, indexedAt sql.NullTime

	err := sc.Scan(&doc.ID, &doc.Path, &doc.Filename, &doc.Extension,
		&fileType, &doc.Title, &doc.Content, &doc.Size, &modifiedAt,
		&doc.ContentHash, &status, &doc.Error, &parentID, &doc.ChunkCount,
		&createdAt, &updatedAt, &indexedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.FileType = domain.FileType(fileType)
	doc.Status = domain.DocumentStatus(status)
	if parentID.Valid {
		doc.ParentID = &parentID.String
	}
	if modifiedAt.Valid {
		doc.ModifiedAt = modifiedAt.Time
	}
	if createdAt.Valid {
		doc.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		doc.UpdatedAt = updatedAt.Time
	}
	if indexedAt.Valid {
		doc.IndexedAt = &indexedAt.Time
	}

	return &doc, nil
}

// scanChunk scans one chunk row.
func scanChunk(sc rowScanner) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var blob []byte

	err := sc.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Position,
		&chunk.StartOffset, &chunk.EndOffset, &chunk.Content, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.Embedding = decodeVector(blob)
	return &chunk, nil
}

// collectDocuments drains rows into a document slice.
func collectDocuments(rows *sql.Rows) ([]domain.Document, error) {
	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// collectChunks drains rows into a chunk slice.
func collectChunks(rows *sql.Rows) ([]domain.Chunk, error) {
	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}
