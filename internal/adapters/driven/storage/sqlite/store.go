// Package sqlite provides the default record store, backed by a
// CGo-free SQLite database. Embeddings are stored as little-endian
// float32 blobs and scored in process with cosine similarity.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/textvault/textvault/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/textvault/textvault/internal/core/domain"
	"github.com/textvault/textvault/internal/core/ports/driven"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

// RecordStore is the SQLite-backed implementation of driven.RecordStore.
//
// Similarity search scans all rows of the query's dimension and scores
// them in Go. Ties are broken by rowid, i.e. insertion order. The store
// establishes its dimension from the first inserted record; rows of a
// different dimension cannot exist because inserts are rejected.
type RecordStore struct {
	db   *sql.DB
	path string
}

// NewRecordStore creates a SQLite record store in the given data
// directory. If dataDir is empty, defaults to ~/.textvault/data.
func NewRecordStore(dataDir string) (*RecordStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".textvault", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "records.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &RecordStore{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *RecordStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *RecordStore) Path() string {
	return s.path
}

func (s *RecordStore) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Insert durably writes a record and returns its generated ID. SQLite
// commits the implicit transaction before Exec returns, so the row is
// visible to subsequent queries.
func (s *RecordStore) Insert(ctx context.Context, rec domain.Record) (string, error) {
	if len(rec.Embedding) == 0 {
		return "", fmt.Errorf("%w: empty embedding", domain.ErrInvalidInput)
	}

	dim, err := s.dimension(ctx)
	if err != nil {
		return "", err
	}
	if dim != 0 && dim != len(rec.Embedding) {
		return "", fmt.Errorf("%w: store dimension %d, got %d",
			domain.ErrDimensionMismatch, dim, len(rec.Embedding))
	}

	metaJSON, err := json.Marshal(rec.Meta)
	if err != nil {
		return "", fmt.Errorf("marshalling meta: %w", err)
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (id, text, reference_id, embedding, dim, language, meta, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, rec.Text, rec.ReferenceID, float32SliceToBytes(rec.Embedding),
		len(rec.Embedding), rec.Language, string(metaJSON), time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("inserting record: %w", err)
	}

	return id, nil
}

// Delete removes one record. Absent IDs are a no-op.
func (s *RecordStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	return nil
}

// DeleteByReference removes all records sharing the reference ID.
func (s *RecordStore) DeleteByReference(ctx context.Context, referenceID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE reference_id = ?", referenceID); err != nil {
		return fmt.Errorf("deleting records by reference: %w", err)
	}
	return nil
}

// ListByReference returns records sharing the reference ID, in
// insertion (rowid) order.
func (s *RecordStore) ListByReference(ctx context.Context, referenceID string) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, reference_id, embedding, language, meta, created_at
		FROM records WHERE reference_id = ?
		ORDER BY rowid
	`, referenceID)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []domain.Record //nolint:prealloc // size unknown from query
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	return records, nil
}

// Search scores every stored record of the query's dimension and
// returns those strictly above cutoff, sorted descending by score,
// ties broken by rowid, truncated to topK.
func (s *RecordStore) Search(ctx context.Context, embedding []float32, cutoff float64, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidInput, topK)
	}

	dim, err := s.dimension(ctx)
	if err != nil {
		return nil, err
	}
	if dim != 0 && dim != len(embedding) {
		return nil, fmt.Errorf("%w: store dimension %d, query dimension %d",
			domain.ErrDimensionMismatch, dim, len(embedding))
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, reference_id, embedding
		FROM records WHERE dim = ?
		ORDER BY rowid
	`, len(embedding))
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var results []domain.SearchResult
	for rows.Next() {
		var id, text, referenceID string
		var blob []byte
		if err := rows.Scan(&id, &text, &referenceID, &blob); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}

		score := domain.CosineSimilarity(bytesToFloat32Slice(blob), embedding)
		if score > cutoff {
			results = append(results, domain.SearchResult{
				ID:          id,
				Text:        text,
				ReferenceID: referenceID,
				Score:       score,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	// Stable sort keeps rowid order for equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// dimension returns the established embedding dimension, or 0 when the
// store is empty.
func (s *RecordStore) dimension(ctx context.Context) (int, error) {
	var dim sql.NullInt64
	row := s.db.QueryRowContext(ctx, "SELECT dim FROM records ORDER BY rowid LIMIT 1")
	if err := row.Scan(&dim); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("reading store dimension: %w", err)
	}
	return int(dim.Int64), nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// scanRecord scans a full record row.
func scanRecord(rows *sql.Rows) (*domain.Record, error) {
	var rec domain.Record
	var blob []byte
	var metaJSON string

	if err := rows.Scan(&rec.ID, &rec.Text, &rec.ReferenceID, &blob,
		&rec.Language, &metaJSON, &rec.CreatedAt); err != nil {
		return nil, fmt.Errorf("scanning record: %w", err)
	}

	rec.Embedding = bytesToFloat32Slice(blob)
	if metaJSON != "" && metaJSON != jsonNull {
		if err := json.Unmarshal([]byte(metaJSON), &rec.Meta); err != nil {
			return nil, fmt.Errorf("unmarshalling meta: %w", err)
		}
	}
	return &rec, nil
}
