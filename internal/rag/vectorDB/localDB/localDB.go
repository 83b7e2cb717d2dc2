// Package localDB is the default vector index: a single SQLite file under the vector directory,
// searched by exact cosine similarity.
//
// The file carries a tenant record and a collection record written once when the file is created.
// An index whose tenant or collection record is gone, or whose file cannot be read, is reported
// as StoreUnavailable. It is never re-bootstrapped in place.
package localDB

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/akolanti/docqa/internal/domain/ragErrors"
	"github.com/akolanti/docqa/pkg/logger_i"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

type ClientHolder struct {
	db         *sql.DB
	dir        string
	path       string
	tenant     string
	collection string
	logger     *logger_i.Logger
}

// Open loads the index in dir, creating and bootstrapping it when the file does not exist yet.
func Open(dir, collection string) (*ClientHolder, error) {
	h := &ClientHolder{
		dir:        dir,
		path:       filepath.Join(dir, config.LocalDBFileName),
		tenant:     config.DefaultTenant,
		collection: collection,
		logger:     logger_i.NewLogger("localDB").With("path", filepath.Join(dir, config.LocalDBFileName)),
	}
	if err := h.open(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *ClientHolder) open() error {
	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		return fmt.Errorf("creating vector directory: %w", err)
	}

	_, statErr := os.Stat(h.path)
	fresh := errors.Is(statErr, os.ErrNotExist)

	db, err := sql.Open("sqlite", h.path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("opening vector index: %w", err)
	}
	db.SetMaxOpenConns(1)
	h.db = db

	if fresh {
		if err := h.bootstrap(); err != nil {
			_ = db.Close()
			return err
		}
		h.logger.Info("Created vector index", "tenant", h.tenant, "collection", h.collection)
	}
	return nil
}

func (h *ClientHolder) bootstrap() error {
	now := time.Now().Unix()
	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(schema); err != nil {
		return fmt.Errorf("bootstrap schema: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO tenants (name, created_at) VALUES (?, ?)`, h.tenant, now); err != nil {
		return fmt.Errorf("bootstrap tenant: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO collections (name, tenant, created_at) VALUES (?, ?, ?)`, h.collection, h.tenant, now); err != nil {
		return fmt.Errorf("bootstrap collection: %w", err)
	}
	return tx.Commit()
}

// checkBootstrap verifies the tenant and collection records before every operation.
func (h *ClientHolder) checkBootstrap(ctx context.Context, op string) error {
	if h.db == nil {
		return ragErrors.StoreUnavailable(op, nil, "vector index is closed")
	}
	var n int
	err := h.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM collections c JOIN tenants t ON t.name = c.tenant WHERE c.name = ? AND t.name = ?`,
		h.collection, h.tenant).Scan(&n)
	if err != nil {
		return ragErrors.StoreUnavailable(op, err, "vector index is unreadable")
	}
	if n == 0 {
		return ragErrors.StoreUnavailable(op, nil, fmt.Sprintf("vector index has no record for tenant %q", h.tenant))
	}
	return nil
}

func (h *ClientHolder) Upsert(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error {
	const op = "localDB.Upsert"
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	if err := h.checkBootstrap(ctx, op); err != nil {
		return err
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return ragErrors.StoreUnavailable(op, err, "cannot write vector index")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO embeddings
		(id, collection, doc_id, content, page_num, chunk_order, start_offset, end_offset, ingested_at, vector)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return ragErrors.StoreUnavailable(op, err, "cannot write vector index")
	}
	defer stmt.Close()

	for i, c := range chunks {
		_, err := stmt.ExecContext(ctx, c.ChunkId, h.collection, c.DocId, c.Chunk, c.PageNum, c.ChunkOrder,
			c.StartOffset, c.EndOffset, c.IngestedAt.UnixNano(), float32SliceToBytes(vectors[i]))
		if err != nil {
			return ragErrors.StoreUnavailable(op, err, "cannot write vector index")
		}
	}
	if err := tx.Commit(); err != nil {
		return ragErrors.StoreUnavailable(op, err, "cannot commit vector index")
	}
	return nil
}

func (h *ClientHolder) Search(ctx context.Context, vector []float32, topK int) ([]commonModels.SearchHit, error) {
	const op = "localDB.Search"
	if topK <= 0 {
		return nil, nil
	}
	if err := h.checkBootstrap(ctx, op); err != nil {
		return nil, err
	}

	rows, err := h.db.QueryContext(ctx, `SELECT id, doc_id, content, page_num, chunk_order, start_offset, end_offset, ingested_at, vector
		FROM embeddings WHERE collection = ? ORDER BY rowid`, h.collection)
	if err != nil {
		return nil, ragErrors.StoreUnavailable(op, err, "cannot read vector index")
	}
	defer rows.Close()

	var hits []commonModels.SearchHit
	for rows.Next() {
		var (
			c          commonModels.DocChunk
			ingestedAt int64
			blob       []byte
		)
		if err := rows.Scan(&c.ChunkId, &c.DocId, &c.Chunk, &c.PageNum, &c.ChunkOrder, &c.StartOffset, &c.EndOffset, &ingestedAt, &blob); err != nil {
			return nil, ragErrors.StoreUnavailable(op, err, "cannot read vector index")
		}
		stored := bytesToFloat32Slice(blob)
		if len(stored) != len(vector) {
			return nil, ragErrors.Config(op, fmt.Sprintf("index holds %d-dimensional vectors but the embedder produces %d; clear all data to switch embedders", len(stored), len(vector)))
		}
		c.IngestedAt = time.Unix(0, ingestedAt)
		hits = append(hits, commonModels.SearchHit{Chunk: c, Score: cosine(vector, stored)})
	}
	if err := rows.Err(); err != nil {
		return nil, ragErrors.StoreUnavailable(op, err, "cannot read vector index")
	}

	// stable so equal scores keep insertion order
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func (h *ClientHolder) Count(ctx context.Context) (int, error) {
	const op = "localDB.Count"
	if err := h.checkBootstrap(ctx, op); err != nil {
		return 0, err
	}
	var n int
	if err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM embeddings WHERE collection = ?`, h.collection).Scan(&n); err != nil {
		return 0, ragErrors.StoreUnavailable(op, err, "cannot read vector index")
	}
	return n, nil
}

// Reset deletes the whole vector directory and bootstraps a new index in its place.
func (h *ClientHolder) Reset(ctx context.Context) error {
	if h.db != nil {
		if err := h.db.Close(); err != nil {
			h.logger.Warn("Error closing index before reset", "error", err)
		}
		h.db = nil
	}
	if err := os.RemoveAll(h.dir); err != nil {
		return fmt.Errorf("removing vector directory: %w", err)
	}
	return h.open()
}

func (h *ClientHolder) Close() error {
	if h.db == nil {
		return nil
	}
	err := h.db.Close()
	h.db = nil
	return err
}

func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
