package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/brbranch/lang_assist/internal/model"
)

const (
	// noteCountWarningThreshold は警告を出すノート件数の閾値
	noteCountWarningThreshold = 5000
)

// SQLiteStore はSQLiteファイルを使用したStore実装
// 検索は全件スキャンのコサイン類似度
type SQLiteStore struct {
	mu          sync.RWMutex
	db          *sql.DB
	dbPath      string
	opts        Options
	initialized bool
}

// NewSQLiteStore はSQLiteStoreを作成する
func NewSQLiteStore(dbPath string, opts Options) (*SQLiteStore, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WALモードを有効化
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
		opts:   opts,
	}, nil
}

// EnsureCollection はテーブルとコレクション行を作成する
// 既存コレクションの次元が異なる場合はエラー
func (s *SQLiteStore) EnsureCollection(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	schemaSQL := `
	CREATE TABLE IF NOT EXISTS collections (
		name TEXT PRIMARY KEY,
		dim INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS notes (
		id TEXT NOT NULL,
		collection TEXT NOT NULL,
		text TEXT NOT NULL,
		embedding BLOB NOT NULL,
		PRIMARY KEY (collection, id)
	);
	CREATE INDEX IF NOT EXISTS idx_notes_collection ON notes(collection);
	`
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	var dim int
	err := s.db.QueryRowContext(ctx, `SELECT dim FROM collections WHERE name = ?`, s.opts.Collection).Scan(&dim)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		slog.Info("creating collection", "collection", s.opts.Collection, "dim", s.opts.Dim)
		if _, err := s.db.ExecContext(ctx, `INSERT INTO collections (name, dim) VALUES (?, ?)`, s.opts.Collection, s.opts.Dim); err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to check collection existence: %w", err)
	case dim != s.opts.Dim:
		return fmt.Errorf("%w: collection %q has dim %d, configured %d", ErrVectorDimension, s.opts.Collection, dim, s.opts.Dim)
	default:
		slog.Debug("collection already exists", "collection", s.opts.Collection)
	}

	s.initialized = true
	return nil
}

// Close はストアをクローズする
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = false
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// AddNote はノートを追加する（同じIDは上書き）
func (s *SQLiteStore) AddNote(ctx context.Context, note *model.Note, embedding []float32) error {
	if err := checkDim(embedding, s.opts.Dim); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notes (id, collection, text, embedding)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			text = excluded.text,
			embedding = excluded.embedding
	`, note.ID, s.opts.Collection, note.Text, encodeEmbedding(embedding))
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}

	// 件数チェックと警告
	count, _ := s.countNotes(ctx)
	if count >= noteCountWarningThreshold {
		slog.Warn("note count exceeded threshold",
			"count", count,
			"threshold", noteCountWarningThreshold,
			"recommendation", "consider using the qdrant or pgvector store for better performance")
	}

	return nil
}

// Search はベクトル検索を実行する
func (s *SQLiteStore) Search(ctx context.Context, embedding []float32, limit int) ([]SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, embedding
		FROM notes
		WHERE collection = ?
		ORDER BY rowid
	`, s.opts.Collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var (
			note          model.Note
			embeddingBlob []byte
		)
		if err := rows.Scan(&note.ID, &note.Text, &embeddingBlob); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		results = append(results, SearchResult{
			Note:  &note,
			Score: CosineSimilarity(embedding, decodeEmbedding(embeddingBlob)),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return rankByScore(results, limit), nil
}

// List は挿入順にノートを返す
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*model.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text
		FROM notes
		WHERE collection = ?
		ORDER BY rowid
		LIMIT ?
	`, s.opts.Collection, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	notes := []*model.Note{}
	for rows.Next() {
		note := &model.Note{}
		if err := rows.Scan(&note.ID, &note.Text); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return notes, nil
}

// Count は件数を返す
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return 0, ErrNotInitialized
	}

	count, err := s.countNotes(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count notes: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) countNotes(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notes WHERE collection = ?
	`, s.opts.Collection).Scan(&count)
	return count, err
}

// encodeEmbedding はfloat32配列をバイト配列に変換する
func encodeEmbedding(embedding []float32) []byte {
	buf := make([]byte, len(embedding)*4)
	for i, v := range embedding {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// decodeEmbedding はバイト配列をfloat32配列に変換する
func decodeEmbedding(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	embedding := make([]float32, len(data)/4)
	for i := range embedding {
		embedding[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return embedding
}
