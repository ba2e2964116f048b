package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pgvector/pgvector-go"

	"github.com/brbranch/lang_assist/internal/model"
)

// PgVectorStore はPostgreSQL + pgvector拡張を使用したStore実装
// コレクションごとに1テーブルを使う
type PgVectorStore struct {
	mu          sync.RWMutex
	db          *sql.DB
	opts        Options
	table       string // サニタイズ済みテーブル名
	initialized bool
}

// NewPgVectorStore はPgVectorStoreを作成する
func NewPgVectorStore(dsn string, opts Options) (*PgVectorStore, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	return &PgVectorStore{
		db:    db,
		opts:  opts,
		table: pgx.Identifier{opts.Collection}.Sanitize(),
	}, nil
}

// EnsureCollection は拡張とテーブルが無ければ作成する
// 3072次元はhnswインデックスの上限を超えるため、インデックスは作らず全件距離計算とする
func (s *PgVectorStore) EnsureCollection(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("failed to create extension: %w", err)
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT to_regclass($1) IS NOT NULL`, s.table).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if exists {
		slog.Debug("collection already exists", "collection", s.opts.Collection)
	} else {
		slog.Info("creating collection", "collection", s.opts.Collection, "dim", s.opts.Dim)
		_, err := s.db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			seq BIGSERIAL,
			id UUID PRIMARY KEY,
			text TEXT NOT NULL,
			embedding vector(%d) NOT NULL
		)`, s.table, s.opts.Dim))
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
	}

	s.initialized = true
	return nil
}

// Close はストアをクローズする
func (s *PgVectorStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = false
	return s.db.Close()
}

func (s *PgVectorStore) isInitialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// AddNote はノートを追加する（同じIDは上書き）
func (s *PgVectorStore) AddNote(ctx context.Context, note *model.Note, embedding []float32) error {
	if err := checkDim(embedding, s.opts.Dim); err != nil {
		return err
	}
	if !s.isInitialized() {
		return ErrNotInitialized
	}

	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, text, embedding)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			text = EXCLUDED.text,
			embedding = EXCLUDED.embedding
	`, s.table), note.ID, note.Text, pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	return nil
}

// Search はコサイン距離演算子でベクトル検索を実行する
func (s *PgVectorStore) Search(ctx context.Context, embedding []float32, limit int) ([]SearchResult, error) {
	if !s.isInitialized() {
		return nil, ErrNotInitialized
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id::text, text, 1 - (embedding <=> $1) AS score
		FROM %s
		ORDER BY embedding <=> $1, seq
		LIMIT $2
	`, s.table), pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var (
			note  model.Note
			score float64
		)
		if err := rows.Scan(&note.ID, &note.Text, &score); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		results = append(results, SearchResult{Note: &note, Score: score})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return results, nil
}

// List は挿入順にノートを返す
func (s *PgVectorStore) List(ctx context.Context, limit int) ([]*model.Note, error) {
	if !s.isInitialized() {
		return nil, ErrNotInitialized
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id::text, text FROM %s ORDER BY seq LIMIT $1
	`, s.table), limit)
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
func (s *PgVectorStore) Count(ctx context.Context) (int, error) {
	if !s.isInitialized() {
		return 0, ErrNotInitialized
	}

	var count int
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count notes: %w", err)
	}
	return count, nil
}
