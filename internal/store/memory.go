package store

import (
	"context"
	"sync"

	"github.com/brbranch/lang_assist/internal/model"
)

// MemoryStore はテスト・オフライン用のインメモリStore実装
// List は挿入順で返す
type MemoryStore struct {
	mu          sync.RWMutex
	opts        Options
	entries     []*noteEntry
	index       map[string]int // key: note.ID, value: entriesの位置
	initialized bool
}

type noteEntry struct {
	note      model.Note
	embedding []float32
}

// NewMemoryStore はMemoryStoreを作成する
func NewMemoryStore(opts Options) (*MemoryStore, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &MemoryStore{
		opts:  opts,
		index: make(map[string]int),
	}, nil
}

// EnsureCollection はストアを利用可能にする（何度呼んでも同じ）
func (s *MemoryStore) EnsureCollection(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	return nil
}

// Close はストアをクローズする
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	s.index = make(map[string]int)
	s.initialized = false
	return nil
}

// AddNote はノートを追加する（同じIDは上書き）
func (s *MemoryStore) AddNote(ctx context.Context, note *model.Note, embedding []float32) error {
	if err := checkDim(embedding, s.opts.Dim); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}

	entry := &noteEntry{
		note:      *note,
		embedding: append([]float32(nil), embedding...),
	}

	if i, ok := s.index[note.ID]; ok {
		s.entries[i] = entry
		return nil
	}
	s.index[note.ID] = len(s.entries)
	s.entries = append(s.entries, entry)
	return nil
}

// Search は全件スキャンでベクトル検索を実行する
func (s *MemoryStore) Search(ctx context.Context, embedding []float32, limit int) ([]SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}

	results := make([]SearchResult, 0, len(s.entries))
	for _, entry := range s.entries {
		note := entry.note
		results = append(results, SearchResult{
			Note:  &note,
			Score: CosineSimilarity(embedding, entry.embedding),
		})
	}

	return rankByScore(results, limit), nil
}

// List は挿入順にノートを返す
func (s *MemoryStore) List(ctx context.Context, limit int) ([]*model.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}

	n := len(s.entries)
	if limit > 0 && n > limit {
		n = limit
	}

	notes := make([]*model.Note, 0, n)
	for _, entry := range s.entries[:n] {
		note := entry.note
		notes = append(notes, &note)
	}
	return notes, nil
}

// Count は件数を返す
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return 0, ErrNotInitialized
	}
	return len(s.entries), nil
}
