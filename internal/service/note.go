package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/brbranch/lang_assist/internal/embedder"
	"github.com/brbranch/lang_assist/internal/model"
	"github.com/brbranch/lang_assist/internal/store"
)

// noteService はNoteServiceの実装
type noteService struct {
	embedder embedder.Embedder
	store    store.Store
}

// NewNoteService はNoteServiceの新しいインスタンスを作成
func NewNoteService(emb embedder.Embedder, s store.Store) NoteService {
	return &noteService{
		embedder: emb,
		store:    s,
	}
}

// EnsureCollectionExists はコレクションが無ければ作成する
func (s *noteService) EnsureCollectionExists(ctx context.Context) error {
	if err := s.store.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}
	return nil
}

// AddNote はノートを埋め込んで保存する
// 同じ本文でも毎回新しいIDで保存する（重複排除しない）
func (s *noteService) AddNote(ctx context.Context, text string) (*AddNoteResponse, error) {
	if text == "" {
		return nil, ErrTextRequired
	}

	// 書き込み前に毎回確認する
	if err := s.EnsureCollectionExists(ctx); err != nil {
		return nil, err
	}

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	note := &model.Note{
		ID:   uuid.New().String(),
		Text: text,
	}

	if err := s.store.AddNote(ctx, note, embedding); err != nil {
		return nil, fmt.Errorf("failed to add note to store: %w", err)
	}

	return &AddNoteResponse{ID: note.ID}, nil
}

// ListNotes はqueryが無ければ保存済みノートを、あれば類似ノートを返す
// 空文字のqueryは指定なしとして扱う
func (s *noteService) ListNotes(ctx context.Context, query *string) (*ListNotesResponse, error) {
	if query != nil && *query != "" {
		return s.Search(ctx, *query)
	}

	notes, err := s.store.List(ctx, ListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	results := make([]model.NoteResult, 0, len(notes))
	for _, n := range notes {
		results = append(results, model.NoteResult{
			ID:   n.ID,
			Text: n.Text,
		})
	}

	return &ListNotesResponse{Results: results}, nil
}

// Search はqueryに類似するノートをスコア降順で返す
func (s *noteService) Search(ctx context.Context, query string) (*ListNotesResponse, error) {
	if query == "" {
		return nil, ErrQueryRequired
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	found, err := s.store.Search(ctx, embedding, ListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]model.NoteResult, 0, len(found))
	for _, r := range found {
		score := r.Score
		results = append(results, model.NoteResult{
			ID:    r.Note.ID,
			Text:  r.Note.Text,
			Score: &score,
		})
	}

	return &ListNotesResponse{Query: &query, Results: results}, nil
}

// Count は保存済みノート件数を返す
func (s *noteService) Count(ctx context.Context) (int, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count notes: %w", err)
	}
	return n, nil
}
