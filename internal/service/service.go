package service

import (
	"context"
	"errors"
)

// ListLimit は一覧・検索で返す最大件数
const ListLimit = 10

// NoteService はノートの保存・一覧・類似検索を提供
type NoteService interface {
	EnsureCollectionExists(ctx context.Context) error
	AddNote(ctx context.Context, text string) (*AddNoteResponse, error)
	ListNotes(ctx context.Context, query *string) (*ListNotesResponse, error)
	Search(ctx context.Context, query string) (*ListNotesResponse, error)
	Count(ctx context.Context) (int, error)
}

// ConfigService は設定の取得・変更を提供
type ConfigService interface {
	GetConfig(ctx context.Context) (*GetConfigResponse, error)
	SetConfig(ctx context.Context, req *SetConfigRequest) (*SetConfigResponse, error)
}

// エラー定義
var (
	ErrTextRequired  = errors.New("text is required")
	ErrQueryRequired = errors.New("query is required")
)
