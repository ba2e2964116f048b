// Package store provides vector storage interfaces and implementations.
package store

import (
	"context"

	"github.com/brbranch/lang_assist/internal/model"
)

// Store はノートを保持するベクトルストアの抽象インターフェース
type Store interface {
	// EnsureCollection はコレクションが無ければ作成する（既存の場合は何もしない）
	EnsureCollection(ctx context.Context) error

	// AddNote はノートとその埋め込みを保存する（書き込み完了を待つ）
	AddNote(ctx context.Context, note *model.Note, embedding []float32) error

	// Search は類似度の高い順にノートを返す
	Search(ctx context.Context, embedding []float32, limit int) ([]SearchResult, error)

	// List は保存済みノートを最大limit件返す（順序はバックエンド依存）
	List(ctx context.Context, limit int) ([]*model.Note, error)

	// Count は保存済みノート件数を返す
	Count(ctx context.Context) (int, error)

	Close() error
}
