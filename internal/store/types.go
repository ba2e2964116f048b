package store

import (
	"errors"
	"fmt"

	"github.com/brbranch/lang_assist/internal/model"
)

// Options はバックエンド共通の設定
type Options struct {
	Collection string // コレクション（テーブル）名
	Dim        int    // ベクトル次元数
}

// SearchResult はベクトル検索結果の1件を表す
type SearchResult struct {
	Note  *model.Note
	Score float64 // コサイン類似度（-1〜1、1が最も類似）
}

// エラー定義
var (
	ErrNotInitialized   = errors.New("collection not ensured")
	ErrConnectionFailed = errors.New("failed to connect to store")
	ErrInvalidOptions   = errors.New("invalid store options")
	ErrVectorDimension  = errors.New("vector dimension does not match collection")
)

// Validate はOptionsの妥当性を確認する
func (o Options) Validate() error {
	if o.Collection == "" {
		return errors.Join(ErrInvalidOptions, errors.New("collection must not be empty"))
	}
	if o.Dim <= 0 {
		return errors.Join(ErrInvalidOptions, errors.New("dim must be positive"))
	}
	return nil
}

// checkDim はベクトル長がコレクションの次元と一致するか確認する
func checkDim(embedding []float32, dim int) error {
	if len(embedding) != dim {
		return fmt.Errorf("%w: got %d, want %d", ErrVectorDimension, len(embedding), dim)
	}
	return nil
}
