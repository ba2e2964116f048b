// Package embedder converts note text into fixed-length embedding vectors.
package embedder

import (
	"context"
	"errors"

	"github.com/brbranch/lang_assist/internal/openai"
)

// Embedder はテキストから埋め込みベクトルを生成するインターフェース
type Embedder interface {
	// Embed はテキストを埋め込みベクトルに変換する
	// 戻り値の長さは常にGetDimension()と一致する
	Embed(ctx context.Context, text string) ([]float32, error)

	// GetDimension はこのEmbedderが生成するベクトルの次元数を返す
	GetDimension() int
}

// エラー定義
var (
	ErrAPIKeyRequired    = openai.ErrAPIKeyRequired
	ErrAPIRequestFailed  = openai.ErrAPIRequestFailed
	ErrInvalidResponse   = openai.ErrInvalidResponse
	ErrEmptyEmbedding    = errors.New("empty embedding returned")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrInvalidDimension  = errors.New("embedding dimension must be positive")
	ErrUnknownProvider   = errors.New("unknown embedder provider")
)
