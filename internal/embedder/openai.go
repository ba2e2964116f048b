package embedder

import (
	"context"
	"fmt"

	"github.com/brbranch/lang_assist/internal/openai"
)

const (
	DefaultOpenAIModel = "text-embedding-3-large"
	DefaultOpenAIDim   = 3072
)

// OpenAIEmbedder はOpenAI Embeddings APIを使用するEmbedder実装
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
	dim    int
}

// OpenAIOption はOpenAIEmbedderのオプション
type OpenAIOption func(*OpenAIEmbedder)

// WithModel はモデルを設定
func WithModel(model string) OpenAIOption {
	return func(e *OpenAIEmbedder) {
		e.model = model
	}
}

// WithDim は要求する次元数を設定（dimensionsパラメータとして送信）
func WithDim(dim int) OpenAIOption {
	return func(e *OpenAIEmbedder) {
		e.dim = dim
	}
}

// NewOpenAIEmbedder は新しいOpenAIEmbedderを作成
func NewOpenAIEmbedder(client *openai.Client, opts ...OpenAIOption) (*OpenAIEmbedder, error) {
	if client == nil {
		return nil, ErrAPIKeyRequired
	}

	e := &OpenAIEmbedder{
		client: client,
		model:  DefaultOpenAIModel,
		dim:    DefaultOpenAIDim,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.dim <= 0 {
		return nil, ErrInvalidDimension
	}

	return e, nil
}

// embeddingRequest はOpenAI APIリクエストの構造
type embeddingRequest struct {
	Model          string   `json:"model"`
	Input          []string `json:"input"`
	Dimensions     int      `json:"dimensions"`
	EncodingFormat string   `json:"encoding_format"`
}

// embeddingResponse はOpenAI APIレスポンスの構造
type embeddingResponse struct {
	Data  []embeddingData `json:"data"`
	Model string          `json:"model"`
}

type embeddingData struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

// Embed はテキストを埋め込みベクトルに変換
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := embeddingRequest{
		Model:          e.model,
		Input:          []string{text},
		Dimensions:     e.dim,
		EncodingFormat: "float",
	}

	var embResp embeddingResponse
	if err := e.client.PostJSON(ctx, "/embeddings", reqBody, &embResp); err != nil {
		return nil, err
	}

	if len(embResp.Data) == 0 || len(embResp.Data[0].Embedding) == 0 {
		return nil, ErrEmptyEmbedding
	}

	embedding := embResp.Data[0].Embedding
	if len(embedding) != e.dim {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, e.dim, len(embedding))
	}

	return embedding, nil
}

// GetDimension は次元を返す
func (e *OpenAIEmbedder) GetDimension() int {
	return e.dim
}
