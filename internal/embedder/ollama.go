package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/brbranch/lang_assist/internal/openai"
)

const (
	DefaultOllamaBaseURL = "http://localhost:11434"
	DefaultOllamaModel   = "nomic-embed-text"
)

// OllamaEmbedder はOllama APIを使用するEmbedder実装
// 次元数はモデル固有のため、設定値と一致しない応答はエラーにする
type OllamaEmbedder struct {
	httpClient *http.Client
	baseURL    string
	model      string
	dim        int
}

// NewOllamaEmbedder は新しいOllamaEmbedderを作成
func NewOllamaEmbedder(baseURL, model string, dim int) (*OllamaEmbedder, error) {
	if baseURL == "" {
		baseURL = DefaultOllamaBaseURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	if dim <= 0 {
		return nil, ErrInvalidDimension
	}
	return &OllamaEmbedder{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
		model:      model,
		dim:        dim,
	}, nil
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed はテキストを埋め込みベクトルに変換
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	reqJSON, err := json.Marshal(ollamaRequest{Model: e.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embeddings", bytes.NewReader(reqJSON))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAPIRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrAPIRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrAPIRequestFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &openai.APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	var ollResp ollamaResponse
	if err := json.Unmarshal(body, &ollResp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(ollResp.Embedding) == 0 {
		return nil, ErrEmptyEmbedding
	}
	if len(ollResp.Embedding) != e.dim {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, e.dim, len(ollResp.Embedding))
	}

	embedding := make([]float32, len(ollResp.Embedding))
	for i, v := range ollResp.Embedding {
		embedding[i] = float32(v)
	}
	return embedding, nil
}

// GetDimension は次元を返す
func (e *OllamaEmbedder) GetDimension() int {
	return e.dim
}
