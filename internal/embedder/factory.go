package embedder

import (
	"github.com/brbranch/lang_assist/internal/model"
	"github.com/brbranch/lang_assist/internal/openai"
)

// NewEmbedder はEmbedderConfigからEmbedderを作成
// openaiプロバイダの場合はclientが必須（APIキー未設定ならnil）
func NewEmbedder(cfg *model.EmbedderConfig, client *openai.Client) (Embedder, error) {
	switch cfg.Provider {
	case model.ProviderOpenAI:
		if client == nil {
			return nil, ErrAPIKeyRequired
		}

		opts := []OpenAIOption{}
		if cfg.Model != "" {
			opts = append(opts, WithModel(cfg.Model))
		}
		if cfg.Dim != 0 {
			opts = append(opts, WithDim(cfg.Dim))
		}

		return NewOpenAIEmbedder(client, opts...)

	case model.ProviderOllama:
		baseURL := DefaultOllamaBaseURL
		if cfg.BaseURL != nil && *cfg.BaseURL != "" {
			baseURL = *cfg.BaseURL
		}
		return NewOllamaEmbedder(baseURL, cfg.Model, cfg.Dim)

	case model.ProviderLocal:
		return NewLocalEmbedder(cfg.Dim)

	default:
		return nil, ErrUnknownProvider
	}
}
