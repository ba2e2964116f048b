// Package bootstrap provides common initialization logic for lang-assist.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/brbranch/lang_assist/internal/config"
	"github.com/brbranch/lang_assist/internal/embedder"
	"github.com/brbranch/lang_assist/internal/llm"
	"github.com/brbranch/lang_assist/internal/model"
	"github.com/brbranch/lang_assist/internal/openai"
	"github.com/brbranch/lang_assist/internal/service"
	"github.com/brbranch/lang_assist/internal/speech"
	"github.com/brbranch/lang_assist/internal/store"
	"github.com/brbranch/lang_assist/internal/workflow"
)

// エラー定義
var (
	ErrUnknownStoreType = errors.New("unknown store type")
	ErrStoreURLRequired = errors.New("store url is required")
)

// Services は初期化されたサービス群を保持
type Services struct {
	NoteService   service.NoteService
	ConfigService service.ConfigService
	LLM           *llm.Client
	Speech        *speech.Synthesizer
	Config        *model.Config
}

// NewWorkflow はサービスを組み込んだ新しいワークフローを作成する
func (s *Services) NewWorkflow(mode workflow.Mode) (*workflow.Workflow, error) {
	return workflow.New(mode, workflow.Deps{
		LLM:    s.LLM,
		Notes:  s.NoteService,
		Speech: s.Speech,
		Chat:   s.Config.Chat,
	})
}

// Initialize は設定を読み込み、必要なサービスを初期化する
// OpenAIのAPIキーが無い場合はopenai.ErrAPIKeyRequiredを返す
func Initialize(ctx context.Context, configPath string) (*Services, func(), error) {
	// .envは実際の環境変数を上書きしない
	if err := config.LoadDotEnv(); err != nil {
		return nil, nil, fmt.Errorf("failed to load .env: %w", err)
	}

	configManager, err := config.NewManager(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	if err := configManager.Load(); err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg := configManager.GetConfig()
	config.ApplyEnvOverrides(cfg)

	// 1. OpenAIクライアント（埋め込み・チャット・音声で共有）
	client, err := newOpenAIClient(cfg)
	if err != nil {
		return nil, nil, err
	}

	// 2. Embedder初期化
	emb, err := embedder.NewEmbedder(&cfg.Embedder, client)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	// 3. Store初期化
	st, err := newStore(cfg, emb.GetDimension())
	if err != nil {
		return nil, nil, err
	}

	noteService := service.NewNoteService(emb, st)
	if err := noteService.EnsureCollectionExists(ctx); err != nil {
		st.Close()
		return nil, nil, err
	}

	// 4. チャット・音声
	chat, err := llm.NewClient(client, cfg.Chat.Model)
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("failed to create llm client: %w", err)
	}

	synth, err := speech.NewSynthesizer(client, speech.WithModel(cfg.Speech.Model), speech.WithVoice(cfg.Speech.Voice))
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("failed to create speech synthesizer: %w", err)
	}

	cleanup := func() {
		st.Close()
	}

	return &Services{
		NoteService:   noteService,
		ConfigService: service.NewConfigService(configManager),
		LLM:           chat,
		Speech:        synth,
		Config:        cfg,
	}, cleanup, nil
}

// newOpenAIClient は設定からOpenAIクライアントを作成する
func newOpenAIClient(cfg *model.Config) (*openai.Client, error) {
	opts := []openai.Option{
		openai.WithRateLimit(cfg.OpenAI.RequestsPerSecond),
	}
	if cfg.OpenAI.TimeoutSeconds > 0 {
		opts = append(opts, openai.WithTimeout(time.Duration(cfg.OpenAI.TimeoutSeconds)*time.Second))
	}
	if cfg.OpenAI.BaseURL != nil && *cfg.OpenAI.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(*cfg.OpenAI.BaseURL))
	}

	client, err := openai.NewClient(config.GetOpenAIAPIKey(cfg), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}
	return client, nil
}

// newStore は設定のstore.typeに応じたStoreを作成する
func newStore(cfg *model.Config, dim int) (store.Store, error) {
	opts := store.Options{Collection: cfg.Store.Collection, Dim: dim}

	switch cfg.Store.Type {
	case model.StoreTypeQdrant:
		url := config.DefaultQdrantURL
		if cfg.Store.URL != nil && *cfg.Store.URL != "" {
			url = *cfg.Store.URL
		}
		apiKey := ""
		if cfg.Store.APIKey != nil {
			apiKey = *cfg.Store.APIKey
		}
		st, err := store.NewQdrantStore(url, apiKey, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to create qdrant store: %w", err)
		}
		return st, nil

	case model.StoreTypeSQLite:
		dbPath := filepath.Join(cfg.Paths.DataDir, "notes.db")
		if cfg.Store.Path != nil && *cfg.Store.Path != "" {
			expanded, err := config.ExpandTilde(*cfg.Store.Path)
			if err != nil {
				return nil, err
			}
			dbPath = expanded
		}
		// DBファイルの親ディレクトリを作成
		if err := config.EnsureDir(filepath.Dir(dbPath)); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		st, err := store.NewSQLiteStore(dbPath, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to create sqlite store: %w", err)
		}
		return st, nil

	case model.StoreTypePgVector:
		if cfg.Store.URL == nil || *cfg.Store.URL == "" {
			return nil, fmt.Errorf("%w: set store.url or %s", ErrStoreURLRequired, config.EnvDatabaseURL)
		}
		st, err := store.NewPgVectorStore(*cfg.Store.URL, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgvector store: %w", err)
		}
		return st, nil

	case model.StoreTypeMemory:
		return store.NewMemoryStore(opts)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStoreType, cfg.Store.Type)
	}
}
