package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/brbranch/lang_assist/internal/model"
)

// 設定ファイルフォーマット
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// デフォルト値
const (
	DefaultEmbeddingModel = "text-embedding-3-large"
	DefaultEmbeddingDim   = 3072
	DefaultChatModel      = "gpt-4o"
	DefaultSpeechModel    = "tts-1"
	DefaultSpeechVoice    = "alloy"
	DefaultCollection     = "pomocnik_jezykowy"
	DefaultQdrantURL      = "http://localhost:6333"
	DefaultSourceLanguage = "Polish"
	DefaultExplainLang    = "Polish"
)

// Manager は設定の読み書きを管理する
type Manager struct {
	mu         sync.RWMutex
	config     *model.Config
	configPath string
}

// NewManager は新しいManagerを作成する
// configPathが空文字の場合、デフォルトパス（~/.lang-assist/config.json）を使用
func NewManager(configPath string) (*Manager, error) {
	if configPath == "" {
		defaultPath, err := GetDefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get default config path: %w", err)
		}
		configPath = defaultPath
	}

	expanded, err := ExpandTilde(configPath)
	if err != nil {
		return nil, err
	}
	configPath = expanded

	dataDir, err := GetDefaultDataDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get default data dir: %w", err)
	}

	return &Manager{
		config:     DefaultConfig(configPath, dataDir),
		configPath: configPath,
	}, nil
}

// FormatForPath は拡張子から設定ファイルフォーマットを判定する
// 不明な拡張子はJSONとして扱う
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// Load は設定ファイルを読み込む
// ファイルが存在しない場合はデフォルト設定を使用（エラーなし）
// ファイルに無い項目はデフォルト値のまま残る
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := os.Stat(m.configPath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := *m.config
	if err := unmarshalConfig(FormatForPath(m.configPath), data, &cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	// パスは実際に読んだファイルを正とする
	cfg.Paths.ConfigPath = m.configPath
	m.config = &cfg
	return nil
}

// Save は設定ファイルを保存する
func (m *Manager) Save() error {
	m.mu.RLock()
	config := *m.config
	m.mu.RUnlock()

	if err := EnsureDir(filepath.Dir(m.configPath)); err != nil {
		return err
	}

	// APIキーはファイルに書き出さない
	config.OpenAI.APIKey = nil
	config.Store.APIKey = nil

	data, err := marshalConfig(FormatForPath(m.configPath), &config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 一時ファイルに書き込み（atomicな保存のため）
	tmpFile := m.configPath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp config file: %w", err)
	}

	if err := os.Rename(tmpFile, m.configPath); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename config file: %w", err)
	}

	return nil
}

// GetConfig は現在の設定を返す
func (m *Manager) GetConfig() *model.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// GetConfigPath は設定ファイルパスを返す
func (m *Manager) GetConfigPath() string {
	return m.configPath
}

// UpdateSpeech は音声設定のみを更新する
func (m *Manager) UpdateSpeech(speech model.SpeechConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// 既に渡したポインタを書き換えないようコピーして差し替える
	cfg := *m.config
	if speech.Model != "" {
		cfg.Speech.Model = speech.Model
	}
	if speech.Voice != "" {
		cfg.Speech.Voice = speech.Voice
	}
	m.config = &cfg
}

// NewManagerWithConfig は指定した設定でManagerを作成する（テスト用）
func NewManagerWithConfig(cfg *model.Config) *Manager {
	return &Manager{
		config:     cfg,
		configPath: cfg.Paths.ConfigPath,
	}
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig(configPath, dataDir string) *model.Config {
	qdrantURL := DefaultQdrantURL
	return &model.Config{
		TransportDefaults: model.TransportDefaults{
			DefaultTransport: model.TransportStdio,
		},
		OpenAI: model.OpenAIConfig{
			TimeoutSeconds: 60,
		},
		Embedder: model.EmbedderConfig{
			Provider: model.ProviderOpenAI,
			Model:    DefaultEmbeddingModel,
			Dim:      DefaultEmbeddingDim,
		},
		Chat: model.ChatConfig{
			Model:           DefaultChatModel,
			SourceLanguage:  DefaultSourceLanguage,
			ExplainLanguage: DefaultExplainLang,
			Temperature:     0,
		},
		Speech: model.SpeechConfig{
			Model: DefaultSpeechModel,
			Voice: DefaultSpeechVoice,
		},
		Store: model.StoreConfig{
			Type:       model.StoreTypeQdrant,
			Collection: DefaultCollection,
			URL:        &qdrantURL,
		},
		Paths: model.PathsConfig{
			ConfigPath: configPath,
			DataDir:    dataDir,
		},
	}
}

func unmarshalConfig(format string, data []byte, cfg *model.Config) error {
	switch format {
	case FormatYAML:
		return yaml.Unmarshal(data, cfg)
	case FormatTOML:
		return toml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

func marshalConfig(format string, cfg *model.Config) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(cfg)
	case FormatTOML:
		return toml.Marshal(cfg)
	default:
		return json.MarshalIndent(cfg, "", "  ")
	}
}
