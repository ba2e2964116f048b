package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/brbranch/lang_assist/internal/model"
)

// 環境変数名の定数
const (
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvQdrantURL    = "QDRANT_URL"
	EnvQdrantAPIKey = "QDRANT_API_KEY"
	EnvDatabaseURL  = "DATABASE_URL"
)

// DefaultDotEnvFile はカレントディレクトリで探す.envファイル名
const DefaultDotEnvFile = ".env"

// LoadDotEnv は.envファイルを環境変数に読み込む
// 既に設定されている環境変数は上書きしない。ファイルが無い場合はエラーなし
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{DefaultDotEnvFile}
	}

	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
		existing = append(existing, p)
	}
	if len(existing) == 0 {
		return nil
	}

	return godotenv.Load(existing...)
}

// ApplyEnvOverrides は環境変数による設定上書きを適用する
// config を直接変更する
func ApplyEnvOverrides(config *model.Config) {
	if apiKey := os.Getenv(EnvOpenAIAPIKey); apiKey != "" {
		config.OpenAI.APIKey = &apiKey
	}

	switch config.Store.Type {
	case model.StoreTypeQdrant:
		if url := os.Getenv(EnvQdrantURL); url != "" {
			config.Store.URL = &url
		}
		if apiKey := os.Getenv(EnvQdrantAPIKey); apiKey != "" {
			config.Store.APIKey = &apiKey
		}
	case model.StoreTypePgVector:
		if dsn := os.Getenv(EnvDatabaseURL); dsn != "" {
			config.Store.URL = &dsn
		}
	}
}

// GetOpenAIAPIKey はOpenAI APIキーを取得する
// 設定ファイルの値より環境変数を優先
func GetOpenAIAPIKey(config *model.Config) string {
	if apiKey := os.Getenv(EnvOpenAIAPIKey); apiKey != "" {
		return apiKey
	}
	if config.OpenAI.APIKey != nil {
		return *config.OpenAI.APIKey
	}
	return ""
}
