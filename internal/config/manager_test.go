package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brbranch/lang_assist/internal/model"
)

// TestManager_NewManager_DefaultPath はデフォルトパスでManagerが作成されることをテスト
func TestManager_NewManager_DefaultPath(t *testing.T) {
	mgr, err := NewManager("")
	require.NoError(t, err)

	cfg := mgr.GetConfig()
	assert.NotEmpty(t, cfg.Paths.ConfigPath)
	assert.NotEmpty(t, cfg.Paths.DataDir)
	assert.Equal(t, cfg.Paths.ConfigPath, mgr.GetConfigPath())
}

// TestManager_Load_NotExist は設定ファイルが存在しない場合にデフォルト設定が使われることをテスト
func TestManager_Load_NotExist(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nonexistent.json")

	mgr, err := NewManager(configPath)
	require.NoError(t, err)
	require.NoError(t, mgr.Load())

	cfg := mgr.GetConfig()
	assert.Equal(t, model.ProviderOpenAI, cfg.Embedder.Provider)
	assert.Equal(t, DefaultEmbeddingModel, cfg.Embedder.Model)
	assert.Equal(t, 3072, cfg.Embedder.Dim)
	assert.Equal(t, model.StoreTypeQdrant, cfg.Store.Type)
	assert.Equal(t, "pomocnik_jezykowy", cfg.Store.Collection)
	assert.Equal(t, "alloy", cfg.Speech.Voice)
	assert.Equal(t, "gpt-4o", cfg.Chat.Model)
}

// TestManager_Load_PartialJSON はファイルに無い項目がデフォルトのまま残ることをテスト
func TestManager_Load_PartialJSON(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	content := `{"store": {"type": "sqlite", "collection": "notes"}, "speech": {"voice": "nova"}}`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	mgr, err := NewManager(configPath)
	require.NoError(t, err)
	require.NoError(t, mgr.Load())

	cfg := mgr.GetConfig()
	assert.Equal(t, model.StoreTypeSQLite, cfg.Store.Type)
	assert.Equal(t, "notes", cfg.Store.Collection)
	assert.Equal(t, "nova", cfg.Speech.Voice)
	assert.Equal(t, DefaultSpeechModel, cfg.Speech.Model)
	assert.Equal(t, DefaultEmbeddingDim, cfg.Embedder.Dim)
	assert.Equal(t, configPath, cfg.Paths.ConfigPath)
}

// TestManager_Load_YAML はYAML形式の設定を読み込めることをテスト
func TestManager_Load_YAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := "embedder:\n  provider: local\n  dim: 64\nchat:\n  model: gpt-4o-mini\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	mgr, err := NewManager(configPath)
	require.NoError(t, err)
	require.NoError(t, mgr.Load())

	cfg := mgr.GetConfig()
	assert.Equal(t, model.ProviderLocal, cfg.Embedder.Provider)
	assert.Equal(t, 64, cfg.Embedder.Dim)
	assert.Equal(t, "gpt-4o-mini", cfg.Chat.Model)
}

// TestManager_Load_TOML はTOML形式の設定を読み込めることをテスト
func TestManager_Load_TOML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := "[store]\ntype = \"memory\"\n\n[openai]\nrequestsPerSecond = 2.5\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	mgr, err := NewManager(configPath)
	require.NoError(t, err)
	require.NoError(t, mgr.Load())

	cfg := mgr.GetConfig()
	assert.Equal(t, model.StoreTypeMemory, cfg.Store.Type)
	assert.InDelta(t, 2.5, cfg.OpenAI.RequestsPerSecond, 1e-9)
}

// TestManager_Load_InvalidJSON は不正なJSONでエラーになることをテスト
func TestManager_Load_InvalidJSON(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte("{invalid"), 0644))

	mgr, err := NewManager(configPath)
	require.NoError(t, err)
	assert.Error(t, mgr.Load())
}

// TestManager_SaveAndLoad は保存した設定を再度読み込めること、APIキーが書き出されないことをテスト
func TestManager_SaveAndLoad(t *testing.T) {
	for _, ext := range []string{".json", ".yaml", ".toml"} {
		t.Run(ext, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "nested", "config"+ext)

			mgr, err := NewManager(configPath)
			require.NoError(t, err)

			secret := "sk-secret"
			cfg := mgr.GetConfig()
			cfg.OpenAI.APIKey = &secret
			cfg.Store.Type = model.StoreTypeSQLite
			mgr.UpdateSpeech(model.SpeechConfig{Voice: "shimmer"})

			require.NoError(t, mgr.Save())

			data, err := os.ReadFile(configPath)
			require.NoError(t, err)
			assert.NotContains(t, string(data), "sk-secret")

			_, err = os.Stat(configPath + ".tmp")
			assert.True(t, os.IsNotExist(err), "temp file should be removed")

			loaded, err := NewManager(configPath)
			require.NoError(t, err)
			require.NoError(t, loaded.Load())
			assert.Equal(t, model.StoreTypeSQLite, loaded.GetConfig().Store.Type)
			assert.Equal(t, "shimmer", loaded.GetConfig().Speech.Voice)
			assert.Equal(t, "alloy", DefaultSpeechVoice)
		})
	}
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatForPath("a/config.json"))
	assert.Equal(t, FormatYAML, FormatForPath("config.YML"))
	assert.Equal(t, FormatYAML, FormatForPath("config.yaml"))
	assert.Equal(t, FormatTOML, FormatForPath("config.toml"))
	assert.Equal(t, FormatJSON, FormatForPath("config"))
}
