package model

// Config はアプリケーション全体の設定を表す
type Config struct {
	TransportDefaults TransportDefaults `json:"transportDefaults" yaml:"transportDefaults" toml:"transportDefaults"`
	OpenAI            OpenAIConfig      `json:"openai" yaml:"openai" toml:"openai"`
	Embedder          EmbedderConfig    `json:"embedder" yaml:"embedder" toml:"embedder"`
	Chat              ChatConfig        `json:"chat" yaml:"chat" toml:"chat"`
	Speech            SpeechConfig      `json:"speech" yaml:"speech" toml:"speech"`
	Store             StoreConfig       `json:"store" yaml:"store" toml:"store"`
	Paths             PathsConfig       `json:"paths" yaml:"paths" toml:"paths"`
}

// TransportDefaults はtransportのデフォルト設定
type TransportDefaults struct {
	DefaultTransport string `json:"defaultTransport" yaml:"defaultTransport" toml:"defaultTransport"` // "stdio" | "http"
}

// OpenAIConfig はOpenAI API共通設定（埋め込み・チャット・音声で共有）
type OpenAIConfig struct {
	APIKey            *string `json:"apiKey,omitempty" yaml:"apiKey,omitempty" toml:"apiKey,omitempty"`    // nullable（環境変数優先）
	BaseURL           *string `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty" toml:"baseUrl,omitempty"` // nullable
	RequestsPerSecond float64 `json:"requestsPerSecond" yaml:"requestsPerSecond" toml:"requestsPerSecond"` // 0は無制限
	TimeoutSeconds    int     `json:"timeoutSeconds" yaml:"timeoutSeconds" toml:"timeoutSeconds"`          // 0はデフォルト
}

// EmbedderConfig はembedder設定
type EmbedderConfig struct {
	Provider string  `json:"provider" yaml:"provider" toml:"provider"`                            // "openai" | "ollama" | "local"
	Model    string  `json:"model" yaml:"model" toml:"model"`                                     // モデル名
	Dim      int     `json:"dim" yaml:"dim" toml:"dim"`                                           // ベクトル次元（コレクション作成にも使用）
	BaseURL  *string `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty" toml:"baseUrl,omitempty"` // ollama用
}

// ChatConfig は翻訳・校正・文法解析に使うモデル設定
type ChatConfig struct {
	Model           string  `json:"model" yaml:"model" toml:"model"`
	AnalysisModel   string  `json:"analysisModel" yaml:"analysisModel" toml:"analysisModel"`       // 空ならModelを使用
	SourceLanguage  string  `json:"sourceLanguage" yaml:"sourceLanguage" toml:"sourceLanguage"`    // 翻訳元言語
	ExplainLanguage string  `json:"explainLanguage" yaml:"explainLanguage" toml:"explainLanguage"` // 解説を書く言語
	Temperature     float64 `json:"temperature" yaml:"temperature" toml:"temperature"`
}

// SpeechConfig は音声合成設定
type SpeechConfig struct {
	Model string `json:"model" yaml:"model" toml:"model"`
	Voice string `json:"voice" yaml:"voice" toml:"voice"`
}

// StoreConfig はvector store設定
type StoreConfig struct {
	Type       string  `json:"type" yaml:"type" toml:"type"`                                        // "qdrant" | "sqlite" | "pgvector" | "memory"
	Collection string  `json:"collection" yaml:"collection" toml:"collection"`                      // コレクション名
	Path       *string `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`          // nullable（SQLite用）
	URL        *string `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty"`             // nullable（Qdrant/pgvector用）
	APIKey     *string `json:"apiKey,omitempty" yaml:"apiKey,omitempty" toml:"apiKey,omitempty"`    // nullable（Qdrant Cloud用）
}

// PathsConfig はファイルパス設定
type PathsConfig struct {
	ConfigPath string `json:"configPath" yaml:"configPath" toml:"configPath"` // 設定ファイルパス
	DataDir    string `json:"dataDir" yaml:"dataDir" toml:"dataDir"`          // データディレクトリ
}

// Transport定数
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Embedder Provider定数
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderLocal  = "local"
)

// Store Type定数
const (
	StoreTypeQdrant   = "qdrant"
	StoreTypeSQLite   = "sqlite"
	StoreTypePgVector = "pgvector"
	StoreTypeMemory   = "memory"
)
