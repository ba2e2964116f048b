package service

import "github.com/brbranch/lang_assist/internal/model"

// AddNoteResponse はノート追加レスポンス
type AddNoteResponse struct {
	ID string
}

// ListNotesResponse は一覧・検索レスポンス
// Queryがnilなら一覧（Scoreは全てnil）
type ListNotesResponse struct {
	Query   *string
	Results []model.NoteResult
}

// GetConfigResponse は設定取得レスポンス（APIキーは含まない）
type GetConfigResponse struct {
	TransportDefaults model.TransportDefaults
	Embedder          model.EmbedderConfig
	Chat              model.ChatConfig
	Speech            model.SpeechConfig
	Store             model.StoreConfig
	Paths             model.PathsConfig
}

// SetConfigRequest は設定変更リクエスト（音声設定のみ変更可能）
type SetConfigRequest struct {
	Speech *SpeechPatch
}

// SpeechPatch は音声設定パッチ
type SpeechPatch struct {
	Model *string // nilは変更なし
	Voice *string // nilは変更なし
}

// SetConfigResponse は設定変更レスポンス
type SetConfigResponse struct {
	OK     bool
	Speech model.SpeechConfig
}
