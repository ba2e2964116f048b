package jsonrpc

import (
	"strings"

	"github.com/brbranch/lang_assist/internal/service"
)

// AddNoteParams は notes.add のパラメータ
type AddNoteParams struct {
	Text string `json:"text"`
}

// ListNotesParams は notes.list のパラメータ
// queryが未指定・空なら一覧
type ListNotesParams struct {
	Query *string `json:"query"`
}

// normalizedQuery は空白のみのクエリをnilとして扱う
func (p *ListNotesParams) normalizedQuery() *string {
	if p.Query == nil || strings.TrimSpace(*p.Query) == "" {
		return nil
	}
	return p.Query
}

// AssistParams は assistant.translate / assistant.correct のパラメータ
type AssistParams struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"targetLanguage"` // translateのみ
	// Saveはノート保存を利用者が明示的に求めた場合だけtrueにする
	Save bool `json:"save"`
}

// SynthesizeParams は speech.synthesize のパラメータ
type SynthesizeParams struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

// SetConfigParams は config.set のパラメータ
type SetConfigParams struct {
	Speech *SpeechParams `json:"speech"`
}

// SpeechParams は音声設定のパラメータ
type SpeechParams struct {
	Model *string `json:"model"`
	Voice *string `json:"voice"`
}

// ToRequest はサービスリクエストに変換
func (p *SetConfigParams) ToRequest() *service.SetConfigRequest {
	if p.Speech == nil {
		return &service.SetConfigRequest{}
	}
	return &service.SetConfigRequest{
		Speech: &service.SpeechPatch{
			Model: p.Speech.Model,
			Voice: p.Speech.Voice,
		},
	}
}
