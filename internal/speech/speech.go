// Package speech synthesises audio from note text via the OpenAI speech endpoint.
package speech

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/brbranch/lang_assist/internal/openai"
)

// デフォルト値
const (
	DefaultModel  = "tts-1"
	DefaultVoice  = "alloy"
	DefaultFormat = "mp3"
	MimeType      = "audio/mpeg"
)

// Voices は利用可能な音声の一覧
var Voices = []string{"alloy", "ash", "ballad", "coral", "echo", "fable", "nova", "onyx", "sage", "shimmer", "verse"}

// エラー定義
var (
	ErrEmptyInput       = errors.New("nothing to synthesise after stripping markup")
	ErrUnsupportedVoice = errors.New("unsupported voice")
	ErrEmptyAudio       = errors.New("speech endpoint returned no audio")
)

// ValidateVoice はvoiceが利用可能な音声か確認する
func ValidateVoice(voice string) error {
	if !slices.Contains(Voices, voice) {
		return fmt.Errorf("%w: %q", ErrUnsupportedVoice, voice)
	}
	return nil
}

// Synthesizer はaudio/speechエンドポイントのクライアント
type Synthesizer struct {
	client *openai.Client
	model  string
	voice  string
}

// Option はSynthesizerのオプション
type Option func(*Synthesizer)

// WithModel はTTSモデルを設定
func WithModel(model string) Option {
	return func(s *Synthesizer) {
		if model != "" {
			s.model = model
		}
	}
}

// WithVoice は既定の音声を設定
func WithVoice(voice string) Option {
	return func(s *Synthesizer) {
		if voice != "" {
			s.voice = voice
		}
	}
}

// NewSynthesizer はSynthesizerを作成する
func NewSynthesizer(client *openai.Client, opts ...Option) (*Synthesizer, error) {
	if client == nil {
		return nil, openai.ErrAPIKeyRequired
	}

	s := &Synthesizer{
		client: client,
		model:  DefaultModel,
		voice:  DefaultVoice,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := ValidateVoice(s.voice); err != nil {
		return nil, err
	}
	return s, nil
}

// Voice は既定の音声を返す
func (s *Synthesizer) Voice() string {
	return s.voice
}

type speechRequest struct {
	Model          string `json:"model"`
	Voice          string `json:"voice"`
	Input          string `json:"input"`
	ResponseFormat string `json:"response_format"`
}

// Synthesize はマークアップを除去したテキストをmp3に変換する
// voiceが空なら既定の音声を使う
func (s *Synthesizer) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if voice == "" {
		voice = s.voice
	}
	if err := ValidateVoice(voice); err != nil {
		return nil, err
	}

	input := StripMarkup(text)
	if input == "" {
		return nil, ErrEmptyInput
	}

	audio, err := s.client.PostRaw(ctx, "/audio/speech", speechRequest{
		Model:          s.model,
		Voice:          voice,
		Input:          input,
		ResponseFormat: DefaultFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to synthesise speech: %w", err)
	}
	if len(audio) == 0 {
		return nil, ErrEmptyAudio
	}
	return audio, nil
}
