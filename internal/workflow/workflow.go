// Package workflow drives one translate-or-correct interaction: rewrite the
// text, break it down grammatically, format a note and optionally save or speak it.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brbranch/lang_assist/internal/llm"
	"github.com/brbranch/lang_assist/internal/model"
	"github.com/brbranch/lang_assist/internal/service"
)

// Mode はワークフローの種類
type Mode string

const (
	ModeTranslate Mode = "translate"
	ModeCorrect   Mode = "correct"
)

// State はワークフローの状態
type State string

const (
	StateIdle        State = "idle"
	StateTranslating State = "translating"
	StateCorrecting  State = "correcting"
	StateAnalyzing   State = "analyzing"
	StateReady       State = "ready"
	StateSaved       State = "saved"
	StateFailed      State = "failed"
)

// エラー定義
var (
	ErrSourceRequired      = errors.New("source text is required")
	ErrUnsupportedLanguage = errors.New("unsupported target language")
	ErrInvalidMode         = errors.New("invalid workflow mode")
	ErrInvalidTransition   = errors.New("invalid workflow state transition")
	ErrNoteNotReady        = errors.New("note is not ready")
	ErrAlreadySaved        = errors.New("note already saved")
	ErrSpeechUnavailable   = errors.New("speech synthesis is not configured")
)

// Completer はチャット補完のインターフェース（llm.Clientが満たす）
type Completer interface {
	Chat(ctx context.Context, messages []llm.Message, opts llm.ChatOptions) (string, error)
	Structured(ctx context.Context, messages []llm.Message, name string, schema model.JSONSchema, out any, opts llm.ChatOptions) error
}

// NoteSaver はノート保存のインターフェース（service.NoteServiceが満たす）
type NoteSaver interface {
	AddNote(ctx context.Context, text string) (*service.AddNoteResponse, error)
}

// Speaker は音声合成のインターフェース（speech.Synthesizerが満たす）
type Speaker interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// Deps はワークフローが使う外部依存
// NotesとSpeechはnil可（対応する操作だけが使えなくなる）
type Deps struct {
	LLM    Completer
	Notes  NoteSaver
	Speech Speaker
	Chat   model.ChatConfig
}

// Result はワークフローの現在値のスナップショット
type Result struct {
	Mode     Mode                  `json:"mode"`
	State    State                 `json:"state"`
	Source   string                `json:"source"`
	Language *Language             `json:"language,omitempty"`
	Output   string                `json:"output"`
	Tokens   []model.TokenAnalysis `json:"tokens"`
	Note     string                `json:"note"`
	NoteID   string                `json:"noteId,omitempty"`
}

// Workflow は1回分の翻訳/校正インタラクションの状態を持つ
// 並行利用は想定しない（1リクエスト1インスタンス）
type Workflow struct {
	mode     Mode
	deps     Deps
	state    State
	source   string
	language *Language
	output   string
	analysis *model.GrammarAnalysis
	noteText string
	noteID   string
}

// New はIdle状態のワークフローを作成する
func New(mode Mode, deps Deps) (*Workflow, error) {
	if mode != ModeTranslate && mode != ModeCorrect {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	if deps.LLM == nil {
		return nil, errors.New("workflow requires an LLM client")
	}
	return &Workflow{mode: mode, deps: deps, state: StateIdle}, nil
}

// State は現在の状態を返す
func (w *Workflow) State() State { return w.state }

// Mode はワークフローの種類を返す
func (w *Workflow) Mode() Mode { return w.mode }

// Output は翻訳/校正後のテキストを返す
func (w *Workflow) Output() string { return w.output }

// Analysis は文法解析結果を返す（Ready前はnil）
func (w *Workflow) Analysis() *model.GrammarAnalysis { return w.analysis }

// NoteText は整形済みノート本文を返す
func (w *Workflow) NoteText() string { return w.noteText }

// NoteID は保存済みノートのIDを返す（未保存なら空）
func (w *Workflow) NoteID() string { return w.noteID }

// Result は現在値のスナップショットを返す
func (w *Workflow) Result() Result {
	r := Result{
		Mode:     w.mode,
		State:    w.state,
		Source:   w.source,
		Language: w.language,
		Output:   w.output,
		Tokens:   []model.TokenAnalysis{},
		Note:     w.noteText,
		NoteID:   w.noteID,
	}
	if w.analysis != nil && w.analysis.Tokens != nil {
		r.Tokens = w.analysis.Tokens
	}
	return r
}

func (w *Workflow) transition(to State) {
	slog.Debug("workflow state", "mode", w.mode, "from", w.state, "to", to)
	w.state = to
}

// fail は失敗状態にしてエラーを返す（部分的な結果は保存しない）
func (w *Workflow) fail(step string, err error) error {
	w.transition(StateFailed)
	return fmt.Errorf("%s: %w", step, err)
}

// Run は翻訳（または校正）と文法解析を順に実行し、Ready状態にする
// targetLanguageは翻訳モードでのみ使う
func (w *Workflow) Run(ctx context.Context, source, targetLanguage string) error {
	if w.state != StateIdle {
		return fmt.Errorf("%w: run from %s", ErrInvalidTransition, w.state)
	}
	if strings.TrimSpace(source) == "" {
		return ErrSourceRequired
	}

	var messages []llm.Message
	switch w.mode {
	case ModeTranslate:
		lang, err := ResolveLanguage(targetLanguage)
		if err != nil {
			return err
		}
		w.language = &lang
		messages = translateMessages(w.deps.Chat.SourceLanguage, lang, source)
		w.transition(StateTranslating)
	case ModeCorrect:
		messages = correctMessages(source)
		w.transition(StateCorrecting)
	}
	w.source = source

	output, err := w.deps.LLM.Chat(ctx, messages, llm.ChatOptions{Model: w.deps.Chat.Model})
	if err != nil {
		return w.fail(string(w.mode), err)
	}
	w.output = output

	w.transition(StateAnalyzing)
	temperature := w.deps.Chat.Temperature
	var analysis model.GrammarAnalysis
	err = w.deps.LLM.Structured(ctx, analysisMessages(w.deps.Chat.ExplainLanguage, output),
		"grammar_analysis", model.GrammarAnalysisSchema, &analysis,
		llm.ChatOptions{Model: w.analysisModel(), Temperature: &temperature})
	if err != nil {
		return w.fail("analyze", err)
	}
	w.analysis = &analysis

	w.noteText = FormatNote(output, analysis.Tokens)
	w.transition(StateReady)
	return nil
}

func (w *Workflow) analysisModel() string {
	if w.deps.Chat.AnalysisModel != "" {
		return w.deps.Chat.AnalysisModel
	}
	return w.deps.Chat.Model
}

// EditNote は保存前のノート本文を差し替える
func (w *Workflow) EditNote(text string) error {
	switch w.state {
	case StateReady:
		w.noteText = text
		return nil
	case StateSaved:
		return ErrAlreadySaved
	default:
		return ErrNoteNotReady
	}
}

// Save はノート本文を保存してSaved状態にする（利用者の明示的な操作で呼ぶ）
// 本文が空なら何もせず空のIDを返す
func (w *Workflow) Save(ctx context.Context) (string, error) {
	switch w.state {
	case StateReady:
	case StateSaved:
		return "", ErrAlreadySaved
	default:
		return "", ErrNoteNotReady
	}

	if w.noteText == "" {
		slog.Debug("empty note, skipping save")
		return "", nil
	}
	if w.deps.Notes == nil {
		return "", errors.New("workflow has no note store")
	}

	resp, err := w.deps.Notes.AddNote(ctx, w.noteText)
	if err != nil {
		// 保存の失敗はReadyのまま（自動リトライはしない）
		return "", fmt.Errorf("save: %w", err)
	}

	w.noteID = resp.ID
	w.transition(StateSaved)
	return resp.ID, nil
}

// Speak はノート本文を音声（mp3）に変換する
// voiceが空なら既定の音声を使う
func (w *Workflow) Speak(ctx context.Context, voice string) ([]byte, error) {
	if w.state != StateReady && w.state != StateSaved {
		return nil, ErrNoteNotReady
	}
	if w.deps.Speech == nil {
		return nil, ErrSpeechUnavailable
	}

	audio, err := w.deps.Speech.Synthesize(ctx, w.noteText, voice)
	if err != nil {
		return nil, fmt.Errorf("speak: %w", err)
	}
	return audio, nil
}
