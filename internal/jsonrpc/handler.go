// Package jsonrpc implements JSON-RPC 2.0 handlers for lang-assist.
package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/brbranch/lang_assist/internal/embedder"
	"github.com/brbranch/lang_assist/internal/llm"
	"github.com/brbranch/lang_assist/internal/model"
	"github.com/brbranch/lang_assist/internal/openai"
	"github.com/brbranch/lang_assist/internal/service"
	"github.com/brbranch/lang_assist/internal/speech"
	"github.com/brbranch/lang_assist/internal/store"
	"github.com/brbranch/lang_assist/internal/workflow"
)

// メソッド名
const (
	MethodNotesAdd          = "notes.add"
	MethodNotesList         = "notes.list"
	MethodNotesCount        = "notes.count"
	MethodTranslate         = "assistant.translate"
	MethodCorrect           = "assistant.correct"
	MethodSpeechSynthesize  = "speech.synthesize"
	MethodConfigGet         = "config.get"
	MethodConfigSet         = "config.set"
	MethodInitialize        = "initialize"
	MethodToolsList         = "tools/list"
	MethodToolsCall         = "tools/call"
	MethodNotifyInitialized = "notifications/initialized"
)

// WorkflowFactory はリクエストごとに新しいワークフローを作る
type WorkflowFactory func(mode workflow.Mode) (*workflow.Workflow, error)

// Speaker は音声合成のインターフェース
type Speaker interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// Handler はJSON-RPCリクエストを処理する
type Handler struct {
	noteService   service.NoteService
	configService service.ConfigService
	newWorkflow   WorkflowFactory
	speaker       Speaker
}

// New は新しいHandlerを生成
// newWorkflowとspeakerはnil可（対応するメソッドはエラーを返す）
func New(
	noteService service.NoteService,
	configService service.ConfigService,
	newWorkflow WorkflowFactory,
	speaker Speaker,
) *Handler {
	return &Handler{
		noteService:   noteService,
		configService: configService,
		newWorkflow:   newWorkflow,
		speaker:       speaker,
	}
}

// Handle はJSON-RPCリクエストをパースしてディスパッチ
// 戻り値は *model.Response または *model.ErrorResponse のJSON bytes
// 通知（レスポンス不要）の場合はnilを返す
func (h *Handler) Handle(ctx context.Context, requestBytes []byte) []byte {
	// 1. パース
	var req model.Request
	if err := json.Unmarshal(requestBytes, &req); err != nil {
		return h.encodeError(model.NewParseError(err.Error()))
	}

	// 2. バージョン確認
	if req.JSONRPC != "2.0" {
		return h.encodeError(model.NewInvalidRequest(req.ID, "jsonrpc must be 2.0"))
	}

	// 3. method確認
	if req.Method == "" {
		return h.encodeError(model.NewInvalidRequest(req.ID, "method is required"))
	}

	if req.Method == MethodNotifyInitialized {
		return nil
	}

	// 4. ディスパッチ
	result, err := h.dispatch(ctx, req.ID, req.Method, req.Params)
	if err != nil {
		return h.encodeError(h.mapError(req.ID, err))
	}

	// 5. 成功レスポンス
	return h.encodeResponse(model.NewResponse(req.ID, result))
}

// dispatch はメソッドに応じて適切なハンドラーを呼び出す
func (h *Handler) dispatch(ctx context.Context, id any, method string, params any) (any, error) {
	switch method {
	case MethodInitialize:
		return h.handleInitialize(ctx, params)
	case MethodToolsList:
		return h.handleToolsList(ctx, params)
	case MethodToolsCall:
		return h.handleToolsCall(ctx, id, params)
	default:
		return h.dispatchInternal(ctx, method, params)
	}
}

// dispatchInternal はアプリケーションメソッドを呼び出す（tools/callからも使う）
func (h *Handler) dispatchInternal(ctx context.Context, method string, params any) (any, error) {
	switch method {
	case MethodNotesAdd:
		return h.handleAddNote(ctx, params)
	case MethodNotesList:
		return h.handleListNotes(ctx, params)
	case MethodNotesCount:
		return h.handleCount(ctx)
	case MethodTranslate:
		return h.handleAssist(ctx, workflow.ModeTranslate, params)
	case MethodCorrect:
		return h.handleAssist(ctx, workflow.ModeCorrect, params)
	case MethodSpeechSynthesize:
		return h.handleSynthesize(ctx, params)
	case MethodConfigGet:
		return h.handleGetConfig(ctx)
	case MethodConfigSet:
		return h.handleSetConfig(ctx, params)
	default:
		return nil, &methodNotFoundError{method: method}
	}
}

// mapError はサービスエラーをJSON-RPCエラーに変換
func (h *Handler) mapError(id any, err error) *model.ErrorResponse {
	// method not found
	var mnfErr *methodNotFoundError
	if errors.As(err, &mnfErr) {
		return model.NewMethodNotFound(id, mnfErr.method)
	}

	switch {
	// invalid params
	case errors.Is(err, errInvalidParams),
		errors.Is(err, service.ErrTextRequired),
		errors.Is(err, service.ErrQueryRequired),
		errors.Is(err, workflow.ErrSourceRequired),
		errors.Is(err, speech.ErrEmptyInput),
		errors.Is(err, speech.ErrUnsupportedVoice):
		return model.NewInvalidParams(id, err.Error())

	// API key missing
	case errors.Is(err, openai.ErrAPIKeyRequired):
		return model.NewErrorResponse(id, model.ErrCodeAPIKeyMissing, err.Error(), nil)

	case errors.Is(err, workflow.ErrUnsupportedLanguage):
		return model.NewErrorResponse(id, model.ErrCodeUnsupportedLanguage, err.Error(), workflow.SupportedLanguages())

	case errors.Is(err, store.ErrConnectionFailed),
		errors.Is(err, store.ErrNotInitialized),
		errors.Is(err, store.ErrVectorDimension):
		return model.NewErrorResponse(id, model.ErrCodeStoreError, err.Error(), nil)

	case errors.Is(err, openai.ErrAPIRequestFailed),
		errors.Is(err, openai.ErrInvalidResponse),
		errors.Is(err, llm.ErrEmptyCompletion),
		errors.Is(err, llm.ErrRefused),
		errors.Is(err, llm.ErrTruncated),
		errors.Is(err, llm.ErrInvalidStructure),
		errors.Is(err, embedder.ErrEmptyEmbedding),
		errors.Is(err, embedder.ErrDimensionMismatch),
		errors.Is(err, speech.ErrEmptyAudio):
		return model.NewErrorResponse(id, model.ErrCodeProviderError, err.Error(), nil)

	case errors.Is(err, workflow.ErrAlreadySaved),
		errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, workflow.ErrNoteNotReady):
		return model.NewErrorResponse(id, model.ErrCodeConflict, err.Error(), nil)
	}

	// internal error
	return model.NewInternalError(id, err.Error())
}

func (h *Handler) encodeResponse(resp *model.Response) []byte {
	b, _ := json.Marshal(resp)
	return b
}

func (h *Handler) encodeError(resp *model.ErrorResponse) []byte {
	b, _ := json.Marshal(resp)
	return b
}

// methodNotFoundError はメソッド未検出エラー
type methodNotFoundError struct {
	method string
}

func (e *methodNotFoundError) Error() string {
	return "method not found: " + e.method
}

// errInvalidParams はパラメータの型不正
var errInvalidParams = errors.New("invalid params")

// errUnavailable は依存が組み込まれていないメソッドの呼び出し
var errUnavailable = errors.New("method is not available in this server")
