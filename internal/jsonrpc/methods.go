package jsonrpc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/brbranch/lang_assist/internal/speech"
	"github.com/brbranch/lang_assist/internal/workflow"
)

// handleAddNote は notes.add を処理
func (h *Handler) handleAddNote(ctx context.Context, params any) (any, error) {
	var p AddNoteParams
	if err := mapParams(params, &p); err != nil {
		return nil, err
	}

	resp, err := h.noteService.AddNote(ctx, p.Text)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"id": resp.ID,
	}, nil
}

// handleListNotes は notes.list を処理
func (h *Handler) handleListNotes(ctx context.Context, params any) (any, error) {
	var p ListNotesParams
	if err := mapParams(params, &p); err != nil {
		return nil, err
	}

	resp, err := h.noteService.ListNotes(ctx, p.normalizedQuery())
	if err != nil {
		return nil, err
	}

	results := make([]map[string]any, len(resp.Results))
	for i, r := range resp.Results {
		results[i] = map[string]any{
			"id":    r.ID,
			"text":  r.Text,
			"score": r.Score,
		}
	}

	return map[string]any{
		"query":   resp.Query,
		"results": results,
	}, nil
}

// handleCount は notes.count を処理
func (h *Handler) handleCount(ctx context.Context) (any, error) {
	n, err := h.noteService.Count(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"count": n}, nil
}

// handleAssist は assistant.translate / assistant.correct を処理
// save=trueの場合のみ、解析後のノートを保存する
func (h *Handler) handleAssist(ctx context.Context, mode workflow.Mode, params any) (any, error) {
	if h.newWorkflow == nil {
		return nil, errUnavailable
	}

	var p AssistParams
	if err := mapParams(params, &p); err != nil {
		return nil, err
	}

	w, err := h.newWorkflow(mode)
	if err != nil {
		return nil, err
	}
	if err := w.Run(ctx, p.Text, p.TargetLanguage); err != nil {
		return nil, err
	}
	if p.Save {
		if _, err := w.Save(ctx); err != nil {
			return nil, err
		}
	}

	return w.Result(), nil
}

// handleSynthesize は speech.synthesize を処理（音声はbase64で返す）
func (h *Handler) handleSynthesize(ctx context.Context, params any) (any, error) {
	if h.speaker == nil {
		return nil, errUnavailable
	}

	var p SynthesizeParams
	if err := mapParams(params, &p); err != nil {
		return nil, err
	}

	audio, err := h.speaker.Synthesize(ctx, p.Text, p.Voice)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"mimeType": speech.MimeType,
		"audio":    base64.StdEncoding.EncodeToString(audio),
	}, nil
}

// handleGetConfig は config.get を処理
func (h *Handler) handleGetConfig(ctx context.Context) (any, error) {
	resp, err := h.configService.GetConfig(ctx)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"transportDefaults": map[string]any{
			"defaultTransport": resp.TransportDefaults.DefaultTransport,
		},
		"embedder": map[string]any{
			"provider": resp.Embedder.Provider,
			"model":    resp.Embedder.Model,
			"dim":      resp.Embedder.Dim,
			"baseUrl":  resp.Embedder.BaseURL,
		},
		"chat": map[string]any{
			"model":           resp.Chat.Model,
			"analysisModel":   resp.Chat.AnalysisModel,
			"sourceLanguage":  resp.Chat.SourceLanguage,
			"explainLanguage": resp.Chat.ExplainLanguage,
			"temperature":     resp.Chat.Temperature,
		},
		"speech": map[string]any{
			"model": resp.Speech.Model,
			"voice": resp.Speech.Voice,
		},
		"store": map[string]any{
			"type":       resp.Store.Type,
			"collection": resp.Store.Collection,
			"path":       resp.Store.Path,
			"url":        resp.Store.URL,
		},
		"paths": map[string]any{
			"configPath": resp.Paths.ConfigPath,
			"dataDir":    resp.Paths.DataDir,
		},
	}, nil
}

// handleSetConfig は config.set を処理
func (h *Handler) handleSetConfig(ctx context.Context, params any) (any, error) {
	var p SetConfigParams
	if err := mapParams(params, &p); err != nil {
		return nil, err
	}

	resp, err := h.configService.SetConfig(ctx, p.ToRequest())
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"ok": resp.OK,
		"speech": map[string]any{
			"model": resp.Speech.Model,
			"voice": resp.Speech.Voice,
		},
	}, nil
}

// mapParams はanyをターゲット構造体にマッピング
func mapParams(params any, target any) error {
	if params == nil {
		return nil
	}

	// anyをJSONに変換してから構造体にアンマーシャル
	b, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("%w: %v", errInvalidParams, err)
	}
	if err := json.Unmarshal(b, target); err != nil {
		return fmt.Errorf("%w: %v", errInvalidParams, err)
	}
	return nil
}
