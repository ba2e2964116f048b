package jsonrpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/brbranch/lang_assist/internal/model"
)

// ServerVersion はサーバーのバージョン（ビルド時に設定可能）
var ServerVersion = "0.1.0"

// ServerName はinitializeで返すサーバー名
const ServerName = "lang-assist"

// ProtocolVersion は対応するMCPプロトコルバージョン
const ProtocolVersion = "2024-11-05"

// toolNameToMethod はMCPツール名から内部メソッド名への対応
var toolNameToMethod = map[string]string{
	"add_note":          MethodNotesAdd,
	"list_notes":        MethodNotesList,
	"translate":         MethodTranslate,
	"correct":           MethodCorrect,
	"synthesize_speech": MethodSpeechSynthesize,
}

// mcpTools はtools/listで返すツール定義
var mcpTools = []model.Tool{
	{
		Name:        "add_note",
		Description: "Save a note to the semantic note store",
		InputSchema: model.JSONSchema{
			Type: "object",
			Properties: map[string]model.JSONSchema{
				"text": {Type: "string", Description: "Note body (may contain HTML markup)"},
			},
			Required: []string{"text"},
		},
	},
	{
		Name:        "list_notes",
		Description: "List saved notes, or search them by semantic similarity when a query is given (max 10)",
		InputSchema: model.JSONSchema{
			Type: "object",
			Properties: map[string]model.JSONSchema{
				"query": {Type: "string", Description: "Free-text search query; omit to list notes"},
			},
		},
	},
	{
		Name:        "translate",
		Description: "Translate text, break the result down grammatically and build a study note",
		InputSchema: model.JSONSchema{
			Type: "object",
			Properties: map[string]model.JSONSchema{
				"text":           {Type: "string", Description: "Text to translate"},
				"targetLanguage": {Type: "string", Description: "Target language name or code (e.g. English, niemiecki, de)"},
				"save":           {Type: "boolean", Description: "Save the resulting note", Default: false},
			},
			Required: []string{"text", "targetLanguage"},
		},
	},
	{
		Name:        "correct",
		Description: "Correct grammar and spelling, break the result down grammatically and build a study note",
		InputSchema: model.JSONSchema{
			Type: "object",
			Properties: map[string]model.JSONSchema{
				"text": {Type: "string", Description: "Text to correct"},
				"save": {Type: "boolean", Description: "Save the resulting note", Default: false},
			},
			Required: []string{"text"},
		},
	},
	{
		Name:        "synthesize_speech",
		Description: "Read text aloud; markup is stripped before synthesis. Returns mp3 audio",
		InputSchema: model.JSONSchema{
			Type: "object",
			Properties: map[string]model.JSONSchema{
				"text":  {Type: "string", Description: "Text or note body to read"},
				"voice": {Type: "string", Description: "Voice name; omit for the configured default"},
			},
			Required: []string{"text"},
		},
	},
}

// handleInitialize は initialize メソッドを処理
func (h *Handler) handleInitialize(ctx context.Context, params any) (any, error) {
	// パラメータをパース（検証は最小限）
	var p model.InitializeParams
	if err := mapParams(params, &p); err != nil {
		return nil, err
	}

	return &model.InitializeResult{
		ProtocolVersion: ProtocolVersion,
		ServerInfo: model.ServerInfo{
			Name:    ServerName,
			Version: ServerVersion,
		},
		Capabilities: model.Capabilities{
			Tools: &model.ToolsCapability{},
		},
	}, nil
}

// handleToolsList は tools/list メソッドを処理
func (h *Handler) handleToolsList(ctx context.Context, params any) (any, error) {
	return &model.ToolsListResult{
		Tools: mcpTools,
	}, nil
}

// handleToolsCall は tools/call メソッドを処理
// ツールのエラーはJSON-RPCエラーではなくisErrorで返す
func (h *Handler) handleToolsCall(ctx context.Context, id any, params any) (any, error) {
	var p model.ToolsCallParams
	if err := mapParams(params, &p); err != nil {
		return nil, err
	}

	if p.Name == "" {
		return toolError("Error: tool name is required"), nil
	}

	internalMethod, ok := toolNameToMethod[p.Name]
	if !ok {
		return toolError(fmt.Sprintf("Tool not found: %s", p.Name)), nil
	}

	result, err := h.dispatchInternal(ctx, internalMethod, p.Arguments)
	if err != nil {
		return toolError(fmt.Sprintf("Error: %s", err.Error())), nil
	}

	// 音声はaudioコンテンツとして返す
	if internalMethod == MethodSpeechSynthesize {
		if m, ok := result.(map[string]any); ok {
			data, _ := m["audio"].(string)
			mime, _ := m["mimeType"].(string)
			return &model.ToolsCallResult{
				Content: []model.ContentItem{model.NewAudioContent(data, mime)},
			}, nil
		}
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return toolError(fmt.Sprintf("Error serializing result: %s", err.Error())), nil
	}

	return &model.ToolsCallResult{
		Content: []model.ContentItem{
			model.NewTextContent(string(resultJSON)),
		},
	}, nil
}

func toolError(msg string) *model.ToolsCallResult {
	return &model.ToolsCallResult{
		Content: []model.ContentItem{model.NewTextContent(msg)},
		IsError: true,
	}
}
