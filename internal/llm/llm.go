// Package llm provides chat completions and schema-constrained structured completions.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/brbranch/lang_assist/internal/model"
	"github.com/brbranch/lang_assist/internal/openai"
)

// メッセージロール
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultModel はモデル未指定時に使うチャットモデル
const DefaultModel = "gpt-4o"

// エラー定義
var (
	ErrEmptyCompletion  = errors.New("model returned empty completion")
	ErrRefused          = errors.New("model refused the request")
	ErrTruncated        = errors.New("completion truncated by token limit")
	ErrInvalidStructure = errors.New("structured output does not match schema")
)

// Message はチャットの1メッセージ
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatOptions は呼び出しごとの上書き設定
type ChatOptions struct {
	Model       string   // 空ならClientのモデル
	Temperature *float64 // nilならAPIのデフォルト
}

// Client はchat/completionsエンドポイントのクライアント
type Client struct {
	client *openai.Client
	model  string
}

// NewClient はClientを作成する
func NewClient(client *openai.Client, model string) (*Client, error) {
	if client == nil {
		return nil, openai.ErrAPIKeyRequired
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{client: client, model: model}, nil
}

// Model は既定のモデル名を返す
func (c *Client) Model() string {
	return c.model
}

type responseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *jsonSchema `json:"json_schema,omitempty"`
}

type jsonSchema struct {
	Name   string           `json:"name"`
	Strict bool             `json:"strict"`
	Schema model.JSONSchema `json:"schema"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Chat はチャット補完を実行し、前後の空白を除いた本文を返す
func (c *Client) Chat(ctx context.Context, messages []Message, opts ChatOptions) (string, error) {
	resp, err := c.complete(ctx, chatRequest{
		Model:       c.modelFor(opts),
		Messages:    messages,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return "", err
	}

	content := strings.TrimSpace(resp)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}

// Structured はjson_schema(strict)で補完を実行し、結果をoutにデコードする
func (c *Client) Structured(ctx context.Context, messages []Message, name string, schema model.JSONSchema, out any, opts ChatOptions) error {
	resp, err := c.complete(ctx, chatRequest{
		Model:       c.modelFor(opts),
		Messages:    messages,
		Temperature: opts.Temperature,
		ResponseFormat: &responseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchema{
				Name:   name,
				Strict: true,
				Schema: schema,
			},
		},
	})
	if err != nil {
		return err
	}

	if strings.TrimSpace(resp) == "" {
		return ErrEmptyCompletion
	}
	if err := json.Unmarshal([]byte(resp), out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStructure, err)
	}
	return nil
}

func (c *Client) modelFor(opts ChatOptions) string {
	if opts.Model != "" {
		return opts.Model
	}
	return c.model
}

// complete は最初のchoiceの本文を返す
func (c *Client) complete(ctx context.Context, req chatRequest) (string, error) {
	var resp chatResponse
	if err := c.client.PostJSON(ctx, "/chat/completions", req, &resp); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", openai.ErrInvalidResponse)
	}

	choice := resp.Choices[0]
	if choice.Message.Refusal != "" {
		return "", fmt.Errorf("%w: %s", ErrRefused, choice.Message.Refusal)
	}
	if choice.FinishReason == "length" {
		return "", ErrTruncated
	}
	return choice.Message.Content, nil
}
