//go:build e2e || qdrant_e2e

package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/brbranch/lang_assist/internal/bootstrap"
	"github.com/brbranch/lang_assist/internal/jsonrpc"
	"github.com/brbranch/lang_assist/internal/model"
)

// RawResponse はJSON-RPCレスポンスの汎用形
type RawResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Result  any             `json:"result"`
	Error   *model.RPCError `json:"error"`
}

// fakeOpenAI はchat/completionsとaudio/speechを模したサーバー
// 翻訳結果は常に"Good morning"
func fakeOpenAI(t *testing.T) *httptest.Server {
	t.Helper()
	analysis, _ := json.Marshal(model.GrammarAnalysis{
		Sentence: "Good morning",
		Tokens: []model.TokenAnalysis{
			{Token: "Good", PartOfSpeech: "przymiotnik", Explanation: "dobry"},
			{Token: "morning", PartOfSpeech: "rzeczownik", Explanation: "poranek"},
		},
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		content := "Good morning"
		if req["response_format"] != nil {
			content = string(analysis)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}, "finish_reason": "stop"},
			},
		})
	})
	mux.HandleFunc("/audio/speech", func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3-e2e"))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// setupServices は設定ファイル経由でbootstrapを実行する
// storeには"type"等のstore設定を渡す
func setupServices(t *testing.T, store map[string]any) (*bootstrap.Services, func()) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "sk-e2e")

	dir := t.TempDir()
	cfg := map[string]any{
		"openai":   map[string]any{"baseUrl": fakeOpenAI(t).URL},
		"embedder": map[string]any{"provider": "local", "dim": 3072},
		"store":    store,
		"paths":    map[string]any{"dataDir": filepath.Join(dir, "data")},
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("failed to marshal config: %v", err)
	}
	configPath := filepath.Join(dir, "config.json")
	if err := os.WriteFile(configPath, b, 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	services, cleanup, err := bootstrap.Initialize(context.Background(), configPath)
	if err != nil {
		t.Fatalf("failed to initialize: %v", err)
	}
	return services, cleanup
}

// newHandler はサービス一式からJSON-RPCハンドラーを作る
func newHandler(services *bootstrap.Services) *jsonrpc.Handler {
	return jsonrpc.New(services.NoteService, services.ConfigService, services.NewWorkflow, services.Speech)
}

// setupTestHandler はメモリストアのハンドラーを作る
func setupTestHandler(t *testing.T) *jsonrpc.Handler {
	t.Helper()
	services, cleanup := setupServices(t, map[string]any{"type": "memory", "collection": "e2e"})
	t.Cleanup(cleanup)
	return newHandler(services)
}

var requestID int

// call はJSON-RPCリクエストを送り、resultを返す（エラーならFatal）
func call(t *testing.T, h *jsonrpc.Handler, method string, params any) map[string]any {
	t.Helper()
	resp := callRaw(t, h, method, params)
	if resp.Error != nil {
		t.Fatalf("%s failed: code=%d message=%s", method, resp.Error.Code, resp.Error.Message)
	}
	result, ok := resp.Result.(map[string]any)
	if !ok {
		t.Fatalf("%s: unexpected result type %T", method, resp.Result)
	}
	return result
}

// callRaw はJSON-RPCリクエストを送り、レスポンスをそのまま返す
func callRaw(t *testing.T, h *jsonrpc.Handler, method string, params any) RawResponse {
	t.Helper()
	requestID++
	req := map[string]any{"jsonrpc": "2.0", "id": requestID, "method": method}
	if params != nil {
		req["params"] = params
	}
	b, _ := json.Marshal(req)

	var resp RawResponse
	if err := json.Unmarshal(h.Handle(context.Background(), b), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if fmt.Sprint(resp.ID) != fmt.Sprint(requestID) {
		t.Fatalf("response id mismatch: got %v, want %d", resp.ID, requestID)
	}
	return resp
}

// results はnotes.listのresultsを取り出す
func results(t *testing.T, result map[string]any) []map[string]any {
	t.Helper()
	raw, ok := result["results"].([]any)
	if !ok {
		t.Fatalf("results missing: %v", result)
	}
	out := make([]map[string]any, len(raw))
	for i, r := range raw {
		out[i] = r.(map[string]any)
	}
	return out
}
