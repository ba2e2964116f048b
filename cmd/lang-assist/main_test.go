package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brbranch/lang_assist/internal/model"
)

// fakeOpenAI はchat/completionsとaudio/speechを返すテスト用サーバー
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
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
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
		w.Write([]byte("ID3-fake-mp3"))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// writeTestConfig はローカルembedder + SQLiteの設定を書き出す
func writeTestConfig(t *testing.T, baseURL string) string {
	t.Helper()
	dir := t.TempDir()
	cfg := map[string]any{
		"openai":   map[string]any{"baseUrl": baseURL},
		"embedder": map[string]any{"provider": "local", "dim": 3072},
		"store": map[string]any{
			"type":       "sqlite",
			"collection": "test_notes",
			"path":       filepath.Join(dir, "notes.db"),
		},
	}
	b, err := json.Marshal(cfg)
	require.NoError(t, err)
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, b, 0644))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("lang-assist version %s\n", version), out)
}

func TestServeOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    serveOptions
		wantErr bool
	}{
		{"stdio", serveOptions{transport: "stdio", port: 8765}, false},
		{"http", serveOptions{transport: "http", port: 8080}, false},
		{"bad transport", serveOptions{transport: "grpc", port: 8765}, true},
		{"port zero", serveOptions{transport: "http", port: 0}, true},
		{"port too large", serveOptions{transport: "http", port: 70000}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestServe_InvalidTransport(t *testing.T) {
	_, err := execute(t, "", "serve", "-t", "grpc")
	assert.ErrorContains(t, err, "invalid transport")
}

func TestServe_Stdio(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	configPath := writeTestConfig(t, fakeOpenAI(t).URL)

	stdin := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05"}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"notes.add","params":{"text":"Hello — greeting."}}`,
		`{"jsonrpc":"2.0","id":3,"method":"notes.count"}`,
	}, "\n") + "\n"

	out, err := execute(t, stdin, "--config", configPath, "serve")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	var count map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &count))
	assert.EqualValues(t, 1, count["result"].(map[string]any)["count"])
}

func TestTranslate_SaveAndSearch(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	configPath := writeTestConfig(t, fakeOpenAI(t).URL)

	out, err := execute(t, "", "--config", configPath, "translate", "-l", "angielski", "--save", "Dzień", "dobry")
	require.NoError(t, err)
	assert.Contains(t, out, "Good morning")
	assert.Contains(t, out, "Good (przymiotnik) — dobry")
	assert.Contains(t, out, "saved: ")

	out, err = execute(t, "", "--config", configPath, "search", "-f", "json", "good", "morning")
	require.NoError(t, err)

	var result jsonOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Results, 1)
	assert.Contains(t, result.Results[0].Text, "<strong>Good morning</strong>")
	assert.NotNil(t, result.Results[0].Score)
}

func TestTranslate_RequiresLanguage(t *testing.T) {
	_, err := execute(t, "", "translate", "Dzień dobry")
	assert.Error(t, err)
}

func TestTranslate_UnsupportedLanguage(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	configPath := writeTestConfig(t, fakeOpenAI(t).URL)

	_, err := execute(t, "", "--config", configPath, "translate", "-l", "Klingon", "Dzień dobry")
	assert.ErrorContains(t, err, "unsupported target language")
}

func TestCorrect_JSONAndSpeak(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	configPath := writeTestConfig(t, fakeOpenAI(t).URL)
	audioPath := filepath.Join(t.TempDir(), "note.mp3")

	out, err := execute(t, "Good mornin", "--config", configPath, "correct", "-f", "json", "--speak", audioPath)
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "correct", result["mode"])
	assert.Equal(t, "ready", result["state"])
	assert.Equal(t, "Good mornin", result["source"])

	audio, err := os.ReadFile(audioPath)
	require.NoError(t, err)
	assert.Equal(t, "ID3-fake-mp3", string(audio))

	// --saveなしでは保存されない
	out, err = execute(t, "", "--config", configPath, "search")
	require.NoError(t, err)
	assert.Equal(t, "No notes found.\n", out)
}

func TestSaveAndList(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	configPath := writeTestConfig(t, fakeOpenAI(t).URL)

	out, err := execute(t, "", "--config", configPath, "save", "<p>Hello — greeting.</p>")
	require.NoError(t, err)
	assert.Len(t, strings.TrimSpace(out), 36, "expected a UUID")

	out, err = execute(t, "", "--config", configPath, "search")
	require.NoError(t, err)
	assert.Equal(t, "[1]\n    Hello — greeting.\n\n", out)
}

func TestSave_EmptyStdin(t *testing.T) {
	_, err := execute(t, "   ", "save")
	assert.ErrorContains(t, err, "text is required")
}

func TestSpeak(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	configPath := writeTestConfig(t, fakeOpenAI(t).URL)
	audioPath := filepath.Join(t.TempDir(), "hello.mp3")

	out, err := execute(t, "", "--config", configPath, "speak", "-o", audioPath, "--voice", "nova", "Cześć")
	require.NoError(t, err)
	assert.Equal(t, audioPath+"\n", out)

	audio, err := os.ReadFile(audioPath)
	require.NoError(t, err)
	assert.Equal(t, "ID3-fake-mp3", string(audio))
}

func TestSpeak_UnsupportedVoice(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	configPath := writeTestConfig(t, fakeOpenAI(t).URL)

	_, err := execute(t, "", "--config", configPath, "speak", "-o", filepath.Join(t.TempDir(), "x.mp3"), "--voice", "robot", "hi")
	assert.ErrorContains(t, err, "unsupported voice")
}

func TestMissingAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	configPath := writeTestConfig(t, "http://127.0.0.1:1")

	_, err := execute(t, "", "--config", configPath, "search")
	assert.ErrorContains(t, err, "api key is required")
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", truncateText("short", 10))
	assert.Equal(t, "żółw ...", truncateText("żółwie", 4))
}

func TestFormatTextOutput_Scores(t *testing.T) {
	score := 0.8765
	var buf bytes.Buffer
	formatTextOutput(&buf, []model.NoteResult{{ID: "1", Text: "<b>Cześć</b> — hi", Score: &score}})
	assert.Equal(t, "[1] (score: 0.88)\n    Cześć — hi\n\n", buf.String())
}
