// Package http serves JSON-RPC and speech audio over HTTP.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/brbranch/lang_assist/internal/speech"
)

// MaxBodySize はリクエストボディの上限（1MB）
const MaxBodySize = 1024 * 1024

// Handler はJSON-RPCリクエストを処理する
type Handler interface {
	Handle(ctx context.Context, requestBytes []byte) []byte
}

// Speaker は音声合成のインターフェース
type Speaker interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// Config はHTTPサーバー設定
type Config struct {
	Addr        string   // listen address (例: "127.0.0.1:8765")
	CORSOrigins []string // 許可するオリジンリスト、空ならCORS無効
}

// Server はHTTP JSON-RPCサーバー
type Server struct {
	handler Handler
	speaker Speaker
	config  Config
	srv     *http.Server
}

// Option はサーバーオプション
type Option func(*Server)

// WithSpeaker は/speechで使う音声合成を設定（未設定なら/speechは503）
func WithSpeaker(sp Speaker) Option {
	return func(s *Server) {
		s.speaker = sp
	}
}

// New は新しいServerを生成
func New(handler Handler, config Config, opts ...Option) *Server {
	s := &Server{
		handler: handler,
		config:  config,
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/rpc", s.handleRPC)
	mux.HandleFunc("/speech", s.handleSpeech)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.srv = &http.Server{
		Addr:              config.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Run はサーバーを起動し、contextがキャンセルされるまで実行
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.srv.Shutdown(shutdownCtx)
	}()

	slog.Info("http server listening", "addr", s.config.Addr)
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		// Graceful shutdownはエラーではない
		return nil
	}
	return err
}

// handleRPC はJSON-RPCリクエストを処理
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	if !s.acceptPOST(w, r) {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
		return
	}

	respBytes := s.handler.Handle(r.Context(), body)
	if respBytes == nil {
		// 通知にはレスポンスを返さない
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(respBytes)
}

// speechRequest は/speechのリクエストボディ
type speechRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

// handleSpeech はテキストをmp3にして返す
func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	if !s.acceptPOST(w, r) {
		return
	}
	if s.speaker == nil {
		http.Error(w, "speech synthesis is not configured", http.StatusServiceUnavailable)
		return
	}

	var req speechRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize)).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	audio, err := s.speaker.Synthesize(r.Context(), req.Text, req.Voice)
	if err != nil {
		switch {
		case errors.Is(err, speech.ErrEmptyInput), errors.Is(err, speech.ErrUnsupportedVoice):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			slog.Error("speech synthesis failed", "error", err)
			http.Error(w, err.Error(), http.StatusBadGateway)
		}
		return
	}

	w.Header().Set("Content-Type", speech.MimeType)
	w.WriteHeader(http.StatusOK)
	w.Write(audio)
}

// handleHealth は死活監視用
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// acceptPOST はCORS・Preflight・メソッド・Content-Typeを確認する
// falseの場合はレスポンスを書き込み済み
func (s *Server) acceptPOST(w http.ResponseWriter, r *http.Request) bool {
	s.handleCORS(w, r)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return false
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		http.Error(w, "Unsupported Media Type", http.StatusUnsupportedMediaType)
		return false
	}
	return true
}

// handleCORS はCORSヘッダーを設定
func (s *Server) handleCORS(w http.ResponseWriter, r *http.Request) {
	// CORS無効ならスキップ
	if len(s.config.CORSOrigins) == 0 {
		return
	}

	origin := r.Header.Get("Origin")
	if origin == "" || !slices.Contains(s.config.CORSOrigins, origin) {
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Vary", "Origin")
}
