// Package stdio serves line-delimited JSON-RPC over stdin/stdout.
package stdio

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// MaxBufferSize は1行（1リクエスト）の最大サイズ（1MB）
const MaxBufferSize = 1024 * 1024

// ErrLineTooLong は1行がMaxBufferSizeを超えた場合のエラー
var ErrLineTooLong = errors.New("request line exceeds 1MB")

// Handler はJSON-RPCリクエストを処理するインターフェース
// 通知の場合はnilを返す
type Handler interface {
	Handle(ctx context.Context, requestBytes []byte) []byte
}

// Server はstdio JSON-RPCサーバー
type Server struct {
	handler Handler
	reader  io.Reader
	writer  io.Writer
}

// Option はサーバーオプション
type Option func(*Server)

// WithReader はreaderを設定（テスト用）
func WithReader(r io.Reader) Option {
	return func(s *Server) {
		s.reader = r
	}
}

// WithWriter はwriterを設定（テスト用）
func WithWriter(w io.Writer) Option {
	return func(s *Server) {
		s.writer = w
	}
}

// New は新しいServerを生成
func New(handler Handler, opts ...Option) *Server {
	s := &Server{
		handler: handler,
		reader:  os.Stdin,
		writer:  os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run は入力がEOFになるか、contextがキャンセルされるまでリクエストを処理する
// リクエストは1件ずつ同期的に処理する
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.reader)
	scanner.Buffer(make([]byte, 64*1024), MaxBufferSize)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !scanner.Scan() {
			err := scanner.Err()
			if errors.Is(err, bufio.ErrTooLong) {
				return fmt.Errorf("%w: %v", ErrLineTooLong, err)
			}
			// nilならEOFで正常終了
			return err
		}

		line := scanner.Bytes()
		if strings.TrimSpace(string(line)) == "" {
			continue
		}

		response := s.handler.Handle(ctx, line)
		if response == nil {
			slog.Debug("notification handled, no response written")
			continue
		}

		if _, err := s.writer.Write(append(response, '\n')); err != nil {
			return err
		}
	}
}
