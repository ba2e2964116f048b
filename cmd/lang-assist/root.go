package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/brbranch/lang_assist/internal/bootstrap"
)

// ビルド時変数（-ldflags で変更可能）
var (
	defaultTransport = "stdio"
	version          = "dev"
)

// initServices はサービス初期化関数（テストで差し替え可能）
var initServices = bootstrap.Initialize

// rootOptions は全コマンド共通のフラグ
type rootOptions struct {
	verbose    bool
	configPath string
}

// newRootCmd はコマンドツリーを組み立てる
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "lang-assist",
		Short: "Language-learning assistant with a semantic note store",
		Long: `lang-assist translates or corrects text, breaks the result down
grammatically, saves study notes to a vector index and reads them aloud.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
		},
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file path (json, yaml or toml)")

	root.AddCommand(
		newServeCmd(opts),
		newAssistCmd(opts, modeTranslate),
		newAssistCmd(opts, modeCorrect),
		newSaveCmd(opts),
		newSearchCmd(opts),
		newSpeakCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute はルートコマンドを実行する
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// inputText は引数を連結して本文にする。引数が無ければ標準入力を読む
func inputText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	text := strings.TrimSpace(string(b))
	if text == "" {
		return "", fmt.Errorf("text is required (as arguments or on stdin)")
	}
	return text, nil
}
