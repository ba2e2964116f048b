package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/brbranch/lang_assist/internal/workflow"
)

const (
	modeTranslate = workflow.ModeTranslate
	modeCorrect   = workflow.ModeCorrect
)

// assistOptions はtranslate/correctコマンドのフラグ
type assistOptions struct {
	language  string
	save      bool
	speakPath string
	voice     string
	format    string
}

func newAssistCmd(root *rootOptions, mode workflow.Mode) *cobra.Command {
	opts := &assistOptions{}

	cmd := &cobra.Command{
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != formatText && opts.format != formatJSON {
				return fmt.Errorf("invalid format: %s (must be text or json)", opts.format)
			}
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			return runAssist(cmd, root, mode, opts, text)
		},
	}

	switch mode {
	case modeTranslate:
		cmd.Use = "translate -l <language> <text>"
		cmd.Short = "Translate text and explain the grammar of the translation"
		cmd.Flags().StringVarP(&opts.language, "language", "l", "", "Target language (name, Polish name or code)")
		cmd.MarkFlagRequired("language")
	case modeCorrect:
		cmd.Use = "correct <text>"
		cmd.Short = "Correct grammar and spelling and explain the corrected text"
	}

	cmd.Flags().BoolVar(&opts.save, "save", false, "Save the note to the note store")
	cmd.Flags().StringVar(&opts.speakPath, "speak", "", "Write the spoken note (mp3) to this file")
	cmd.Flags().StringVar(&opts.voice, "voice", "", "Voice for --speak (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatText, "Output format: text, json")
	return cmd
}

// runAssist はワークフローを1回実行し、指定があれば保存・音声化する
func runAssist(cmd *cobra.Command, root *rootOptions, mode workflow.Mode, opts *assistOptions, text string) error {
	ctx := cmd.Context()
	services, cleanup, err := initServices(ctx, root.configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	w, err := services.NewWorkflow(mode)
	if err != nil {
		return err
	}
	if err := w.Run(ctx, text, opts.language); err != nil {
		return err
	}

	if opts.save {
		id, err := w.Save(ctx)
		if err != nil {
			return err
		}
		if id == "" {
			slog.Warn("note was empty, nothing saved")
		}
	}

	if opts.speakPath != "" {
		audio, err := w.Speak(ctx, opts.voice)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.speakPath, audio, 0644); err != nil {
			return fmt.Errorf("failed to write audio: %w", err)
		}
		slog.Info("audio written", "path", opts.speakPath, "bytes", len(audio))
	}

	if opts.format == formatJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(w.Result())
	}
	printResult(cmd.OutOrStdout(), w.Result())
	return nil
}

// printResult はワークフロー結果を人が読む形式で出力する
func printResult(out io.Writer, r workflow.Result) {
	fmt.Fprintln(out, r.Output)
	if len(r.Tokens) > 0 {
		fmt.Fprintln(out)
	}
	for _, t := range r.Tokens {
		fmt.Fprintf(out, "  %s (%s) — %s\n", t.Token, t.PartOfSpeech, t.Explanation)
	}
	if r.NoteID != "" {
		fmt.Fprintf(out, "\nsaved: %s\n", r.NoteID)
	}
}
