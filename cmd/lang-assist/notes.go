package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brbranch/lang_assist/internal/model"
	"github.com/brbranch/lang_assist/internal/speech"
)

// 出力フォーマット
const (
	formatText = "text"
	formatJSON = "json"
)

func newSaveCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "save <text>",
		Short: "Save a note to the note store",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			services, cleanup, err := initServices(ctx, root.configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			resp, err := services.NoteService.AddNote(ctx, text)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.ID)
			return nil
		},
	}
}

func newSearchCmd(root *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search notes by meaning, or list notes when no query is given",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatText && format != formatJSON {
				return fmt.Errorf("invalid format: %s (must be text or json)", format)
			}

			var query *string
			if q := strings.TrimSpace(strings.Join(args, " ")); q != "" {
				query = &q
			}

			ctx := cmd.Context()
			services, cleanup, err := initServices(ctx, root.configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			resp, err := services.NoteService.ListNotes(ctx, query)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			if format == formatJSON {
				return formatJSONOutput(cmd.OutOrStdout(), resp.Results)
			}
			formatTextOutput(cmd.OutOrStdout(), resp.Results)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format: text, json")
	return cmd
}

// jsonOutput はsearch --format jsonの出力
type jsonOutput struct {
	Results []model.NoteResult `json:"results"`
}

// formatTextOutput は結果を人が読む形式で出力する（ノートのマークアップは除去）
func formatTextOutput(w io.Writer, results []model.NoteResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No notes found.")
		return
	}

	for i, r := range results {
		if r.Score != nil {
			fmt.Fprintf(w, "[%d] (score: %.2f)\n", i+1, *r.Score)
		} else {
			fmt.Fprintf(w, "[%d]\n", i+1)
		}
		fmt.Fprintf(w, "    %s\n\n", truncateText(speech.StripMarkup(r.Text), 80))
	}
}

func formatJSONOutput(w io.Writer, results []model.NoteResult) error {
	out := jsonOutput{Results: results}
	if out.Results == nil {
		out.Results = []model.NoteResult{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// truncateText は文字数がmaxLenを超える場合に切り詰める（マルチバイト対応）
func truncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + " ..."
}
