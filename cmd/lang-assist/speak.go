package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func newSpeakCmd(root *rootOptions) *cobra.Command {
	var (
		output string
		voice  string
	)

	cmd := &cobra.Command{
		Use:   "speak <text>",
		Short: "Read text aloud into an mp3 file (markup is stripped first)",
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

			audio, err := services.Speech.Synthesize(ctx, text, voice)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, audio, 0644); err != nil {
				return fmt.Errorf("failed to write audio: %w", err)
			}
			slog.Info("audio written", "path", output, "bytes", len(audio))
			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "speech.mp3", "Output mp3 file")
	cmd.Flags().StringVar(&voice, "voice", "", "Voice (default from config)")
	return cmd
}
