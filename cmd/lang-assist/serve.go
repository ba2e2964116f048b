package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/brbranch/lang_assist/internal/jsonrpc"
	"github.com/brbranch/lang_assist/internal/model"
	"github.com/brbranch/lang_assist/internal/transport/http"
	"github.com/brbranch/lang_assist/internal/transport/stdio"
)

// serveOptions はserveコマンドのフラグ
type serveOptions struct {
	transport   string
	host        string
	port        int
	corsOrigins []string
}

// validate はフラグの組み合わせを検証する
func (o *serveOptions) validate() error {
	if o.transport != model.TransportStdio && o.transport != model.TransportHTTP {
		return fmt.Errorf("invalid transport: %s (must be stdio or http)", o.transport)
	}
	if o.port < 1 || o.port > 65535 {
		return fmt.Errorf("invalid port: %d (must be 1-65535)", o.port)
	}
	return nil
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the JSON-RPC / MCP server (stdio or HTTP)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			services, cleanup, err := initServices(ctx, root.configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			// フラグ未指定なら設定ファイルのデフォルトtransportを使う
			if !cmd.Flags().Changed("transport") && services.Config.TransportDefaults.DefaultTransport != "" {
				opts.transport = services.Config.TransportDefaults.DefaultTransport
				if err := opts.validate(); err != nil {
					return err
				}
			}

			if n, err := services.NoteService.Count(ctx); err == nil {
				slog.Info("note store ready", "store", services.Config.Store.Type,
					"collection", services.Config.Store.Collection, "notes", n)
			}

			handler := jsonrpc.New(services.NoteService, services.ConfigService, services.NewWorkflow, services.Speech)

			switch opts.transport {
			case model.TransportHTTP:
				server := http.New(handler, http.Config{
					Addr:        fmt.Sprintf("%s:%d", opts.host, opts.port),
					CORSOrigins: opts.corsOrigins,
				}, http.WithSpeaker(services.Speech))
				return server.Run(ctx)
			default:
				return stdio.New(handler, stdio.WithReader(cmd.InOrStdin()), stdio.WithWriter(cmd.OutOrStdout())).Run(ctx)
			}
		},
	}

	cmd.Flags().StringVarP(&opts.transport, "transport", "t", defaultTransport, "Transport type: stdio, http")
	cmd.Flags().StringVar(&opts.host, "host", "127.0.0.1", "HTTP host")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 8765, "HTTP port")
	cmd.Flags().StringSliceVar(&opts.corsOrigins, "cors-origin", nil, "Allowed CORS origin (repeatable)")
	return cmd
}
