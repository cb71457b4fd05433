package cmd

import (
	"log/slog"

	"github.com/shouni/go-poster-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// serveCmd は、ブラウザのフォームの代わりとなる HTTP フロントエンドを起動するのだ。
var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "HTTP でポスター生成を受け付けるのだ。",
	Long:    `POST /api/posters に multipart フォーム（board1..board4, style, student, instructor, project）を送ると、4枚のポスターを JSON で返すのだ。`,
	PreRunE: requireAPIKey,
	RunE:    serveCommand,
}

func init() {
	serveCmd.Flags().StringVar(&opts.Addr, "addr", "", "待ち受けアドレスなのだ（既定: :8080）。")
}

func serveCommand(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	slog.Info("HTTPフロントエンドを起動するのだ！", "addr", cfg.ListenAddr, "image_model", cfg.ImageModel)
	return pipeline.Serve(cmd.Context(), cfg)
}
