package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-poster-kit/internal/pipeline"
	"github.com/shouni/go-poster-kit/pkg/domain"

	"github.com/spf13/cobra"
)

// generateCmd は、4枚のボードからポスターシリーズを生成して保存するのだ。
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "4枚のボードから A0 ポスターシリーズを生成するのだ。",
	Long: `--board を4回指定すると、その順番で左から右のポスターになるのだ。
--style を指定すると背景とカラーパレットをその画像に合わせるのだよ。`,
	Example: `  poster-kit generate --board b1.png --board b2.png --board b3.png --board b4.png \
    --student "Noura" --instructor "Dr. Khan" --project "Green Atrium" -o output`,
	PreRunE: requireAPIKey,
	RunE:    generateCommand,
}

func init() {
	generateCmd.Flags().StringArrayVarP(&opts.Boards, "board", "b", nil, "ボード画像のパスなのだ（4回指定、左から右の順）。")
	generateCmd.Flags().StringVarP(&opts.Style, "style", "s", "", "スタイル参照画像のパスなのだ（任意）。")
	addProjectFlags(generateCmd)
}

func generateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if len(opts.Boards) != domain.BoardCount {
		return fmt.Errorf("--board はちょうど %d 回指定してほしいのだ（%d 回でした）", domain.BoardCount, len(opts.Boards))
	}

	cfg := loadConfig()

	slog.Info("ポスター生成パイプラインを起動するのだ！",
		"image_model", cfg.ImageModel,
		"project", opts.Project,
		"style_reference", opts.Style != "",
		"output", cfg.OutputDir)

	if err := pipeline.Execute(ctx, cfg); err != nil {
		return fmt.Errorf("パイプライン実行中にエラーが発生したのだ: %w", err)
	}

	slog.Info("すべての生成工程が完了したのだ！")
	return nil
}
