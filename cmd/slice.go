package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-poster-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// sliceCmd は、保存済みの合成画像を生成サービスを使わずに4枚へ切り分けるのだ。
var sliceCmd = &cobra.Command{
	Use:     "slice",
	Short:   "既存の合成画像を4枚のポスターに分割するのだ。",
	Example: "  poster-kit slice --composite composite.png --project \"Green Atrium\" -o output",
	RunE:    sliceCommand,
}

func init() {
	sliceCmd.Flags().StringVarP(&opts.CompositeFile, "composite", "c", "", "分割する合成画像のパスなのだ。")
	addProjectFlags(sliceCmd)
}

func sliceCommand(cmd *cobra.Command, args []string) error {
	if opts.CompositeFile == "" {
		return fmt.Errorf("分割する合成画像（--composite）を指定してほしいのだ")
	}

	cfg := loadConfig()
	slog.Info("合成画像を分割するのだ", "input", opts.CompositeFile, "output", cfg.OutputDir)

	return pipeline.ExecuteSliceOnly(cmd.Context(), cfg)
}
