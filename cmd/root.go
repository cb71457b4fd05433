package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shouni/go-poster-kit/internal/config"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

const appName = "poster-kit"

// opts は全サブコマンドで共有するフラグの値なのだ。
var opts config.Options

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "4枚のボードから A0 ポスターシリーズを生成するのだ。",
	Long: `4枚のボード画像と任意のスタイル参照画像、プロジェクト情報を Gemini の画像モデルに送り、
横長の合成画像を4枚の縦長 A0 ポスターに切り分けて保存するのだ。`,
	SilenceUsage:      true,
	PersistentPreRunE: persistentPreRunE,
}

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	// --- 生成結果の出力設定 ---
	rootCmd.PersistentFlags().StringVarP(&opts.OutputDir, "output-dir", "o", "", "ポスターの保存先ディレクトリ（ローカル or s3://...）なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.Prefix, "prefix", "", "保存ファイル名の接頭辞なのだ（既定: A0-Poster）。")

	// --- AIモデル・挙動設定 ---
	rootCmd.PersistentFlags().StringVar(&opts.ImageModel, "image-model", "", "使用する Gemini 画像モデル名なのだ。")
	rootCmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 0, "生成リクエスト1回あたりのタイムアウトなのだ（既定: 5m）。")

	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "デバッグログを出力するのだ。")
}

// addProjectFlags は、プロジェクト情報のフラグを cmd に定義するのだ。
func addProjectFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&opts.Student, "student", "", "学生名なのだ。")
	cmd.Flags().StringVar(&opts.Instructor, "instructor", "", "指導教員名なのだ。")
	cmd.Flags().StringVar(&opts.Project, "project", "", "プロジェクト名なのだ。")
}

// persistentPreRunE は、.env の読み込みとロガーの設定を行うのだ。
func persistentPreRunE(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf(".env の読み込みに失敗したのだ: %w", err)
	}
	slog.SetDefault(newLogger(opts.Verbose))
	return nil
}

// requireAPIKey は、Gemini API を使うコマンドの実行前に API キーを確認するのだ。
func requireAPIKey(cmd *cobra.Command, args []string) error {
	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("エラー: 環境変数 GEMINI_API_KEY が設定されていません。Gemini APIの利用には必須なのだ")
	}
	return nil
}

// loadConfig は環境変数を読み込み、フラグで上書きした設定を返すのだ。
func loadConfig() *config.Config {
	cfg := config.LoadConfig()
	cfg.ApplyOptions(opts)
	return cfg
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	}))
}

func init() {
	addAppFlags(rootCmd)
	rootCmd.AddCommand(generateCmd, sliceCmd, serveCmd)
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("コマンドの実行に失敗したのだ", "error", err)
		stop()
		os.Exit(1)
	}
}
