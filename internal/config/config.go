package config

import (
	"log/slog"
	"strings"
	"time"

	pkgconfig "github.com/shouni/go-poster-kit/pkg/config"

	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義なのだ
const (
	DefaultOutputDir  = "output"
	DefaultListenAddr = ":8080"
	// institutionSeparator は INSTITUTION_LINES で行を区切る文字なのだ
	institutionSeparator = "|"
)

// Config はアプリケーション全体の環境設定（APIキーや出力先）を保持する構造体なのだ。
type Config struct {
	GeminiAPIKey     string
	ImageModel       string
	FilePrefix       string
	InstitutionLines []string
	RequestTimeout   time.Duration
	RateInterval     time.Duration
	SliceCacheTTL    time.Duration
	OutputDir        string
	ListenAddr       string

	Options Options
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	return &Config{
		GeminiAPIKey:     envutil.GetEnv("GEMINI_API_KEY", ""),
		ImageModel:       envutil.GetEnv("IMAGE_GEMINI_MODEL", pkgconfig.DefaultImageModel),
		FilePrefix:       envutil.GetEnv("POSTER_FILE_PREFIX", pkgconfig.DefaultFilePrefix),
		InstitutionLines: parseLines(envutil.GetEnv("INSTITUTION_LINES", strings.Join(pkgconfig.DefaultInstitutionLines, institutionSeparator))),
		RequestTimeout:   parseDuration("POSTER_REQUEST_TIMEOUT", pkgconfig.DefaultRequestTimeout),
		RateInterval:     parseDuration("POSTER_RATE_INTERVAL", pkgconfig.DefaultRateInterval),
		SliceCacheTTL:    parseDuration("POSTER_SLICE_CACHE_TTL", pkgconfig.DefaultSliceCacheTTL),
		OutputDir:        envutil.GetEnv("POSTER_OUTPUT_DIR", DefaultOutputDir),
		ListenAddr:       envutil.GetEnv("POSTER_LISTEN_ADDR", DefaultListenAddr),
	}
}

// ApplyOptions は CLI フラグで明示された値を環境変数より優先して反映するのだ。
func (c *Config) ApplyOptions(opts Options) {
	c.Options = opts
	if opts.ImageModel != "" {
		c.ImageModel = opts.ImageModel
	}
	if opts.Prefix != "" {
		c.FilePrefix = opts.Prefix
	}
	if opts.Timeout > 0 {
		c.RequestTimeout = opts.Timeout
	}
	if opts.OutputDir != "" {
		c.OutputDir = opts.OutputDir
	}
	if opts.Addr != "" {
		c.ListenAddr = opts.Addr
	}
}

// PosterConfig はライブラリ側 (pkg/config) の設定に変換するのだ。
func (c *Config) PosterConfig() pkgconfig.Config {
	cfg := pkgconfig.NewConfig(c.GeminiAPIKey)
	cfg.ImageModel = c.ImageModel
	cfg.FilePrefix = c.FilePrefix
	cfg.InstitutionLines = c.InstitutionLines
	cfg.RequestTimeout = c.RequestTimeout
	cfg.RateInterval = c.RateInterval
	cfg.SliceCacheTTL = c.SliceCacheTTL
	return cfg
}

// Options は CLI フラグから渡される実行時のパラメータなのだ。
type Options struct {
	// 入力関連
	Boards        []string // --board (4回、左から右の順)
	Style         string   // --style
	CompositeFile string   // --composite (slice コマンド)

	// プロジェクト情報
	Student    string // --student
	Instructor string // --instructor
	Project    string // --project

	// 出力・AI挙動設定
	OutputDir  string        // --output-dir
	Prefix     string        // --prefix
	ImageModel string        // --image-model
	Timeout    time.Duration // --timeout

	// サーバー
	Addr string // --addr

	Verbose bool // --verbose
}

func parseLines(raw string) []string {
	var lines []string
	for _, l := range strings.Split(raw, institutionSeparator) {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("期間の形式が不正なのでデフォルト値を使うのだ", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return d
}
