package config

import (
	"time"
)

// デフォルト値の定義
const (
	DefaultImageModel     = "gemini-2.5-flash-image"
	DefaultRequestTimeout = 5 * time.Minute
	DefaultRateInterval   = 10 * time.Second
	DefaultFilePrefix     = "A0-Poster"
	DefaultSliceCacheTTL  = 15 * time.Minute
)

// DefaultInstitutionLines は各ポスター左上に積み重ねて印字する所属表記です。
var DefaultInstitutionLines = []string{
	"Dar AlUloom University",
	"Faculty of Engineering and Digital Design",
	"Interior Design Department",
}

// Config は Go Poster Kit の各 Runner を動作させるための基本設定です。
type Config struct {
	// --- Google AI (Gemini API) Settings ---
	GeminiAPIKey string
	ImageModel   string

	// --- Generation Settings ---
	InstitutionLines []string
	RateInterval     time.Duration

	// --- Output Settings ---
	FilePrefix    string
	SliceCacheTTL time.Duration

	// --- Timeout ---
	RequestTimeout time.Duration
}

// NewConfig はデフォルト値で初期化された Config に API キーをセットして返します。
func NewConfig(apiKey string) Config {
	cfg := DefaultConfig()
	cfg.GeminiAPIKey = apiKey
	return cfg
}

// DefaultConfig は推奨されるデフォルト設定を返すヘルパー関数です。
func DefaultConfig() Config {
	lines := make([]string, len(DefaultInstitutionLines))
	copy(lines, DefaultInstitutionLines)
	return Config{
		ImageModel:       DefaultImageModel,
		InstitutionLines: lines,
		RateInterval:     DefaultRateInterval,
		FilePrefix:       DefaultFilePrefix,
		SliceCacheTTL:    DefaultSliceCacheTTL,
		RequestTimeout:   DefaultRequestTimeout,
	}
}
