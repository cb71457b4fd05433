package builder

import (
	"github.com/shouni/go-poster-kit/internal/config"
	"github.com/shouni/go-poster-kit/pkg/publisher"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持する
// これを各Build関数に渡すことで、依存関係の注入を簡素化します。
type AppContext struct {
	Config  *config.Config         // Configは、環境変数とフラグから組み立てた設定です（APIキー、モデル名など）。
	Options config.Options         // Optionsは、コマンドラインから渡された実行時の設定です。
	Writer  publisher.OutputWriter // Writerは、生成されたポスターを保存するための出力先です（ローカル or s3://）。
}

// NewAppContext は AppContext の新しいインスタンスを生成する
func NewAppContext(cfg *config.Config, writer publisher.OutputWriter) AppContext {
	if writer == nil {
		writer = publisher.NewRoutingWriter(nil, nil)
	}
	return AppContext{
		Config:  cfg,
		Options: cfg.Options,
		Writer:  writer,
	}
}
