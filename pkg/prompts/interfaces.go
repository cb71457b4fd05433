package prompts

import "github.com/shouni/go-poster-kit/pkg/domain"

// PosterPrompt は、ポスターシリーズ生成用のプロンプトを構築する契約です。
type PosterPrompt interface {
	// Build は、メタデータと参照画像の有無から生成サービスへ送る指示文を生成します。
	Build(meta domain.ProjectMetadata, hasStyleReference bool) (string, error)
}
