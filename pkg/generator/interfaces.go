package generator

import (
	"context"

	"github.com/shouni/go-poster-kit/pkg/domain"

	"google.golang.org/genai"
)

// ImageGenerator は画像生成サービスへの呼び出しを抽象化します。
// 応答に画像が含まれない場合は (nil, nil) を返します。
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error)
}

// CompositeGenerator は、4枚のボードからポスターシリーズの合成画像を生成します。
type CompositeGenerator interface {
	Generate(ctx context.Context, req domain.PosterRequest) (*domain.CompositeResult, error)
}

// ContentGenerator は genai の Models が満たす最小限の契約です。
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}
