package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-poster-kit/pkg/domain"
	"github.com/shouni/go-poster-kit/pkg/prompts"

	"golang.org/x/time/rate"
)

// PosterGenerator は4枚のボードと任意の参照画像から指示文と画像ペイロードを組み立て、
// 生成サービスを1回だけ呼び出して合成画像を得ます。再試行は行いません。
type PosterGenerator struct {
	imageGenerator ImageGenerator
	promptBuilder  prompts.PosterPrompt
	model          string
	rateLimiter    *rate.Limiter
}

// NewPosterGenerator は PosterGenerator の新しいインスタンスを初期化します。
// limiter が nil の場合は呼び出し間隔を制御しません。
func NewPosterGenerator(
	imgGen ImageGenerator,
	pb prompts.PosterPrompt,
	model string,
	limiter *rate.Limiter,
) *PosterGenerator {
	return &PosterGenerator{
		imageGenerator: imgGen,
		promptBuilder:  pb,
		model:          model,
		rateLimiter:    limiter,
	}
}

// BuildRequest はリクエストを検証し、生成サービスへ送る内容を組み立てます。
// ボードは指定順、参照画像は存在する場合のみ最後に配置されます。
func (g *PosterGenerator) BuildRequest(req domain.PosterRequest) (ImageRequest, error) {
	if err := req.Validate(); err != nil {
		return ImageRequest{}, err
	}

	meta := req.Metadata.Trimmed()
	prompt, err := g.promptBuilder.Build(meta, req.StyleReference != nil)
	if err != nil {
		return ImageRequest{}, fmt.Errorf("プロンプトの構築に失敗しました: %w", err)
	}

	images := make([]ImagePart, 0, len(req.Boards)+1)
	for _, b := range req.Boards {
		images = append(images, ImagePart{Data: b.Data, MimeType: b.MimeType})
	}
	if req.StyleReference != nil {
		images = append(images, ImagePart{Data: req.StyleReference.Data, MimeType: req.StyleReference.MimeType})
	}

	return ImageRequest{
		Model:  g.model,
		Prompt: prompt,
		Images: images,
	}, nil
}

// Generate は合成画像を生成します。
// 検証エラーの場合はサービスを呼び出さず *domain.ValidationError を返します。
func (g *PosterGenerator) Generate(ctx context.Context, req domain.PosterRequest) (*domain.CompositeResult, error) {
	imgReq, err := g.BuildRequest(req)
	if err != nil {
		return nil, err
	}

	if g.rateLimiter != nil {
		if err := g.rateLimiter.Wait(ctx); err != nil {
			return nil, &domain.ServiceError{Model: g.model, Err: fmt.Errorf("リミッター待機中にエラーが発生しました: %w", err)}
		}
	}

	logger := slog.With("model", g.model, "project", req.Metadata.ProjectName, "image_count", len(imgReq.Images))
	logger.InfoContext(ctx, "ポスターシリーズの生成リクエストを送信します", "style_reference", req.StyleReference != nil)

	startTime := time.Now()
	resp, err := g.imageGenerator.GenerateImage(ctx, imgReq)
	if err != nil {
		logger.ErrorContext(ctx, "ポスターシリーズの生成に失敗しました", "error", err)
		return nil, &domain.ServiceError{Model: g.model, Err: err}
	}
	if resp == nil || len(resp.Data) == 0 {
		return nil, domain.ErrNoResult
	}

	logger.InfoContext(ctx, "合成画像を受信しました",
		"mime_type", resp.MimeType,
		"bytes", len(resp.Data),
		"duration", time.Since(startTime).Round(time.Millisecond))

	mimeType := resp.MimeType
	if mimeType == "" {
		mimeType = DefaultMimeType
	}
	return &domain.CompositeResult{Data: resp.Data, MimeType: mimeType}, nil
}
