package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

// GeminiImageGenerator は Gemini の画像出力モデルを使う ImageGenerator の実装です。
type GeminiImageGenerator struct {
	models ContentGenerator
}

// NewGeminiClient は API キーから genai クライアントを初期化します。
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY が設定されていません")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai クライアントの初期化に失敗しました: %w", err)
	}
	return client, nil
}

// NewGeminiImageGenerator は ContentGenerator（通常は client.Models）を受け取って初期化します。
func NewGeminiImageGenerator(models ContentGenerator) (*GeminiImageGenerator, error) {
	if models == nil {
		return nil, fmt.Errorf("ContentGenerator は必須です")
	}
	return &GeminiImageGenerator{models: models}, nil
}

// GenerateImage はテキスト、画像の順で1つのユーザーコンテンツを組み立て、画像のみの応答を要求します。
func (g *GeminiImageGenerator) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error) {
	parts := make([]*genai.Part, 0, len(req.Images)+1)
	parts = append(parts, genai.NewPartFromText(req.Prompt))
	for _, img := range req.Images {
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MimeType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityImage)},
	}

	resp, err := g.models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return nil, err
	}
	return extractImage(resp), nil
}

// extractImage は最初の候補から最初のインライン画像を取り出します。見つからなければ nil です。
func extractImage(resp *genai.GenerateContentResponse) *ImageResponse {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		slog.Warn("生成結果にコンテンツが含まれていません", "finish_reason", finishReason(cand))
		return nil
	}

	for _, part := range cand.Content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		mimeType := part.InlineData.MIMEType
		if mimeType == "" {
			mimeType = DefaultMimeType
		}
		if !strings.HasPrefix(mimeType, "image/") {
			continue
		}
		return &ImageResponse{Data: part.InlineData.Data, MimeType: mimeType}
	}

	slog.Warn("生成結果に画像パートが含まれていません", "finish_reason", finishReason(cand))
	return nil
}

func finishReason(cand *genai.Candidate) string {
	if cand == nil {
		return ""
	}
	return string(cand.FinishReason)
}
