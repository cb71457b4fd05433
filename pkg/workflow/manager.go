package workflow

import (
	"context"
	"fmt"

	"github.com/shouni/go-poster-kit/pkg/config"
	"github.com/shouni/go-poster-kit/pkg/generator"
	"github.com/shouni/go-poster-kit/pkg/prompts"
	"github.com/shouni/go-poster-kit/pkg/publisher"
)

// ManagerArgs は Manager の初期化に必要な依存関係です。
// ImageGenerator と PromptBuilder は省略でき、その場合は Config から生成されます。
type ManagerArgs struct {
	Config         config.Config
	Writer         publisher.OutputWriter
	ImageGenerator generator.ImageGenerator
	PromptBuilder  prompts.PosterPrompt
}

// Manager は、ワークフローの各工程を担う Runner 群を構築・管理します。
type Manager struct {
	cfg            config.Config
	writer         publisher.OutputWriter
	imageGenerator generator.ImageGenerator
	promptBuilder  prompts.PosterPrompt
}

// New は、設定を基に新しい Manager を初期化します。
func New(ctx context.Context, args ManagerArgs) (*Manager, error) {
	if args.Config.ImageModel == "" {
		return nil, fmt.Errorf("ImageModel は必須です")
	}

	writer := args.Writer
	if writer == nil {
		writer = publisher.NewRoutingWriter(nil, nil)
	}

	imgGen, err := initializeImageGenerator(ctx, args.ImageGenerator, args.Config.GeminiAPIKey)
	if err != nil {
		return nil, err
	}

	pb, err := initializePosterPrompt(args.PromptBuilder, args.Config.InstitutionLines)
	if err != nil {
		return nil, err
	}

	return &Manager{
		cfg:            args.Config,
		writer:         writer,
		imageGenerator: imgGen,
		promptBuilder:  pb,
	}, nil
}

// initializeImageGenerator は ImageGenerator を初期化します。
// 引数として既存の実装が渡された場合はそれを返し、nil の場合は genai クライアントから作成します。
func initializeImageGenerator(ctx context.Context, imgGen generator.ImageGenerator, apiKey string) (generator.ImageGenerator, error) {
	if imgGen != nil {
		return imgGen, nil
	}

	client, err := generator.NewGeminiClient(ctx, apiKey)
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return generator.NewGeminiImageGenerator(client.Models)
}

// initializePosterPrompt は PosterPromptBuilder を初期化します。
func initializePosterPrompt(pb prompts.PosterPrompt, institutionLines []string) (prompts.PosterPrompt, error) {
	if pb != nil {
		return pb, nil
	}

	builder, err := prompts.NewPosterPromptBuilder(institutionLines)
	if err != nil {
		return nil, fmt.Errorf("PosterPromptBuilder の新規作成に失敗しました: %w", err)
	}
	return builder, nil
}
