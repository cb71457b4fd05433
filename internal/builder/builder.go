package builder

import (
	"context"
	"fmt"

	"github.com/shouni/go-poster-kit/pkg/publisher"
	"github.com/shouni/go-poster-kit/pkg/runner"
	"github.com/shouni/go-poster-kit/pkg/server"
	"github.com/shouni/go-poster-kit/pkg/slicer"
	"github.com/shouni/go-poster-kit/pkg/workflow"
)

// BuildPosterRunner は生成から保存までを担当する Runner を構築します。
func BuildPosterRunner(ctx context.Context, appCtx *AppContext) (workflow.PosterRunner, error) {
	manager, err := workflow.New(ctx, workflow.ManagerArgs{
		Config: appCtx.Config.PosterConfig(),
		Writer: appCtx.Writer,
	})
	if err != nil {
		return nil, fmt.Errorf("ワークフローの初期化に失敗しました: %w", err)
	}
	return manager.BuildPosterRunner()
}

// BuildSliceRunner は生成サービスを使わずに分割と保存だけを行う Runner を構築します。
// API キーは不要です。
func BuildSliceRunner(appCtx *AppContext) workflow.PosterRunner {
	cfg := appCtx.Config.PosterConfig()
	return runner.NewPosterRunner(
		cfg,
		nil,
		slicer.NewPanelSlicer(),
		publisher.NewPanelPublisher(appCtx.Writer, cfg.FilePrefix),
	)
}

// BuildServer は HTTP フロントエンドを構築します。
func BuildServer(ctx context.Context, appCtx *AppContext) (*server.Server, error) {
	posterRunner, err := BuildPosterRunner(ctx, appCtx)
	if err != nil {
		return nil, err
	}
	handler, err := server.NewHandler(posterRunner)
	if err != nil {
		return nil, fmt.Errorf("ハンドラーの初期化に失敗しました: %w", err)
	}
	return server.New(handler, appCtx.Config.RequestTimeout)
}
