package workflow

import (
	"context"

	"github.com/shouni/go-poster-kit/pkg/domain"
)

// Workflow は、ポスター生成ワークフローの Runner を構築するためのインターフェースを定義します。
type Workflow interface {
	BuildPosterRunner() (PosterRunner, error)
}

// PosterRunner は、セッションの入力からポスターシリーズを生成し、保存する責務を持ちます。
type PosterRunner interface {
	Run(ctx context.Context, session domain.Session) (domain.Session, error)
	RunAndSave(ctx context.Context, session domain.Session, outputDir string) (domain.Session, []string, error)
	SliceOnly(ctx context.Context, composite domain.CompositeResult, meta domain.ProjectMetadata, outputDir string) ([]string, error)
	FileNames(session domain.Session) []string
}
