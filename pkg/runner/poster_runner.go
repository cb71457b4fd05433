package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-poster-kit/pkg/config"
	"github.com/shouni/go-poster-kit/pkg/domain"
	"github.com/shouni/go-poster-kit/pkg/generator"
	"github.com/shouni/go-poster-kit/pkg/publisher"
	"github.com/shouni/go-poster-kit/pkg/slicer"

	"golang.org/x/sync/semaphore"
)

// PosterRunner は、検証、合成画像の生成、分割までの一連の流れをセッションの状態遷移とともに実行します。
// 同時に実行できる生成は1件のみです。
type PosterRunner struct {
	cfg       config.Config
	generator generator.CompositeGenerator
	slicer    slicer.Slicer
	publisher *publisher.PanelPublisher
	inFlight  *semaphore.Weighted
}

// NewPosterRunner は、依存関係を注入して初期化します。
func NewPosterRunner(
	cfg config.Config,
	gen generator.CompositeGenerator,
	sl slicer.Slicer,
	pub *publisher.PanelPublisher,
) *PosterRunner {
	return &PosterRunner{
		cfg:       cfg,
		generator: gen,
		slicer:    sl,
		publisher: pub,
		inFlight:  semaphore.NewWeighted(1),
	}
}

// Run はセッションの入力からポスター4枚を生成し、ready または error 状態のセッションを返します。
// 別の生成が実行中の場合、セッションは変更されずに ErrGenerationInFlight が返ります。
func (r *PosterRunner) Run(ctx context.Context, session domain.Session) (domain.Session, error) {
	if !r.inFlight.TryAcquire(1) {
		return session, domain.ErrGenerationInFlight
	}
	defer r.inFlight.Release(1)

	s, err := session.Begin()
	if err != nil {
		return session, err
	}

	req, err := s.Request()
	if err != nil {
		return fail(s, err)
	}

	if s, err = s.StartRequest(); err != nil {
		return fail(s, err)
	}

	logger := slog.With("project", req.Metadata.ProjectName, "student", req.Metadata.StudentName)
	logger.InfoContext(ctx, "ポスターシリーズの生成を開始します")
	startTime := time.Now()

	composite, err := r.generate(ctx, req)
	if err != nil {
		logger.ErrorContext(ctx, "合成画像の生成に失敗しました", "error", err)
		return fail(s, err)
	}

	if s, err = s.StartSlicing(); err != nil {
		return fail(s, err)
	}

	panels, err := r.slicer.Slice(ctx, *composite)
	if err != nil {
		logger.ErrorContext(ctx, "合成画像の分割に失敗しました", "error", err)
		return fail(s, err)
	}

	if s, err = s.Complete(panels); err != nil {
		return fail(s, err)
	}

	logger.InfoContext(ctx, "ポスターシリーズの生成が完了しました",
		"panels", len(panels),
		"duration", time.Since(startTime).Round(time.Millisecond))
	return s, nil
}

// RunAndSave はポスターを生成し、outputDir 配下にダウンロード名で保存します。保存先パスを順に返します。
func (r *PosterRunner) RunAndSave(ctx context.Context, session domain.Session, outputDir string) (domain.Session, []string, error) {
	s, err := r.Run(ctx, session)
	if err != nil {
		return s, nil, err
	}

	paths, err := r.save(ctx, outputDir, s.Metadata().Trimmed(), s.Panels())
	if err != nil {
		return s, nil, err
	}
	return s, paths, nil
}

// SliceOnly は既存の合成画像を生成サービスを呼ばずに分割し、保存します。
func (r *PosterRunner) SliceOnly(ctx context.Context, composite domain.CompositeResult, meta domain.ProjectMetadata, outputDir string) ([]string, error) {
	panels, err := r.slicer.Slice(ctx, composite)
	if err != nil {
		return nil, err
	}
	if len(panels) != domain.BoardCount {
		return nil, fmt.Errorf("分割結果が %d 枚ではありません (%d 枚)", domain.BoardCount, len(panels))
	}
	return r.save(ctx, outputDir, meta.Trimmed(), panels)
}

// FileNames はセッションのポスターに対応するダウンロード名を返します。
func (r *PosterRunner) FileNames(session domain.Session) []string {
	return r.publisher.FileNames(session.Metadata().Trimmed().ProjectName, session.Panels())
}

func (r *PosterRunner) generate(ctx context.Context, req domain.PosterRequest) (*domain.CompositeResult, error) {
	if r.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.RequestTimeout)
		defer cancel()
	}
	return r.generator.Generate(ctx, req)
}

func (r *PosterRunner) save(ctx context.Context, outputDir string, meta domain.ProjectMetadata, panels []domain.PosterPanel) ([]string, error) {
	if r.publisher == nil {
		return nil, fmt.Errorf("publisher が設定されていません")
	}
	paths, err := r.publisher.Publish(ctx, outputDir, meta.ProjectName, panels)
	if err != nil {
		return nil, err
	}
	if _, err := r.publisher.PublishIndex(ctx, outputDir, meta, panels, paths); err != nil {
		slog.WarnContext(ctx, "一覧ファイルの保存に失敗しました", "error", err)
	}
	return paths, nil
}

// fail はセッションを error 状態へ進め、原因となったエラーを返します。
func fail(s domain.Session, cause error) (domain.Session, error) {
	next, err := s.Fail(cause)
	if err != nil {
		return s, errors.Join(cause, err)
	}
	return next, cause
}
