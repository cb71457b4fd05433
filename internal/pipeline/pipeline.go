package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"

	"github.com/shouni/go-poster-kit/internal/builder"
	"github.com/shouni/go-poster-kit/internal/config"
	"github.com/shouni/go-poster-kit/pkg/asset"
	"github.com/shouni/go-poster-kit/pkg/domain"
)

// Execute は、ボード画像4枚と任意の参照画像を読み込み、
// ポスターシリーズの生成、分割、保存を一気に実行するのだ。
func Execute(ctx context.Context, cfg *config.Config) error {
	appCtx := builder.NewAppContext(cfg, nil)

	session, err := loadSession(cfg.Options)
	if err != nil {
		return err
	}

	posterRunner, err := builder.BuildPosterRunner(ctx, &appCtx)
	if err != nil {
		return err
	}

	session, paths, err := posterRunner.RunAndSave(ctx, session, cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("ポスターの生成に失敗したのだ (phase: %s): %w", session.Phase(), err)
	}

	for _, p := range paths {
		slog.Info("ポスターを保存したのだ", "path", p)
	}
	return nil
}

// ExecuteSliceOnly は、保存済みの合成画像を生成サービスを呼ばずに4枚へ分割して保存するのだ。
func ExecuteSliceOnly(ctx context.Context, cfg *config.Config) error {
	appCtx := builder.NewAppContext(cfg, nil)
	opts := cfg.Options

	data, err := os.ReadFile(opts.CompositeFile)
	if err != nil {
		return fmt.Errorf("合成画像 '%s' の読み込みに失敗しました: %w", opts.CompositeFile, err)
	}
	composite := domain.CompositeResult{
		Data:     data,
		MimeType: asset.DetectMimeType(data, opts.CompositeFile),
	}
	meta := domain.ProjectMetadata{
		StudentName:    opts.Student,
		InstructorName: opts.Instructor,
		ProjectName:    opts.Project,
	}

	paths, err := builder.BuildSliceRunner(&appCtx).SliceOnly(ctx, composite, meta, cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("合成画像の分割に失敗したのだ: %w", err)
	}
	for _, p := range paths {
		slog.Info("ポスターを保存したのだ", "path", p)
	}
	return nil
}

// Serve は HTTP フロントエンドを起動し、ctx がキャンセルされるまで待つのだ。
func Serve(ctx context.Context, cfg *config.Config) error {
	appCtx := builder.NewAppContext(cfg, nil)

	srv, err := builder.BuildServer(ctx, &appCtx)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("リスナーの作成に失敗しました: %w", err)
	}
	defer listener.Close()

	return srv.Serve(ctx, listener)
}

// loadSession は CLI で指定された画像とプロジェクト情報からセッションを組み立てるのだ。
// --board の指定順がそのまま左から右のポスター順になるのだよ。
func loadSession(opts config.Options) (domain.Session, error) {
	s := domain.NewSession()
	if len(opts.Boards) != domain.BoardCount {
		return s, &domain.ValidationError{Problems: []string{
			fmt.Sprintf("exactly %d board images are required, got %d", domain.BoardCount, len(opts.Boards)),
		}}
	}

	for i, path := range opts.Boards {
		a, err := asset.LoadImageAsset(path, int64(i))
		if err != nil {
			return s, err
		}
		if s, err = s.WithBoard(i, a); err != nil {
			return s, err
		}
	}

	if opts.Style != "" {
		style, err := asset.LoadImageAsset(opts.Style, int64(domain.BoardCount))
		if err != nil {
			return s, err
		}
		if s, err = s.WithStyleReference(style); err != nil {
			return s, err
		}
	}

	return s.WithMetadata(domain.ProjectMetadata{
		StudentName:    opts.Student,
		InstructorName: opts.Instructor,
		ProjectName:    opts.Project,
	})
}
