package publisher

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-poster-kit/pkg/asset"
	"github.com/shouni/go-poster-kit/pkg/domain"
)

// PanelPublisher は切り出したポスターをダウンロード名で保存します。
type PanelPublisher struct {
	writer OutputWriter
	prefix string
}

// NewPanelPublisher は保存先の writer とファイル名の接頭辞を受け取って初期化します。
func NewPanelPublisher(writer OutputWriter, prefix string) *PanelPublisher {
	if prefix == "" {
		prefix = asset.DefaultFilePrefix
	}
	return &PanelPublisher{
		writer: writer,
		prefix: prefix,
	}
}

// FileNames は各ポスターのダウンロード名を返します。
func (p *PanelPublisher) FileNames(project string, panels []domain.PosterPanel) []string {
	names := make([]string, len(panels))
	for i, panel := range panels {
		names[i] = asset.PanelFileName(p.prefix, project, panel.Index, panel.MimeType)
	}
	return names
}

// Publish は4枚すべてのポスターを outputDir 配下に保存し、保存先パスを順に返します。
// 1枚でも欠けている場合は何も書き込みません。途中で保存に失敗した場合は、
// 書き込み先が OutputRemover であれば保存済みのポスターを削除します。
func (p *PanelPublisher) Publish(ctx context.Context, outputDir, project string, panels []domain.PosterPanel) ([]string, error) {
	if len(panels) != domain.BoardCount {
		return nil, fmt.Errorf("ポスターが %d 枚揃っていません (%d 枚)", domain.BoardCount, len(panels))
	}
	for i, panel := range panels {
		if len(panel.Data) == 0 {
			return nil, fmt.Errorf("第 %d ポスターのデータが空です", i+1)
		}
	}

	names := p.FileNames(project, panels)
	paths := make([]string, 0, len(panels))
	for i, panel := range panels {
		fullPath, err := asset.ResolveOutputPath(outputDir, names[i])
		if err != nil {
			p.rollback(ctx, paths)
			return nil, fmt.Errorf("出力パスの解決に失敗しました: %w", err)
		}

		slog.InfoContext(ctx, "ポスター画像を保存しています", "index", i+1, "path", fullPath)

		if err := p.writer.Write(ctx, fullPath, bytes.NewReader(panel.Data), panel.MimeType); err != nil {
			p.rollback(ctx, paths)
			return nil, fmt.Errorf("第 %d ポスターの保存に失敗しました (path: %s): %w", i+1, fullPath, err)
		}
		paths = append(paths, fullPath)
	}
	return paths, nil
}

// rollback は保存済みのパスを削除します。削除の失敗はログに残すだけです。
func (p *PanelPublisher) rollback(ctx context.Context, paths []string) {
	if len(paths) == 0 {
		return
	}
	remover, ok := p.writer.(OutputRemover)
	if !ok {
		slog.WarnContext(ctx, "保存済みのポスターを削除できない書き込み先です", "paths", paths)
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, path := range paths {
		if err := remover.Remove(ctx, path); err != nil {
			slog.WarnContext(ctx, "保存済みポスターの削除に失敗しました", "path", path, "error", err)
		}
	}
}

// PublishIndex は保存済みポスターの一覧 Markdown を <prefix>-<project>.md として保存し、そのパスを返します。
func (p *PanelPublisher) PublishIndex(ctx context.Context, outputDir string, meta domain.ProjectMetadata, panels []domain.PosterPanel, paths []string) (string, error) {
	name := fmt.Sprintf("%s-%s.md", p.prefix, asset.SafeProjectName(meta.ProjectName))
	indexPath, err := asset.ResolveOutputPath(outputDir, name)
	if err != nil {
		return "", fmt.Errorf("出力パスの解決に失敗しました: %w", err)
	}

	content := BuildIndexMarkdown(meta, panels, paths)
	if err := p.writer.Write(ctx, indexPath, strings.NewReader(content), "text/markdown; charset=utf-8"); err != nil {
		return "", fmt.Errorf("markdownファイルの書き込みに失敗しました: %w", err)
	}
	return indexPath, nil
}
