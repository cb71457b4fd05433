package publisher

import (
	"fmt"
	"path"
	"strings"

	"github.com/shouni/go-poster-kit/pkg/domain"
)

// BuildIndexMarkdown は、プロジェクト情報と保存済みポスターのファイル名を並べた
// 一覧用の Markdown 文字列を生成します。画像は左から右の順に並びます。
func BuildIndexMarkdown(meta domain.ProjectMetadata, panels []domain.PosterPanel, fileNames []string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", meta.ProjectName))
	sb.WriteString(fmt.Sprintf("- student: %s\n", meta.StudentName))
	sb.WriteString(fmt.Sprintf("- instructor: %s\n\n", meta.InstructorName))

	for i, panel := range panels {
		if i >= len(fileNames) {
			break
		}
		name := path.Base(fileNames[i])
		sb.WriteString(fmt.Sprintf("## Poster %d\n", panel.Index+1))
		sb.WriteString(fmt.Sprintf("- size: %dx%d\n", panel.Width, panel.Height))
		sb.WriteString(fmt.Sprintf("![Poster %d](%s)\n\n", panel.Index+1, name))
	}
	return sb.String()
}
