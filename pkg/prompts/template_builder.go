package prompts

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/shouni/go-poster-kit/pkg/domain"
)

var panelWords = map[int]string{1: "ONE", 2: "TWO", 3: "THREE", 4: "FOUR", 5: "FIVE", 6: "SIX"}

// PosterPromptBuilder は埋め込みテンプレートからポスターシリーズの指示文を構築します。
type PosterPromptBuilder struct {
	tmpl             *template.Template
	institutionLines []string
}

// NewPosterPromptBuilder は PosterPromptBuilder を初期化します。
// institutionLines は各ポスター左上の所属表記で、空の場合は所属ブロックを出力しません。
func NewPosterPromptBuilder(institutionLines []string) (*PosterPromptBuilder, error) {
	if PosterSeriesPrompt == "" {
		return nil, fmt.Errorf("プロンプトテンプレート (go:embed) の読み込みに失敗しました: 内容が空です")
	}

	tmpl, err := template.New("poster_series").Parse(PosterSeriesPrompt)
	if err != nil {
		return nil, fmt.Errorf("プロンプトテンプレートの解析に失敗: %w", err)
	}

	lines := make([]string, 0, len(institutionLines))
	for _, l := range institutionLines {
		if s := sanitizeInline(l); s != "" {
			lines = append(lines, s)
		}
	}

	return &PosterPromptBuilder{
		tmpl:             tmpl,
		institutionLines: lines,
	}, nil
}

// Build はテンプレートを実行して指示文を返します。同じ入力には常に同じ文字列を返します。
func (b *PosterPromptBuilder) Build(meta domain.ProjectMetadata, hasStyleReference bool) (string, error) {
	data := b.templateData(meta, hasStyleReference)

	var sb strings.Builder
	if err := b.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("プロンプトテンプレートの実行に失敗しました: %w", err)
	}
	return sb.String(), nil
}

func (b *PosterPromptBuilder) templateData(meta domain.ProjectMetadata, hasStyleReference bool) PosterTemplateData {
	n := domain.BoardCount
	data := PosterTemplateData{
		InstitutionLines:  b.institutionLines,
		ProjectName:       formatQuoted(meta.ProjectName),
		StudentName:       sanitizeInline(meta.StudentName),
		InstructorName:    sanitizeInline(meta.InstructorName),
		PanelCount:        n,
		PanelWord:         panelWords[n],
		PanelWidthMM:      domain.A0WidthMM,
		PanelHeightMM:     domain.A0HeightMM,
		Placements:        placements(n),
		HasStyleReference: hasStyleReference,
	}
	if len(b.institutionLines) > 0 {
		data.InstitutionName = b.institutionLines[0]
	}
	if hasStyleReference {
		data.StyleImageNumber = n + 1
	}
	return data
}

// placements は左から右への配置指示を生成します。
func placements(n int) []Placement {
	out := make([]Placement, n)
	for i := 0; i < n; i++ {
		pos := fmt.Sprintf("position %d from the left", i+1)
		switch i {
		case 0:
			pos = "leftmost"
		case n - 1:
			pos = "rightmost"
		}
		out[i] = Placement{ImageNumber: i + 1, Position: pos}
	}
	return out
}

// sanitizeInline は文字列をプロンプトに埋め込む前の最低限の正規化を行います。
func sanitizeInline(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.Join(strings.Fields(s), " ")
}

// formatQuoted は二重引用符で囲む値を正規化します。
func formatQuoted(s string) string {
	s = sanitizeInline(s)
	// 引用符の衝突を避けるため、ダブルクォートをシングルクォートに逃がします
	return strings.ReplaceAll(s, "\"", "'")
}
