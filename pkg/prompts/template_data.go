package prompts

import (
	_ "embed"
)

//go:embed poster_series.md
var PosterSeriesPrompt string

// Placement はボード画像と配置先ポスターの対応です。
type Placement struct {
	ImageNumber int
	Position    string
}

// PosterTemplateData はポスターシリーズ用テンプレートに渡すデータ構造です。
type PosterTemplateData struct {
	InstitutionName   string
	InstitutionLines  []string
	ProjectName       string
	StudentName       string
	InstructorName    string
	PanelCount        int
	PanelWord         string
	PanelWidthMM      int
	PanelHeightMM     int
	Placements        []Placement
	HasStyleReference bool
	StyleImageNumber  int
}
