package domain

import (
	"fmt"
	"strings"
)

const (
	// BoardCount は1シリーズに必要なボード画像（= ポスター）の枚数です。
	BoardCount = 4
	// A0WidthMM と A0HeightMM は縦置き A0 ポスターの寸法（ミリ）です。
	A0WidthMM  = 841
	A0HeightMM = 1189
)

// ImageAsset はフォームの1スロットが保持するアップロード画像です。
type ImageAsset struct {
	Data        []byte `json:"-"`
	MimeType    string `json:"mime_type"`
	DisplayName string `json:"display_name"`
	OrdinalID   int64  `json:"ordinal_id"`
}

// Validate は画像データとメディアタイプが揃っているかを確認します。
func (a ImageAsset) Validate() error {
	if len(a.Data) == 0 {
		return fmt.Errorf("画像データが空です (%s)", a.DisplayName)
	}
	if !strings.HasPrefix(a.MimeType, "image/") {
		return fmt.Errorf("画像のメディアタイプではありません (%s: %q)", a.DisplayName, a.MimeType)
	}
	return nil
}

// ProjectMetadata はポスターのヘッダーに印字されるプロジェクト情報です。
type ProjectMetadata struct {
	StudentName    string `json:"student_name"`
	InstructorName string `json:"instructor_name"`
	ProjectName    string `json:"project_name"`
}

// Problems は空欄（空白のみを含む）の項目を列挙します。
func (m ProjectMetadata) Problems() []string {
	var problems []string
	if strings.TrimSpace(m.StudentName) == "" {
		problems = append(problems, "student name is required")
	}
	if strings.TrimSpace(m.InstructorName) == "" {
		problems = append(problems, "instructor name is required")
	}
	if strings.TrimSpace(m.ProjectName) == "" {
		problems = append(problems, "project name is required")
	}
	return problems
}

// Trimmed は前後の空白を取り除いたコピーを返します。
func (m ProjectMetadata) Trimmed() ProjectMetadata {
	return ProjectMetadata{
		StudentName:    strings.TrimSpace(m.StudentName),
		InstructorName: strings.TrimSpace(m.InstructorName),
		ProjectName:    strings.TrimSpace(m.ProjectName),
	}
}

// PosterRequest は生成サービスへ送る1回分の入力です。
// Boards の順序がそのまま左から右へのパネル順になります。
type PosterRequest struct {
	Boards         []ImageAsset
	StyleReference *ImageAsset
	Metadata       ProjectMetadata
}

// Validate はリクエストを検証し、問題があれば *ValidationError を返します。
func (r PosterRequest) Validate() error {
	var problems []string
	if len(r.Boards) != BoardCount {
		problems = append(problems, fmt.Sprintf("exactly %d board images are required, got %d", BoardCount, len(r.Boards)))
	}
	for i, b := range r.Boards {
		if err := b.Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("board %d: %v", i+1, err))
		}
	}
	if r.StyleReference != nil {
		if err := r.StyleReference.Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("style reference: %v", err))
		}
	}
	problems = append(problems, r.Metadata.Problems()...)

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// CompositeResult は生成サービスが返した横長の合成画像です。
type CompositeResult struct {
	Data     []byte
	MimeType string
}

// PosterPanel は合成画像から切り出された1枚のポスターです。
type PosterPanel struct {
	Index    int    `json:"index"`
	Data     []byte `json:"-"`
	MimeType string `json:"mime_type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}
