package domain

import (
	"fmt"
)

// Phase はセッションのワークフロー上の段階です。
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseRequesting Phase = "requesting"
	PhaseSlicing    Phase = "slicing"
	PhaseReady      Phase = "ready"
	PhaseError      Phase = "error"
)

// allowedTransitions は Reset 以外で許可される遷移の一覧です。
var allowedTransitions = map[Phase][]Phase{
	PhaseIdle:       {PhaseValidating},
	PhaseValidating: {PhaseRequesting, PhaseError},
	PhaseRequesting: {PhaseSlicing, PhaseError},
	PhaseSlicing:    {PhaseReady, PhaseError},
	PhaseError:      {PhaseValidating},
	PhaseReady:      {},
}

// Session は1人の利用者のフォーム状態と生成の進行状況を保持する値型です。
// すべての操作はレシーバを変更せず、新しい Session を返します。
type Session struct {
	boards   [BoardCount]*ImageAsset
	style    *ImageAsset
	metadata ProjectMetadata
	phase    Phase
	panels   []PosterPanel
	err      error
}

// NewSession は空の idle セッションを返します。
func NewSession() Session {
	return Session{phase: PhaseIdle}
}

func (s Session) Phase() Phase              { return s.phase }
func (s Session) Metadata() ProjectMetadata { return s.metadata }
func (s Session) StyleReference() *ImageAsset {
	return s.style
}

// Err は直近の失敗理由です。error 状態以外では nil です。
func (s Session) Err() error { return s.err }

// Board は指定スロット（0 始まり）の画像を返します。空きスロットや範囲外は nil です。
func (s Session) Board(index int) *ImageAsset {
	if index < 0 || index >= BoardCount {
		return nil
	}
	return s.boards[index]
}

// Panels は ready 状態で得られた4枚のポスターのコピーを返します。
func (s Session) Panels() []PosterPanel {
	if len(s.panels) == 0 {
		return nil
	}
	out := make([]PosterPanel, len(s.panels))
	copy(out, s.panels)
	return out
}

// InFlight は生成処理が進行中かどうかを返します。
func (s Session) InFlight() bool {
	switch s.phase {
	case PhaseValidating, PhaseRequesting, PhaseSlicing:
		return true
	}
	return false
}

// editable はフォームの編集が許可される段階かどうかを返します。
func (s Session) editable() error {
	if s.InFlight() {
		return ErrGenerationInFlight
	}
	if s.phase == PhaseReady {
		return fmt.Errorf("%w: 生成済みのセッションはリセットしてから編集してください", ErrInvalidTransition)
	}
	return nil
}

func checkSlot(index int) error {
	if index < 0 || index >= BoardCount {
		return fmt.Errorf("ボードのスロット番号が範囲外です: %d (0-%d)", index, BoardCount-1)
	}
	return nil
}

// WithBoard は指定スロットの画像を置き換えます。
func (s Session) WithBoard(index int, asset ImageAsset) (Session, error) {
	if err := s.editable(); err != nil {
		return s, err
	}
	if err := checkSlot(index); err != nil {
		return s, err
	}
	a := asset
	s.boards[index] = &a
	return s, nil
}

// ClearBoard は指定スロットを空にします。
func (s Session) ClearBoard(index int) (Session, error) {
	if err := s.editable(); err != nil {
		return s, err
	}
	if err := checkSlot(index); err != nil {
		return s, err
	}
	s.boards[index] = nil
	return s, nil
}

// SwapBoards は2つのスロットの画像を入れ替え、左右の並び順を変更します。
func (s Session) SwapBoards(i, j int) (Session, error) {
	if err := s.editable(); err != nil {
		return s, err
	}
	if err := checkSlot(i); err != nil {
		return s, err
	}
	if err := checkSlot(j); err != nil {
		return s, err
	}
	s.boards[i], s.boards[j] = s.boards[j], s.boards[i]
	return s, nil
}

// WithStyleReference は背景デザイン用の参照画像を設定します。
func (s Session) WithStyleReference(asset ImageAsset) (Session, error) {
	if err := s.editable(); err != nil {
		return s, err
	}
	a := asset
	s.style = &a
	return s, nil
}

// ClearStyleReference は参照画像を取り除きます。
func (s Session) ClearStyleReference() (Session, error) {
	if err := s.editable(); err != nil {
		return s, err
	}
	s.style = nil
	return s, nil
}

// WithMetadata はプロジェクト情報を置き換えます。
func (s Session) WithMetadata(m ProjectMetadata) (Session, error) {
	if err := s.editable(); err != nil {
		return s, err
	}
	s.metadata = m
	return s, nil
}

// IsComplete は4枚のボードとすべてのプロジェクト情報が揃っているかを返します。
func (s Session) IsComplete() bool {
	for _, b := range s.boards {
		if b == nil {
			return false
		}
	}
	return len(s.metadata.Problems()) == 0
}

// Request はフォームの内容から生成リクエストを組み立てます。
// 空きスロットがある場合は詰めずに *ValidationError を返します。
func (s Session) Request() (PosterRequest, error) {
	var problems []string
	boards := make([]ImageAsset, 0, BoardCount)
	for i, b := range s.boards {
		if b == nil {
			problems = append(problems, fmt.Sprintf("board %d is missing", i+1))
			continue
		}
		boards = append(boards, *b)
	}
	if len(problems) > 0 {
		problems = append(problems, s.metadata.Problems()...)
		return PosterRequest{}, &ValidationError{Problems: problems}
	}

	req := PosterRequest{
		Boards:         boards,
		StyleReference: s.style,
		Metadata:       s.metadata.Trimmed(),
	}
	if err := req.Validate(); err != nil {
		return PosterRequest{}, err
	}
	return req, nil
}

func (s Session) transition(to Phase) (Session, error) {
	for _, p := range allowedTransitions[s.phase] {
		if p == to {
			s.phase = to
			return s, nil
		}
	}
	return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.phase, to)
}

// Begin は生成を開始し validating 状態へ移ります。実行中の場合は ErrGenerationInFlight です。
func (s Session) Begin() (Session, error) {
	if s.InFlight() {
		return s, ErrGenerationInFlight
	}
	next, err := s.transition(PhaseValidating)
	if err != nil {
		return s, err
	}
	next.panels = nil
	next.err = nil
	return next, nil
}

// StartRequest は検証済みのセッションを requesting 状態へ進めます。
func (s Session) StartRequest() (Session, error) {
	return s.transition(PhaseRequesting)
}

// StartSlicing は合成画像を受け取った後に slicing 状態へ進めます。
func (s Session) StartSlicing() (Session, error) {
	return s.transition(PhaseSlicing)
}

// Complete は切り出した4枚のポスターを保持して ready 状態へ進めます。
func (s Session) Complete(panels []PosterPanel) (Session, error) {
	if len(panels) != BoardCount {
		return s, fmt.Errorf("%w: ポスターは %d 枚必要ですが %d 枚でした", ErrInvalidTransition, BoardCount, len(panels))
	}
	next, err := s.transition(PhaseReady)
	if err != nil {
		return s, err
	}
	next.panels = make([]PosterPanel, len(panels))
	copy(next.panels, panels)
	return next, nil
}

// Fail は進行中の処理を error 状態で終了させます。部分的な成果物は保持しません。
func (s Session) Fail(cause error) (Session, error) {
	next, err := s.transition(PhaseError)
	if err != nil {
		return s, err
	}
	next.panels = nil
	next.err = cause
	return next, nil
}

// Reset はすべての入力と結果を破棄した idle セッションを返します。
func (s Session) Reset() Session {
	return NewSession()
}
