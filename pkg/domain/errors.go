package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ポスター生成パイプラインで発生するエラー種別です。
// 呼び出し側は errors.Is で種別を判定します。
var (
	// ErrValidation は入力フォームが不完全な場合のエラーです。
	ErrValidation = errors.New("入力内容が不完全です")
	// ErrNoResult は生成サービスの応答に画像が含まれていなかった場合のエラーです。
	ErrNoResult = errors.New("生成結果に画像が含まれていません")
	// ErrService は生成サービスへのリクエスト自体が失敗した場合のエラーです。
	ErrService = errors.New("画像生成サービスの呼び出しに失敗しました")
	// ErrDecode は合成画像のデコードまたは分割に失敗した場合のエラーです。
	ErrDecode = errors.New("合成画像のデコードに失敗しました")
	// ErrGenerationInFlight は生成処理の実行中に再度リクエストされた場合のエラーです。
	ErrGenerationInFlight = errors.New("生成処理がすでに実行中です")
	// ErrInvalidTransition はセッションの状態遷移が許可されていない場合のエラーです。
	ErrInvalidTransition = errors.New("許可されていない状態遷移です")
)

// ValidationError は入力検証で見つかったすべての問題を保持します。
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ServiceError は生成サービス呼び出しの失敗を原因とともに保持します。
type ServiceError struct {
	Model string
	Err   error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s (model: %s): %v", ErrService.Error(), e.Model, e.Err)
}

// Unwrap は種別と原因の両方を返すため、context.DeadlineExceeded なども errors.Is で判定できます。
func (e *ServiceError) Unwrap() []error { return []error{ErrService, e.Err} }

// DecodeError は合成画像の処理失敗を原因とともに保持します。
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %v", ErrDecode.Error(), e.Err)
}

func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }
