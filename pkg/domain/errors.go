package domain

import (
	"errors"
	"fmt"
)

// GenerationErrorKind は生成プロバイダー呼び出しの失敗分類です。
type GenerationErrorKind string

const (
	GenerationQuotaExceeded GenerationErrorKind = "quota_exceeded"
	GenerationInvalidParams GenerationErrorKind = "invalid_params"
	GenerationAuthFailure   GenerationErrorKind = "auth_failure"
	GenerationTransient     GenerationErrorKind = "transient"
)

// GenerationError はプロバイダー呼び出しの失敗を分類付きで表します。
// 下位のエラー詳細は Err に保持し、Unwrap で辿れるようにします。
type GenerationError struct {
	Kind    GenerationErrorKind
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("generation %s: %s", e.Kind, e.Message)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Retryable は再試行してよい失敗（一時的なネットワーク障害）かを返します。
// クォータ・認証・パラメータ不正は何度呼んでも結果が変わらないため false です。
func (e *GenerationError) Retryable() bool {
	return e.Kind == GenerationTransient
}

// AnimationErrorKind はアニメーション生成の失敗分類です。
type AnimationErrorKind string

const (
	AnimationInvalidReference AnimationErrorKind = "invalid_reference"
	AnimationGenerationFailed AnimationErrorKind = "generation_failed"
)

// AnimationError はアニメーション生成の失敗です。
// フレーム列に部分的な結果は存在しないため、常に呼び出し全体の失敗を表します。
type AnimationError struct {
	Kind    AnimationErrorKind
	Message string
	Err     error
}

func (e *AnimationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("animation %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("animation %s: %s", e.Kind, e.Message)
}

func (e *AnimationError) Unwrap() error { return e.Err }

// CompositionErrorKind はスプライトシート合成の失敗分類です。
type CompositionErrorKind string

const (
	CompositionEmptyInput     CompositionErrorKind = "empty_input"
	CompositionInvalidColumns CompositionErrorKind = "invalid_columns"
)

// CompositionError はスプライトシート合成の入力検証エラーです。
type CompositionError struct {
	Kind    CompositionErrorKind
	Message string
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("composition %s: %s", e.Kind, e.Message)
}

// ConfigurationError は起動時の設定不備です。再試行しても解決しません。
type ConfigurationError struct {
	Name string // 不足している環境変数名
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("設定が不足しています: 環境変数 %s を設定してください", e.Name)
}

// ValidationError はネットワーク呼び出し前に弾く入力不正です。
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("入力が不正です (%s): %s", e.Field, e.Message)
}

// ErrEnhancedConflict はスプライトが既にエンハンス結果を持つ場合の競合です。
// 既存レコードは上書きされず、そのまま保持されます。
var ErrEnhancedConflict = errors.New("このスプライトには既にエンハンス結果が存在します")

// ErrSpriteNotFound は対象スプライトが存在しないか、オーナーが異なる場合に返されます。
var ErrSpriteNotFound = errors.New("スプライトが見つかりません")
