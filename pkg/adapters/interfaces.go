package adapters

import (
	"context"

	"github.com/shouni/pixel-sprite-kit/pkg/domain"
	"github.com/shouni/pixel-sprite-kit/pkg/generator"
	"github.com/shouni/pixel-sprite-kit/pkg/store"
)

// SpriteGenerator は単一スプライトの生成窓口です。pixellab.Client が実装します。
type SpriteGenerator interface {
	Generate(ctx context.Context, concept domain.CharacterConcept) (*domain.ImageResult, error)
}

// RotationGenerator は方位バッチ生成の窓口です。generator.BatchGenerator が実装します。
type RotationGenerator interface {
	Batch(ctx context.Context, concept domain.CharacterConcept, directions []domain.Direction) (*generator.BatchResult, error)
}

// FrameAnimator はアニメーション生成の窓口です。generator.AnimationGenerator が実装します。
type FrameAnimator interface {
	Animate(ctx context.Context, req domain.AnimationRequest) (*domain.Animation, error)
}

// ImageEnhancer はエンハンス生成の窓口です。enhance.Enhancer が実装します。
type ImageEnhancer interface {
	Enhance(ctx context.Context, base []byte, prompt, style string) (*domain.EnhancedImage, error)
}

// Recorder は永続化の契約です。store.Store が実装します。
type Recorder interface {
	CreateSprite(ctx context.Context, ownerID, prompt, imageRef string, size int, style string) (*domain.SpriteRecord, error)
	GetSprite(ctx context.Context, ownerID, spriteID string) (*domain.SpriteRecord, error)
	AttachEnhanced(ctx context.Context, spriteID, imageRef, prompt, style string, latencyMS int64) (*domain.EnhancedRecord, error)
	ListHistory(ctx context.Context, ownerID string, offset, limit int) ([]store.HistoryEntry, error)
	DeleteAll(ctx context.Context, ownerID string) (int64, error)
}
