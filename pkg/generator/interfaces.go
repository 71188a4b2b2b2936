package generator

import (
	"context"

	"github.com/shouni/pixel-sprite-kit/pkg/domain"
)

// PixelArtModel はピクセルアート生成プロバイダーへの統合窓口です。
// pixellab.Client が実装します。
type PixelArtModel interface {
	// Generate は単一の画像生成リクエストを実行し、結果を返します。
	Generate(ctx context.Context, concept domain.CharacterConcept) (*domain.ImageResult, error)
	// Animate はリファレンス画像に紐づくフレーム列を1リクエストで生成します。
	Animate(ctx context.Context, req domain.AnimationRequest) ([]domain.ImageResult, error)
}
