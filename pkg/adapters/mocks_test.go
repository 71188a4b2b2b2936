package adapters

import (
	"context"

	"github.com/shouni/pixel-sprite-kit/pkg/domain"
	"github.com/shouni/pixel-sprite-kit/pkg/generator"
	"github.com/shouni/pixel-sprite-kit/pkg/store"
)

// 各依存のテスト用モックなのだ。必要な振る舞いだけ func フィールドで差し込む。

type mockGenerator struct {
	generateFunc func(ctx context.Context, concept domain.CharacterConcept) (*domain.ImageResult, error)
}

func (m *mockGenerator) Generate(ctx context.Context, concept domain.CharacterConcept) (*domain.ImageResult, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, concept)
	}
	return &domain.ImageResult{Data: []byte("img"), MimeType: "image/png"}, nil
}

type mockRotator struct {
	batchFunc func(ctx context.Context, concept domain.CharacterConcept, directions []domain.Direction) (*generator.BatchResult, error)
}

func (m *mockRotator) Batch(ctx context.Context, concept domain.CharacterConcept, directions []domain.Direction) (*generator.BatchResult, error) {
	if m.batchFunc != nil {
		return m.batchFunc(ctx, concept, directions)
	}
	return &generator.BatchResult{Variants: map[domain.Direction]domain.ImageResult{}}, nil
}

type mockAnimator struct {
	animateFunc func(ctx context.Context, req domain.AnimationRequest) (*domain.Animation, error)
}

func (m *mockAnimator) Animate(ctx context.Context, req domain.AnimationRequest) (*domain.Animation, error) {
	if m.animateFunc != nil {
		return m.animateFunc(ctx, req)
	}
	return &domain.Animation{}, nil
}

type mockEnhancer struct {
	enhanceFunc func(ctx context.Context, base []byte, prompt, style string) (*domain.EnhancedImage, error)
}

func (m *mockEnhancer) Enhance(ctx context.Context, base []byte, prompt, style string) (*domain.EnhancedImage, error) {
	if m.enhanceFunc != nil {
		return m.enhanceFunc(ctx, base, prompt, style)
	}
	return &domain.EnhancedImage{Data: []byte("enhanced"), MimeType: "image/png"}, nil
}

type mockRecorder struct {
	createFunc func(ctx context.Context, ownerID, prompt, imageRef string, size int, style string) (*domain.SpriteRecord, error)
	getFunc    func(ctx context.Context, ownerID, spriteID string) (*domain.SpriteRecord, error)
	attachFunc func(ctx context.Context, spriteID, imageRef, prompt, style string, latencyMS int64) (*domain.EnhancedRecord, error)
	listFunc   func(ctx context.Context, ownerID string, offset, limit int) ([]store.HistoryEntry, error)
	deleteFunc func(ctx context.Context, ownerID string) (int64, error)
}

func (m *mockRecorder) CreateSprite(ctx context.Context, ownerID, prompt, imageRef string, size int, style string) (*domain.SpriteRecord, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, ownerID, prompt, imageRef, size, style)
	}
	return &domain.SpriteRecord{ID: "sprite-1", OwnerID: ownerID, Prompt: prompt, ImageRef: imageRef, Size: size, Style: style}, nil
}

func (m *mockRecorder) GetSprite(ctx context.Context, ownerID, spriteID string) (*domain.SpriteRecord, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, ownerID, spriteID)
	}
	return nil, domain.ErrSpriteNotFound
}

func (m *mockRecorder) AttachEnhanced(ctx context.Context, spriteID, imageRef, prompt, style string, latencyMS int64) (*domain.EnhancedRecord, error) {
	if m.attachFunc != nil {
		return m.attachFunc(ctx, spriteID, imageRef, prompt, style, latencyMS)
	}
	return &domain.EnhancedRecord{ID: "enhanced-1", SpriteID: spriteID, ImageRef: imageRef, Prompt: prompt, Style: style, LatencyMS: latencyMS}, nil
}

func (m *mockRecorder) ListHistory(ctx context.Context, ownerID string, offset, limit int) ([]store.HistoryEntry, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, ownerID, offset, limit)
	}
	return nil, nil
}

func (m *mockRecorder) DeleteAll(ctx context.Context, ownerID string) (int64, error) {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, ownerID)
	}
	return 0, nil
}

func newTestService(gen SpriteGenerator, rot RotationGenerator, anim FrameAnimator, enh ImageEnhancer, rec Recorder) *SpriteService {
	if gen == nil {
		gen = &mockGenerator{}
	}
	if rot == nil {
		rot = &mockRotator{}
	}
	if anim == nil {
		anim = &mockAnimator{}
	}
	if enh == nil {
		enh = &mockEnhancer{}
	}
	if rec == nil {
		rec = &mockRecorder{}
	}
	s, _ := NewSpriteService(gen, rot, anim, enh, rec, nil, 0)
	return s
}
