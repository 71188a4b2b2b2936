package adapters

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/shouni/pixel-sprite-kit/pkg/domain"
	"github.com/shouni/pixel-sprite-kit/pkg/generator"
	"github.com/shouni/pixel-sprite-kit/pkg/sheet"
	"github.com/shouni/pixel-sprite-kit/pkg/store"
)

func framePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, image.NewNRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("failed to encode frame: %v", err)
	}
	return buf.Bytes()
}

func TestSpriteService_GenerateSprite(t *testing.T) {
	ctx := context.Background()

	t.Run("成功: 生成結果が data URL でレコード化されること", func(t *testing.T) {
		gen := &mockGenerator{
			generateFunc: func(ctx context.Context, concept domain.CharacterConcept) (*domain.ImageResult, error) {
				return &domain.ImageResult{Data: []byte("pixel-data"), MimeType: "image/png", UsedSeed: 7}, nil
			},
		}
		var storedRef, storedStyle string
		rec := &mockRecorder{
			createFunc: func(ctx context.Context, ownerID, prompt, imageRef string, size int, style string) (*domain.SpriteRecord, error) {
				storedRef = imageRef
				storedStyle = style
				return &domain.SpriteRecord{ID: "sprite-1", OwnerID: ownerID, Prompt: prompt, ImageRef: imageRef, Size: size}, nil
			},
		}
		svc := newTestService(gen, nil, nil, nil, rec)

		record, err := svc.GenerateSprite(ctx, "owner-1", domain.CharacterConcept{
			Description: "a tiny wizard",
			Size:        64,
			Style:       domain.StyleOptions{Outline: "black"},
		})
		if err != nil {
			t.Fatalf("GenerateSprite failed: %v", err)
		}
		if record.OwnerID != "owner-1" {
			t.Errorf("unexpected owner: %s", record.OwnerID)
		}

		mime, data, err := sheet.ParseDataURL(storedRef)
		if err != nil {
			t.Fatalf("stored ref is not a data URL: %v", err)
		}
		if mime != "image/png" || string(data) != "pixel-data" {
			t.Errorf("image data lost in persistence: mime=%s data=%q", mime, data)
		}
		if !strings.Contains(storedStyle, `"outline":"black"`) {
			t.Errorf("style not serialized: %s", storedStyle)
		}
	})

	t.Run("失敗: 生成エラーは詳細を保って伝搬し、何も保存しないこと", func(t *testing.T) {
		genErr := &domain.GenerationError{Kind: domain.GenerationQuotaExceeded, Message: "out of credits"}
		gen := &mockGenerator{
			generateFunc: func(ctx context.Context, concept domain.CharacterConcept) (*domain.ImageResult, error) {
				return nil, genErr
			},
		}
		stored := false
		rec := &mockRecorder{
			createFunc: func(ctx context.Context, ownerID, prompt, imageRef string, size int, style string) (*domain.SpriteRecord, error) {
				stored = true
				return nil, nil
			},
		}
		svc := newTestService(gen, nil, nil, nil, rec)

		_, err := svc.GenerateSprite(ctx, "owner-1", domain.CharacterConcept{Description: "wizard", Size: 64})
		if !errors.Is(err, genErr) {
			t.Errorf("expected quota error, got %v", err)
		}
		if stored {
			t.Error("nothing should be persisted on failure")
		}
	})
}

func TestSpriteService_GenerateRotations(t *testing.T) {
	ctx := context.Background()

	t.Run("成功分の参照と失敗一覧が両方返ること", func(t *testing.T) {
		rot := &mockRotator{
			batchFunc: func(ctx context.Context, concept domain.CharacterConcept, directions []domain.Direction) (*generator.BatchResult, error) {
				return &generator.BatchResult{
					Seed: 42,
					Variants: map[domain.Direction]domain.ImageResult{
						domain.North: {Data: []byte("n"), MimeType: "image/png"},
						domain.South: {Data: []byte("s"), MimeType: "image/png"},
						domain.West:  {Data: []byte("w"), MimeType: "image/png"},
					},
					Failed: []generator.DirectionFailure{
						{Direction: domain.East, Err: errors.New("injected")},
					},
				}, nil
			},
		}
		svc := newTestService(nil, rot, nil, nil, nil)

		set, err := svc.GenerateRotations(ctx, "owner-1",
			domain.CharacterConcept{Description: "knight", Size: 32},
			domain.CardinalDirections(), 0)
		if err != nil {
			t.Fatalf("GenerateRotations failed: %v", err)
		}

		if set.Seed != 42 {
			t.Errorf("expected seed 42, got %d", set.Seed)
		}
		if len(set.Refs) != 3 {
			t.Errorf("expected 3 refs, got %d", len(set.Refs))
		}
		if len(set.Failed) != 1 || set.Failed[0].Direction != domain.East {
			t.Errorf("failed list not preserved: %+v", set.Failed)
		}
		if set.Sheet != nil {
			t.Error("no sheet requested, but one was composed")
		}
	})

	t.Run("シート列数指定時は成功分が合成されて保存されること", func(t *testing.T) {
		frame := framePNG(t, 8, 8)
		rot := &mockRotator{
			batchFunc: func(ctx context.Context, concept domain.CharacterConcept, directions []domain.Direction) (*generator.BatchResult, error) {
				variants := make(map[domain.Direction]domain.ImageResult, len(directions))
				for _, d := range directions {
					variants[d] = domain.ImageResult{Data: frame, MimeType: "image/png"}
				}
				return &generator.BatchResult{Seed: 1, Variants: variants}, nil
			},
		}
		var storedRef string
		rec := &mockRecorder{
			createFunc: func(ctx context.Context, ownerID, prompt, imageRef string, size int, style string) (*domain.SpriteRecord, error) {
				storedRef = imageRef
				return &domain.SpriteRecord{ID: "sheet-1", ImageRef: imageRef}, nil
			},
		}
		svc := newTestService(nil, rot, nil, nil, rec)

		set, err := svc.GenerateRotations(ctx, "owner-1",
			domain.CharacterConcept{Description: "knight", Size: 8},
			domain.AllDirections(), 4)
		if err != nil {
			t.Fatalf("GenerateRotations failed: %v", err)
		}
		if set.Sheet == nil {
			t.Fatal("expected a composed sheet record")
		}

		// 8方位を4列 → 8x8 のセルで 32x16 のシートになる
		_, data, err := sheet.ParseDataURL(storedRef)
		if err != nil {
			t.Fatalf("sheet ref is not a data URL: %v", err)
		}
		img, err := sheet.Decode(data)
		if err != nil {
			t.Fatalf("sheet is not decodable: %v", err)
		}
		if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 16 {
			t.Errorf("expected 32x16 sheet, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
		}
	})
}

func TestSpriteService_AnimateSprite(t *testing.T) {
	ctx := context.Background()

	t.Run("フレーム列がシートに合成され、アクション付きプロンプトで保存されること", func(t *testing.T) {
		frame := framePNG(t, 16, 16)
		anim := &mockAnimator{
			animateFunc: func(ctx context.Context, req domain.AnimationRequest) (*domain.Animation, error) {
				frames := make([]domain.ImageResult, req.FrameCount)
				for i := range frames {
					frames[i] = domain.ImageResult{Data: frame, MimeType: "image/png"}
				}
				return &domain.Animation{Action: req.Action, Frames: frames}, nil
			},
		}
		var storedPrompt, storedRef string
		rec := &mockRecorder{
			createFunc: func(ctx context.Context, ownerID, prompt, imageRef string, size int, style string) (*domain.SpriteRecord, error) {
				storedPrompt = prompt
				storedRef = imageRef
				return &domain.SpriteRecord{ID: "anim-1"}, nil
			},
		}
		svc := newTestService(nil, nil, anim, nil, rec)

		_, err := svc.AnimateSprite(ctx, "owner-1", domain.AnimationRequest{
			Reference:   framePNG(t, 16, 16),
			Description: "archer",
			Action:      "walk",
			FrameCount:  4,
			Size:        16,
		}, 4)
		if err != nil {
			t.Fatalf("AnimateSprite failed: %v", err)
		}
		if storedPrompt != "archer (walk)" {
			t.Errorf("unexpected prompt: %s", storedPrompt)
		}

		_, data, err := sheet.ParseDataURL(storedRef)
		if err != nil {
			t.Fatalf("ref is not a data URL: %v", err)
		}
		img, err := sheet.Decode(data)
		if err != nil {
			t.Fatalf("sheet is not decodable: %v", err)
		}
		if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 16 {
			t.Errorf("expected 64x16 sheet, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
		}
	})

	t.Run("アニメーション失敗時は何も保存されないこと", func(t *testing.T) {
		animErr := &domain.AnimationError{Kind: domain.AnimationGenerationFailed, Message: "boom"}
		anim := &mockAnimator{
			animateFunc: func(ctx context.Context, req domain.AnimationRequest) (*domain.Animation, error) {
				return nil, animErr
			},
		}
		stored := false
		rec := &mockRecorder{
			createFunc: func(ctx context.Context, ownerID, prompt, imageRef string, size int, style string) (*domain.SpriteRecord, error) {
				stored = true
				return nil, nil
			},
		}
		svc := newTestService(nil, nil, anim, nil, rec)

		_, err := svc.AnimateSprite(ctx, "owner-1", domain.AnimationRequest{Description: "archer", Action: "walk", FrameCount: 4, Size: 16}, 4)
		if !errors.Is(err, animErr) {
			t.Errorf("expected animation error, got %v", err)
		}
		if stored {
			t.Error("nothing should be persisted on failure")
		}
	})
}

func TestSpriteService_EnhanceSprite(t *testing.T) {
	ctx := context.Background()

	t.Run("成功: 保存済み画像が復元されてエンハンスに渡り、結果が紐づくこと", func(t *testing.T) {
		original := framePNG(t, 8, 8)
		rec := &mockRecorder{
			getFunc: func(ctx context.Context, ownerID, spriteID string) (*domain.SpriteRecord, error) {
				return &domain.SpriteRecord{
					ID:       spriteID,
					OwnerID:  ownerID,
					ImageRef: sheet.DataURL("image/png", original),
				}, nil
			},
		}
		var observedBase []byte
		enh := &mockEnhancer{
			enhanceFunc: func(ctx context.Context, base []byte, prompt, style string) (*domain.EnhancedImage, error) {
				observedBase = base
				return &domain.EnhancedImage{Data: []byte("enhanced"), MimeType: "image/png", LatencyMS: 321}, nil
			},
		}
		svc := newTestService(nil, nil, nil, enh, rec)

		record, err := svc.EnhanceSprite(ctx, "owner-1", "sprite-1", "photorealistic", "cinematic")
		if err != nil {
			t.Fatalf("EnhanceSprite failed: %v", err)
		}
		if !bytes.Equal(observedBase, original) {
			t.Error("base image was not restored from the stored reference")
		}
		if record.LatencyMS != 321 {
			t.Errorf("latency not propagated: %d", record.LatencyMS)
		}
	})

	t.Run("競合: 2回目のエンハンスは ErrEnhancedConflict がそのまま返ること", func(t *testing.T) {
		rec := &mockRecorder{
			getFunc: func(ctx context.Context, ownerID, spriteID string) (*domain.SpriteRecord, error) {
				return &domain.SpriteRecord{ID: spriteID, ImageRef: sheet.DataURL("image/png", framePNG(t, 4, 4))}, nil
			},
			attachFunc: func(ctx context.Context, spriteID, imageRef, prompt, style string, latencyMS int64) (*domain.EnhancedRecord, error) {
				return nil, domain.ErrEnhancedConflict
			},
		}
		svc := newTestService(nil, nil, nil, nil, rec)

		_, err := svc.EnhanceSprite(ctx, "owner-1", "sprite-1", "photorealistic", "")
		if !errors.Is(err, domain.ErrEnhancedConflict) {
			t.Errorf("expected conflict, got %v", err)
		}
	})

	t.Run("他オーナーのスプライトはエンハンスできないこと", func(t *testing.T) {
		svc := newTestService(nil, nil, nil, nil, &mockRecorder{}) // getFunc 未設定 = not found
		_, err := svc.EnhanceSprite(ctx, "owner-2", "sprite-1", "prompt", "")
		if !errors.Is(err, domain.ErrSpriteNotFound) {
			t.Errorf("expected ErrSpriteNotFound, got %v", err)
		}
	})
}

func TestSpriteService_History(t *testing.T) {
	ctx := context.Background()

	t.Run("履歴とクリアが Recorder に委譲されること", func(t *testing.T) {
		var listedOwner, deletedOwner string
		rec := &mockRecorder{
			listFunc: func(ctx context.Context, ownerID string, offset, limit int) ([]store.HistoryEntry, error) {
				listedOwner = ownerID
				return []store.HistoryEntry{{Sprite: domain.SpriteRecord{ID: "sprite-1"}}}, nil
			},
			deleteFunc: func(ctx context.Context, ownerID string) (int64, error) {
				deletedOwner = ownerID
				return 3, nil
			},
		}
		svc := newTestService(nil, nil, nil, nil, rec)

		entries, err := svc.History(ctx, "owner-1", 0, 10)
		if err != nil {
			t.Fatalf("History failed: %v", err)
		}
		if len(entries) != 1 || listedOwner != "owner-1" {
			t.Errorf("history not delegated: owner=%s entries=%d", listedOwner, len(entries))
		}

		count, err := svc.ClearHistory(ctx, "owner-1")
		if err != nil {
			t.Fatalf("ClearHistory failed: %v", err)
		}
		if count != 3 || deletedOwner != "owner-1" {
			t.Errorf("clear not delegated: owner=%s count=%d", deletedOwner, count)
		}
	})
}
