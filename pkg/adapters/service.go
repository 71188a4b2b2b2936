// Package adapters はドメインのリクエストを生成・合成・永続化の各層へ
// 橋渡しするサービス層です。ネットワーク側のリクエストハンドラは
// この層だけを呼び出します。
package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"

	"github.com/shouni/pixel-sprite-kit/pkg/domain"
	"github.com/shouni/pixel-sprite-kit/pkg/generator"
	"github.com/shouni/pixel-sprite-kit/pkg/sheet"
	"github.com/shouni/pixel-sprite-kit/pkg/store"
)

// SpriteService は生成パイプライン全体のオーケストレーションを担当します。
// 各依存はインターフェースで注入され、内部で環境を読むことはありません。
type SpriteService struct {
	generator  SpriteGenerator
	rotator    RotationGenerator
	animator   FrameAnimator
	enhancer   ImageEnhancer
	recorder   Recorder
	httpClient httpkit.ClientInterface // リモート画像参照の取得用。nil で data URL のみ対応
	timeout    time.Duration
}

// NewSpriteService は依存関係を注入して SpriteService を初期化します。
// timeout が 0 以下の場合はタイムアウトを設けません。
func NewSpriteService(
	gen SpriteGenerator,
	rotator RotationGenerator,
	animator FrameAnimator,
	enhancer ImageEnhancer,
	recorder Recorder,
	httpClient httpkit.ClientInterface,
	timeout time.Duration,
) (*SpriteService, error) {
	if gen == nil {
		return nil, fmt.Errorf("gen (SpriteGenerator) is required")
	}
	if rotator == nil {
		return nil, fmt.Errorf("rotator (RotationGenerator) is required")
	}
	if animator == nil {
		return nil, fmt.Errorf("animator (FrameAnimator) is required")
	}
	if enhancer == nil {
		return nil, fmt.Errorf("enhancer (ImageEnhancer) is required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("recorder (Recorder) is required")
	}
	// httpClient は nil を許容

	return &SpriteService{
		generator:  gen,
		rotator:    rotator,
		animator:   animator,
		enhancer:   enhancer,
		recorder:   recorder,
		httpClient: httpClient,
		timeout:    timeout,
	}, nil
}

func (s *SpriteService) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}

// GenerateSprite は1枚のスプライトを生成して永続化します。
func (s *SpriteService) GenerateSprite(ctx context.Context, ownerID string, concept domain.CharacterConcept) (*domain.SpriteRecord, error) {
	ctx, cancel := s.callContext(ctx)
	defer cancel()

	result, err := s.generator.Generate(ctx, concept)
	if err != nil {
		return nil, err
	}

	ref := sheet.DataURL(result.MimeType, result.Data)
	return s.recorder.CreateSprite(ctx, ownerID, concept.Description, ref, concept.Size, styleJSON(concept.Style))
}

// RotationSet は方位バッチの成果です。
// 一部の方位が失敗した場合も成功分の参照と失敗一覧の両方を保持します。
type RotationSet struct {
	Seed   int64
	Refs   map[domain.Direction]string
	Failed []generator.DirectionFailure
	Sheet  *domain.SpriteRecord // sheetColumns > 0 のときのみ
}

// GenerateRotations は方位バッチを生成し、成功した方位の画像参照を返します。
// sheetColumns が正の場合は成功分をスプライトシートに合成して1レコードとして保存します。
func (s *SpriteService) GenerateRotations(ctx context.Context, ownerID string, concept domain.CharacterConcept, directions []domain.Direction, sheetColumns int) (*RotationSet, error) {
	ctx, cancel := s.callContext(ctx)
	defer cancel()

	batch, err := s.rotator.Batch(ctx, concept, directions)
	if err != nil {
		return nil, err
	}

	set := &RotationSet{
		Seed:   batch.Seed,
		Refs:   make(map[domain.Direction]string, len(batch.Variants)),
		Failed: batch.Failed,
	}
	for d, v := range batch.Variants {
		set.Refs[d] = sheet.DataURL(v.MimeType, v.Data)
	}

	if sheetColumns > 0 && len(batch.Variants) > 0 {
		// シート内の並びは入力方位の順序に従う（スケジューリング非依存）
		ordered := make([]domain.ImageResult, 0, len(batch.Variants))
		for _, d := range directions {
			if v, ok := batch.Variants[d]; ok {
				ordered = append(ordered, v)
			}
		}
		record, err := s.composeAndStore(ctx, ownerID, concept.Description+" (rotations)", ordered, sheetColumns, concept.Size, concept.Style)
		if err != nil {
			return nil, err
		}
		set.Sheet = record
	}
	return set, nil
}

// AnimateSprite はアニメーションを生成し、フレームをスプライトシートに
// 合成した1枚として永続化します。フレーム順はシート上の並びにそのまま現れます。
func (s *SpriteService) AnimateSprite(ctx context.Context, ownerID string, req domain.AnimationRequest, sheetColumns int) (*domain.SpriteRecord, error) {
	ctx, cancel := s.callContext(ctx)
	defer cancel()

	anim, err := s.animator.Animate(ctx, req)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf("%s (%s)", req.Description, req.Action)
	return s.composeAndStore(ctx, ownerID, prompt, anim.Frames, sheetColumns, req.Size, req.Style)
}

func (s *SpriteService) composeAndStore(ctx context.Context, ownerID, prompt string, frames []domain.ImageResult, columns, size int, style domain.StyleOptions) (*domain.SpriteRecord, error) {
	composite, err := sheet.ComposeResults(frames, columns)
	if err != nil {
		return nil, err
	}
	data, err := sheet.EncodePNG(composite)
	if err != nil {
		return nil, err
	}
	ref := sheet.DataURL("image/png", data)
	return s.recorder.CreateSprite(ctx, ownerID, prompt, ref, size, styleJSON(style))
}

// EnhanceSprite は既存スプライトをエンハンスし、結果を 1:1 で紐づけます。
// 既にエンハンス済みの場合は domain.ErrEnhancedConflict がそのまま返ります。
func (s *SpriteService) EnhanceSprite(ctx context.Context, ownerID, spriteID, prompt, style string) (*domain.EnhancedRecord, error) {
	ctx, cancel := s.callContext(ctx)
	defer cancel()

	sprite, err := s.recorder.GetSprite(ctx, ownerID, spriteID)
	if err != nil {
		return nil, err
	}

	base, err := s.resolveImageRef(ctx, sprite.ImageRef)
	if err != nil {
		return nil, fmt.Errorf("元画像の取得に失敗しました: %w", err)
	}

	enhanced, err := s.enhancer.Enhance(ctx, base, prompt, style)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "エンハンスが完了しました",
		"sprite_id", spriteID, "latency_ms", enhanced.LatencyMS)

	ref := sheet.DataURL(enhanced.MimeType, enhanced.Data)
	return s.recorder.AttachEnhanced(ctx, spriteID, ref, prompt, style, enhanced.LatencyMS)
}

// resolveImageRef はストレージ非依存の画像参照を実データに解決します。
func (s *SpriteService) resolveImageRef(ctx context.Context, ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "data:") {
		_, data, err := sheet.ParseDataURL(ref)
		return data, err
	}
	if s.httpClient == nil {
		return nil, fmt.Errorf("リモート参照 %q を解決する HTTP クライアントがありません", ref)
	}
	if safe, err := generator.IsSafeURL(ref); err != nil || !safe {
		return nil, fmt.Errorf("安全ではないURLが指定されました: %w", err)
	}
	return s.httpClient.FetchBytes(ctx, ref)
}

// History はオーナーの生成履歴を新しい順で返します。
func (s *SpriteService) History(ctx context.Context, ownerID string, offset, limit int) ([]store.HistoryEntry, error) {
	return s.recorder.ListHistory(ctx, ownerID, offset, limit)
}

// ClearHistory はオーナーの履歴をすべて削除し、削除件数を返します。
func (s *SpriteService) ClearHistory(ctx context.Context, ownerID string) (int64, error) {
	return s.recorder.DeleteAll(ctx, ownerID)
}

func styleJSON(style domain.StyleOptions) string {
	data, err := json.Marshal(style)
	if err != nil {
		return "{}"
	}
	return string(data)
}
