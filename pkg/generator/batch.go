package generator

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/shouni/pixel-sprite-kit/pkg/domain"
)

// DefaultWorkerLimit はバッチ生成の同時呼び出し数の既定値です。
// プロバイダーのレート制限を踏まえた小さい値に抑えています。
const DefaultWorkerLimit = 4

// BatchGenerator は方位ごとの生成呼び出しを束ねるジェネレーターです。
// 全方位が同一キャラクターとして描かれるよう、シードをバッチ内で共有します。
type BatchGenerator struct {
	model   PixelArtModel
	workers int
}

// NewBatchGenerator は依存関係を注入して BatchGenerator を初期化します。
// workers が 0 以下の場合は DefaultWorkerLimit を使用します。
func NewBatchGenerator(model PixelArtModel, workers int) (*BatchGenerator, error) {
	if model == nil {
		return nil, fmt.Errorf("model (PixelArtModel) is required")
	}
	if workers <= 0 {
		workers = DefaultWorkerLimit
	}
	return &BatchGenerator{model: model, workers: workers}, nil
}

// DirectionFailure は1方位分の失敗と、その原因です。
type DirectionFailure struct {
	Direction domain.Direction
	Err       error
}

// BatchResult はバッチ生成の結果です。
// 一部の方位が失敗しても成功分はそのまま返し、利用可否の判断は呼び出し側に委ねます。
type BatchResult struct {
	Seed     int64 // バッチ全体で共有されたシード
	Variants map[domain.Direction]domain.ImageResult
	Failed   []DirectionFailure
}

// Batch は指定された各方位について1回ずつ生成を実行します。
// シード未指定の場合はここで一度だけ生成し、全方位に同じ値を使います。
// 1方位の失敗はバッチを中断せず、Failed に方位名付きで記録されます。
func (g *BatchGenerator) Batch(ctx context.Context, concept domain.CharacterConcept, directions []domain.Direction) (*BatchResult, error) {
	if len(directions) == 0 {
		return nil, &domain.ValidationError{Field: "directions", Message: "方位セットが空です"}
	}
	seen := make(map[domain.Direction]bool, len(directions))
	for _, d := range directions {
		if !d.Valid() {
			return nil, &domain.ValidationError{Field: "directions", Message: fmt.Sprintf("不明な方位です: %q", d)}
		}
		if seen[d] {
			return nil, &domain.ValidationError{Field: "directions", Message: fmt.Sprintf("方位が重複しています: %s", d)}
		}
		seen[d] = true
	}

	seed := dereferenceSeed(concept.Seed)
	if concept.Seed == nil {
		seed = newSeed()
	}
	sealed := concept.WithSeed(seed)

	slog.InfoContext(ctx, "方位バッチ生成を開始します",
		"directions", len(directions), "seed", seed, "workers", g.workers)

	// 方位ごとの結果は入力順のスロットに書き込み、完了後に畳み込む。
	// 出力がゴルーチンのスケジューリングに依存しないようにするため。
	results := make([]*domain.ImageResult, len(directions))
	errs := make([]error, len(directions))

	var eg errgroup.Group
	eg.SetLimit(g.workers)
	for i, d := range directions {
		eg.Go(func() error {
			res, err := g.model.Generate(ctx, sealed.WithFacing(d))
			if err != nil {
				errs[i] = fmt.Errorf("方位 %s の生成に失敗しました: %w", d, err)
				return nil
			}
			results[i] = res
			return nil
		})
	}
	// ワーカーはエラーを返さないため Wait のエラーは常に nil
	_ = eg.Wait()

	out := &BatchResult{
		Seed:     seed,
		Variants: make(map[domain.Direction]domain.ImageResult, len(directions)),
	}
	for i, d := range directions {
		if errs[i] != nil {
			out.Failed = append(out.Failed, DirectionFailure{Direction: d, Err: errs[i]})
			continue
		}
		out.Variants[d] = *results[i]
	}

	if len(out.Failed) > 0 {
		slog.WarnContext(ctx, "一部の方位が失敗しました",
			"succeeded", len(out.Variants), "failed", len(out.Failed))
	}
	return out, nil
}

// BatchAllDirections は正規の8方位すべてに対するバッチ生成です。
func (g *BatchGenerator) BatchAllDirections(ctx context.Context, concept domain.CharacterConcept) (*BatchResult, error) {
	return g.Batch(ctx, concept, domain.AllDirections())
}
