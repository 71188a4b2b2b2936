// Package enhance は生成済みスプライトを二次生成プロバイダー（Gemini）で
// スタイル変換するパイプラインです。
package enhance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"

	"github.com/shouni/pixel-sprite-kit/pkg/domain"
)

// Enhancer は1枚のスプライトに対して1回のエンハンス呼び出しを実行します。
// エンハンスは生成経路の外にある任意工程のため、再試行は行わず
// プロバイダーの失敗をそのまま表面化させます。
type Enhancer struct {
	aiClient gemini.GenerativeModel
	model    string
}

// NewEnhancer は依存関係を注入して Enhancer を初期化します。
func NewEnhancer(aiClient gemini.GenerativeModel, model string) (*Enhancer, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient (gemini.GenerativeModel) is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model name is required")
	}

	return &Enhancer{
		aiClient: aiClient,
		model:    model,
	}, nil
}

// Enhance は元画像とプロンプトを1回の生成リクエストにまとめて送り、
// エンハンス結果と実測レイテンシ（ミリ秒）を返します。
func (e *Enhancer) Enhance(ctx context.Context, base []byte, prompt, style string) (*domain.EnhancedImage, error) {
	if len(base) == 0 {
		return nil, &domain.ValidationError{Field: "base_image", Message: "元画像がありません"}
	}
	if prompt == "" {
		return nil, &domain.ValidationError{Field: "prompt", Message: "エンハンスプロンプトは必須です"}
	}

	imgPart := toPart(base)
	if imgPart == nil {
		return nil, &domain.ValidationError{Field: "base_image", Message: "元画像が画像として認識できません"}
	}

	text := prompt
	if style != "" {
		text = prompt + ", " + style
	}
	parts := []*genai.Part{{Text: text}, imgPart}

	slog.InfoContext(ctx, "エンハンス生成をリクエストします", "model", e.model, "prompt_len", len(text))

	start := time.Now()
	resp, err := e.aiClient.GenerateWithParts(ctx, e.model, parts, gemini.GenerateOptions{})
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return nil, fmt.Errorf("エンハンス生成に失敗しました: %w", err)
	}

	out, err := parseToImage(resp)
	if err != nil {
		return nil, err
	}
	out.LatencyMS = latency
	return out, nil
}
