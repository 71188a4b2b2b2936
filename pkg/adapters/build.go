package adapters

import (
	"fmt"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"

	"github.com/shouni/pixel-sprite-kit/pkg/config"
	"github.com/shouni/pixel-sprite-kit/pkg/enhance"
	"github.com/shouni/pixel-sprite-kit/pkg/generator"
	"github.com/shouni/pixel-sprite-kit/pkg/pixellab"
	"github.com/shouni/pixel-sprite-kit/pkg/store"
)

// NewFromConfig は Config から標準構成の SpriteService を組み立てます。
// aiClient と httpClient は通信資源のため呼び出し側が構築して注入します。
// httpClient と reader は nil を許容します（それぞれ http(s):// / gs:// の
// リモート画像参照を使わない構成向け。保存参照は data URL のため必須ではありません）。
func NewFromConfig(cfg *config.Config, aiClient gemini.GenerativeModel, httpClient httpkit.ClientInterface, reader remoteio.InputReader) (*SpriteService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg (config.Config) is required")
	}

	client, err := pixellab.NewClient(cfg.PixelLabBaseURL, cfg.PixelLabAPIKey, nil)
	if err != nil {
		return nil, fmt.Errorf("生成クライアントの構築に失敗しました: %w", err)
	}

	rotator, err := generator.NewBatchGenerator(client, cfg.WorkerLimit)
	if err != nil {
		return nil, err
	}

	animator, err := generator.NewAnimationGenerator(client, httpClient, reader)
	if err != nil {
		return nil, err
	}

	enhancer, err := enhance.NewEnhancer(aiClient, cfg.GeminiModel)
	if err != nil {
		return nil, err
	}

	recorder, err := store.Open(cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	return NewSpriteService(client, rotator, animator, enhancer, recorder, httpClient, cfg.RequestTimeout)
}
