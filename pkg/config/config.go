// Package config はプロセス環境から設定値を一度だけ組み立てます。
// パイプライン各層は環境変数を直接読まず、ここで構築した値を
// コンストラクタ経由で受け取ります。
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/shouni/pixel-sprite-kit/pkg/domain"
)

// Config はパイプライン全体の設定値です。
type Config struct {
	// ピクセルアート生成プロバイダー
	PixelLabBaseURL string `env:"PIXELLAB_BASE_URL" envDefault:"https://api.pixellab.ai/v1"`
	PixelLabAPIKey  string `env:"PIXELLAB_API_KEY"`

	// エンハンス用の二次生成プロバイダー
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_IMAGE_MODEL" envDefault:"gemini-2.5-flash-image"`

	// 永続化
	DatabaseDSN string `env:"SPRITE_DB_DSN" envDefault:"sprites.db"`

	// バッチ生成の同時呼び出し上限とプロバイダー呼び出しのタイムアウト
	WorkerLimit    int           `env:"SPRITE_WORKER_LIMIT" envDefault:"4"`
	RequestTimeout time.Duration `env:"SPRITE_REQUEST_TIMEOUT" envDefault:"60s"`
}

// Load は .env（あれば）とプロセス環境から Config を構築します。
// 必須の資格情報が欠けている場合は ConfigurationError を返します。
func Load() (*Config, error) {
	// .env が無いのは通常運用なのでエラーにしない
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("環境変数の解析に失敗しました: %w", err)
	}

	if cfg.PixelLabAPIKey == "" {
		return nil, &domain.ConfigurationError{Name: "PIXELLAB_API_KEY"}
	}
	if cfg.GeminiAPIKey == "" {
		return nil, &domain.ConfigurationError{Name: "GEMINI_API_KEY"}
	}
	return &cfg, nil
}
