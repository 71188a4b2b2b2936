package pixellab

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shouni/pixel-sprite-kit/pkg/domain"
)

const (
	defaultTimeout = 60 * time.Second

	// 一時的な失敗に対する再試行回数と初回バックオフ。
	// クォータ・認証・パラメータ不正は再試行しません。
	maxRetries       = 3
	retryBaseBackoff = 500 * time.Millisecond
)

// Client はピクセルアート生成プロバイダーの HTTP クライアントです。
// 1メソッド = プロバイダーへの1呼び出し。結果のキャッシュは行わず、
// 再利用の判断は呼び出し側に委ねます。
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient は依存関係を検証して Client を初期化します。
// httpClient が nil の場合は既定タイムアウト付きのクライアントを使用します。
func NewClient(baseURL, apiKey string, httpClient *http.Client) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is required")
	}
	if apiKey == "" {
		return nil, &domain.ConfigurationError{Name: "PIXELLAB_API_KEY"}
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
	}, nil
}

// Generate は1枚のピクセルアート画像を生成します。
func (c *Client) Generate(ctx context.Context, concept domain.CharacterConcept) (*domain.ImageResult, error) {
	if concept.Description == "" {
		return nil, &domain.ValidationError{Field: "description", Message: "説明文は必須です"}
	}
	if concept.Size < 1 {
		return nil, &domain.ValidationError{Field: "size", Message: "ピクセルサイズは1以上が必要です"}
	}

	body := generateRequest{
		Description:         concept.Description,
		NegativeDescription: concept.NegativeDescription,
		ImageSize:           imageSize{Width: concept.Size, Height: concept.Size},
		Outline:             concept.Style.Outline,
		Shading:             concept.Style.Shading,
		Detail:              concept.Style.Detail,
		Projection:          concept.Style.Projection,
		View:                concept.Style.View,
		Seed:                concept.Seed,
	}

	var resp generateResponse
	if err := c.postWithRetry(ctx, "/generate-image", body, &resp); err != nil {
		return nil, err
	}
	return decodePayload(resp.Image, resp.UsedSeed)
}

// Animate はリファレンス画像に紐づくフレーム列を1リクエストで生成します。
// フレーム間の一貫性はプロバイダー側の責務のため、フレーム単位には分割しません。
func (c *Client) Animate(ctx context.Context, req domain.AnimationRequest) ([]domain.ImageResult, error) {
	if len(req.Reference) == 0 {
		return nil, &domain.AnimationError{Kind: domain.AnimationInvalidReference, Message: "リファレンス画像がありません"}
	}
	if req.FrameCount < 1 {
		return nil, &domain.ValidationError{Field: "n_frames", Message: "フレーム数は1以上が必要です"}
	}

	body := animateRequest{
		Description: req.Description,
		Action:      req.Action,
		Direction:   req.Direction.String(),
		ImageSize:   imageSize{Width: req.Size, Height: req.Size},
		NFrames:     req.FrameCount,
		ReferenceImage: &imagePayload{
			Type:   "base64",
			Base64: base64.StdEncoding.EncodeToString(req.Reference),
		},
		Outline:    req.Style.Outline,
		Shading:    req.Style.Shading,
		Detail:     req.Style.Detail,
		Projection: req.Style.Projection,
		View:       req.Style.View,
		Seed:       req.Seed,
	}

	var resp animateResponse
	if err := c.postWithRetry(ctx, "/animate-with-text", body, &resp); err != nil {
		return nil, &domain.AnimationError{Kind: domain.AnimationGenerationFailed, Message: "プロバイダー呼び出しに失敗しました", Err: err}
	}

	// フレーム数の不一致は部分結果として返さず、全体の失敗として扱う
	if len(resp.Images) != req.FrameCount {
		return nil, &domain.AnimationError{
			Kind:    domain.AnimationGenerationFailed,
			Message: fmt.Sprintf("期待フレーム数 %d に対して %d フレームが返されました", req.FrameCount, len(resp.Images)),
		}
	}

	frames := make([]domain.ImageResult, 0, len(resp.Images))
	for i := range resp.Images {
		frame, err := decodePayload(&resp.Images[i], resp.UsedSeed)
		if err != nil {
			return nil, &domain.AnimationError{Kind: domain.AnimationGenerationFailed, Message: fmt.Sprintf("フレーム %d の復号に失敗しました", i), Err: err}
		}
		frames = append(frames, *frame)
	}
	return frames, nil
}

// postWithRetry は JSON POST を実行し、一時的な失敗のみ指数バックオフで再試行します。
func (c *Client) postWithRetry(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("リクエストのエンコードに失敗しました: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := retryBaseBackoff << (attempt - 1)
			slog.WarnContext(ctx, "一時的な失敗のため再試行します",
				"path", path, "attempt", attempt, "backoff", backoff, "error", lastErr)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return &domain.GenerationError{Kind: domain.GenerationTransient, Message: "再試行待機中にキャンセルされました", Err: ctx.Err()}
			}
		}

		lastErr = c.post(ctx, path, payload, out)
		if lastErr == nil {
			return nil
		}

		var genErr *domain.GenerationError
		if !errors.As(lastErr, &genErr) || !genErr.Retryable() {
			return lastErr
		}
	}
	return lastErr
}

func (c *Client) post(ctx context.Context, path string, payload []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("リクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.GenerationError{Kind: domain.GenerationTransient, Message: "ネットワークエラー", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.GenerationError{Kind: domain.GenerationTransient, Message: "レスポンスの読み取りに失敗しました", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return classifyStatus(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &domain.GenerationError{Kind: domain.GenerationTransient, Message: "レスポンスの解析に失敗しました", Err: err}
	}
	return nil
}

// classifyStatus は HTTP ステータスを GenerationError の分類に写像します。
// プロバイダーのエラー詳細 (detail) は失われないよう Message に残します。
func classifyStatus(status int, body []byte) error {
	var echoed struct {
		Detail string `json:"detail"`
	}
	_ = json.Unmarshal(body, &echoed)
	detail := echoed.Detail
	if detail == "" {
		detail = string(body)
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &domain.GenerationError{Kind: domain.GenerationAuthFailure,
			Message: fmt.Sprintf("認証に失敗しました (HTTP %d): %s — APIキーを確認してください", status, detail)}
	case status == http.StatusPaymentRequired || status == http.StatusTooManyRequests:
		return &domain.GenerationError{Kind: domain.GenerationQuotaExceeded,
			Message: fmt.Sprintf("クォータを超過しました (HTTP %d): %s — プランの利用上限を確認してください", status, detail)}
	case status >= 400 && status < 500:
		return &domain.GenerationError{Kind: domain.GenerationInvalidParams,
			Message: fmt.Sprintf("リクエストが拒否されました (HTTP %d): %s", status, detail)}
	default:
		return &domain.GenerationError{Kind: domain.GenerationTransient,
			Message: fmt.Sprintf("プロバイダー側エラー (HTTP %d): %s", status, detail)}
	}
}

func decodePayload(p *imagePayload, usedSeed int64) (*domain.ImageResult, error) {
	if p == nil || p.Base64 == "" {
		return nil, &domain.GenerationError{Kind: domain.GenerationTransient, Message: "レスポンスに画像がありません"}
	}
	data, err := base64.StdEncoding.DecodeString(p.Base64)
	if err != nil {
		return nil, &domain.GenerationError{Kind: domain.GenerationTransient, Message: "画像の base64 復号に失敗しました", Err: err}
	}
	return &domain.ImageResult{Data: data, MimeType: http.DetectContentType(data), UsedSeed: usedSeed}, nil
}
