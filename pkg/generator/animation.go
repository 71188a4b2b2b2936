package generator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"

	"github.com/shouni/pixel-sprite-kit/pkg/domain"
)

// AnimationGenerator はリファレンス画像に紐づくアニメーション生成を担当します。
// フレーム間の一貫性はプロバイダー側の責務のため、常に1リクエストで全フレームを要求し、
// フレーム単位の並行呼び出しには分解しません。
type AnimationGenerator struct {
	model      PixelArtModel
	httpClient httpkit.ClientInterface
	reader     remoteio.InputReader
}

// NewAnimationGenerator は依存関係を注入して AnimationGenerator を初期化します。
// httpClient と reader は nil を許容します（それぞれ http(s):// / gs:// の
// リファレンス画像を使わない構成向け）。
func NewAnimationGenerator(model PixelArtModel, httpClient httpkit.ClientInterface, reader remoteio.InputReader) (*AnimationGenerator, error) {
	if model == nil {
		return nil, fmt.Errorf("model (PixelArtModel) is required")
	}

	return &AnimationGenerator{
		model:      model,
		httpClient: httpClient,
		reader:     reader,
	}, nil
}

// Animate はリファレンス画像を起点にフレーム列を生成します。
// フレーム0はリファレンスの直接の派生であり、順序は生成順のまま保存されます。
// 部分的な結果は存在せず、失敗は常に呼び出し全体の失敗です。
func (g *AnimationGenerator) Animate(ctx context.Context, req domain.AnimationRequest) (*domain.Animation, error) {
	if req.FrameCount < 1 {
		return nil, &domain.ValidationError{Field: "n_frames", Message: "フレーム数は1以上が必要です"}
	}
	if req.Action == "" {
		return nil, &domain.ValidationError{Field: "action", Message: "アクションラベルは必須です"}
	}
	if req.Direction != "" && !req.Direction.Valid() {
		return nil, &domain.ValidationError{Field: "direction", Message: fmt.Sprintf("不明な方位です: %q", req.Direction)}
	}

	if len(req.Reference) == 0 {
		if req.ReferenceURL == "" {
			return nil, &domain.AnimationError{Kind: domain.AnimationInvalidReference, Message: "リファレンス画像が指定されていません"}
		}
		data, err := g.fetchReference(ctx, req.ReferenceURL)
		if err != nil {
			return nil, &domain.AnimationError{Kind: domain.AnimationInvalidReference, Message: "リファレンス画像の取得に失敗しました", Err: err}
		}
		req.Reference = data
	}

	if mime := http.DetectContentType(req.Reference); !strings.HasPrefix(mime, "image/") {
		return nil, &domain.AnimationError{Kind: domain.AnimationInvalidReference, Message: fmt.Sprintf("リファレンスが画像ではありません (%s)", mime)}
	}

	// 方位ヒントの追記はバッチ生成と同じ流儀
	if hint := req.Direction.FacingHint(); hint != "" {
		req.Description = req.Description + ", " + hint
	}

	slog.InfoContext(ctx, "アニメーション生成をリクエストします",
		"action", req.Action, "frames", req.FrameCount, "direction", req.Direction.String())

	frames, err := g.model.Animate(ctx, req)
	if err != nil {
		return nil, err
	}

	return &domain.Animation{
		Action:    req.Action,
		Direction: req.Direction,
		Frames:    frames,
	}, nil
}

// fetchReference はリファレンス画像の実データを取得します。
// gs:// は remoteio、http(s):// は SSRF 検証の上で HTTP クライアントを使用します。
func (g *AnimationGenerator) fetchReference(ctx context.Context, rawURL string) ([]byte, error) {
	if strings.HasPrefix(rawURL, "gs://") {
		if g.reader == nil {
			return nil, fmt.Errorf("gs:// の読み取りには remoteio.InputReader が必要です")
		}
		rc, err := g.reader.Open(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}

	if g.httpClient == nil {
		return nil, fmt.Errorf("http(s):// の読み取りには httpkit.ClientInterface が必要です")
	}
	if safe, err := IsSafeURL(rawURL); err != nil || !safe {
		return nil, fmt.Errorf("安全ではないURLが指定されました: %w", err)
	}
	return g.httpClient.FetchBytes(ctx, rawURL)
}
