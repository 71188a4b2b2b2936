package generator

import (
	"context"
	"io"
	"net/http"

	"github.com/shouni/go-remote-io/pkg/remoteio"

	"github.com/shouni/pixel-sprite-kit/pkg/domain"
)

// mockPixelArtModel は PixelArtModel インターフェースのテスト用モックなのだ。
type mockPixelArtModel struct {
	generateFunc func(ctx context.Context, concept domain.CharacterConcept) (*domain.ImageResult, error)
	animateFunc  func(ctx context.Context, req domain.AnimationRequest) ([]domain.ImageResult, error)
}

func (m *mockPixelArtModel) Generate(ctx context.Context, concept domain.CharacterConcept) (*domain.ImageResult, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, concept)
	}
	return &domain.ImageResult{Data: []byte("mock-image"), MimeType: "image/png"}, nil
}

func (m *mockPixelArtModel) Animate(ctx context.Context, req domain.AnimationRequest) ([]domain.ImageResult, error) {
	if m.animateFunc != nil {
		return m.animateFunc(ctx, req)
	}
	return nil, nil
}

// mockHTTPClient は httpkit.ClientInterface を実装します。
type mockHTTPClient struct {
	fetchFunc func(ctx context.Context, url string) ([]byte, error)
}

func (m *mockHTTPClient) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, url)
	}
	return nil, nil
}

// インターフェースを満たすための空実装群なのだ
func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return nil, nil
}

func (m *mockHTTPClient) DoRequest(req *http.Request) ([]byte, error) {
	return nil, nil
}

func (m *mockHTTPClient) FetchAndDecodeJSON(ctx context.Context, url string, v any) error {
	return nil
}

func (m *mockHTTPClient) PostJSONAndFetchBytes(ctx context.Context, url string, data any) ([]byte, error) {
	return nil, nil
}

func (m *mockHTTPClient) PostRawBodyAndFetchBytes(ctx context.Context, url string, body []byte, contentType string) ([]byte, error) {
	return nil, nil
}

func (m *mockHTTPClient) IsSafeURL(urlStr string) (bool, error) {
	return true, nil
}

func (m *mockHTTPClient) IsSecureServiceURL(serviceURL string) bool {
	return true
}

// mockReader は remoteio.InputReader のテスト用モックなのだ。
// 他のメソッドはインターフェースの埋め込みで解決するのだ。
type mockReader struct {
	remoteio.InputReader
	openFunc func(ctx context.Context, uri string) (io.ReadCloser, error)
}

func (m *mockReader) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	if m.openFunc != nil {
		return m.openFunc(ctx, uri)
	}
	return nil, nil
}
