package sheet

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"regexp"

	_ "golang.org/x/image/webp"
)

// 画像参照として保存する data URL のパターン
var dataURLPattern = regexp.MustCompile(`^data:([^;]+);base64,(.*)$`)

// Decode はバイト列を画像にデコードします。
// PNG, JPEG, GIF, WebP に対応しています。
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("画像のデコードに失敗しました: %w", err)
	}
	return img, nil
}

// EncodePNG は画像をPNGバイト列にエンコードします。
// 標準エンコーダーの出力は同一入力に対して決定的です。
func EncodePNG(img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return nil, fmt.Errorf("PNGエンコードに失敗しました: %w", err)
	}
	return buf.Bytes(), nil
}

// CompressToJPEG は画像データ（PNG, GIF, JPEG等）をJPEG形式に圧縮します。
// image.Decodeがサポートするフォーマットに対応しています。
func CompressToJPEG(data []byte, quality int) ([]byte, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DataURL はバイト列をストレージ非依存の画像参照（data URL）に変換します。
func DataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURL は data URL 形式の画像参照から MIME タイプと実データを復元します。
func ParseDataURL(ref string) (mimeType string, data []byte, err error) {
	m := dataURLPattern.FindStringSubmatch(ref)
	if m == nil {
		return "", nil, fmt.Errorf("data URL 形式ではありません")
	}
	data, err = base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return "", nil, fmt.Errorf("data URL の base64 復号に失敗しました: %w", err)
	}
	return m[1], data, nil
}
