// Package sheet はフレーム列からスプライトシートを合成します。
// 入力・出力ともにデコード済みのピクセルバッファを扱い、
// エンコードとデコードは codec.go の境界関数に限定しています。
package sheet

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/shouni/pixel-sprite-kit/pkg/domain"
)

// Compose はフレーム列を1枚のグリッド配置ビットマップに合成します。
//
// セルの大きさは全フレームの最大幅×最大高、行数は ceil(フレーム数/列数)。
// i 番目のフレームはセル (i mod columns, i div columns) の左上に等倍で置かれ、
// セルより小さいフレームの右・下は透過のまま残ります。拡縮も中央寄せもしません。
// 同じ入力列と列数に対する出力は常にバイト単位で一致します。
func Compose(frames []image.Image, columns int) (*image.NRGBA, error) {
	if len(frames) == 0 {
		return nil, &domain.CompositionError{Kind: domain.CompositionEmptyInput, Message: "フレーム列が空です"}
	}
	if columns < 1 {
		return nil, &domain.CompositionError{Kind: domain.CompositionInvalidColumns, Message: fmt.Sprintf("列数は1以上が必要です: %d", columns)}
	}

	cellW, cellH := 0, 0
	for _, f := range frames {
		if w := f.Bounds().Dx(); w > cellW {
			cellW = w
		}
		if h := f.Bounds().Dy(); h > cellH {
			cellH = h
		}
	}

	rows := (len(frames) + columns - 1) / columns
	dst := image.NewNRGBA(image.Rect(0, 0, columns*cellW, rows*cellH))

	for i, f := range frames {
		x := (i % columns) * cellW
		y := (i / columns) * cellH
		target := image.Rect(x, y, x+f.Bounds().Dx(), y+f.Bounds().Dy())
		draw.Draw(dst, target, f, f.Bounds().Min, draw.Src)
	}
	return dst, nil
}

// ComposeResults は生成結果のバイト列をデコードして合成する便宜関数です。
// デコード失敗はどのフレームで失敗したかを付けて返します。
func ComposeResults(results []domain.ImageResult, columns int) (*image.NRGBA, error) {
	if len(results) == 0 {
		return nil, &domain.CompositionError{Kind: domain.CompositionEmptyInput, Message: "フレーム列が空です"}
	}

	frames := make([]image.Image, 0, len(results))
	for i, r := range results {
		img, err := Decode(r.Data)
		if err != nil {
			return nil, fmt.Errorf("フレーム %d のデコードに失敗しました: %w", i, err)
		}
		frames = append(frames, img)
	}
	return Compose(frames, columns)
}
