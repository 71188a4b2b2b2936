package domain

// StyleOptions はピクセルアート生成時の画風指定です。
// 各フィールドは空文字でプロバイダー既定値に委ねます。
type StyleOptions struct {
	Outline    string `json:"outline,omitempty"`    // 例: "single color black outline"
	Shading    string `json:"shading,omitempty"`    // 例: "basic shading"
	Detail     string `json:"detail,omitempty"`     // 例: "medium detail"
	Projection string `json:"projection,omitempty"` // 例: "isometric"
	View       string `json:"view,omitempty"`       // 例: "low top-down"
}

// CharacterConcept は単一キャラクターの生成要求です。
// 生成呼び出しに渡した後は不変として扱います。
// Seed を *int64 にすることで「未指定＝プロバイダー任せ」を表現しています。
type CharacterConcept struct {
	Description         string
	NegativeDescription string
	Size                int // 正方形キャンバスの一辺（ピクセル）
	Style               StyleOptions
	Seed                *int64
}

// WithFacing は方位ヒントを説明文に追記した複製を返します。
// 元の Concept は変更しません。
func (c CharacterConcept) WithFacing(d Direction) CharacterConcept {
	out := c
	if hint := d.FacingHint(); hint != "" {
		out.Description = c.Description + ", " + hint
	}
	return out
}

// WithSeed はシード値を固定した複製を返します。
func (c CharacterConcept) WithSeed(seed int64) CharacterConcept {
	out := c
	out.Seed = &seed
	return out
}

// ImageResult は生成された画像データとそのメタデータです。
type ImageResult struct {
	Data     []byte
	MimeType string
	UsedSeed int64 // 情報欠落を防ぐため int64 を維持
}

// DirectionalVariant は1方位分の生成結果です。
// 同一バッチ内のすべての Variant は同じシードを共有します。
type DirectionalVariant struct {
	Direction Direction
	Image     ImageResult
}

// AnimationRequest はリファレンス画像に紐づくアニメーション生成要求です。
// Reference が空の場合は ReferenceURL から取得されます。
type AnimationRequest struct {
	Reference    []byte
	ReferenceURL string
	Description  string
	Action       string    // walk, attack, idle 等の自由記述
	Direction    Direction // 空文字で未指定
	FrameCount   int
	Size         int
	Style        StyleOptions
	Seed         *int64
}

// Animation はアニメーション生成の成果物です。
// Frames の順序は生成順そのものであり、全工程で保存されます。
type Animation struct {
	Action    string
	Direction Direction
	Frames    []ImageResult
}

// EnhancedImage はエンハンス（二次生成）の成果物です。
type EnhancedImage struct {
	Data      []byte
	MimeType  string
	LatencyMS int64 // プロバイダー呼び出しの実測壁時計時間
}
