package pixellab

// プロバイダー API とのワイヤ型定義。
// レスポンスはこのパッケージ内で一度だけ解析し、domain.ImageResult に変換して返します。

type imageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type imagePayload struct {
	Type   string `json:"type"` // 常に "base64"
	Base64 string `json:"base64"`
}

type generateRequest struct {
	Description         string    `json:"description"`
	NegativeDescription string    `json:"negative_description,omitempty"`
	ImageSize           imageSize `json:"image_size"`
	Outline             string    `json:"outline,omitempty"`
	Shading             string    `json:"shading,omitempty"`
	Detail              string    `json:"detail,omitempty"`
	Projection          string    `json:"projection,omitempty"`
	View                string    `json:"view,omitempty"`
	Seed                *int64    `json:"seed,omitempty"`
}

type generateResponse struct {
	Image    *imagePayload `json:"image"`
	UsedSeed int64         `json:"used_seed"`
	Detail   string        `json:"detail"` // エラー時の説明文
}

type animateRequest struct {
	Description    string        `json:"description"`
	Action         string        `json:"action"`
	Direction      string        `json:"direction,omitempty"`
	ImageSize      imageSize     `json:"image_size"`
	NFrames        int           `json:"n_frames"`
	ReferenceImage *imagePayload `json:"reference_image"`
	Outline        string        `json:"outline,omitempty"`
	Shading        string        `json:"shading,omitempty"`
	Detail         string        `json:"detail,omitempty"`
	Projection     string        `json:"projection,omitempty"`
	View           string        `json:"view,omitempty"`
	Seed           *int64        `json:"seed,omitempty"`
}

type animateResponse struct {
	Images   []imagePayload `json:"images"`
	UsedSeed int64          `json:"used_seed"`
	Detail   string         `json:"detail"`
}
