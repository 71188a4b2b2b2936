package domain

import "fmt"

// Direction はキャラクターの向きを表す8方位の列挙型です。
// 生成プロンプトへの注入と JSON の双方で文字列表現を共有します。
type Direction string

const (
	North     Direction = "N"
	NorthEast Direction = "NE"
	East      Direction = "E"
	SouthEast Direction = "SE"
	South     Direction = "S"
	SouthWest Direction = "SW"
	West      Direction = "W"
	NorthWest Direction = "NW"
)

// AllDirections は正規の8方位セットを正規順で返します。
// 返却スライスは呼び出しごとに新規作成されるため、破壊的に扱って構いません。
func AllDirections() []Direction {
	return []Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}
}

// CardinalDirections は4方位（N, E, S, W）のセットを返します。
func CardinalDirections() []Direction {
	return []Direction{North, East, South, West}
}

var facingHints = map[Direction]string{
	North:     "facing north, viewed from behind",
	NorthEast: "facing north-east",
	East:      "facing east, side view",
	SouthEast: "facing south-east",
	South:     "facing south, viewed from the front",
	SouthWest: "facing south-west",
	West:      "facing west, side view",
	NorthWest: "facing north-west",
}

// Valid は方位が8方位のいずれかであるかを判定します。
func (d Direction) Valid() bool {
	_, ok := facingHints[d]
	return ok
}

// FacingHint は生成プロンプトに追記する向き指定のヒント文を返します。
func (d Direction) FacingHint() string {
	return facingHints[d]
}

func (d Direction) String() string {
	return string(d)
}

// ParseDirection は文字列表現（"N", "NE" 等）を Direction に変換します。
func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if !d.Valid() {
		return "", fmt.Errorf("不明な方位です: %q", s)
	}
	return d, nil
}
