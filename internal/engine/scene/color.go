package scene

// Color is a linear RGB triple.
type Color [3]float32

// Hex converts a 0xRRGGBB value.
func Hex(v uint32) Color {
	return Color{
		float32((v>>16)&0xff) / 255,
		float32((v>>8)&0xff) / 255,
		float32(v&0xff) / 255,
	}
}

// White is 0xffffff.
var White = Color{1, 1, 1}
