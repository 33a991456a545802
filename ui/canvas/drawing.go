package canvas

import (
	"image"
	"image/color"
)

// digitPatterns contains 3x5 pixel patterns for digits 0-9.
// Each digit is represented as 5 rows of 3 bits.
var digitPatterns = [10][5]uint8{
	{0b111, 0b101, 0b101, 0b101, 0b111}, // 0
	{0b010, 0b110, 0b010, 0b010, 0b111}, // 1
	{0b111, 0b001, 0b111, 0b100, 0b111}, // 2
	{0b111, 0b001, 0b111, 0b001, 0b111}, // 3
	{0b101, 0b101, 0b111, 0b001, 0b001}, // 4
	{0b111, 0b100, 0b111, 0b001, 0b111}, // 5
	{0b111, 0b100, 0b111, 0b101, 0b111}, // 6
	{0b111, 0b001, 0b001, 0b001, 0b001}, // 7
	{0b111, 0b101, 0b111, 0b101, 0b111}, // 8
	{0b111, 0b101, 0b111, 0b001, 0b111}, // 9
}

// letterPatterns contains 3x5 pixel patterns for letters A-Z and the
// symbols annotation labels need.
var letterPatterns = map[rune][5]uint8{
	'A': {0b010, 0b101, 0b111, 0b101, 0b101},
	'B': {0b110, 0b101, 0b110, 0b101, 0b110},
	'C': {0b011, 0b100, 0b100, 0b100, 0b011},
	'D': {0b110, 0b101, 0b101, 0b101, 0b110},
	'E': {0b111, 0b100, 0b110, 0b100, 0b111},
	'F': {0b111, 0b100, 0b110, 0b100, 0b100},
	'G': {0b011, 0b100, 0b101, 0b101, 0b011},
	'H': {0b101, 0b101, 0b111, 0b101, 0b101},
	'I': {0b111, 0b010, 0b010, 0b010, 0b111},
	'J': {0b001, 0b001, 0b001, 0b101, 0b010},
	'K': {0b101, 0b101, 0b110, 0b101, 0b101},
	'L': {0b100, 0b100, 0b100, 0b100, 0b111},
	'M': {0b101, 0b111, 0b101, 0b101, 0b101},
	'N': {0b101, 0b111, 0b111, 0b101, 0b101},
	'O': {0b010, 0b101, 0b101, 0b101, 0b010},
	'P': {0b110, 0b101, 0b110, 0b100, 0b100},
	'Q': {0b010, 0b101, 0b101, 0b111, 0b011},
	'R': {0b110, 0b101, 0b110, 0b101, 0b101},
	'S': {0b011, 0b100, 0b010, 0b001, 0b110},
	'T': {0b111, 0b010, 0b010, 0b010, 0b010},
	'U': {0b101, 0b101, 0b101, 0b101, 0b111},
	'V': {0b101, 0b101, 0b101, 0b101, 0b010},
	'W': {0b101, 0b101, 0b101, 0b111, 0b101},
	'X': {0b101, 0b101, 0b010, 0b101, 0b101},
	'Y': {0b101, 0b101, 0b010, 0b010, 0b010},
	'Z': {0b111, 0b001, 0b010, 0b100, 0b111},
	'%': {0b101, 0b001, 0b010, 0b100, 0b101},
	'-': {0b000, 0b000, 0b111, 0b000, 0b000},
	' ': {0b000, 0b000, 0b000, 0b000, 0b000},
}

// getCharPattern returns the 3x5 pixel pattern for a character.
// Returns a zero pattern for unsupported characters.
func getCharPattern(ch rune) [5]uint8 {
	if ch >= '0' && ch <= '9' {
		return digitPatterns[ch-'0']
	}
	if ch >= 'a' && ch <= 'z' {
		ch = ch - 'a' + 'A'
	}
	if pattern, ok := letterPatterns[ch]; ok {
		return pattern
	}
	return [5]uint8{}
}

// drawRectOutline draws an axis-aligned rectangle outline with the given
// thickness, clipped to the output bounds.
func drawRectOutline(output *image.RGBA, x1, y1, x2, y2, thickness int, col color.RGBA) {
	if thickness < 1 {
		thickness = 1
	}
	bounds := output.Bounds()
	for t := 0; t < thickness; t++ {
		for x := x1; x <= x2; x++ {
			setClipped(output, bounds, x, y1+t, col)
			setClipped(output, bounds, x, y2-t, col)
		}
		for y := y1; y <= y2; y++ {
			setClipped(output, bounds, x1+t, y, col)
			setClipped(output, bounds, x2-t, y, col)
		}
	}
}

// drawDashedRect draws the rubber-band rectangle used for in-progress
// drafts, alternating pixels in groups of two.
func drawDashedRect(output *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	bounds := output.Bounds()
	for x := x1; x <= x2; x++ {
		if (x+y1)%4 < 2 {
			setClipped(output, bounds, x, y1, col)
		}
		if (x+y2)%4 < 2 {
			setClipped(output, bounds, x, y2, col)
		}
	}
	for y := y1; y <= y2; y++ {
		if (x1+y)%4 < 2 {
			setClipped(output, bounds, x1, y, col)
		}
		if (x2+y)%4 < 2 {
			setClipped(output, bounds, x2, y, col)
		}
	}
}

// drawGlow draws a fading halo around a rectangle, approximating the
// editing highlight's shadow blur.
func drawGlow(output *image.RGBA, x1, y1, x2, y2, radius int, col color.RGBA) {
	if radius < 1 {
		return
	}
	bounds := output.Bounds()
	for r := 1; r <= radius; r++ {
		alpha := (1.0 - float64(r)/float64(radius+1)) * 0.5
		for x := x1 - r; x <= x2+r; x++ {
			blendClipped(output, bounds, x, y1-r, col, alpha)
			blendClipped(output, bounds, x, y2+r, col, alpha)
		}
		for y := y1 - r; y <= y2+r; y++ {
			blendClipped(output, bounds, x1-r, y, col, alpha)
			blendClipped(output, bounds, x2+r, y, col, alpha)
		}
	}
}

// drawHandleSquare draws a filled square centered on a transform handle.
func drawHandleSquare(output *image.RGBA, cx, cy, half int, col color.RGBA) {
	bounds := output.Bounds()
	for y := cy - half; y <= cy+half; y++ {
		for x := cx - half; x <= cx+half; x++ {
			setClipped(output, bounds, x, y, col)
		}
	}
}

// drawLabel draws text using the 3x5 bitmap font at the given scale,
// anchored at the top-left of the text block.
func drawLabel(output *image.RGBA, text string, startX, startY, scale int, col color.RGBA) {
	if scale < 1 {
		scale = 1
	}
	x := startX
	for _, ch := range text {
		pattern := getCharPattern(ch)
		bounds := output.Bounds()
		for row := 0; row < 5; row++ {
			for colBit := 0; colBit < 3; colBit++ {
				if pattern[row]&(1<<(2-colBit)) == 0 {
					continue
				}
				for dy := 0; dy < scale; dy++ {
					for dx := 0; dx < scale; dx++ {
						setClipped(output, bounds, x+colBit*scale+dx, startY+row*scale+dy, col)
					}
				}
			}
		}
		x += 4 * scale // 3px glyph + 1px spacing
	}
}

// labelWidth returns the pixel width of a label at the given scale.
func labelWidth(text string, scale int) int {
	if scale < 1 {
		scale = 1
	}
	n := len([]rune(text))
	if n == 0 {
		return 0
	}
	return n*4*scale - scale
}

func setClipped(output *image.RGBA, bounds image.Rectangle, x, y int, col color.RGBA) {
	if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
		output.SetRGBA(x, y, col)
	}
}

func blendClipped(output *image.RGBA, bounds image.Rectangle, x, y int, col color.RGBA, alpha float64) {
	if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
		return
	}
	if alpha <= 0 {
		return
	}
	if alpha >= 1 {
		output.SetRGBA(x, y, col)
		return
	}
	dst := output.RGBAAt(x, y)
	inv := 1 - alpha
	output.SetRGBA(x, y, color.RGBA{
		R: uint8(float64(col.R)*alpha + float64(dst.R)*inv),
		G: uint8(float64(col.G)*alpha + float64(dst.G)*inv),
		B: uint8(float64(col.B)*alpha + float64(dst.B)*inv),
		A: 255,
	})
}
