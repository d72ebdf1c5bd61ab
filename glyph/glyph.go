package glyph

import (
	"fmt"
	"image"
	"image/color"
	"strings"
)

// Glyph dimensions and the number of user glyph slots on the display.
const (
	Width     = 5
	Height    = 8
	Positions = 8
)

// Bit is the color of one glyph pixel: true for lit.
type Bit bool

// RGBA converts the Bit to opaque white (lit) or black.
func (c Bit) RGBA() (r, g, b, a uint32) {
	if c {
		return 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF
	}
	return 0, 0, 0, 0xFFFF
}

// toBit converts any color.Color to Bit. Pixels at or above half luminance,
// weighted by alpha, are lit.
func toBit(c color.Color) color.Color {
	if b, ok := c.(Bit); ok {
		return b
	}
	r, g, b, a := c.RGBA()
	// Standard luminance: 0.299R + 0.587G + 0.114B, already premultiplied
	y := (299*r + 587*g + 114*b + 500) / 1000
	return Bit(a != 0 && y >= 0x8000)
}

// BitModel converts colors to Bit.
var BitModel = color.ModelFunc(toBit)

// Glyph is a 5x8 bitmap, one byte per row from top to bottom.
type Glyph [Height]byte

// ColorModel returns BitModel.
func (g Glyph) ColorModel() color.Model {
	return BitModel
}

// Bounds returns the 5x8 glyph rectangle anchored at the origin.
func (g Glyph) Bounds() image.Rectangle {
	return image.Rect(0, 0, Width, Height)
}

// At returns the color of the pixel at (x, y).
// It implements the image.Image interface.
func (g Glyph) At(x, y int) color.Color {
	return g.BitAt(x, y)
}

// BitAt returns the pixel at (x, y); pixels outside the glyph are unlit.
func (g Glyph) BitAt(x, y int) Bit {
	if !(image.Point{X: x, Y: y}.In(g.Bounds())) {
		return false
	}
	return Bit(g[y]&mask(x) != 0)
}

// Set sets the pixel at (x, y) after converting c with BitModel.
func (g *Glyph) Set(x, y int, c color.Color) {
	g.SetBit(x, y, BitModel.Convert(c).(Bit))
}

// SetBit sets the pixel at (x, y). Points outside the glyph are ignored.
func (g *Glyph) SetBit(x, y int, on Bit) {
	if !(image.Point{X: x, Y: y}.In(g.Bounds())) {
		return
	}
	if on {
		g[y] |= mask(x)
	} else {
		g[y] &^= mask(x)
	}
}

// String renders the glyph as eight rows of '#' and '.' separated by '/'.
func (g Glyph) String() string {
	var sb strings.Builder
	for y := 0; y < Height; y++ {
		if y > 0 {
			sb.WriteByte('/')
		}
		for x := 0; x < Width; x++ {
			if g.BitAt(x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
	}
	return sb.String()
}

// mask returns the row bit for column x. Column 0 is the leftmost pixel.
func mask(x int) byte {
	return 1 << uint(Width-1-x)
}

// FromImage samples the 5x8 area at the top-left corner of img's bounds.
func FromImage(img image.Image) Glyph {
	var g Glyph
	min := img.Bounds().Min
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			p := image.Point{X: min.X + x, Y: min.Y + y}
			if !p.In(img.Bounds()) {
				continue
			}
			g.SetBit(x, y, BitModel.Convert(img.At(p.X, p.Y)).(Bit))
		}
	}
	return g
}

// Parse builds a glyph from up to eight text rows of up to five pixels. '#',
// 'X', 'x', '*' and '1' are lit; '.', ' ', '_' and '0' are unlit. Missing rows
// and trailing pixels are unlit.
func Parse(rows ...string) (Glyph, error) {
	var g Glyph
	if len(rows) > Height {
		return g, fmt.Errorf("glyph: %d rows, at most %d allowed", len(rows), Height)
	}
	for y, row := range rows {
		if len(row) > Width {
			return g, fmt.Errorf("glyph: row %d has %d pixels, at most %d allowed", y, len(row), Width)
		}
		for x := 0; x < len(row); x++ {
			switch row[x] {
			case '#', 'X', 'x', '*', '1':
				g.SetBit(x, y, true)
			case '.', ' ', '_', '0':
			default:
				return g, fmt.Errorf("glyph: row %d: invalid pixel %q", y, row[x])
			}
		}
	}
	return g, nil
}

// MustParse is like Parse but panics on error. It is intended for glyphs
// declared as package variables.
func MustParse(rows ...string) Glyph {
	g, err := Parse(rows...)
	if err != nil {
		panic(err)
	}
	return g
}
