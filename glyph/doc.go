// Package glyph provides the 5x8 user-definable character bitmap used by the
// PmodCLS display.
//
// The display stores up to eight user glyphs. Each glyph is eight rows of five
// pixels; a row is one byte with the leftmost pixel in bit 4 and the rightmost
// in bit 0. Bits 5-7 are ignored by the display but are kept as-is.
//
// Memory layout example for one row:
//
//	Pixels: 0 1 2 3 4
//	Values: # . # . #
//	Byte:   0x15 (0b10101)
//
// This package provides:
//
// - Bit: A color type representing a lit or unlit pixel
// - BitModel: A color model for converting standard Go colors to Bit
// - Glyph: An image.Image (and, via *Glyph, draw.Image) over the 5x8 bitmap
//
// Example usage:
//
//	// Build a glyph from text rows
//	g, err := glyph.Parse(
//		"..#..",
//		".###.",
//		"#####",
//	)
//
//	// Or draw onto one with the standard library
//	var h glyph.Glyph
//	draw.Draw(&h, h.Bounds(), src, image.Point{}, draw.Src)
package glyph
