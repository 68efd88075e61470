package model

import "image/color"

// Align positions a label relative to its anchor point.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Surface receives already-computed draw commands. The windowed view backs
// it with an ebiten screen; tests use an in-memory recorder.
type Surface interface {
	// AddNode registers a newly created host entity at its position.
	AddNode(h *Host)
	// Line draws a colored segment between two points. Alpha carries the
	// decay factor.
	Line(x1, y1, x2, y2 float64, c color.RGBA)
	// Label draws small text anchored at a point.
	Label(x, y float64, text string, align Align, size float64, c color.RGBA)
}

// Palette maps draw states to edge colors. It is resolved once at startup
// and injected into the emission layer.
type Palette map[DrawState]color.RGBA

// DefaultPalette is the built-in edge color scheme.
func DefaultPalette() Palette {
	return Palette{
		StateActive:         {R: 0x50, G: 0xFA, B: 0x7B, A: 0xFF}, // green
		StateEnded:          {R: 0xF8, G: 0xF8, B: 0xF2, A: 0xFF}, // white
		StateReset:          {R: 0xFF, G: 0xB8, B: 0x6C, A: 0xFF}, // orange
		StateFailed:         {R: 0xFF, G: 0x55, B: 0x55, A: 0xFF}, // red
		StateConnectionless: {R: 0x8B, G: 0xE9, B: 0xFD, A: 0xFF}, // cyan
	}
}
