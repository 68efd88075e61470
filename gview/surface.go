package gview

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/grissess/gscope/model"
)

// screenSurface renders draw commands onto the current ebiten frame. The
// screen pointer is swapped in at the top of every Draw call; commands
// issued outside a frame are a bug.
type screenSurface struct {
	screen     *ebiten.Image
	fontSource *text.GoTextFaceSource
	nodes      []*model.Host
}

func newScreenSurface() (*screenSurface, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	return &screenSurface{fontSource: src}, nil
}

// AddNode registers a host for per-frame node rendering.
func (s *screenSurface) AddNode(h *model.Host) {
	s.nodes = append(s.nodes, h)
}

// Line draws a 2px segment.
func (s *screenSurface) Line(x1, y1, x2, y2 float64, c color.RGBA) {
	vector.StrokeLine(s.screen, float32(x1), float32(y1), float32(x2), float32(y2), 2, c, true)
}

// Label draws text anchored at (x, y); AlignRight places the text to the
// left of the anchor so endpoint labels sit outside their edge.
func (s *screenSurface) Label(x, y float64, str string, align model.Align, size float64, c color.RGBA) {
	face := &text.GoTextFace{Source: s.fontSource, Size: size}
	if align == model.AlignRight {
		w, _ := text.Measure(str, face, 0)
		x -= w
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y-size/2)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(s.screen, str, face, op)
}

// drawNodes renders every registered host as a dot plus its label.
func (s *screenSurface) drawNodes() {
	face := &text.GoTextFace{Source: s.fontSource, Size: 13}
	for _, h := range s.nodes {
		vector.DrawFilledCircle(s.screen, float32(h.X), float32(h.Y), 4, colorNode, true)
		op := &text.DrawOptions{}
		op.GeoM.Translate(h.X+7, h.Y-16)
		op.ColorScale.ScaleWithColor(colorNodeLabel)
		text.Draw(s.screen, h.Label, face, op)
	}
}

var (
	colorBackground = color.RGBA{R: 0x12, G: 0x14, B: 0x1C, A: 0xFF}
	colorNode       = color.RGBA{R: 0xBD, G: 0x93, B: 0xF9, A: 0xFF}
	colorNodeLabel  = color.RGBA{R: 0xF8, G: 0xF8, B: 0xF2, A: 0xFF}
	colorStatus     = color.RGBA{R: 0x62, G: 0x72, B: 0xA4, A: 0xFF}
)
