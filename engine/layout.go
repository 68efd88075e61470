package engine

import (
	"image/color"
	"strconv"

	"github.com/grissess/gscope/model"
)

// stackStep is the vertical offset applied to an endpoint after each edge
// it participates in, so parallel edges between the same hosts do not
// overlap. The offset is local to one draw pass and never touches the
// stored host position.
const stackStep = 14.0

// labelSize is the port label font size in pixels.
const labelSize = 12.0

// fadeColor scales a palette color by the decay alpha. All four channels
// are scaled, keeping the color premultiplied for the render backend.
func fadeColor(c color.RGBA, alpha float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * alpha),
		G: uint8(float64(c.G) * alpha),
		B: uint8(float64(c.B) * alpha),
		A: uint8(float64(c.A) * alpha),
	}
}

// EmitEdges converts the cached result set into draw commands: one line
// per visible connection plus a port label at each endpoint. Hosts are
// resolved (and created) through the registry as they are referenced.
// Emission is idempotent for an unchanged row set, aside from lazily
// created hosts receiving their random positions on the first pass.
func EmitEdges(rows []model.ConnRecord, reg *Registry, pal model.Palette, history, now float64, surface model.Surface) {
	offsets := make(map[string]float64)

	for _, rec := range rows {
		state, observed := Classify(rec)
		if state == model.StateNone {
			continue
		}
		visible, alpha := Decay(state, observed, now, history, rec.SrcPort, rec.DstPort)
		if !visible {
			continue
		}

		src := reg.Resolve(rec.SrcHost)
		dst := reg.Resolve(rec.DstHost)
		sy := src.Y + offsets[src.ID]
		dy := dst.Y + offsets[dst.ID]
		offsets[src.ID] += stackStep
		offsets[dst.ID] += stackStep

		c := fadeColor(pal[state], alpha)
		surface.Line(src.X, sy, dst.X, dy, c)
		surface.Label(src.X, sy, strconv.Itoa(rec.SrcPort), model.AlignRight, labelSize, c)
		surface.Label(dst.X, dy, strconv.Itoa(rec.DstPort), model.AlignLeft, labelSize, c)
	}
}
