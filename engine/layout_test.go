package engine

import (
	"image/color"
	"math/rand"
	"testing"

	"github.com/grissess/gscope/model"
)

func testPalette() model.Palette {
	return model.Palette{
		model.StateActive:         {R: 0, G: 200, B: 0, A: 255},
		model.StateEnded:          {R: 200, G: 200, B: 200, A: 255},
		model.StateReset:          {R: 200, G: 100, B: 0, A: 255},
		model.StateFailed:         {R: 200, G: 0, B: 0, A: 255},
		model.StateConnectionless: {R: 0, G: 100, B: 200, A: 255},
	}
}

func TestEmitEdgesActiveRow(t *testing.T) {
	surface := &recordSurface{}
	reg := NewRegistry(640, 480, rand.New(rand.NewSource(1)), surface)
	rows := []model.ConnRecord{
		{SrcHost: "a", SrcPort: 1234, DstHost: "b", DstPort: 80},
	}

	EmitEdges(rows, reg, testPalette(), 5.0, 1000, surface)

	if len(surface.lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(surface.lines))
	}
	if len(surface.labels) != 2 {
		t.Fatalf("got %d labels, want 2", len(surface.labels))
	}

	a, b := reg.Resolve("a"), reg.Resolve("b")
	line := surface.lines[0]
	if line.x1 != a.X || line.y1 != a.Y || line.x2 != b.X || line.y2 != b.Y {
		t.Errorf("line (%v,%v)-(%v,%v) does not join host positions", line.x1, line.y1, line.x2, line.y2)
	}
	want := color.RGBA{R: 0, G: 200, B: 0, A: 255}
	if line.c != want {
		t.Errorf("line color = %v, want full-alpha active %v", line.c, want)
	}

	if surface.labels[0].text != "1234" || surface.labels[0].align != model.AlignRight {
		t.Errorf("source label = %+v, want port 1234 aligned right", surface.labels[0])
	}
	if surface.labels[1].text != "80" || surface.labels[1].align != model.AlignLeft {
		t.Errorf("dest label = %+v, want port 80 aligned left", surface.labels[1])
	}
}

func TestEmitEdgesStacksSharedEndpoints(t *testing.T) {
	surface := &recordSurface{}
	reg := NewRegistry(640, 480, rand.New(rand.NewSource(2)), surface)
	rows := []model.ConnRecord{
		{SrcHost: "a", SrcPort: 1000, DstHost: "b", DstPort: 80},
		{SrcHost: "a", SrcPort: 1001, DstHost: "b", DstPort: 443},
	}

	EmitEdges(rows, reg, testPalette(), 5.0, 1000, surface)

	if len(surface.lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(surface.lines))
	}
	first, second := surface.lines[0], surface.lines[1]
	if second.y1 != first.y1+stackStep {
		t.Errorf("second source y = %v, want %v", second.y1, first.y1+stackStep)
	}
	if second.y2 != first.y2+stackStep {
		t.Errorf("second dest y = %v, want %v", second.y2, first.y2+stackStep)
	}

	// The pass-local offsets must not leak into stored positions.
	a := reg.Resolve("a")
	if a.Y != first.y1 {
		t.Errorf("host position y = %v mutated by emission, want %v", a.Y, first.y1)
	}

	// A fresh pass over the same snapshot starts from scratch.
	surface.lines = nil
	EmitEdges(rows, reg, testPalette(), 5.0, 1000, surface)
	if surface.lines[0].y1 != first.y1 {
		t.Errorf("second pass first y = %v, want %v", surface.lines[0].y1, first.y1)
	}
}

func TestEmitEdgesAppliesDecayAlpha(t *testing.T) {
	surface := &recordSurface{}
	reg := NewRegistry(640, 480, rand.New(rand.NewSource(3)), surface)
	rows := []model.ConnRecord{
		// Half decayed: observed 2.5s ago with a 5s window.
		{SrcHost: "a", SrcPort: 22, DstHost: "b", DstPort: 80,
			Close: model.CloseNormal, HasClose: true, InsTime: 997.5},
	}

	EmitEdges(rows, reg, testPalette(), 5.0, 1000, surface)

	if len(surface.lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(surface.lines))
	}
	want := color.RGBA{R: 100, G: 100, B: 100, A: 127}
	if surface.lines[0].c != want {
		t.Errorf("line color = %v, want half-faded %v", surface.lines[0].c, want)
	}
}

func TestEmitEdgesSuppressesDecayedEphemeral(t *testing.T) {
	surface := &recordSurface{}
	reg := NewRegistry(640, 480, rand.New(rand.NewSource(4)), surface)
	rows := []model.ConnRecord{
		// Fully decayed, ephemeral client port: hidden.
		{SrcHost: "a", SrcPort: 50000, DstHost: "b", DstPort: 80,
			Close: model.CloseNormal, HasClose: true, InsTime: 0},
		// Same age on a well-known port: still shown at the alpha floor.
		{SrcHost: "a", SrcPort: 22, DstHost: "b", DstPort: 80,
			Close: model.CloseNormal, HasClose: true, InsTime: 0},
	}

	EmitEdges(rows, reg, testPalette(), 5.0, 1000, surface)

	if len(surface.lines) != 1 {
		t.Fatalf("got %d lines, want only the well-known-port edge", len(surface.lines))
	}
	if surface.labels[0].text != "22" {
		t.Errorf("surviving edge source label = %q, want 22", surface.labels[0].text)
	}
}

func TestEmitEdgesCreatesHostsLazily(t *testing.T) {
	surface := &recordSurface{}
	reg := NewRegistry(640, 480, rand.New(rand.NewSource(5)), surface)
	rows := []model.ConnRecord{
		{SrcHost: "a", SrcPort: 1, DstHost: "b", DstPort: 2},
		{SrcHost: "b", SrcPort: 3, DstHost: "c", DstPort: 4},
	}

	EmitEdges(rows, reg, testPalette(), 5.0, 1000, surface)

	if reg.Len() != 3 {
		t.Errorf("registry has %d hosts, want 3", reg.Len())
	}
	if len(surface.nodes) != 3 {
		t.Errorf("surface saw %d registrations, want 3", len(surface.nodes))
	}
}
