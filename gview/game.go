// Package gview is the windowed graph front-end: hosts as draggable nodes,
// connections as colored edges fading with age.
package gview

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/grissess/gscope/engine"
	"github.com/grissess/gscope/model"
	"github.com/grissess/gscope/store"
)

// grabRadius is how close, in pixels, the cursor must be to pick up a node.
const grabRadius = 12.0

// Game is the ebiten application. Its frame loop drives the poll
// scheduler; the scheduler decides when a query actually runs.
type Game struct {
	st      *store.Store
	poller  *engine.Poller
	reg     *engine.Registry
	pal     model.Palette
	surface *screenSurface
	watcher *store.Watcher

	width  int
	height int

	dragging       *model.Host
	dragDX, dragDY float64
}

// Options configures the graph window.
type Options struct {
	Store   *store.Store
	Poller  *engine.Poller
	Palette model.Palette
	Watcher *store.Watcher // may be nil
	Width   int
	Height  int
}

// New builds the game and its host registry bound to the window viewport.
func New(opts Options) (*Game, error) {
	surface, err := newScreenSurface()
	if err != nil {
		return nil, err
	}
	reg := engine.NewRegistry(float64(opts.Width), float64(opts.Height),
		rand.New(rand.NewSource(time.Now().UnixNano())), surface)
	return &Game{
		st:      opts.Store,
		poller:  opts.Poller,
		reg:     reg,
		pal:     opts.Palette,
		surface: surface,
		watcher: opts.Watcher,
		width:   opts.Width,
		height:  opts.Height,
	}, nil
}

// Update handles input and runs one scheduler tick.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	g.updateDrag()
	g.updateTunables()
	g.checkStore()

	g.poller.Tick(time.Now())
	return nil
}

// checkStore re-opens the store when the watcher reports the database file
// appeared since the last frame. A failed open (the server may still be
// initializing the file) is logged and the viewer stays in the waiting
// state; the next creation event retries.
func (g *Game) checkStore() {
	if g.watcher == nil {
		return
	}
	select {
	case <-g.watcher.C:
		if err := g.st.Open(g.st.Path()); err != nil {
			log.Printf("gview: reopen %s: %v", g.st.Path(), err)
		}
	default:
	}
}

// updateDrag moves a grabbed host with the cursor. This is the only code
// path that repositions an existing host.
func (g *Game) updateDrag() {
	mx, my := ebiten.CursorPosition()
	cx, cy := float64(mx), float64(my)

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if h := g.nearestHost(cx, cy, grabRadius); h != nil {
			g.dragging = h
			g.dragDX = h.X - cx
			g.dragDY = h.Y - cy
		}
	}
	if g.dragging != nil {
		if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
			g.dragging.X = cx + g.dragDX
			g.dragging.Y = cy + g.dragDY
		} else {
			g.dragging = nil
		}
	}
}

// updateTunables adjusts the history window and poll period live.
func (g *Game) updateTunables() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft):
		if h := g.poller.History() - 1; h >= 1 {
			g.poller.SetHistory(h)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketRight):
		g.poller.SetHistory(g.poller.History() + 1)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus):
		if p := g.poller.Period() - 50*time.Millisecond; p >= 50*time.Millisecond {
			g.poller.SetPeriod(p)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual):
		g.poller.SetPeriod(g.poller.Period() + 50*time.Millisecond)
	}
}

func (g *Game) nearestHost(x, y, within float64) *model.Host {
	var best *model.Host
	bestDist := within
	for _, h := range g.reg.Hosts() {
		d := math.Hypot(h.X-x, h.Y-y)
		if d <= bestDist {
			best = h
			bestDist = d
		}
	}
	return best
}

// Draw renders the cached result set. Drawing never mutates the snapshot,
// so repeated frames over unchanged data produce identical output.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)
	g.surface.screen = screen

	now := float64(time.Now().UnixNano()) / 1e9
	engine.EmitEdges(g.poller.Rows(), g.reg, g.pal, g.poller.History(), now, g.surface)
	g.surface.drawNodes()
	g.drawStatus(screen)

	g.surface.screen = nil
}

func (g *Game) drawStatus(screen *ebiten.Image) {
	status := fmt.Sprintf("%s  |  %d hosts, %d connections  |  history %.0fs  period %dms",
		g.st.Path(), g.reg.Len(), len(g.poller.Rows()),
		g.poller.History(), g.poller.Period().Milliseconds())
	if !g.st.Available() {
		status += "  |  waiting for database"
	}
	face := &text.GoTextFace{Source: g.surface.fontSource, Size: 12}
	op := &text.DrawOptions{}
	op.GeoM.Translate(8, float64(g.height)-20)
	op.ColorScale.ScaleWithColor(colorStatus)
	text.Draw(screen, status, face, op)
}

// Layout reports the fixed logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

// Run opens the window and blocks until the viewer exits.
func Run(opts Options) error {
	g, err := New(opts)
	if err != nil {
		return err
	}
	ebiten.SetWindowSize(opts.Width, opts.Height)
	ebiten.SetWindowTitle("gscope")
	return ebiten.RunGame(g)
}
