package model

// Host is a visual entity for one observed host identifier. The registry
// assigns X/Y once at creation; afterwards only the rendering surface may
// move it (drag). Hosts are never destroyed within a session.
type Host struct {
	ID    string
	Label string
	X, Y  float64
}
