package engine

import "github.com/grissess/gscope/model"

// Ephemeral client port range, half-open. Connections on these ports are
// hidden entirely once fully decayed to keep transient client traffic from
// cluttering the graph.
const (
	ephemeralLow  = 32768
	ephemeralHigh = 61000
)

func ephemeral(port int) bool {
	return port >= ephemeralLow && port < ephemeralHigh
}

// Decay computes visibility and opacity for a classified connection.
// Active connections never fade. Terminal and failed states fade linearly
// over the history window, flooring at alpha 0.1 so a shown edge is never
// fully transparent; past full decay, ephemeral-port connections are
// suppressed. A non-positive history window counts as fully decayed
// rather than dividing by zero.
func Decay(state model.DrawState, observed, now, history float64, srcPort, dstPort int) (visible bool, alpha float64) {
	if state == model.StateActive {
		return true, 1.0
	}

	var fade float64
	if history <= 0 {
		fade = 2.0 // fully decayed
	} else {
		fade = (now - observed) / history
	}

	if fade > 1.0 && (ephemeral(srcPort) || ephemeral(dstPort)) {
		return false, 0
	}

	switch {
	case fade < 0:
		fade = 0
	case fade > 0.9:
		fade = 0.9
	}
	return true, 1.0 - fade
}
