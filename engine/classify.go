// Package engine holds the viewer core: row classification, time-decay
// policy, the host registry, the poll scheduler, and edge emission.
package engine

import "github.com/grissess/gscope/model"

// Classify maps a raw row to its draw state and observation time. The
// failure signal wins over any close reason; a row carrying neither is an
// open connection. Open connections report observed time 0, meaning "now":
// no decay is ever applied to them.
func Classify(rec model.ConnRecord) (model.DrawState, float64) {
	if rec.HasPKind && rec.PKind != 0 {
		return model.StateFailed, rec.InsTime
	}
	if rec.HasClose {
		switch rec.Close {
		case model.CloseConnectionless:
			return model.StateConnectionless, rec.InsTime
		case model.CloseReset:
			return model.StateReset, rec.InsTime
		default:
			// Normal close and timeout both render as ENDED.
			return model.StateEnded, rec.InsTime
		}
	}
	return model.StateActive, 0
}
