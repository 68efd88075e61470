package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grissess/gscope/engine"
	"github.com/grissess/gscope/model"
	"github.com/grissess/gscope/ui"
)

// clearScreen is the home-and-wipe escape used between watch frames.
const clearScreen = "\033[H\033[J"

// connView is one classified row as rendered by -watch and -json.
type connView struct {
	Ident   string  `json:"ident"`
	SrcHost string  `json:"srchost"`
	SrcPort int     `json:"srcport"`
	DstHost string  `json:"dsthost"`
	DstPort int     `json:"dstport"`
	Proto   string  `json:"proto"`
	State   string  `json:"state"`
	Alpha   float64 `json:"alpha"`
	AgeSec  float64 `json:"age_seconds,omitempty"`

	state model.DrawState
}

// classifyRows runs the full classify/decay pipeline over the cached
// snapshot, dropping suppressed rows.
func classifyRows(rows []model.ConnRecord, history float64, now float64) []connView {
	var out []connView
	for _, rec := range rows {
		state, observed := engine.Classify(rec)
		if state == model.StateNone {
			continue
		}
		visible, alpha := engine.Decay(state, observed, now, history, rec.SrcPort, rec.DstPort)
		if !visible {
			continue
		}
		v := connView{
			Ident:   rec.Ident,
			SrcHost: rec.SrcHost,
			SrcPort: rec.SrcPort,
			DstHost: rec.DstHost,
			DstPort: rec.DstPort,
			Proto:   model.ProtoName(rec.Proto),
			State:   state.String(),
			Alpha:   alpha,
			state:   state,
		}
		if observed > 0 {
			v.AgeSec = now - observed
		}
		out = append(out, v)
	}
	return out
}

// runJSON polls once and prints the classified snapshot.
func runJSON(poller *engine.Poller) error {
	poller.Tick(time.Now())
	now := float64(time.Now().UnixNano()) / 1e9
	views := classifyRows(poller.Rows(), poller.History(), now)
	if views == nil {
		views = []connView{}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(views)
}

// runWatch refreshes the classified table in place until count frames have
// been printed or the user interrupts.
func runWatch(st storeInfo, poller *engine.Poller, count int) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	iterations := 0
	for {
		poller.Tick(time.Now())
		now := float64(time.Now().UnixNano()) / 1e9
		views := classifyRows(poller.Rows(), poller.History(), now)

		fmt.Print(clearScreen)
		fmt.Printf("gscope %s (%d connections, history %.0fs)\n\n",
			st.Path(), len(views), poller.History())
		if !st.Available() {
			fmt.Println("waiting for database to appear...")
		}
		fmt.Printf("%-12s %-26s %-26s %-5s %-8s %s\n",
			"IDENT", "SOURCE", "DEST", "PROTO", "STATE", "AGE")
		for _, v := range views {
			age := "-"
			if v.AgeSec > 0 {
				age = fmt.Sprintf("%.1fs", v.AgeSec)
			}
			stateCell := ui.StateStyle(v.state).Render(fmt.Sprintf("%-8s", v.State))
			fmt.Printf("%-12s %-26s %-26s %-5s %s %s\n",
				v.Ident,
				fmt.Sprintf("%s:%d", v.SrcHost, v.SrcPort),
				fmt.Sprintf("%s:%d", v.DstHost, v.DstPort),
				v.Proto, stateCell, age)
		}

		iterations++
		if count > 0 && iterations >= count {
			return nil
		}

		select {
		case <-sigCh:
			return nil
		case <-time.After(poller.Period()):
		}
	}
}

// storeInfo is the slice of the store the watch loop reports on.
type storeInfo interface {
	Path() string
	Available() bool
}
