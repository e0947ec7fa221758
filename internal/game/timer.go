package game

import "time"

// DefaultTickInterval is the wall-clock period of the cooperative tick
// source driving session clocks.
const DefaultTickInterval = time.Second

// StartTicker runs a tick loop for one session generation. The loop
// exits as soon as Tick reports the generation is stale or the session
// has left its playing phases, so a reset or a new start never leaves an
// orphaned ticker firing into a discarded run.
//
// Tests drive Session.Tick directly instead of going through real time.
func StartTicker(s *Session, gen uint64, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			if !s.Tick(gen) {
				return
			}
		}
	}()
}
