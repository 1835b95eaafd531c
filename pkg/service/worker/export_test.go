package worker

import "time"

// SetClock replaces time.Now for testing
func (w *OverdueTreatmentWorker) SetClock(clock func() time.Time) {
	w.clock = clock
}
