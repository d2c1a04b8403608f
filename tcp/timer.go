package tcp

// timer is a single countdown integer plus an active flag, per spec
// §9: no clock is sampled inside the engine, only deltas passed via
// Tick. Grounded on the original sponge lab's Timer (start/elapse/
// reset): once started it must be explicitly restarted by the caller,
// it never rearms itself.
type timer struct {
	active     bool
	alarmMs    uint64
	initialMs  uint64
}

func (t *timer) start(initialMs uint64) {
	t.active = true
	t.initialMs = initialMs
	t.alarmMs = initialMs
}

// tick advances the timer by elapsedMs and reports whether it has
// fired. A fired timer goes inactive until start is called again.
func (t *timer) tick(elapsedMs uint64) bool {
	if !t.active {
		return false
	}
	if t.alarmMs > elapsedMs {
		t.alarmMs -= elapsedMs
		return false
	}
	t.active = false
	t.alarmMs = 0
	return true
}

func (t *timer) stop() {
	t.active = false
	t.alarmMs = 0
	t.initialMs = 0
}
