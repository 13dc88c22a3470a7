package button

// debounce filters one raw sample against the current stable level. A sample
// agreeing with the stable level clears the run counter; depth consecutive
// disagreeing samples flip the stable level and clear the counter. Pure
// function, no side effects. depth 0 accepts the raw level immediately.
func debounce(stable, raw Level, run, depth uint8) (Level, uint8) {
	if raw == stable {
		return stable, 0
	}
	run++
	if run >= depth {
		return raw, 0
	}
	return stable, run
}

// tick runs one step of the button: sample, debounce, then the gesture state
// machine. Called once per Registry.Drive. Ticks spent in the current state
// are counted before the sample is processed, so a threshold of N fires on
// the tick where the counter first exceeds N.
func (b *Button) tick() {
	raw := b.read(b.id)

	if b.state != StateIdle {
		b.ticks++
	}

	b.level, b.debounce = debounce(b.level, raw, b.debounce, b.debounceTicks)
	pressed := b.level == b.active

	// Each tick records exactly one event; ticks where no transition fires
	// must show the sentinel rather than a stale event from a previous tick.
	b.event = EventNone

	switch b.state {
	case StateIdle:
		if pressed {
			b.emit(EventPressDown)
			b.ticks = 0
			b.repeat = 1
			b.state = StatePressed
		}

	case StatePressed:
		switch {
		case !pressed:
			b.emit(EventPressUp)
			b.ticks = 0
			b.state = StateReleased
		case b.ticks > b.longTicks:
			b.emit(EventLongPressStart)
			b.state = StateLongHold
		}

	case StateReleased:
		switch {
		case pressed:
			b.emit(EventPressDown)
			// Saturate: the consumer only needs "many presses", not an
			// exact large count.
			if b.repeat < b.repeatMax {
				b.repeat++
			}
			b.dispatch(EventPressRepeat)
			b.ticks = 0
			b.state = StateRepeat
		case b.ticks > b.shortTicks:
			// Click window expired with no further press; only now is the
			// click count final.
			switch b.repeat {
			case 1:
				b.emit(EventSingleClick)
			case 2:
				b.emit(EventDoubleClick)
			}
			b.state = StateIdle
		}

	case StateRepeat:
		switch {
		case !pressed:
			b.emit(EventPressUp)
			if b.ticks < b.shortTicks {
				b.ticks = 0
				b.state = StateReleased
			} else {
				b.state = StateIdle
			}
		case b.ticks > b.shortTicks:
			// Held past the click window: an ordinary press from here on.
			b.state = StatePressed
		}

	case StateLongHold:
		if pressed {
			b.emit(EventLongPressHold)
		} else {
			b.emit(EventPressUp)
			b.state = StateIdle
		}

	default:
		b.state = StateIdle
	}
}

// emit records ev as this tick's event and dispatches it.
func (b *Button) emit(ev Event) {
	b.event = ev
	b.dispatch(ev)
}

// dispatch invokes the attached callback for ev, if any, synchronously.
func (b *Button) dispatch(ev Event) {
	if cb := b.callbacks[ev]; cb != nil {
		cb(b)
	}
}
