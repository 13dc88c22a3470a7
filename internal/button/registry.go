package button

// Registry is the set of buttons stepped by each Drive call. Membership is
// by identity: the same *Button cannot be registered twice, while two
// buttons sharing an id can coexist.
//
// A Registry has no internal locking. Drive, Start and Stop must all run on
// the same goroutine (or under external mutual exclusion); callbacks run
// inside Drive and may call Start/Stop freely, see Drive.
type Registry struct {
	buttons map[*Button]struct{}
	driving bool
	pending []pendingOp
}

type pendingOp struct {
	b   *Button
	add bool
}

// NewRegistry returns an empty registry. Each registry is independent;
// tests and multi-rate setups can run several side by side.
func NewRegistry() *Registry {
	return &Registry{buttons: make(map[*Button]struct{})}
}

// member reports effective membership, taking queued Start/Stop calls from
// an in-progress Drive into account.
func (r *Registry) member(b *Button) bool {
	_, ok := r.buttons[b]
	for _, op := range r.pending {
		if op.b == b {
			ok = op.add
		}
	}
	return ok
}

// Start registers b so that subsequent Drive calls step it. It returns
// ErrNilButton for a nil button and ErrAlreadyStarted if b is already
// registered; re-adding is never silent.
func (r *Registry) Start(b *Button) error {
	if b == nil {
		return ErrNilButton
	}
	if r.member(b) {
		return ErrAlreadyStarted
	}
	if r.driving {
		r.pending = append(r.pending, pendingOp{b: b, add: true})
		return nil
	}
	r.buttons[b] = struct{}{}
	return nil
}

// Stop deregisters b. It is a no-op if b is nil or not registered. The
// button itself is untouched; Start can re-register it later.
func (r *Registry) Stop(b *Button) {
	if b == nil || !r.member(b) {
		return
	}
	if r.driving {
		r.pending = append(r.pending, pendingOp{b: b, add: false})
		return
	}
	delete(r.buttons, b)
}

// Len returns the number of registered buttons.
func (r *Registry) Len() int {
	return len(r.buttons)
}

// Drive steps every registered button exactly once, in unspecified order,
// running each button's debounce, state machine and callbacks to completion
// before moving on. It is the periodic entry point and must be called at the
// configured tick interval.
//
// Start/Stop calls made by a callback during Drive are deferred: the set of
// buttons visited by the in-progress call never changes, and the structural
// change takes effect from the next Drive call.
func (r *Registry) Drive() {
	r.driving = true
	for b := range r.buttons {
		b.tick()
	}
	r.driving = false

	for _, op := range r.pending {
		if op.add {
			r.buttons[op.b] = struct{}{}
		} else {
			delete(r.buttons, op.b)
		}
	}
	r.pending = r.pending[:0]
}
