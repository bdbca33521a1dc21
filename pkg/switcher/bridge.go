package switcher

// binding is one mirrored property: the last observed value plus an
// equality check on every new sample.
type binding[T comparable] struct {
	last   T
	primed bool
}

// observe records v and reports whether it differs from the previous
// observation. The first observation after a reset always counts as a change.
func (b *binding[T]) observe(v T) bool {
	changed := !b.primed || b.last != v
	b.last = v
	b.primed = true
	return changed
}

// prime records v without reporting a change.
func (b *binding[T]) prime(v T) {
	b.last = v
	b.primed = true
}

func (b *binding[T]) reset() {
	var zero T
	b.last = zero
	b.primed = false
}

// bridge is the set of edge-triggered bindings between the session's
// ControlState and the device. It never holds a reference to the state; the
// session passes values in and applies the results.
type bridge struct {
	active bool

	// device -> local
	programID binding[InputID]
	previewID binding[InputID]

	// local -> device
	programName binding[string]
	previewName binding[string]
	position    binding[float64]
}

// start primes every binding with the state as it stands right after connect,
// so nothing is pushed back to the device for the initial values.
func (b *bridge) start(st ControlState) {
	b.programID.prime(st.ProgramInputID)
	b.previewID.prime(st.PreviewInputID)
	b.programName.prime(st.ProgramInputName)
	b.previewName.prime(st.PreviewInputName)
	b.position.prime(st.TransitionPosition)
	b.active = true
}

func (b *bridge) stop() {
	b.active = false
	b.programID.reset()
	b.previewID.reset()
	b.programName.reset()
	b.previewName.reset()
	b.position.reset()
}

// sample feeds device-reported ids into the device->local bindings and
// reports which of them changed since the previous sample.
func (b *bridge) sample(program, preview InputID) (programChanged, previewChanged bool) {
	if !b.active {
		return false, false
	}
	return b.programID.observe(program), b.previewID.observe(preview)
}

// syncName records a device-derived name on the local->device binding so the
// derived value is never pushed back to the device.
func (b *bridge) syncName(property string, name string) {
	switch property {
	case PropertyProgram:
		b.programName.prime(name)
	case PropertyPreview:
		b.previewName.prime(name)
	}
}

// nameChanged reports whether a locally set input name differs from the last
// observed value and should be pushed.
func (b *bridge) nameChanged(property string, name string) bool {
	if !b.active {
		return false
	}
	switch property {
	case PropertyProgram:
		return b.programName.observe(name)
	case PropertyPreview:
		return b.previewName.observe(name)
	}
	return false
}

// positionChanged reports whether a locally set transition position should be pushed.
func (b *bridge) positionChanged(position float64) bool {
	if !b.active {
		return false
	}
	return b.position.observe(position)
}
