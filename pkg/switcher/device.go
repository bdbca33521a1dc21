package switcher

import (
	"context"
)

// Dialer establishes a connection to a switcher at an address.
// Connection timeouts are the Dialer's concern.
type Dialer interface {
	Dial(ctx context.Context, address string) (Device, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context, address string) (Device, error)

// Dial calls f.
func (f DialerFunc) Dial(ctx context.Context, address string) (Device, error) {
	return f(ctx, address)
}

// Device is a connected switcher handle. It is owned by exactly one Session
// and is never used concurrently.
type Device interface {
	// ProductName is the product name reported during the handshake.
	ProductName() string

	// Inputs enumerates every input known to the switcher.
	Inputs(ctx context.Context) ([]Input, error)

	ProgramInput(ctx context.Context) (InputID, error)
	PreviewInput(ctx context.Context) (InputID, error)
	TransitionPosition(ctx context.Context) (float64, error)

	SetProgramInput(ctx context.Context, id InputID) error
	SetPreviewInput(ctx context.Context, id InputID) error
	SetTransitionPosition(ctx context.Context, position float64) error

	// Probe is a cheap idempotent round trip used as a liveness check.
	Probe(ctx context.Context) error

	// Close releases the handle.
	Close() error
}

// MixTransitioner is implemented by devices whose mix-effect block can run
// timed mix transitions.
type MixTransitioner interface {
	// SupportsMixTransition reports whether the capability is available on
	// this particular device.
	SupportsMixTransition() bool
	SetTransitionRate(ctx context.Context, frames uint32) error
	StartAutoTransition(ctx context.Context) error
}

// mixTransitioner returns the device's mix capability, if any.
func mixTransitioner(d Device) (MixTransitioner, bool) {
	mt, ok := d.(MixTransitioner)
	if !ok || !mt.SupportsMixTransition() {
		return nil, false
	}
	return mt, true
}
