package switcher

import (
	"context"

	"github.com/jmylchreest/switcherd/internal/errors"
	"github.com/jmylchreest/switcherd/internal/events"
	"github.com/jmylchreest/switcherd/internal/metrics"
)

// PerformAutoTransition runs a timed mix transition from preview to program
// over frames frames. It needs a connected session and a device with mix
// transition support; a missing capability is reported but leaves the session
// connected.
func (s *Session) PerformAutoTransition(ctx context.Context, frames uint32) error {
	if s.status != StatusConnected {
		return errors.NotConnectedf("auto transition")
	}
	mt, ok := mixTransitioner(s.device)
	if !ok {
		return errors.CapabilityUnsupportedf("%s has no timed mix transition", s.productName)
	}

	err := mt.SetTransitionRate(ctx, frames)
	metrics.ObserveDeviceWrite(PropertyTransitionRate, err)
	if err != nil {
		return s.deviceFailure(ctx, "set transition rate", err)
	}

	err = mt.StartAutoTransition(ctx)
	metrics.ObserveDeviceWrite(PropertyAutoTransition, err)
	if err != nil {
		return s.deviceFailure(ctx, "start auto transition", err)
	}

	s.logger.Info("session: auto transition started", "frames", frames)
	s.publish(events.TransitionAutoStarted, TransitionEvent{Frames: frames})
	return nil
}
